package repository

import (
	"context"
	"time"

	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

// Store groups every repository behind one handle so a use case can run
// several of them inside a single transaction.
type Store interface {
	Users() UserRepository
	Boards() BoardRepository
	Categories() CategoryRepository
	Goals() GoalRepository
	Comments() CommentRepository
	BotUsers() BotUserRepository

	// Atomic runs fn against a transactional Store. A non-nil error from fn
	// rolls back every write made through that Store.
	Atomic(ctx context.Context, fn func(Store) error) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistingIDs returns the subset of ids that belong to a user
	ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error)
}

// BoardRepository defines the interface for board and participant data access
type BoardRepository interface {
	// CreateWithOwner inserts the board and its owner participant in one transaction
	CreateWithOwner(ctx context.Context, board *models.Board, ownerID uint64) error

	// FindByID finds a board by ID, including soft-deleted boards
	FindByID(ctx context.Context, id uint64) (*models.Board, error)

	// FindVisibleByID finds a board that is not soft-deleted
	FindVisibleByID(ctx context.Context, id uint64) (*models.Board, error)

	// ListForUser lists live boards the user participates in
	ListForUser(ctx context.Context, userID uint64, page utils.PaginationParams) ([]models.Board, int64, error)

	// UpdateTitle sets the board title
	UpdateTitle(ctx context.Context, id uint64, title string) error

	// SoftDelete flags the board, its categories, and archives their goals
	SoftDelete(ctx context.Context, id uint64) error

	// ListParticipants lists every participant of a board with the user preloaded
	ListParticipants(ctx context.Context, boardID uint64) ([]models.BoardParticipant, error)

	// FindParticipant finds the participant row for (board, user)
	FindParticipant(ctx context.Context, boardID, userID uint64) (*models.BoardParticipant, error)

	// AddParticipants inserts participant rows
	AddParticipants(ctx context.Context, participants []models.BoardParticipant) error

	// UpdateParticipantRole changes the role of one participant row
	UpdateParticipantRole(ctx context.Context, participantID uint64, role models.Role) error

	// RemoveParticipants deletes the participant rows of the given users
	RemoveParticipants(ctx context.Context, boardID uint64, userIDs []uint64) error
}

// CategoryFilter holds filtering options for listing categories
type CategoryFilter struct {
	ViewerID uint64
	BoardID  *uint64
	Title    string
	OrderBy  string
	Page     *utils.PaginationParams
}

// CategoryRepository defines the interface for goal category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *models.GoalCategory) error

	// FindByID finds a category by ID, including soft-deleted ones
	FindByID(ctx context.Context, id uint64) (*models.GoalCategory, error)

	// FindVisibleByID finds a category whose own and board flags are clear
	FindVisibleByID(ctx context.Context, id uint64) (*models.GoalCategory, error)

	List(ctx context.Context, filter CategoryFilter) ([]models.GoalCategory, int64, error)

	UpdateTitle(ctx context.Context, id uint64, title string) error

	// SoftDelete flags the category and archives all of its goals
	SoftDelete(ctx context.Context, id uint64) error
}

// GoalFilter holds filtering options for listing goals
type GoalFilter struct {
	ViewerID        uint64
	CategoryIDs     []uint64
	Statuses        []models.GoalStatus
	Priorities      []models.GoalPriority
	DueDateFrom     *time.Time
	DueDateTo       *time.Time
	Search          string
	ExcludeArchived bool
	OrderBy         string
	Page            *utils.PaginationParams
}

// GoalRepository defines the interface for goal data access
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error

	// FindByID finds a goal by ID, including soft-deleted ones
	FindByID(ctx context.Context, id uint64) (*models.Goal, error)

	// FindVisibleByID finds a goal whose whole ancestor chain is live
	FindVisibleByID(ctx context.Context, id uint64) (*models.Goal, error)

	List(ctx context.Context, filter GoalFilter) ([]models.Goal, int64, error)

	// Update saves the mutable goal fields
	Update(ctx context.Context, goal *models.Goal) error

	// Archive sets status=archived; repeating it is a no-op
	Archive(ctx context.Context, id uint64) error
}

// CommentFilter holds filtering options for listing comments
type CommentFilter struct {
	ViewerID uint64
	GoalID   *uint64
	Page     *utils.PaginationParams
}

// CommentRepository defines the interface for goal comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.GoalComment) error

	// FindVisibleByID finds a comment whose goal is visible
	FindVisibleByID(ctx context.Context, id uint64) (*models.GoalComment, error)

	// List returns comments newest first
	List(ctx context.Context, filter CommentFilter) ([]models.GoalComment, int64, error)

	UpdateText(ctx context.Context, id uint64, text string) error

	Delete(ctx context.Context, id uint64) error
}

// BotUserRepository defines the interface for chat link data access
type BotUserRepository interface {
	FindByChatID(ctx context.Context, chatID int64) (*models.BotUser, error)

	FindByVerificationCode(ctx context.Context, code string) (*models.BotUser, error)

	// SaveCode creates the chat row if missing and stores a fresh verification code
	SaveCode(ctx context.Context, chatID int64, code string) (*models.BotUser, error)

	// Link attaches the chat to a user and clears the verification code
	Link(ctx context.Context, id, userID uint64) error
}
