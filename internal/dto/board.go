package dto

import (
	"time"

	"github.com/yukikurage/goal-boards-api/internal/models"
	"github.com/yukikurage/goal-boards-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ParticipantDTO represents a board participant
type ParticipantDTO struct {
	ID   uint64      `json:"id"`
	User UserDTO     `json:"user"`
	Role models.Role `json:"role"`
}

// BoardDTO represents a board in API responses. Participants are only
// included on detail responses.
type BoardDTO struct {
	ID           uint64           `json:"id"`
	Title        string           `json:"title"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Participants []ParticipantDTO `json:"participants,omitempty"`
}

// BoardListResponse represents a paginated list of boards
type BoardListResponse struct {
	Boards     []BoardDTO               `json:"boards"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// userRef returns nil when the relation was not preloaded.
func userRef(user models.User) *UserDTO {
	if user.ID == 0 {
		return nil
	}
	u := ToUserDTO(user)
	return &u
}

func ToParticipantDTO(participant models.BoardParticipant) ParticipantDTO {
	return ParticipantDTO{
		ID:   participant.ID,
		User: ToUserDTO(participant.User),
		Role: participant.Role,
	}
}

// ToBoardDTO converts a Board model to BoardDTO
func ToBoardDTO(board models.Board) BoardDTO {
	dto := BoardDTO{
		ID:        board.ID,
		Title:     board.Title,
		CreatedAt: board.CreatedAt,
		UpdatedAt: board.UpdatedAt,
	}
	if len(board.Participants) > 0 {
		dto.Participants = make([]ParticipantDTO, len(board.Participants))
		for i, p := range board.Participants {
			dto.Participants[i] = ToParticipantDTO(p)
		}
	}
	return dto
}

func ToBoardListResponse(boards []models.Board, params utils.PaginationParams, total int64) BoardListResponse {
	items := make([]BoardDTO, len(boards))
	for i, board := range boards {
		items[i] = ToBoardDTO(board)
	}
	return BoardListResponse{
		Boards:     items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
