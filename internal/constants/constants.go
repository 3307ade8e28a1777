package constants

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	SessionCookieName   = "goal_session"
)

// Authentication
const (
	MinPasswordLength = 8
	MaxUsernameLength = 150
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Field limits
const (
	MaxBoardTitleLength    = 255
	MaxCategoryTitleLength = 255
	MaxGoalTitleLength     = 256
)

// AI goal drafts
const (
	MaxAIGeneratedGoals = 20
)
