package models

type Role string

const (
	RoleOwner  Role = "owner"
	RoleWriter Role = "writer"
	RoleReader Role = "reader"
)

// Valid reports whether r is one of the known board roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleWriter, RoleReader:
		return true
	}
	return false
}

// CanWrite reports whether the role may modify categories and goals.
func (r Role) CanWrite() bool {
	return r == RoleOwner || r == RoleWriter
}

// BoardParticipant is unique per (board, user); it carries no timestamps.
type BoardParticipant struct {
	ID      uint64 `gorm:"primarykey" json:"id"`
	BoardID uint64 `gorm:"not null;index;uniqueIndex:uq_board_participants_board_user" json:"board_id"`
	UserID  uint64 `gorm:"not null;index;uniqueIndex:uq_board_participants_board_user" json:"user_id"`
	Role    Role   `gorm:"type:varchar(20);not null;default:'owner'" json:"role"`

	// Relations
	Board Board `gorm:"foreignKey:BoardID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
