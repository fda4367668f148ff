package models

type Role string

const (
	RoleUser   Role = "user"
	RoleMentor Role = "mentor"
)

// ConversationTurn is one message in a journal session. Turns live only as
// long as the session and are never persisted.
type ConversationTurn struct {
	Role     Role
	Content  string
	Category Category // set on the opening user turn only
}
