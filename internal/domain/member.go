package domain

import "time"

// Role of a participant
type Role string

// Participant roles
const (
	RoleUser    Role = "user"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known kinds
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTrainer || r == RoleAdmin
}

// Member represents an app participant (ordinary user, trainer, or admin)
type Member struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nickname  string    `gorm:"column:nickname;size:100" json:"nickname"`
	Email     string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	Role      Role      `gorm:"column:role;size:20;default:user;index" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the table name
func (Member) TableName() string {
	return "members"
}

// Connection links a trainer with a client; messaging between ordinary
// participants requires an accepted connection.
type Connection struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrainerID uint64    `gorm:"column:trainer_id;index:idx_connections_pair,unique" json:"trainer_id"`
	ClientID  uint64    `gorm:"column:client_id;index:idx_connections_pair,unique" json:"client_id"`
	Status    string    `gorm:"column:status;size:20;default:pending" json:"status"` // pending, accepted, rejected
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the table name
func (Connection) TableName() string {
	return "connections"
}

// Block records that blocker does not accept messages from blocked
type Block struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BlockerID uint64    `gorm:"column:blocker_id;index:idx_blocks_pair,unique" json:"blocker_id"`
	BlockedID uint64    `gorm:"column:blocked_id;index:idx_blocks_pair,unique" json:"blocked_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName returns the table name
func (Block) TableName() string {
	return "blocks"
}
