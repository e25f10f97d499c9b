package models

import "time"

// Chat modes. Only the assistant mode ever proposes actions; sales and help
// are plain conversation.
const (
	ModeAssistant = "assistant"
	ModeSales     = "sales"
	ModeHelp      = "help"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message delivery statuses
const (
	MessageSending = "sending"
	MessageSent    = "sent"
	MessageError   = "error"
)

// ChatSession is a container of ordered messages owned by one user.
type ChatSession struct {
	ID             string    `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	UserID         string    `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Title          string    `json:"title" gorm:"column:title;type:varchar(255);not null"`
	Mode           string    `json:"mode" gorm:"column:mode;type:varchar(20);not null;default:'assistant'"`
	LastActivityAt time.Time `json:"last_activity_at" gorm:"column:last_activity_at;type:timestamptz;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;type:timestamptz;autoUpdateTime"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessage is immutable once persisted, except for delivery status
// transitions on the sending message itself.
type ChatMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	SessionID string    `json:"session_id" gorm:"column:session_id;type:varchar(255);not null;index"`
	UserID    string    `json:"user_id" gorm:"column:user_id;type:varchar(255);not null;index"`
	Role      string    `json:"role" gorm:"column:role;type:varchar(20);not null"`
	Content   string    `json:"content" gorm:"column:content;type:text;not null"`
	ActionID  *string   `json:"action_id" gorm:"column:action_id;type:varchar(255)"`
	Status    string    `json:"status" gorm:"column:status;type:varchar(20);not null;default:'sent'"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;type:timestamptz;autoCreateTime"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// ChatReply is what a single chat round trip returns to the caller: the
// assistant message and, when the assistant proposed work, the action card.
type ChatReply struct {
	SessionID string       `json:"session_id"`
	Message   *ChatMessage `json:"message"`
	Action    *ChatAction  `json:"action,omitempty"`
}
