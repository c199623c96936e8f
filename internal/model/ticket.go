package model

import "time"

// TicketSource 票据来源
type TicketSource string

const (
	TicketSourceSignup   TicketSource = "signup"
	TicketSourceReferral TicketSource = "referral"
	TicketSourceAdmin    TicketSource = "admin"
)

// Ticket 抽奖票表 — 对应 tickets
type Ticket struct {
	TicketID  string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"ticket_id"`
	UserID    string       `gorm:"type:uuid;not null;index"                       json:"user_id"`
	IsUsed    bool         `gorm:"not null;default:false"                         json:"is_used"`
	Source    TicketSource `gorm:"type:varchar(20);not null;default:'admin'"      json:"source"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UsedAt    *time.Time   `json:"used_at,omitempty"`
}

// TableName 指定表名
func (Ticket) TableName() string { return "tickets" }
