package model

import "time"

// NotificationType 管理端通知类型
type NotificationType string

const (
	NotificationWinnerDrawn NotificationType = "winner_drawn"
	NotificationUserSignup  NotificationType = "user_signup"
	NotificationUserBlocked NotificationType = "user_blocked"
)

// Notification 管理端通知表 — 对应 notifications
type Notification struct {
	NotificationID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	Type           NotificationType `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string           `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string           `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool             `gorm:"not null;default:false"                         json:"is_read"`
	RelatedUserID  *string          `gorm:"type:uuid"                                      json:"related_user_id,omitempty"`
	CreatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
