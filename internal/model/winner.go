package model

import "time"

// Winner 中奖记录表 — 对应 winners
// Claimed 仅表示管理员已处理该中奖记录，与通知已读状态无关
type Winner struct {
	WinnerID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"winner_id"`
	UserID    string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Claimed   bool       `gorm:"not null;default:false"                         json:"claimed"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Winner) TableName() string { return "winners" }
