package model

// Role 用户角色，仅有两种取值
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid 是否为合法角色
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User 用户表 — 对应 users
type User struct {
	UserID               string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name                 string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email                string  `gorm:"type:varchar(255);not null;uniqueIndex:uni_users_email" json:"email"`
	PasswordHash         string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role                 Role    `gorm:"type:varchar(20);not null;default:'USER'"       json:"role"`
	IsBlocked            bool    `gorm:"not null;default:false"                         json:"is_blocked"`
	TwoFactorEnabled     bool    `gorm:"not null;default:false"                         json:"two_factor_enabled"`
	HasWon               bool    `gorm:"not null;default:false"                         json:"has_won"`
	NewsletterSubscribed bool    `gorm:"not null;default:false"                         json:"newsletter_subscribed"`
	ReferralCode         *string `gorm:"type:varchar(16);uniqueIndex:uni_users_referral_code" json:"referral_code,omitempty"`
	ReferralCodeCustom   bool    `gorm:"not null;default:false"                         json:"referral_code_custom"`
	ReferredBy           *string `gorm:"type:uuid;index"                                json:"referred_by,omitempty"`
	Timestamps
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// UserWithTicketCount 管理端用户列表行（附带票数）
type UserWithTicketCount struct {
	User
	TicketCount int64 `gorm:"column:ticket_count" json:"ticket_count"`
}
