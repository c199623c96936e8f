package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail        = errors.New("邮箱已被注册")
	ErrDuplicateReferralCode = errors.New("推荐码已被占用")
)

// 与迁移文件中的约束名保持一致
const (
	constraintUsersEmail        = "uni_users_email"
	constraintUsersReferralCode = "uni_users_referral_code"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Ticket       TicketRepository
	Winner       WinnerRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Ticket:       NewTicketRepo(db),
		Winner:       NewWinnerRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// WithTx 返回绑定到事务连接的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个数据库事务中执行 fn
// 未绑定 *gorm.DB 时（单元测试中的内存实现）直接执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
