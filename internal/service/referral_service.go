package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/internal/repository"
	"omninet-lottery/backend/pkg/metrics"
	"omninet-lottery/backend/pkg/shortcode"
)

// maxCodeAttempts 推荐码冲突时的最大生成次数
const maxCodeAttempts = 5

// ReferralService 推荐业务接口
type ReferralService interface {
	// GetOrCreateCode 返回用户的推荐码，首次调用时生成；对同一用户始终返回同一个码
	GetOrCreateCode(ctx context.Context, userID string) (string, error)
	// SetCustomCode 用户自定义推荐码，仅允许一次
	SetCustomCode(ctx context.Context, userID, code string) (string, error)
	ListReferrals(ctx context.Context, userID string) ([]model.User, error)
}

type referralService struct {
	*store
	gen *shortcode.Generator
}

// NewReferralService 创建 ReferralService 实例
func NewReferralService(st *store, gen *shortcode.Generator) ReferralService {
	return &referralService{store: st, gen: gen}
}

func (s *referralService) GetOrCreateCode(ctx context.Context, userID string) (string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ReferralCode != nil {
		return *user.ReferralCode, nil
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.gen.Generate(shortcode.ReferralLength)
		if err != nil {
			return "", err
		}

		var assigned bool
		err = s.do(ctx, "user.assign_referral_code", func(ctx context.Context) error {
			var err error
			assigned, err = s.repo.User.AssignReferralCode(ctx, userID, code)
			return err
		})
		if errors.Is(err, repository.ErrDuplicateReferralCode) {
			s.logger.Info("推荐码冲突，重新生成", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			s.logger.Error("写入推荐码失败", zap.String("user_id", userID), zap.Error(err))
			return "", err
		}
		if assigned {
			metrics.RecordReferralCodeIssued()
			return code, nil
		}

		// 并发请求已先写入，返回已存储的码
		user, err = s.user(ctx, userID)
		if err != nil {
			return "", err
		}
		if user.ReferralCode != nil {
			return *user.ReferralCode, nil
		}
	}

	s.logger.Error("推荐码生成次数耗尽", zap.String("user_id", userID))
	return "", errReferralCodeExhausted
}

func (s *referralService) SetCustomCode(ctx context.Context, userID, code string) (string, error) {
	code = shortcode.Normalize(code)
	if !shortcode.Valid(code) {
		return "", ErrInvalidReferralCode
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ReferralCodeCustom {
		return "", ErrReferralCodeAlreadyCustom
	}
	if user.ReferralCode != nil {
		return "", ErrReferralCodeIssued
	}

	var updated bool
	err = s.do(ctx, "user.set_custom_referral_code", func(ctx context.Context) error {
		var err error
		updated, err = s.repo.User.SetCustomReferralCode(ctx, userID, code)
		return err
	})
	if errors.Is(err, repository.ErrDuplicateReferralCode) {
		return "", ErrReferralCodeTaken
	}
	if err != nil {
		s.logger.Error("写入自定义推荐码失败", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}
	if !updated {
		// 并发的首次领取抢先写入了生成码
		return "", ErrReferralCodeIssued
	}
	return code, nil
}

func (s *referralService) ListReferrals(ctx context.Context, userID string) ([]model.User, error) {
	var users []model.User
	err := s.do(ctx, "user.list_referred_by", func(ctx context.Context) error {
		var err error
		users, err = s.repo.User.ListReferredBy(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Error("查询推荐用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return users, nil
}
