package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"omninet-lottery/backend/config"
	"omninet-lottery/backend/internal/dto"
	"omninet-lottery/backend/internal/identity"
	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/internal/repository"
	"omninet-lottery/backend/pkg/jwt"
	"omninet-lottery/backend/pkg/shortcode"
)

// AuthService 认证业务接口
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, id *identity.Identity) error
}

type authService struct {
	*store
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	features  *config.FeatureConfig
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(st *store, jwtMgr *jwt.Manager, blacklist TokenBlacklist, features *config.FeatureConfig) AuthService {
	return &authService{
		store:     st,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		features:  features,
	}
}

// ────────────────────── Signup ──────────────────────

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var referrer *model.User
	if code := shortcode.Normalize(req.ReferralCode); code != "" {
		err := s.do(ctx, "user.get_by_referral_code", func(ctx context.Context) error {
			var err error
			referrer, err = s.repo.User.GetByReferralCode(ctx, code)
			return err
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralCodeNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	var user *model.User
	err = s.tx(ctx, "auth.signup", func(tx *repository.Repository) error {
		user = &model.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         model.RoleUser,
		}
		if referrer != nil {
			user.ReferredBy = &referrer.UserID
		}
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}

		if n := s.features.SignupTickets; n > 0 {
			if err := tx.Ticket.CreateBatch(ctx, newTickets(user.UserID, n, model.TicketSourceSignup)); err != nil {
				return err
			}
		}
		if referrer != nil && s.features.ReferralBonusTickets > 0 {
			bonus := newTickets(referrer.UserID, s.features.ReferralBonusTickets, model.TicketSourceReferral)
			if err := tx.Ticket.CreateBatch(ctx, bonus); err != nil {
				return err
			}
		}

		return tx.Notification.Create(ctx, &model.Notification{
			Type:          model.NotificationUserSignup,
			Title:         "New signup",
			Content:       fmt.Sprintf("%s <%s> signed up", user.Name, user.Email),
			RelatedUserID: &user.UserID,
		})
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrEmailExists
	}
	if err != nil {
		s.logger.Error("注册失败", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户注册成功", zap.String("user_id", user.UserID), zap.Bool("referred", referrer != nil))
	return user, nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user *model.User
	err := s.do(ctx, "user.get_by_email", func(ctx context.Context) error {
		var err error
		user, err = s.repo.User.GetByEmail(ctx, email)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}

	token, exp, err := s.jwtMgr.Generate(jwt.Subject{
		UserID:           user.UserID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             string(user.Role),
		IsBlocked:        user.IsBlocked,
		TwoFactorEnabled: user.TwoFactorEnabled,
		HasWon:           user.HasWon,
	})
	if err != nil {
		s.logger.Error("生成会话 Token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      dto.NewUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

// Logout 将当前 Token 加入黑名单直至其自然过期
func (s *authService) Logout(ctx context.Context, id *identity.Identity) error {
	if s.blacklist == nil || id == nil || id.TokenID == "" {
		return nil
	}
	ttl := time.Until(id.ExpiresAt)
	if err := s.blacklist.BlacklistToken(ctx, id.TokenID, ttl); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("user_id", id.ID), zap.Error(err))
		return err
	}
	return nil
}
