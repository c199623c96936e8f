package service

import "errors"

// ── 业务错误 ──
// Handler 通过 errors.Is 将其映射为 HTTP 状态码

var (
	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailExists        = errors.New("Email already registered")
	ErrAccountBlocked     = errors.New("Account is blocked")

	ErrSelfBlock  = errors.New("Admins cannot block themselves")
	ErrSelfDelete = errors.New("Admins cannot delete themselves")

	ErrReferralCodeNotFound      = errors.New("Referral code not found")
	ErrInvalidReferralCode       = errors.New("Referral code must be 4-16 characters of A-Z and 0-9")
	ErrReferralCodeTaken         = errors.New("Referral code already taken")
	ErrReferralCodeAlreadyCustom = errors.New("Referral code can only be customized once")
	ErrReferralCodeIssued        = errors.New("Referral code already issued and cannot be changed")
	errReferralCodeExhausted     = errors.New("could not allocate a unique referral code")

	ErrWinnerNotFound = errors.New("Winner not found")
)
