package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"omninet-lottery/backend/config"
	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/internal/repository"
	pkgerrors "omninet-lottery/backend/pkg/errors"
	"omninet-lottery/backend/pkg/jwt"
)

// ── 内存存储 ──
// 四个 Mock Repository 共享同一份数据，删除用户时可验证级联效果

type memStore struct {
	mu            sync.Mutex
	seq           int
	base          time.Time
	users         map[string]*model.User
	tickets       []*model.Ticket
	winners       []*model.Winner
	notifications []*model.Notification

	// failures 按操作名注入错误，每次调用消费一个
	failures map[string][]error
	calls    map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		base:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    make(map[string]*model.User),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

func (m *memStore) next(prefix string) (string, time.Time) {
	m.seq++
	return fmt.Sprintf("%s-%03d", prefix, m.seq), m.base.Add(time.Duration(m.seq) * time.Second)
}

// fail 为指定操作注入错误
func (m *memStore) fail(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], errs...)
}

func (m *memStore) hit(op string) error {
	m.calls[op]++
	if errs := m.failures[op]; len(errs) > 0 {
		m.failures[op] = errs[1:]
		return errs[0]
	}
	return nil
}

func (m *memStore) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:         &mockUserRepo{m},
		Ticket:       &mockTicketRepo{m},
		Winner:       &mockWinnerRepo{m},
		Notification: &mockNotificationRepo{m},
	}
}

// addUser 直接写入用户（测试数据准备）
func (m *memStore) addUser(u *model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, at := m.next("user")
	if u.UserID == "" {
		u.UserID = id
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.CreatedAt, u.UpdatedAt = at, at
	m.users[u.UserID] = u
	return u
}

func (m *memStore) addTickets(userID string, n int, used bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		id, at := m.next("ticket")
		m.tickets = append(m.tickets, &model.Ticket{TicketID: id, UserID: userID, IsUsed: used, Source: model.TicketSourceAdmin, CreatedAt: at})
	}
}

func (m *memStore) addWinner(userID string, claimed bool) *model.Winner {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, at := m.next("winner")
	w := &model.Winner{WinnerID: id, UserID: userID, Claimed: claimed, CreatedAt: at}
	m.winners = append(m.winners, w)
	return w
}

// ── Mock UserRepository ──

type mockUserRepo struct{ m *memStore }

func (r *mockUserRepo) Create(_ context.Context, user *model.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit("user.create"); err != nil {
		return err
	}
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	id, at := r.m.next("user")
	user.UserID = id
	user.CreatedAt, user.UpdatedAt = at, at
	cp := *user
	r.m.users[id] = &cp
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit("user.get"); err != nil {
		return nil, err
	}
	if u, ok := r.m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByReferralCode(_ context.Context, code string) (*model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.ReferralCode != nil && *u.ReferralCode == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) ListWithTicketCounts(_ context.Context, offset, limit int) ([]model.UserWithTicketCount, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rows := make([]model.UserWithTicketCount, 0, len(r.m.users))
	for _, u := range r.m.users {
		var n int64
		for _, t := range r.m.tickets {
			if t.UserID == u.UserID {
				n++
			}
		}
		rows = append(rows, model.UserWithTicketCount{User: *u, TicketCount: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })

	total := int64(len(rows))
	if offset >= len(rows) {
		return []model.UserWithTicketCount{}, total, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total, nil
}

func (r *mockUserRepo) ListReferredBy(_ context.Context, userID string) ([]model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.User
	for _, u := range r.m.users {
		if u.ReferredBy != nil && *u.ReferredBy == userID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *mockUserRepo) SetBlocked(_ context.Context, id string, blocked bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsBlocked = blocked
	u.UpdatedAt = u.UpdatedAt.Add(time.Second)
	return nil
}

func (r *mockUserRepo) SetNewsletter(_ context.Context, id string, subscribed bool) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit("user.set_newsletter"); err != nil {
		return false, err
	}
	u, ok := r.m.users[id]
	if !ok || u.NewsletterSubscribed == subscribed {
		return false, nil
	}
	u.NewsletterSubscribed = subscribed
	return true, nil
}

func (r *mockUserRepo) SetHasWon(_ context.Context, id string, hasWon bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.HasWon = hasWon
	return nil
}

func (r *mockUserRepo) AssignReferralCode(_ context.Context, id, code string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit("user.assign_referral_code"); err != nil {
		return false, err
	}
	if r.codeTaken(id, code) {
		return false, repository.ErrDuplicateReferralCode
	}
	u, ok := r.m.users[id]
	if !ok || u.ReferralCode != nil {
		return false, nil
	}
	u.ReferralCode = &code
	return true, nil
}

func (r *mockUserRepo) SetCustomReferralCode(_ context.Context, id, code string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.codeTaken(id, code) {
		return false, repository.ErrDuplicateReferralCode
	}
	u, ok := r.m.users[id]
	if !ok || u.ReferralCodeCustom || u.ReferralCode != nil {
		return false, nil
	}
	u.ReferralCode = &code
	u.ReferralCodeCustom = true
	return true, nil
}

func (r *mockUserRepo) codeTaken(id, code string) bool {
	for _, u := range r.m.users {
		if u.UserID != id && u.ReferralCode != nil && *u.ReferralCode == code {
			return true
		}
	}
	return false
}

func (r *mockUserRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.users, id)

	tickets := r.m.tickets[:0]
	for _, t := range r.m.tickets {
		if t.UserID != id {
			tickets = append(tickets, t)
		}
	}
	r.m.tickets = tickets

	winners := r.m.winners[:0]
	for _, w := range r.m.winners {
		if w.UserID != id {
			winners = append(winners, w)
		}
	}
	r.m.winners = winners

	notifications := r.m.notifications[:0]
	for _, n := range r.m.notifications {
		if n.RelatedUserID == nil || *n.RelatedUserID != id {
			notifications = append(notifications, n)
		}
	}
	r.m.notifications = notifications

	for _, u := range r.m.users {
		if u.ReferredBy != nil && *u.ReferredBy == id {
			u.ReferredBy = nil
		}
	}
	return nil
}

func (r *mockUserRepo) Count(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.hit("user.count"); err != nil {
		return 0, err
	}
	return int64(len(r.m.users)), nil
}

func (r *mockUserRepo) CountNewsletterSubscribers(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, u := range r.m.users {
		if u.NewsletterSubscribed {
			n++
		}
	}
	return n, nil
}

// ── Mock TicketRepository ──

type mockTicketRepo struct{ m *memStore }

func (r *mockTicketRepo) CreateBatch(_ context.Context, tickets []model.Ticket) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range tickets {
		id, at := r.m.next("ticket")
		t := tickets[i]
		t.TicketID, t.CreatedAt = id, at
		r.m.tickets = append(r.m.tickets, &t)
	}
	return nil
}

func (r *mockTicketRepo) CountByUser(_ context.Context, userID string) (int64, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var available, used int64
	for _, t := range r.m.tickets {
		if t.UserID != userID {
			continue
		}
		if t.IsUsed {
			used++
		} else {
			available++
		}
	}
	return available, used, nil
}

func (r *mockTicketRepo) Count(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.tickets)), nil
}

func (r *mockTicketRepo) CountActive(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, t := range r.m.tickets {
		if !t.IsUsed {
			n++
		}
	}
	return n, nil
}

func (r *mockTicketRepo) MarkAllUsedForUser(_ context.Context, userID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	now := r.m.base
	for _, t := range r.m.tickets {
		if t.UserID == userID && !t.IsUsed {
			t.IsUsed = true
			t.UsedAt = &now
			n++
		}
	}
	return n, nil
}

// ── Mock WinnerRepository ──

type mockWinnerRepo struct{ m *memStore }

func (r *mockWinnerRepo) Create(_ context.Context, w *model.Winner) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	id, at := r.m.next("winner")
	w.WinnerID, w.CreatedAt = id, at
	cp := *w
	r.m.winners = append(r.m.winners, &cp)
	return nil
}

func (r *mockWinnerRepo) GetByID(_ context.Context, id string) (*model.Winner, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, w := range r.m.winners {
		if w.WinnerID == id {
			cp := *w
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockWinnerRepo) List(_ context.Context, claimed *bool, offset, limit int) ([]model.Winner, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Winner
	for i := len(r.m.winners) - 1; i >= 0; i-- {
		w := r.m.winners[i]
		if claimed != nil && w.Claimed != *claimed {
			continue
		}
		out = append(out, *w)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []model.Winner{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *mockWinnerRepo) Claim(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, w := range r.m.winners {
		if w.WinnerID != id {
			continue
		}
		if w.Claimed {
			return false, nil
		}
		now := r.m.base
		w.Claimed, w.ClaimedAt = true, &now
		return true, nil
	}
	return false, gorm.ErrRecordNotFound
}

func (r *mockWinnerRepo) ClaimAll(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	now := r.m.base
	for _, w := range r.m.winners {
		if !w.Claimed {
			w.Claimed, w.ClaimedAt = true, &now
			n++
		}
	}
	return n, nil
}

func (r *mockWinnerRepo) CountUnclaimed(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, w := range r.m.winners {
		if !w.Claimed {
			n++
		}
	}
	return n, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct{ m *memStore }

func (r *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	id, at := r.m.next("notification")
	n.NotificationID, n.CreatedAt = id, at
	cp := *n
	r.m.notifications = append(r.m.notifications, &cp)
	return nil
}

func (r *mockNotificationRepo) List(_ context.Context, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []model.Notification
	for i := len(r.m.notifications) - 1; i >= 0; i-- {
		n := r.m.notifications[i]
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []model.Notification{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r *mockNotificationRepo) MarkAllRead(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, x := range r.m.notifications {
		if !x.IsRead {
			x.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *mockNotificationRepo) CountUnread(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, x := range r.m.notifications {
		if !x.IsRead {
			n++
		}
	}
	return n, nil
}

// ── 测试辅助 ──

// testTimeout 网络超时类瞬时错误
type testTimeout struct{}

func (testTimeout) Error() string   { return "i/o timeout" }
func (testTimeout) Timeout() bool   { return true }
func (testTimeout) Temporary() bool { return true }

func testConfig() *config.Config {
	return &config.Config{
		Auth:    config.AuthConfig{JWTSecret: "test-secret-0123456789", SessionTTL: time.Hour},
		Retry:   config.RetryConfig{MaxAttempts: 3},
		Feature: config.FeatureConfig{SignupTickets: 1, ReferralBonusTickets: 1},
	}
}

func newTestStore(m *memStore) *store {
	return newStore(m.repository(), pkgerrors.RetryPolicy{MaxAttempts: 3}, zap.NewNop())
}

func newTestServices(m *memStore) (*Service, *jwt.Manager) {
	cfg := testConfig()
	mgr := jwt.NewManager(&cfg.Auth)
	return NewService(cfg, m.repository(), mgr, nil, zap.NewNop()), mgr
}
