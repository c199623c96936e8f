//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"omninet-lottery/backend/internal/model"
	"omninet-lottery/backend/internal/repository"
	"omninet-lottery/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")

	var (
		pool     *dockertest.Pool
		resource *dockertest.Resource
	)
	if dsn == "" {
		var err error
		pool, resource, dsn, err = startPostgres()
		if err != nil {
			fmt.Fprintf(os.Stderr, "启动测试数据库失败: %v\n", err)
			os.Exit(1)
		}
	}

	code := run(m, dsn)

	if pool != nil && resource != nil {
		_ = pool.Purge(resource)
	}
	os.Exit(code)
}

func run(m *testing.M, dsn string) int {
	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		return 1
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		return 1
	}
	mg, err := database.NewMigrator(sqlDB, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建迁移器失败: %v\n", err)
		return 1
	}
	if err := mg.Up(); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		return 1
	}
	defer func() { _ = mg.Down() }()

	return m.Run()
}

// startPostgres 通过 dockertest 启动一次性 PostgreSQL 容器
func startPostgres() (*dockertest.Pool, *dockertest.Resource, string, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, "", err
	}
	pool.MaxWait = 60 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=omninet",
			"POSTGRES_PASSWORD=omninet",
			"POSTGRES_DB=omninet_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, nil, "", err
	}

	dsn := fmt.Sprintf("host=localhost port=%s user=omninet password=omninet dbname=omninet_test sslmode=disable",
		resource.GetPort("5432/tcp"))

	err = pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return sqlDB.Ping()
	})
	if err != nil {
		_ = pool.Purge(resource)
		return nil, nil, "", err
	}

	return pool, resource, dsn, nil
}

func newUser(t *testing.T, repo *repository.Repository) *model.User {
	t.Helper()
	u := &model.User{
		Name:         "测试用户",
		Email:        fmt.Sprintf("user-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.User.Create(context.Background(), u))
	t.Cleanup(func() { _ = repo.User.Delete(context.Background(), u.UserID) })
	return u
}

// ═══════════════════════════════════════════════════════════
// Tests
// ═══════════════════════════════════════════════════════════

func TestUser_DuplicateEmail(t *testing.T) {
	repo := repository.NewRepository(testDB)
	u := newUser(t, repo)

	dup := &model.User{Name: "dup", Email: u.Email, PasswordHash: "x", Role: model.RoleUser}
	err := repo.User.Create(context.Background(), dup)
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestUser_AssignReferralCode_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	u := newUser(t, repo)

	code := fmt.Sprintf("A%07d", time.Now().UnixNano()%10000000)
	ok, err := repo.User.AssignReferralCode(ctx, u.UserID, code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.User.AssignReferralCode(ctx, u.UserID, "ZZZZZZZZ")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.User.GetByID(ctx, u.UserID)
	require.NoError(t, err)
	require.NotNil(t, got.ReferralCode)
	assert.Equal(t, code, *got.ReferralCode)
}

func TestUser_AssignReferralCode_UniqueConstraint(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	a := newUser(t, repo)
	b := newUser(t, repo)

	code := fmt.Sprintf("B%07d", time.Now().UnixNano()%10000000)
	_, err := repo.User.AssignReferralCode(ctx, a.UserID, code)
	require.NoError(t, err)

	_, err = repo.User.AssignReferralCode(ctx, b.UserID, code)
	assert.ErrorIs(t, err, repository.ErrDuplicateReferralCode)
}

func TestUser_SetCustomReferralCode_OnlyWhenUnassigned(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	fresh := newUser(t, repo)
	issued := newUser(t, repo)

	custom := fmt.Sprintf("C%07d", time.Now().UnixNano()%10000000)
	ok, err := repo.User.SetCustomReferralCode(ctx, fresh.UserID, custom)
	require.NoError(t, err)
	assert.True(t, ok)

	generated := fmt.Sprintf("G%07d", time.Now().UnixNano()%10000000)
	ok, err = repo.User.AssignReferralCode(ctx, issued.UserID, generated)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.User.SetCustomReferralCode(ctx, issued.UserID, fmt.Sprintf("D%07d", time.Now().UnixNano()%10000000))
	require.NoError(t, err)
	assert.False(t, ok, "已分配的推荐码不可被覆盖")

	got, err := repo.User.GetByReferralCode(ctx, generated)
	require.NoError(t, err)
	assert.Equal(t, issued.UserID, got.UserID)
}

func TestUser_SetBlocked_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	referrer := newUser(t, repo)
	u := newUser(t, repo)

	code := fmt.Sprintf("B%07d", time.Now().UnixNano()%10000000)
	_, err := repo.User.AssignReferralCode(ctx, u.UserID, code)
	require.NoError(t, err)
	_, err = repo.User.SetNewsletter(ctx, u.UserID, true)
	require.NoError(t, err)
	require.NoError(t, testDB.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", u.UserID).Update("referred_by", referrer.UserID).Error)

	before, err := repo.User.GetByID(ctx, u.UserID)
	require.NoError(t, err)

	require.NoError(t, repo.User.SetBlocked(ctx, u.UserID, true))
	blocked, err := repo.User.GetByID(ctx, u.UserID)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)

	require.NoError(t, repo.User.SetBlocked(ctx, u.UserID, false))
	after, err := repo.User.GetByID(ctx, u.UserID)
	require.NoError(t, err)

	before.UpdatedAt, after.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, *before, *after)
}

func TestUser_SetNewsletter_ReportsChange(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	u := newUser(t, repo)

	changed, err := repo.User.SetNewsletter(ctx, u.UserID, true)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.User.SetNewsletter(ctx, u.UserID, true)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestUser_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	u := newUser(t, repo)

	require.NoError(t, repo.Ticket.CreateBatch(ctx, []model.Ticket{
		{UserID: u.UserID, Source: model.TicketSourceAdmin},
		{UserID: u.UserID, Source: model.TicketSourceAdmin},
	}))
	require.NoError(t, repo.Winner.Create(ctx, &model.Winner{UserID: u.UserID}))

	require.NoError(t, repo.User.Delete(ctx, u.UserID))

	_, err := repo.User.GetByID(ctx, u.UserID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	available, used, err := repo.Ticket.CountByUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Zero(t, available+used)

	assert.ErrorIs(t, repo.User.Delete(ctx, u.UserID), gorm.ErrRecordNotFound)
}

func TestTicket_MarkAllUsed(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	u := newUser(t, repo)

	require.NoError(t, repo.Ticket.CreateBatch(ctx, []model.Ticket{
		{UserID: u.UserID, Source: model.TicketSourceSignup},
		{UserID: u.UserID, Source: model.TicketSourceReferral},
		{UserID: u.UserID, Source: model.TicketSourceAdmin},
	}))

	n, err := repo.Ticket.MarkAllUsedForUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	available, used, err := repo.Ticket.CountByUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), available)
	assert.Equal(t, int64(3), used)
}

func TestWinner_Claim(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	u := newUser(t, repo)

	w := &model.Winner{UserID: u.UserID}
	require.NoError(t, repo.Winner.Create(ctx, w))

	changed, err := repo.Winner.Claim(ctx, w.WinnerID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Winner.Claim(ctx, w.WinnerID)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.Winner.Claim(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewRepository(testDB)
	u := newUser(t, repo)

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Ticket.CreateBatch(ctx, []model.Ticket{{UserID: u.UserID, Source: model.TicketSourceAdmin}}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	available, _, err := repo.Ticket.CountByUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Zero(t, available)
}
