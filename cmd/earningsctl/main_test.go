package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tourbook/service-earnings/internal/adapter"
	"github.com/tourbook/service-earnings/internal/application"
	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/config"
	"github.com/tourbook/service-earnings/internal/domain/booking"
)

type staticSource struct {
	rows  []booking.Booking
	err   error
	calls int
}

func (s *staticSource) FindByGuide(ctx context.Context, guideID string, statuses []booking.Status) ([]booking.Booking, error) {
	s.calls++
	return s.rows, s.err
}

func useRuntime(t *testing.T, src booking.Source, storage adapter.StorageAdapter) {
	t.Helper()
	prev := newRuntime
	newRuntime = func(string) (*runtime, error) {
		return &runtime{
			cfg: &config.ServiceConfig{StorageConfig: config.StorageConfig{
				AvatarBucket:        "avatars",
				AvatarMaxBytes:      1024,
				CreateMissingBucket: true,
			}},
			logger:  zap.NewNop(),
			source:  src,
			storage: storage,
			metrics: application.NewMetrics(prometheus.NewRegistry()),
			close:   func() {},
		}, nil
	}
	t.Cleanup(func() { newRuntime = prev })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		statsGuideID, statsRole = "", "guide"
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	src := &staticSource{rows: []booking.Booking{
		{Status: booking.StatusPaid, TotalPrice: decimal.NewFromInt(100)},
		{Status: booking.StatusCompleted, TotalPrice: decimal.NewFromInt(200)},
	}}
	useRuntime(t, src, adapter.NewMemoryStorageAdapter("", zap.NewNop()))

	out, err := execute(t, "stats", "--guide", "g-1")
	require.NoError(t, err)

	var snap application.SnapshotDTO
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "300", snap.Stats.TotalEarnings.String())
	assert.Equal(t, 1, src.calls)
}

func TestStatsCommand_NonGuideRole(t *testing.T) {
	src := &staticSource{}
	useRuntime(t, src, adapter.NewMemoryStorageAdapter("", zap.NewNop()))

	out, err := execute(t, "stats", "--guide", "g-1", "--role", "tourist")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_earnings": "0"`)
	assert.Equal(t, 0, src.calls)
}

func TestStatsCommand_FetchError(t *testing.T) {
	useRuntime(t, &staticSource{err: errors.New("permission denied")}, adapter.NewMemoryStorageAdapter("", zap.NewNop()))

	_, err := execute(t, "stats", "--guide", "g-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestStorageDiagnoseCommand(t *testing.T) {
	storage := adapter.NewMemoryStorageAdapter("", zap.NewNop())
	useRuntime(t, &staticSource{}, storage)

	out, err := execute(t, "storage", "diagnose")
	require.NoError(t, err)

	var report application.DiagnosticReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Healthy)
	assert.Len(t, report.Steps, 3)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ACCESS_TTL", "10m")
	t.Setenv("JWT_REFRESH_TTL", "48h")
	t.Cleanup(func() { tokenUserID, tokenRole, tokenRefresh = "", "guide", false })

	m := auth.NewJWTManager("cli-secret", time.Minute, time.Minute)

	out, err := execute(t, "token", "--user", "g-1")
	require.NoError(t, err)
	var access issuedToken
	require.NoError(t, json.Unmarshal([]byte(out), &access))
	assert.Equal(t, "access", access.Kind)
	claims, err := m.ValidateToken(access.Token)
	require.NoError(t, err)
	assert.Equal(t, "g-1", claims.UserID)
	assert.Equal(t, auth.RoleGuide, claims.Role)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	out, err = execute(t, "token", "--user", "a-1", "--role", "admin", "--refresh")
	require.NoError(t, err)
	var refresh issuedToken
	require.NoError(t, json.Unmarshal([]byte(out), &refresh))
	assert.Equal(t, "refresh", refresh.Kind)
	claims, err = m.ValidateToken(refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Cleanup(func() { tokenUserID, tokenRole, tokenRefresh = "", "guide", false })

	_, err := execute(t, "token", "--user", "g-1")
	assert.EqualError(t, err, "JWT_SECRET is not set")
}
