package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := LoadConfig()
	cfg.LogLevel = "error"
	cfg.DatabaseFile = filepath.Join(dir, "accounts.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.TokenStoreDriver = DriverBolt
	cfg.TokenStoreFile = filepath.Join(dir, "tokens.db")
	return cfg
}

func TestNewServesHealth(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	// bolt needs sweeping, redis would not
	require.NotNil(t, application.housekeepingService)

	for _, path := range []string{"/livez", "/readyz"} {
		rec := httptest.NewRecorder()
		application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MailDriver = "smtp"

	_, err := New(cfg)
	require.ErrorContains(t, err, "MAIL_DRIVER")
}

func TestAdminActivateAndSetRole(t *testing.T) {
	cfg := testConfig(t)
	cfg.TokenStoreDriver = DriverMemory

	application, err := New(cfg)
	require.NoError(t, err)

	body := `{"username":"alice","password":"Sup3r$ecret","confirmPassword":"Sup3r$ecret",
		"email":"alice@example.com","firstName":"Alice","lastName":"Nguyen"}`
	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, application.Shutdown())

	admin, err := NewAdmin(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = admin.Close() })

	acc, err := admin.Activate(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, acc.Status)

	// Idempotent
	acc, err = admin.Activate(t.Context(), "alice")
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, acc.Status)

	acc, err = admin.SetRole(t.Context(), "alice", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, acc.Role)

	_, err = admin.Activate(t.Context(), "nobody")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = admin.SetRole(t.Context(), "alice", "superuser")
	require.Error(t, err)
}
