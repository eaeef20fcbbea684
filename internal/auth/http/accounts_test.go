package http_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestAccountsRequireAdmin(t *testing.T) {
	s := newServer(t)
	user, _ := s.activeUser(t, "alice")

	res := s.do(t, request{method: http.MethodGet, path: "/accounts"})
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = s.do(t, request{method: http.MethodGet, path: "/accounts", token: user})
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestAccountsAdministration(t *testing.T) {
	s := newServer(t)
	admin := s.admin(t, "root")

	body := registerBody("bobby")
	res := s.do(t, request{method: http.MethodPost, path: "/accounts", token: admin, body: body})
	require.Equal(t, http.StatusOK, res.Code, res.Message)

	var bob struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Role   string `json:"role"`
	}
	res.decode(t, &bob)
	require.Equal(t, "active", bob.Status)
	require.Equal(t, "user", bob.Role)

	t.Run("list", func(t *testing.T) {
		res := s.do(t, request{method: http.MethodGet, path: "/accounts?page=1&size=1", token: admin})
		require.Equal(t, http.StatusOK, res.Code)

		var page struct {
			Items []map[string]any `json:"items"`
			Size  int              `json:"size"`
			Total int              `json:"total"`
		}
		res.decode(t, &page)
		require.Len(t, page.Items, 1)
		require.Equal(t, 2, page.Total)

		res = s.do(t, request{method: http.MethodGet, path: "/accounts?page=x", token: admin})
		require.Equal(t, http.StatusBadRequest, res.Code)
		require.Contains(t, res.Errors, "page")
	})

	t.Run("get", func(t *testing.T) {
		res := s.do(t, request{method: http.MethodGet, path: "/accounts/" + bob.ID, token: admin})
		require.Equal(t, http.StatusOK, res.Code)

		res = s.do(t, request{method: http.MethodGet, path: "/accounts/" + idx.New().String(), token: admin})
		require.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("update", func(t *testing.T) {
		res := s.do(t, request{method: http.MethodPut, path: "/accounts/" + bob.ID, token: admin, body: map[string]string{
			"email": "robert@example.com", "firstName": "Robert", "lastName": "User",
		}})
		require.Equal(t, http.StatusOK, res.Code)

		res = s.do(t, request{method: http.MethodPut, path: "/accounts/" + bob.ID, token: admin, body: map[string]string{
			"email": "root@example.com", "firstName": "Robert", "lastName": "User",
		}})
		require.Equal(t, http.StatusConflict, res.Code)
	})

	t.Run("status", func(t *testing.T) {
		bobAccess, _ := s.signIn(t, "bobby", password)

		res := s.do(t, request{method: http.MethodPatch, path: "/accounts/" + bob.ID + "/status?status=frozen", token: admin})
		require.Equal(t, http.StatusBadRequest, res.Code)

		res = s.do(t, request{method: http.MethodPatch, path: "/accounts/" + bob.ID + "/status?status=inactive", token: admin})
		require.Equal(t, http.StatusOK, res.Code)

		res = s.do(t, request{method: http.MethodGet, path: "/auth/me", token: bobAccess})
		require.Equal(t, http.StatusUnauthorized, res.Code, "deactivation ends the session")

		res = s.do(t, request{method: http.MethodPatch, path: "/accounts/" + bob.ID + "/status?status=active", token: admin})
		require.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("admins cannot remove themselves", func(t *testing.T) {
		res := s.do(t, request{method: http.MethodGet, path: "/auth/me", token: admin})
		require.Equal(t, http.StatusOK, res.Code)
		var me struct {
			ID string `json:"id"`
		}
		res.decode(t, &me)

		res = s.do(t, request{method: http.MethodDelete, path: "/accounts/" + me.ID, token: admin})
		require.Equal(t, http.StatusForbidden, res.Code)

		res = s.do(t, request{method: http.MethodPatch, path: "/accounts/" + me.ID + "/status?status=inactive", token: admin})
		require.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("delete", func(t *testing.T) {
		res := s.do(t, request{method: http.MethodDelete, path: "/accounts/" + bob.ID, token: admin})
		require.Equal(t, http.StatusOK, res.Code)

		res = s.do(t, request{method: http.MethodDelete, path: "/accounts/" + bob.ID, token: admin})
		require.Equal(t, http.StatusNotFound, res.Code)
	})
}
