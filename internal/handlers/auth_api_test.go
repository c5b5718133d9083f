package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devchannels/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	t.Run("creates user and issues token", func(t *testing.T) {
		w := env.request(http.MethodPost, "/api/auth/register", "", gin.H{
			"username":     "alice",
			"password":     "secret123",
			"display_name": "Alice",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp authResponse
		decode(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, models.RoleMember, resp.User.Role)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		w := env.request(http.MethodPost, "/api/auth/register", "", gin.H{
			"username":     "alice",
			"password":     "another123",
			"display_name": "Alice Again",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already exists")
	})

	t.Run("rejects short password", func(t *testing.T) {
		w := env.request(http.MethodPost, "/api/auth/register", "", gin.H{
			"username":     "bob",
			"password":     "12345",
			"display_name": "Bob",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "errors")
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register("alice", "secret123")

	t.Run("valid credentials", func(t *testing.T) {
		w := env.request(http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "alice",
			"password": "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp authResponse
		decode(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.request(http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "alice",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		w := env.request(http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "nobody",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid credentials")
	})
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.register("alice", "secret123")

	t.Run("returns the resolved user", func(t *testing.T) {
		w := env.request(http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			User models.User `json:"user"`
		}
		decode(t, w, &resp)
		assert.Equal(t, userID, resp.User.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		w := env.request(http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := env.request(http.MethodGet, "/api/auth/me", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		require.NoError(t, env.db.Delete(&models.User{}, userID).Error)

		w := env.request(http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProfileAndPassword(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("alice", "secret123")

	t.Run("update display name keeps avatar", func(t *testing.T) {
		w := env.request(http.MethodPut, "/api/users/profile", token, gin.H{
			"display_name": "Alice L.",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			User models.User `json:"user"`
		}
		decode(t, w, &resp)
		assert.Equal(t, "Alice L.", resp.User.DisplayName)
		assert.Equal(t, "alice", resp.User.Username)
	})

	t.Run("wrong current password", func(t *testing.T) {
		w := env.request(http.MethodPut, "/api/users/password", token, gin.H{
			"current_password": "nope",
			"new_password":     "changed123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Current password is incorrect")
	})

	t.Run("password change takes effect", func(t *testing.T) {
		w := env.request(http.MethodPut, "/api/users/password", token, gin.H{
			"current_password": "secret123",
			"new_password":     "changed123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.request(http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "alice",
			"password": "changed123",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.request(http.MethodPost, "/api/auth/login", "", gin.H{
			"username": "alice",
			"password": "secret123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
