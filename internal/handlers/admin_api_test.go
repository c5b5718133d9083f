package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devchannels/internal/models"
)

func TestAdminListUsers(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register("alice", "secret123")
	env.register("root", "secret123")
	admin, _ := env.promote("root", "secret123")

	channelID := env.createChannel(alice, "rust")
	messageID := env.createMessage(alice, channelID, "hello")
	env.createReply(alice, messageID, "talking to myself")

	t.Run("requires admin", func(t *testing.T) {
		w := env.request(http.MethodGet, "/api/admin/users", alice, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.request(http.MethodGet, "/api/admin/users", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("lists users with content counts", func(t *testing.T) {
		w := env.request(http.MethodGet, "/api/admin/users", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Users []models.UserListing `json:"users"`
		}
		decode(t, w, &resp)
		require.Len(t, resp.Users, 2)

		assert.Equal(t, "alice", resp.Users[0].Username)
		assert.Equal(t, 1, resp.Users[0].MessageCount)
		assert.Equal(t, 1, resp.Users[0].ReplyCount)
		assert.Equal(t, "root", resp.Users[1].Username)
		assert.Equal(t, models.RoleAdmin, resp.Users[1].Role)
	})
}

func TestAdminDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceID := env.register("alice", "secret123")
	bob, _ := env.register("bob", "secret123")
	env.register("root", "secret123")
	env.register("root2", "secret123")
	admin, adminID := env.promote("root", "secret123")
	env.promote("root2", "secret123")

	channelID := env.createChannel(alice, "rust")
	messageID := env.createMessage(alice, channelID, "mine")
	replyID := env.createReply(bob, messageID, "bob was here")
	require.Equal(t, http.StatusOK, env.rate(bob, "messages", messageID, true).Code)

	t.Run("admins cannot delete themselves", func(t *testing.T) {
		w := env.request(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", adminID), admin, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Cannot delete yourself")
	})

	t.Run("admins cannot delete other admins", func(t *testing.T) {
		var other models.User
		require.NoError(t, env.db.Where("username = ?", "root2").First(&other).Error)

		w := env.request(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", other.ID), admin, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Cannot delete another admin")
	})

	t.Run("missing user", func(t *testing.T) {
		w := env.request(http.MethodDelete, "/api/admin/users/9999", admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-admins are rejected", func(t *testing.T) {
		w := env.request(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", aliceID), bob, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("deleting a member cascades to everything they authored", func(t *testing.T) {
		w := env.request(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", aliceID), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// Alice owned the channel, so bob's reply and rating go too.
		var channels, messages, replies, ratings int64
		env.db.Model(&models.Channel{}).Count(&channels)
		env.db.Model(&models.Message{}).Count(&messages)
		env.db.Model(&models.Reply{}).Count(&replies)
		env.db.Model(&models.Rating{}).Count(&ratings)
		assert.Zero(t, channels)
		assert.Zero(t, messages)
		assert.Zero(t, replies)
		assert.Zero(t, ratings)

		w = env.request(http.MethodGet, fmt.Sprintf("/api/replies/%d", replyID), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.register("alice", "secret123")
	env.register("root", "secret123")
	admin, _ := env.promote("root", "secret123")

	channelID := env.createChannel(alice, "rust")
	messageID := env.createMessage(alice, channelID, "first")
	env.createReply(alice, messageID, "second")

	w := env.request(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats struct {
			Users    int64 `json:"users"`
			Channels int64 `json:"channels"`
			Messages int64 `json:"messages"`
			Replies  int64 `json:"replies"`
		} `json:"stats"`
		RecentActivity []struct {
			Type        string `json:"type"`
			Content     string `json:"content"`
			ChannelName string `json:"channel_name"`
		} `json:"recentActivity"`
	}
	decode(t, w, &resp)

	assert.EqualValues(t, 2, resp.Stats.Users)
	assert.EqualValues(t, 1, resp.Stats.Channels)
	assert.EqualValues(t, 1, resp.Stats.Messages)
	assert.EqualValues(t, 1, resp.Stats.Replies)

	require.Len(t, resp.RecentActivity, 2)
	assert.Equal(t, "reply", resp.RecentActivity[0].Type)
	assert.Equal(t, "second", resp.RecentActivity[0].Content)
	assert.Equal(t, "rust", resp.RecentActivity[0].ChannelName)
	assert.Equal(t, "message", resp.RecentActivity[1].Type)
}
