package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"devchannels/internal/config"
	"devchannels/internal/db"
	"devchannels/internal/models"
	"devchannels/internal/router"
	"devchannels/internal/services"
)

// testEnv runs the full API against an in-memory SQLite database.
type testEnv struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("sqlite://:memory:")
	require.NoError(t, err)

	cfg := &config.Config{
		Port:           "0",
		JWTSecret:      "test-secret",
		UploadDir:      t.TempDir(),
		CORSOrigin:     "*",
		RateLimitRPS:   10000,
		RateLimitBurst: 10000,
	}
	uploads, err := services.NewUploadService(cfg.UploadDir)
	require.NoError(t, err)

	r := gin.New()
	router.Setup(r, conn, cfg, uploads)

	return &testEnv{t: t, router: r, db: conn}
}

func (e *testEnv) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// multipartRequest posts a form with a content field and an optional
// image file.
func (e *testEnv) multipartRequest(path, token, content string, image []byte) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(e.t, w.WriteField("content", content))
	if image != nil {
		fw, err := w.CreateFormFile("image", "attachment.png")
		require.NoError(e.t, err)
		_, err = fw.Write(image)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// register creates a user and returns its token and id.
func (e *testEnv) register(username, password string) (string, uint) {
	e.t.Helper()

	w := e.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"username":     username,
		"password":     password,
		"display_name": username,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var resp authResponse
	decode(e.t, w, &resp)
	return resp.Token, resp.User.ID
}

// promote flips a user to the admin role directly in the database, then
// re-logs them in so the token carries the new role.
func (e *testEnv) promote(username, password string) (string, uint) {
	e.t.Helper()

	require.NoError(e.t, e.db.Model(&models.User{}).
		Where("username = ?", username).
		Update("role", models.RoleAdmin).Error)

	w := e.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var resp authResponse
	decode(e.t, w, &resp)
	return resp.Token, resp.User.ID
}

func (e *testEnv) createChannel(token, name string) uint {
	e.t.Helper()

	w := e.request(http.MethodPost, "/api/channels", token, gin.H{
		"name":        name,
		"description": "test channel",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Channel models.Channel `json:"channel"`
	}
	decode(e.t, w, &resp)
	return resp.Channel.ID
}

func (e *testEnv) createMessage(token string, channelID uint, content string) uint {
	e.t.Helper()

	w := e.request(http.MethodPost, fmt.Sprintf("/api/messages/channel/%d", channelID), token, gin.H{
		"content": content,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		MessageData models.Message `json:"messageData"`
	}
	decode(e.t, w, &resp)
	return resp.MessageData.ID
}

func (e *testEnv) createReply(token string, messageID uint, content string) uint {
	e.t.Helper()

	w := e.request(http.MethodPost, fmt.Sprintf("/api/replies/message/%d", messageID), token, gin.H{
		"content": content,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Reply models.Reply `json:"reply"`
	}
	decode(e.t, w, &resp)
	return resp.Reply.ID
}

func (e *testEnv) createNestedReply(token string, parentID uint, content string) models.Reply {
	e.t.Helper()

	w := e.request(http.MethodPost, fmt.Sprintf("/api/replies/parent/%d", parentID), token, gin.H{
		"content": content,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Reply models.Reply `json:"reply"`
	}
	decode(e.t, w, &resp)
	return resp.Reply
}

func (e *testEnv) rate(token, kind string, id uint, isUpvote bool) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.request(http.MethodPost, fmt.Sprintf("/api/%s/%d/rate", kind, id), token, gin.H{
		"is_upvote": isUpvote,
	})
}
