package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"wtfSocial/auth"
	"wtfSocial/crud"
	"wtfSocial/domain"
	"wtfSocial/ws"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Follow{},
		&domain.Post{},
		&domain.Reaction{},
		&domain.Message{},
	))

	services, err := crud.NewServices(db,
		crud.WithFollow(),
		crud.WithVisibility(),
		crud.WithUser("test-pepper"),
		crud.WithPost(),
		crud.WithReaction(),
		crud.WithMessage(),
	)
	require.NoError(t, err)

	tm := auth.NewTokenManager("test-secret", time.Hour)
	hub := ws.NewHub()
	go hub.Run()
	return NewServer(services, tm, hub)
}

// doJSON fires a request against the server's router and decodes the
// response body into a generic map.
func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w.Code, decoded
}

// signup registers a user through the real endpoint and returns their
// token and id.
func signup(t *testing.T, s *Server, username string) (string, int) {
	t.Helper()
	status, body := doJSON(t, s, "POST", "/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)
	token := body["token"].(string)
	id := int(body["user"].(map[string]interface{})["id"].(float64))
	return token, id
}

func TestHealth(t *testing.T) {
	s := testServer(t)
	status, body := doJSON(t, s, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRequireAuth(t *testing.T) {
	s := testServer(t)
	status, body := doJSON(t, s, "GET", "/user/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["code"])

	status, _ = doJSON(t, s, "GET", "/user/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSignupAndLogin(t *testing.T) {
	s := testServer(t)
	token, id := signup(t, s, "alice")

	status, body := doJSON(t, s, "GET", "/user/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, id, body["id"])
	assert.Equal(t, "alice", body["username"])
	assert.NotContains(t, body, "password")

	status, body = doJSON(t, s, "POST", "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, body = doJSON(t, s, "POST", "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["code"])
}

func TestPostReactionCommentFlow(t *testing.T) {
	s := testServer(t)
	aliceToken, _ := signup(t, s, "alice")
	bobToken, _ := signup(t, s, "bob")

	status, body := doJSON(t, s, "POST", "/post", aliceToken, map[string]interface{}{
		"content": "hello world",
	})
	require.Equal(t, http.StatusCreated, status)
	postID := int(body["id"].(float64))

	// Bob, a stranger, sees the public post in his feed.
	req := httptest.NewRequest("GET", "/post/feed", nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var feed []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed, 1)

	status, _ = doJSON(t, s, "POST", fmt.Sprintf("/reaction/%d?type=LIKE", postID), bobToken, nil)
	require.Equal(t, http.StatusCreated, status)

	status, body = doJSON(t, s, "POST", fmt.Sprintf("/reaction/%d?type=LIKE", postID), bobToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", body["code"])

	status, _ = doJSON(t, s, "POST", fmt.Sprintf("/post/%d/comment", postID), bobToken, map[string]interface{}{
		"content": "nice one",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = doJSON(t, s, "GET", fmt.Sprintf("/post/%d", postID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["likes_count"])
	assert.EqualValues(t, 1, body["comments_count"])

	// Only the author may delete.
	status, body = doJSON(t, s, "DELETE", fmt.Sprintf("/post/%d", postID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["code"])
	status, _ = doJSON(t, s, "DELETE", fmt.Sprintf("/post/%d", postID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestPrivateProfileHiddenOverHTTP(t *testing.T) {
	s := testServer(t)
	aliceToken, aliceID := signup(t, s, "alice")
	bobToken, _ := signup(t, s, "bob")

	status, _ := doJSON(t, s, "POST", "/post", aliceToken, map[string]interface{}{
		"content": "for followers only, soon",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = doJSON(t, s, "PUT", "/user/privacy", aliceToken, map[string]bool{
		"is_private": true,
	})
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, s, "GET", fmt.Sprintf("/post/by_user/%d", aliceID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["code"])

	// Following opens the author's posts.
	status, _ = doJSON(t, s, "POST", fmt.Sprintf("/follower/follow/%d", aliceID), bobToken, nil)
	require.Equal(t, http.StatusCreated, status)
	req := httptest.NewRequest("GET", fmt.Sprintf("/post/by_user/%d", aliceID), nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatFlowOverHTTP(t *testing.T) {
	s := testServer(t)
	aliceToken, aliceID := signup(t, s, "alice")
	bobToken, bobID := signup(t, s, "bob")

	// Messaging yourself is forbidden.
	status, body := doJSON(t, s, "POST", fmt.Sprintf("/chat/%d", aliceID), aliceToken, map[string]string{
		"content": "note to self",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["code"])

	status, _ = doJSON(t, s, "POST", fmt.Sprintf("/chat/%d", bobID), aliceToken, map[string]string{
		"content": "hi bob",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = doJSON(t, s, "GET", "/chat/unread_count", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["unread_count"])

	status, _ = doJSON(t, s, "PUT", fmt.Sprintf("/chat/%d/read", aliceID), bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = doJSON(t, s, "GET", "/chat/unread_count", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["unread_count"])
}
