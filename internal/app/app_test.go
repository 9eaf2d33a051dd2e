package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bloppost/core/internal/config"
	"github.com/bloppost/core/internal/database"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func setupTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:app-test-%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.AppConfig{Env: "development", SessionTTL: 1, Paths: config.PathsConfig{Static: t.TempDir()}}
	r := newRouter(zap.NewNop(), cfg)
	mountRoutes(r, db, cfg, nil)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	}
	return w, parsed
}

func registerAndLogin(t *testing.T, r *gin.Engine, username, email, role string) (string, string) {
	t.Helper()

	w, body := doJSON(t, r, http.MethodPost, "/users", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}
	userID, _ := body["id"].(string)
	if userID == "" {
		t.Fatalf("register %s: no id in response: %s", username, w.Body.String())
	}

	w, body = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]string{
		"identifier": email,
		"password":   "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, w.Code, w.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in response: %s", username, w.Body.String())
	}
	return userID, token
}

func TestWelcomeRoute(t *testing.T) {
	r := setupTestApp(t)

	w, body := doJSON(t, r, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["message"] != "Welcome to Bloppost App!" {
		t.Fatalf("unexpected welcome message: %v", body["message"])
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	r := setupTestApp(t)

	w, _ := doJSON(t, r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPostLifecycle(t *testing.T) {
	r := setupTestApp(t)
	userID, token := registerAndLogin(t, r, "alice", "alice@example.com", "author")

	w, body := doJSON(t, r, http.MethodPost, "/posts", token, map[string]interface{}{
		"title":   "First",
		"content": "Hello world",
		"user_id": userID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	postID, _ := body["id"].(string)
	author, _ := body["author"].(map[string]interface{})
	if author == nil || author["username"] != "alice" {
		t.Fatalf("author not embedded: %s", w.Body.String())
	}

	// Anonymous read is allowed.
	w, _ = doJSON(t, r, http.MethodGet, "/posts/"+postID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get post: expected 200, got %d", w.Code)
	}

	// Delete the author: the post must disappear with them.
	w, _ = doJSON(t, r, http.MethodDelete, "/users/"+userID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete user: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w, _ = doJSON(t, r, http.MethodGet, "/posts/"+postID, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("post must be gone after author delete, got %d", w.Code)
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	r := setupTestApp(t)

	w, _ := doJSON(t, r, http.MethodPost, "/posts", "", map[string]interface{}{
		"title": "x", "content": "y", "user_id": "z",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreatePostRequiresAuthorRole(t *testing.T) {
	r := setupTestApp(t)
	userID, token := registerAndLogin(t, r, "bob", "bob@example.com", "user")

	w, _ := doJSON(t, r, http.MethodPost, "/posts", token, map[string]interface{}{
		"title": "x", "content": "y", "user_id": userID,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author, got %d", w.Code)
	}
}

func TestUpdateOtherUserForbidden(t *testing.T) {
	r := setupTestApp(t)
	aliceID, _ := registerAndLogin(t, r, "alice", "alice@example.com", "author")
	_, bobToken := registerAndLogin(t, r, "bob", "bob@example.com", "user")

	w, _ := doJSON(t, r, http.MethodPatch, "/users/"+aliceID, bobToken, map[string]string{
		"username": "hacked",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDuplicateEmailConflict(t *testing.T) {
	r := setupTestApp(t)
	registerAndLogin(t, r, "alice", "alice@example.com", "user")

	w, _ := doJSON(t, r, http.MethodPost, "/users", "", map[string]string{
		"username": "clone",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	r := setupTestApp(t)
	_, token := registerAndLogin(t, r, "carol", "carol@example.com", "user")

	w, _ := doJSON(t, r, http.MethodPost, "/auth/logout", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, r, http.MethodGet, "/auth/sessions", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token must be rejected, got %d", w.Code)
	}
}

func TestListUsersEnvelope(t *testing.T) {
	r := setupTestApp(t)
	registerAndLogin(t, r, "alice", "alice@example.com", "user")
	registerAndLogin(t, r, "bob", "bob@example.com", "user")

	w, body := doJSON(t, r, http.MethodGet, "/users", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := body["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("expected 2 users in data envelope, got %s", w.Body.String())
	}
}
