package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/db"
	"github.com/inkshelf/internal/handler"
	"github.com/inkshelf/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouterTest(t *testing.T, name string) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:router-%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	api := handler.NewAPI(gdb, nil, t.TempDir(), "/uploads")
	r := SetupRouter(api, t.TempDir(), "/uploads")
	return r, gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerRouterUser(t *testing.T, gdb *gorm.DB, username string) string {
	t.Helper()
	_, key, err := service.NewUserService(gdb).Register(service.RegisterInput{
		Username: username,
		Password: "Pass123!word",
	})
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return key
}

func TestPingRoute(t *testing.T) {
	r, _, cleanup := setupRouterTest(t, "ping")
	defer cleanup()

	w := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestWriteRoutesRequireToken(t *testing.T) {
	r, _, cleanup := setupRouterTest(t, "auth-required")
	defer cleanup()

	w := doJSON(t, r, http.MethodPost, "/api/books/create/", "", gin.H{"title": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/books/create/", "not-a-token", gin.H{"title": "x"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestReadRoutesArePublic(t *testing.T) {
	r, _, cleanup := setupRouterTest(t, "public-read")
	defer cleanup()

	for _, target := range []string{"/api/books/", "/api/authors/", "/api/posts/", "/api/tags/"} {
		w := doJSON(t, r, http.MethodGet, target, "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d: %s", target, w.Code, w.Body.String())
		}
	}
}

func TestBookFlowThroughRouter(t *testing.T) {
	r, gdb, cleanup := setupRouterTest(t, "book-flow")
	defer cleanup()

	token := registerRouterUser(t, gdb, "librarian")

	w := doJSON(t, r, http.MethodPost, "/api/authors/create/", token, gin.H{"name": "N. K. Jemisin"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create author: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Author struct {
			ID uint `json:"id"`
		} `json:"author"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode author response: %v", err)
	}

	w = doJSON(t, r, http.MethodPost, "/api/books/create/", token, gin.H{
		"title":            "The Fifth Season",
		"publication_year": 2015,
		"author":           created.Author.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create book: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/books/?search=fifth", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search books: expected 200, got %d", w.Code)
	}
	var page struct {
		Count   int64                    `json:"count"`
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode book page: %v", err)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("expected one search hit, got %s", w.Body.String())
	}
}

func TestPostOwnershipThroughRouter(t *testing.T) {
	r, gdb, cleanup := setupRouterTest(t, "post-ownership")
	defer cleanup()

	ownerToken := registerRouterUser(t, gdb, "owner")
	intruderToken := registerRouterUser(t, gdb, "intruder")

	w := doJSON(t, r, http.MethodPost, "/api/posts/create/", ownerToken, gin.H{
		"title":   "Protected",
		"content": "hands off",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Post struct {
			ID uint `json:"id"`
		} `json:"post"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode post response: %v", err)
	}

	target := fmt.Sprintf("/api/posts/%d/update/", created.Post.ID)
	w = doJSON(t, r, http.MethodPut, target, intruderToken, gin.H{
		"title":   "Hijacked",
		"content": "gotcha",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non owner, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, target, ownerToken, gin.H{
		"title":   "Still Mine",
		"content": "hands off",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d: %s", w.Code, w.Body.String())
	}
}
