package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkshelf/internal/db"
	"github.com/inkshelf/internal/handler"
	"github.com/inkshelf/internal/router"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler http.Handler
	gdb     *gorm.DB
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	api := handler.NewAPI(gdb, nil, t.TempDir(), "/uploads")
	r := router.SetupRouter(api, t.TempDir(), "/uploads")

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return &e2eSuite{handler: r, gdb: gdb}
}

// do 发起一次 JSON 请求并解析响应
func (s *e2eSuite) do(t *testing.T, method, target, token string, body interface{}) (int, map[string]interface{}) {
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
	s.handler.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode %s %s response %q: %v", method, target, w.Body.String(), err)
		}
	}
	return w.Code, decoded
}

func idFrom(t *testing.T, body map[string]interface{}, key string) uint {
	t.Helper()
	entity, ok := body[key].(map[string]interface{})
	if !ok {
		t.Fatalf("missing %q in response: %v", key, body)
	}
	id, ok := entity["id"].(float64)
	if !ok {
		t.Fatalf("missing id in %q: %v", key, entity)
	}
	return uint(id)
}

func TestAPILifecycle(t *testing.T) {
	s := newE2ESuite(t)

	// 注册两个用户
	code, body := s.do(t, http.MethodPost, "/api/auth/register/", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Pass123!word",
	})
	if code != http.StatusCreated {
		t.Fatalf("register alice: expected 201, got %d: %v", code, body)
	}
	aliceToken := body["token"].(string)

	code, body = s.do(t, http.MethodPost, "/api/auth/register/", "", gin.H{
		"username": "bob",
		"password": "Pass123!word",
	})
	if code != http.StatusCreated {
		t.Fatalf("register bob: expected 201, got %d: %v", code, body)
	}
	bobToken := body["token"].(string)

	// 登录会签发新的 Token，旧 Token 仍然有效
	code, body = s.do(t, http.MethodPost, "/api/auth/login/", "", gin.H{
		"username": "alice",
		"password": "Pass123!word",
	})
	if code != http.StatusOK {
		t.Fatalf("login alice: expected 200, got %d: %v", code, body)
	}
	aliceLoginToken := body["token"].(string)
	if aliceLoginToken == aliceToken {
		t.Fatal("login must issue a fresh token")
	}

	// 书架:作者与书籍
	code, body = s.do(t, http.MethodPost, "/api/authors/create/", aliceToken, gin.H{"name": "Stanisław Lem"})
	if code != http.StatusCreated {
		t.Fatalf("create author: expected 201, got %d: %v", code, body)
	}
	authorID := idFrom(t, body, "author")

	for title, year := range map[string]int{"Solaris": 1961, "The Cyberiad": 1965, "Fiasco": 1986} {
		code, body = s.do(t, http.MethodPost, "/api/books/create/", aliceToken, gin.H{
			"title":            title,
			"publication_year": year,
			"author":           authorID,
		})
		if code != http.StatusCreated {
			t.Fatalf("create book %s: expected 201, got %d: %v", title, code, body)
		}
	}

	// 未来年份被拒绝
	code, body = s.do(t, http.MethodPost, "/api/books/create/", aliceToken, gin.H{
		"title":            "From The Future",
		"publication_year": time.Now().Year() + 1,
		"author":           authorID,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("future year: expected 400, got %d: %v", code, body)
	}

	// 范围过滤为闭区间
	code, body = s.do(t, http.MethodGet, "/api/books/?publication_year__gte=1961&publication_year__lte=1965", "", nil)
	if code != http.StatusOK {
		t.Fatalf("filter books: expected 200, got %d", code)
	}
	if int(body["count"].(float64)) != 2 {
		t.Fatalf("expected 2 books in range, got %v", body["count"])
	}

	// 搜索作者名也能命中
	code, body = s.do(t, http.MethodGet, "/api/books/?search=lem&ordering=-publication_year", "", nil)
	if code != http.StatusOK || int(body["count"].(float64)) != 3 {
		t.Fatalf("search by author: expected 3 hits, got %d: %v", code, body)
	}
	results := body["results"].([]interface{})
	first := results[0].(map[string]interface{})
	if first["title"] != "Fiasco" {
		t.Fatalf("expected newest book first, got %v", first["title"])
	}

	// 博客:发文、评论与权限
	code, body = s.do(t, http.MethodPost, "/api/posts/create/", aliceToken, gin.H{
		"title":   "On Reading Lem",
		"content": "# Notes\n\nfirst impressions",
		"tags":    []string{"books", "sci-fi"},
	})
	if code != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d: %v", code, body)
	}
	postID := idFrom(t, body, "post")

	code, body = s.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments/create/", postID), bobToken, gin.H{
		"content": "great write-up",
	})
	if code != http.StatusCreated {
		t.Fatalf("create comment: expected 201, got %d: %v", code, body)
	}
	commentID := idFrom(t, body, "comment")

	// Bob 不能改 Alice 的文章
	code, body = s.do(t, http.MethodPatch, fmt.Sprintf("/api/posts/%d/update/", postID), bobToken, gin.H{
		"title": "Hijacked",
	})
	if code != http.StatusForbidden {
		t.Fatalf("non owner update: expected 403, got %d: %v", code, body)
	}

	// Alice 不能删 Bob 的评论
	code, body = s.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d/delete/", commentID), aliceToken, nil)
	if code != http.StatusForbidden {
		t.Fatalf("non owner comment delete: expected 403, got %d: %v", code, body)
	}

	// 文章详情包含渲染后的内容与评论
	code, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/", postID), "", nil)
	if code != http.StatusOK {
		t.Fatalf("post detail: expected 200, got %d", code)
	}
	if body["content_html"] == nil || body["content_html"].(string) == "" {
		t.Fatalf("expected rendered content, got %v", body["content_html"])
	}
	comments := body["comments"].([]interface{})
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment in detail, got %d", len(comments))
	}

	// 标签过滤
	code, body = s.do(t, http.MethodGet, "/api/posts/?tag=sci-fi", "", nil)
	if code != http.StatusOK || int(body["count"].(float64)) != 1 {
		t.Fatalf("tag filter: expected 1 post, got %d: %v", code, body)
	}

	// 作者删除文章会连带清掉评论
	code, body = s.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d/delete/", postID), aliceToken, nil)
	if code != http.StatusOK {
		t.Fatalf("delete post: expected 200, got %d: %v", code, body)
	}
	var commentCount int64
	s.gdb.Unscoped().Model(&db.Comment{}).Where("post_id = ?", postID).Count(&commentCount)
	if commentCount != 0 {
		t.Fatalf("expected comments gone with the post, found %d", commentCount)
	}

	// 登出后 Token 失效,其余 Token 不受影响
	code, body = s.do(t, http.MethodPost, "/api/auth/logout/", aliceToken, nil)
	if code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %v", code, body)
	}
	code, _ = s.do(t, http.MethodPost, "/api/authors/create/", aliceToken, gin.H{"name": "Ghost"})
	if code != http.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401, got %d", code)
	}
	code, _ = s.do(t, http.MethodGet, "/api/auth/profile/", aliceLoginToken, nil)
	if code != http.StatusOK {
		t.Fatalf("surviving token: expected 200, got %d", code)
	}
}
