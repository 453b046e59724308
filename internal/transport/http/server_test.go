package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/bootstrap"
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/model"
	"foodgram/internal/pkg/jwtutil"
	"foodgram/internal/storage"
	"foodgram/internal/testutil"
)

const (
	testSecret = "api-test-secret"
	testImage  = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR4nGMAAQAABQABDQottAAAAABJRU5ErkJggg=="
)

type testImages struct {
	mu      sync.Mutex
	next    int
	deleted []string
}

func (m *testImages) SaveImage(_ context.Context, prefix, dataURI string) (string, error) {
	if _, err := storage.DecodeDataURI(dataURI); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("http://media.test/%s/%d.png", prefix, m.next), nil
}

func (m *testImages) DeleteImage(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return nil
}

type apiHarness struct {
	t      *testing.T
	db     *gorm.DB
	images *testImages
	router *gin.Engine
}

func newHarness(t *testing.T) *apiHarness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := testutil.NewDB(t)
	images := &testImages{}
	app := &bootstrap.App{
		Config: &config.Config{
			App:  config.AppConfig{Env: "test", GinMode: gin.TestMode, PublicURL: "http://foodgram.test"},
			Auth: config.AuthConfig{JWTSecret: testSecret, JWTExpireMinute: 60},
			HTTP: config.HTTPConfig{CORSOrigins: []string{"http://localhost:3000"}, DefaultPageSize: 6},
		},
		DB:        db,
		Redis:     client,
		Tokens:    cache.NewTokenBlacklist(client),
		Images:    images,
		StartedAt: time.Now(),
	}
	return &apiHarness{t: t, db: db, images: images, router: NewRouter(app)}
}

func (h *apiHarness) token(user *model.User) string {
	h.t.Helper()
	token, err := jwtutil.GenerateToken(testSecret, time.Hour, user.ID, user.Username)
	require.NoError(h.t, err)
	return token
}

func (h *apiHarness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthzReportsConfiguredDependencies(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Dependencies map[string]struct {
			OK bool `json:"ok"`
		} `json:"dependencies"`
	}](t, rec)
	assert.Len(t, body.Dependencies, 2)
	assert.True(t, body.Dependencies["database"].OK)
	assert.True(t, body.Dependencies["redis"].OK)
}

func TestMetricsEndpointExposesRequestCounters(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/api/tags/", "", nil)

	rec := h.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "foodgram_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/recipes/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownIDIsNotFound(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/recipes/abc/", "/api/recipes/999/", "/api/tags/0/", "/api/users/42/"} {
		rec := h.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"detail":"Not found."}`, rec.Body.String(), path)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h := newHarness(t)
	breakfast := testutil.CreateTag(t, h.db, "Breakfast", "breakfast")
	testutil.CreateIngredient(t, h.db, "sugar", "g")
	salt := testutil.CreateIngredient(t, h.db, "salt", "pinch")
	testutil.CreateIngredient(t, h.db, "Saffron", "g")

	rec := h.do(http.MethodGet, "/api/tags/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Breakfast","slug":"breakfast"}]`, rec.Body.String())

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/tags/%d/", breakfast.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/ingredients/?name=sa", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	names := decode[[]struct {
		Name string `json:"name"`
	}](t, rec)
	require.Len(t, names, 2)

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/ingredients/%d/", salt.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"salt","measurement_unit":"pinch"}`, salt.ID), rec.Body.String())
}
