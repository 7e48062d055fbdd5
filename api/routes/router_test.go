package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gearmarket-web/internal/auth"
	"github.com/angelmondragon/gearmarket-web/internal/drafts"
	"github.com/angelmondragon/gearmarket-web/internal/gears"
	"github.com/angelmondragon/gearmarket-web/internal/uploads"
	"github.com/angelmondragon/gearmarket-web/pkg/apiclient"
	"github.com/angelmondragon/gearmarket-web/pkg/auth/session"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/angelmondragon/gearmarket-web/pkg/metrics"
	redisclient "github.com/angelmondragon/gearmarket-web/pkg/redis"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type marketplace struct {
	t        *testing.T
	mu       sync.Mutex
	created  map[string][]string
	bearers  []string
	deletedI []string
}

func (m *marketplace) token() string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":   "u1",
		"email":    "player@example.com",
		"nickname": "bassist",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("upstream"))
	require.NoError(m.t, err)
	return token
}

func (m *marketplace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.bearers = append(m.bearers, r.Header.Get("Authorization"))
	m.mu.Unlock()

	switch {
	case r.URL.Path == "/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct-horse" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"userId":"u1","email":"player@example.com","nickname":"bassist","verified":true,"token":"`+m.token()+`","refreshToken":"r1"}`)
	case r.URL.Path == "/auth/logout":
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	case r.URL.Path == "/trade/gears" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, `{"gears":[{"id":4,"title":"Strat","price":1250000,"category":"instrument","subCategory":"guitar","status":"Selling","region":"Seoul","images":{"urls":["gears/4/a.jpg"]},"createdAt":"2024-06-15T09:00:00Z"}],"totalCount":41,"page":2,"pageSize":20,"totalPages":3}`)
	case r.URL.Path == "/trade/gears" && r.Method == http.MethodPost:
		require.NoError(m.t, r.ParseMultipartForm(1<<20))
		m.mu.Lock()
		m.created = r.MultipartForm.Value
		m.mu.Unlock()
		writeJSON(w, http.StatusCreated, `{"id":77,"title":"Strat"}`)
	case r.URL.Path == "/trade/gears/4" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, `{"id":4,"title":"Strat","description":"**mint**","tradeMethod":"Direct","isAuthor":true}`)
	case r.URL.Path == "/trade/gears/9":
		writeJSON(w, http.StatusNotFound, `{"code":"NOT_FOUND","message":"Gear not found"}`)
	default:
		writeJSON(w, http.StatusNotFound, `{"message":"no route"}`)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

type harness struct {
	server *httptest.Server
	client *http.Client
	market *marketplace
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	market := &marketplace{t: t}
	upstream := httptest.NewServer(market)
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		App:      config.AppConfig{Env: "test"},
		Upstream: config.UpstreamConfig{BaseURL: upstream.URL, Timeout: 2 * time.Second},
		Storage:  config.StorageConfig{PublicBaseURL: "https://cdn.example.com", AssetVersion: "7"},
		Session:  config.SessionConfig{CookieName: "gm_session", TTL: time.Hour, RefreshSkew: time.Minute},
		Drafts:   config.DraftsConfig{TTL: time.Hour, LockTTL: time.Second},
		Uploads:  config.UploadsConfig{MaxFiles: 3, MaxFileBytes: 1 << 20},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:  time.Minute,
			LoginIPLimit: 3,
		},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	galleryMetrics := metrics.NewGalleryMetrics(reg)

	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	rdb := redisclient.Wrap(raw)

	api, err := apiclient.New(cfg.Upstream, apiclient.WithMetrics(metrics.NewUpstreamMetrics(reg)))
	require.NoError(t, err)

	tax, err := gears.LoadTaxonomy()
	require.NoError(t, err)
	images := gears.ImageResolver{BaseURL: cfg.Storage.PublicBaseURL, AssetVersion: cfg.Storage.AssetVersion}
	gearClient, err := gears.NewClient(api)
	require.NoError(t, err)
	gearService, err := gears.NewService(gears.ServiceParams{API: gearClient, Taxonomy: tax, Images: images, Metrics: galleryMetrics, Logger: logg})
	require.NoError(t, err)

	sessions, err := session.NewManager(rdb, cfg.Session)
	require.NoError(t, err)
	authClient, err := auth.NewClient(api)
	require.NoError(t, err)
	authService, err := auth.NewService(auth.ServiceParams{API: authClient, Sessions: sessions, Logger: logg})
	require.NoError(t, err)

	store, err := drafts.NewStore(rdb, cfg.Drafts)
	require.NoError(t, err)
	draftService, err := drafts.NewService(drafts.ServiceParams{
		Store:    store,
		Gears:    gearClient,
		Taxonomy: tax,
		Images:   images,
		Tokens:   authService,
		Limits:   uploads.Limits{MaxFiles: cfg.Uploads.MaxFiles, MaxFileBytes: cfg.Uploads.MaxFileBytes},
		Metrics:  galleryMetrics,
		Logger:   logg,
	})
	require.NoError(t, err)

	handler := NewRouter(Params{
		Config:         cfg,
		Logger:         logg,
		Redis:          rdb,
		Sessions:       sessions,
		AuthService:    authService,
		GearService:    gearService,
		DraftService:   draftService,
		Gatherer:       reg,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		GalleryMetrics: galleryMetrics,
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{server: server, client: &http.Client{Jar: jar}, market: market}
}

func (h *harness) do(t *testing.T, method, path, contentType string, body io.Reader) (int, []byte, http.Header) {
	t.Helper()
	req, err := http.NewRequest(method, h.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, payload, resp.Header
}

func (h *harness) json(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	status, payload, _ := h.do(t, method, path, "application/json", reader)
	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out), string(payload))
	return status, out
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	status, out := h.json(t, http.MethodPost, "/api/v1/auth/login", `{"email":"player@example.com","password":"correct-horse","redirectTo":"//evil.example.com"}`)
	require.Equal(t, http.StatusOK, status, out)
	data := out["data"].(map[string]any)
	assert.Equal(t, "/", data["redirectTo"])
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	status, out := h.json(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", out["data"].(map[string]any)["status"])

	status, _, _ = h.do(t, http.MethodGet, "/api/v1/gears/4", "", nil)
	require.Equal(t, http.StatusOK, status)

	status, body, _ := h.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `route="/api/v1/gears/{gearId}"`)
	assert.Contains(t, string(body), "upstream_request_duration_seconds")
	assert.Contains(t, string(body), `markup_conversions_total{direction="markdown_to_html"} 1`)
}

func TestPublicRoutes(t *testing.T) {
	h := newHarness(t)

	status, out := h.json(t, http.MethodGet, "/api/v1/taxonomy", "")
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, out["data"].(map[string]any)["categories"])

	status, out = h.json(t, http.MethodGet, "/api/v1/gears?page=2&category=instrument", "")
	require.Equal(t, http.StatusOK, status, out)
	items := out["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "https://cdn.example.com/gears/4/a.jpg?v=7", items[0].(map[string]any)["coverUrl"])
	assert.Equal(t, map[string]any{"page": float64(2), "pageSize": float64(20), "totalCount": float64(41), "totalPages": float64(3)}, out["meta"])

	status, out = h.json(t, http.MethodGet, "/api/v1/gears/9", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "게시글이 존재하지 않거나 삭제되었습니다.", out["error"].(map[string]any)["message"])

	status, out = h.json(t, http.MethodPost, "/api/v1/markup/html", `{"markdown":"**bold**"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "<p><strong>bold</strong></p>", out["data"].(map[string]any)["html"])

	status, out = h.json(t, http.MethodPost, "/api/v1/markup/markdown", `{"html":"<p><strong>bold</strong></p>"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "**bold**", out["data"].(map[string]any)["markdown"])
}

func TestSessionRoutesRequireLogin(t *testing.T) {
	h := newHarness(t)

	status, out := h.json(t, http.MethodPost, "/api/v1/drafts", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "로그인이 필요합니다.", out["error"].(map[string]any)["message"])

	status, _ = h.json(t, http.MethodDelete, "/api/v1/gears/4", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = h.json(t, http.MethodGet, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	status, out := h.json(t, http.MethodGet, "/api/v1/auth/me", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bassist", out["data"].(map[string]any)["nickname"])

	status, out = h.json(t, http.MethodGet, "/api/v1/gears/4", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["data"].(map[string]any)["isAuthor"])
	assert.Contains(t, h.market.bearers[len(h.market.bearers)-1], "Bearer ")

	status, _ = h.json(t, http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = h.json(t, http.MethodGet, "/api/v1/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginIsRateLimited(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		status, _ := h.json(t, http.MethodPost, "/api/v1/auth/login", `{"email":"player@example.com","password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, status)
	}
	status, out := h.json(t, http.MethodPost, "/api/v1/auth/login", `{"email":"player@example.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", out["error"].(map[string]any)["code"])
}

func TestDraftEditorFlow(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	status, out := h.json(t, http.MethodPost, "/api/v1/drafts", "")
	require.Equal(t, http.StatusCreated, status, out)
	draftID := out["data"].(map[string]any)["id"].(string)
	base := "/api/v1/drafts/" + draftID

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"first.png", "second.png"} {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	status, body, _ := h.do(t, http.MethodPost, base+"/images", mw.FormDataContentType(), &buf)
	require.Equal(t, http.StatusOK, status, string(body))
	var attached struct {
		Data struct {
			Accepted []struct {
				ID string `json:"id"`
			} `json:"accepted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &attached))
	require.Len(t, attached.Data.Accepted, 2)
	first, second := attached.Data.Accepted[0].ID, attached.Data.Accepted[1].ID

	status, body, headers := h.do(t, http.MethodGet, base+"/images/"+first+"/preview", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "image/png", headers.Get("Content-Type"))
	assert.Equal(t, pngBytes, body)

	status, out = h.json(t, http.MethodGet, base+"/images/"+first+"/preview?format=dataurl", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, out["data"].(map[string]any)["dataUrl"], "data:image/png;base64,")

	status, out = h.json(t, http.MethodPost, base+"/reorder", `{"from":1,"to":0}`)
	require.Equal(t, http.StatusOK, status, out)
	slots := out["data"].(map[string]any)["slots"].([]any)
	require.Len(t, slots, 2)
	assert.Equal(t, second, slots[0].(map[string]any)["item"].(map[string]any)["id"])

	status, out = h.json(t, http.MethodPut, base+"/representative", `{"itemId":"`+first+`"}`)
	require.Equal(t, http.StatusOK, status, out)

	status, out = h.json(t, http.MethodPost, base+"/drag/cancel", "")
	require.Equal(t, http.StatusOK, status, out)

	form := `{"title":"Strat","description":"<h2>Title</h2><p>Hello <strong>world</strong> and more text</p>","price":"900000",` +
		`"category":"instrument","subCategory":"guitar","detailCategory":"electric","condition":"Good","tradeMethod":"Direct","region":"Seoul","status":"Selling"}`
	status, out = h.json(t, http.MethodPost, base+"/submit", form)
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, float64(77), out["data"].(map[string]any)["id"])

	h.market.mu.Lock()
	created := h.market.created
	h.market.mu.Unlock()
	assert.Equal(t, []string{"1"}, created["mainImageIndex"])

	status, _ = h.json(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, status)
}
