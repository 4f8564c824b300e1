package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aescanero/demo-backend/internal/application/catalog"
	"github.com/aescanero/demo-backend/pkg/adapters/downstream"
	"github.com/aescanero/demo-backend/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/demo-backend/pkg/adapters/storage/memory"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testOptions struct {
	seed     bool
	dbURL    string
	maxBody  int64
	rateRPS  float64
	timeouts time.Duration
}

func newTestServer(t *testing.T, opts testOptions) *Server {
	t.Helper()

	reg := promclient.NewRegistry()
	metrics := prometheus.NewCollector(reg)
	logger := zap.NewNop()

	svc := catalog.NewService(memory.NewStore(), nil, metrics, logger)
	if opts.seed {
		require.NoError(t, svc.Seed(context.Background()))
	}

	dbURL := opts.dbURL
	if dbURL == "" {
		dbURL = "http://127.0.0.1:1"
	}
	timeout := opts.timeouts
	if timeout == 0 {
		timeout = 2 * time.Second
	}

	return NewServer(&Config{
		Addr:           ":0",
		Environment:    "test",
		Catalog:        svc,
		Database:       downstream.NewClient(&downstream.Config{BaseURL: dbURL, Logger: logger}),
		StatusTimeout:  timeout,
		QueryTimeout:   timeout,
		QueryRateLimit: opts.rateRPS,
		QueryBurst:     1,
		MaxBodyBytes:   opts.maxBody,
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         logger,
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func closedServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestHealthIsAlwaysHealthy(t *testing.T) {
	s := newTestServer(t, testOptions{dbURL: closedServerURL(t)})

	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))
	assert.JSONEq(t, `{"status":"healthy","service":"demo-backend","environment":"test"}`, w.Body.String())
}

func TestServerListensOnConfiguredAddr(t *testing.T) {
	s := newTestServer(t, testOptions{})
	assert.Equal(t, ":0", s.server.Addr)
}

func TestReadyAndWrite(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","service":"demo-backend"}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/write", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"msg":"Data written to Demo-Backend"}`, w.Body.String())
}

func TestListUsersSeeded(t *testing.T) {
	s := newTestServer(t, testOptions{seed: true})

	w := do(t, s, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body UserListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "demo-backend", body.Source)
	assert.Equal(t, "John Doe", body.Users[0].Name)
}

func TestListEmptyCollectionsRenderArrays(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0,"source":"demo-backend"}`, w.Body.String())
}

func TestGetUser(t *testing.T) {
	s := newTestServer(t, testOptions{seed: true})

	w := do(t, s, http.MethodGet, "/api/users/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Jane Smith","email":"jane@example.com","role":"user"}`, w.Body.String())

	for _, id := range []string{"99", "0", "abc", "-1", "+2", "1.5"} {
		w = do(t, s, http.MethodGet, "/api/users/"+id, "")
		assert.Equal(t, http.StatusNotFound, w.Code, id)
		assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String(), id)
	}
}

func TestGetItemNotFound(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodGet, "/api/items/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Item not found"}`, w.Body.String())
}

func TestCreateUserWithDefaults(t *testing.T) {
	s := newTestServer(t, testOptions{seed: true})

	w := do(t, s, http.MethodPost, "/api/users", `{}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":4,"name":"Unknown","email":"","role":"user"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/users", `{"NAME":"Bob","Email":"bob@example.com","role":null}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":5,"name":"Unknown","email":"","role":"user"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/users", `{"name":123,"email":"n@example.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":6,"name":"Unknown","email":"n@example.com","role":"user"}`, w.Body.String())
}

func TestCreateUserGrowsStoreByOne(t *testing.T) {
	s := newTestServer(t, testOptions{})

	for want := 1; want <= 3; want++ {
		w := do(t, s, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com","role":"admin"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var u struct{ ID int }
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
		assert.Equal(t, want, u.ID)

		var list UserListResponse
		require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/api/users", "").Body.Bytes(), &list))
		assert.Equal(t, want, list.Count)
	}
}

func TestCreateItemOnEmptyStore(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodPost, "/api/items", `{"name":"Widget","price":9.99,"category":"tools"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"Widget","price":9.99,"category":"tools"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/items", `{"name":"Bare"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Bare","price":0,"category":"general"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/items", `{"PRICE":5,"Category":"x"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":3,"name":"Unknown","price":0,"category":"general"}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/items", `{"name":"Cheap","price":"cheap"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":4,"name":"Cheap","price":0,"category":"general"}`, w.Body.String())
}

func TestCreateRejectsMissingOrInvalidBody(t *testing.T) {
	s := newTestServer(t, testOptions{})

	bodies := []string{"", "not json", "null", "[1,2]", `"text"`, `{"name":`}
	for _, path := range []string{"/api/users", "/api/items"} {
		for _, body := range bodies {
			w := do(t, s, http.MethodPost, path, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "%s %q", path, body)
			assert.JSONEq(t, `{"error":"No data provided"}`, w.Body.String())
		}
	}

	var list ItemListResponse
	require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/api/items", "").Body.Bytes(), &list))
	assert.Equal(t, 0, list.Count)
}

func TestCreateRejectsOversizedBody(t *testing.T) {
	s := newTestServer(t, testOptions{maxBody: 16})

	w := do(t, s, http.MethodPost, "/api/users", `{"name":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDBStatusConnected(t *testing.T) {
	db := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer db.Close()

	s := newTestServer(t, testOptions{dbURL: db.URL})
	w := do(t, s, http.MethodGet, "/db/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"connected","database_url":"`+db.URL+`"}`, w.Body.String())
}

func TestDBStatusEchoesConfiguredURL(t *testing.T) {
	db := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer db.Close()

	s := newTestServer(t, testOptions{dbURL: db.URL + "/"})
	w := do(t, s, http.MethodGet, "/db/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"connected","database_url":"`+db.URL+`/"}`, w.Body.String())
}

func TestDBStatusNon200IsUnknown(t *testing.T) {
	db := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer db.Close()

	s := newTestServer(t, testOptions{dbURL: db.URL})
	w := do(t, s, http.MethodGet, "/db/status", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"unknown"}`, w.Body.String())
}

func TestDBStatusUnreachable(t *testing.T) {
	s := newTestServer(t, testOptions{dbURL: closedServerURL(t)})

	w := do(t, s, http.MethodGet, "/db/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "disconnected", body["status"])
	assert.NotEmpty(t, body["error"])
}

func TestDBStatusTimeout(t *testing.T) {
	db := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer db.Close()

	s := newTestServer(t, testOptions{dbURL: db.URL, timeouts: 50 * time.Millisecond})
	w := do(t, s, http.MethodGet, "/db/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDBQueryRelaysDownstream(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	db := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		received = append(received, string(body))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"rows":[{"id":1}],"took_ms":3}`))
	}))
	defer db.Close()

	s := newTestServer(t, testOptions{dbURL: db.URL})

	w := do(t, s, http.MethodPost, "/api/db/query", `{"sql": "select * from t"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"rows":[{"id":1}],"took_ms":3}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/db/query", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	w = do(t, s, http.MethodPost, "/api/db/query", "garbage")
	assert.Equal(t, http.StatusAccepted, w.Code)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 3)
	assert.JSONEq(t, `{"sql":"select * from t"}`, received[0])
	assert.Equal(t, `{}`, received[1])
	assert.Equal(t, `{}`, received[2])
}

func TestDBQueryRelaysErrorStatus(t *testing.T) {
	db := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"syntax error"}`))
	}))
	defer db.Close()

	s := newTestServer(t, testOptions{dbURL: db.URL})
	w := do(t, s, http.MethodPost, "/api/db/query", `{"sql":"selec"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"syntax error"}`, w.Body.String())
}

func TestDBQueryFailures(t *testing.T) {
	notJSON := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer notJSON.Close()

	for name, url := range map[string]string{
		"invalid json": notJSON.URL,
		"unreachable":  closedServerURL(t),
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t, testOptions{dbURL: url})
			w := do(t, s, http.MethodPost, "/api/db/query", `{"q":1}`)
			assert.Equal(t, http.StatusInternalServerError, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestDBQueryRateLimit(t *testing.T) {
	db := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer db.Close()

	s := newTestServer(t, testOptions{dbURL: db.URL, rateRPS: 0.001})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/db/query", `{}`).Code)
	w := do(t, s, http.MethodPost, "/api/db/query", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

	w = do(t, s, http.MethodDelete, "/api/users", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, testOptions{})

	w := do(t, s, http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, testOptions{})

	req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
	req.Header.Set("Origin", "https://ui.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testOptions{})
	do(t, s, http.MethodGet, "/health", "")

	w := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `demo_backend_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestQueryPayload(t *testing.T) {
	cases := map[string]string{
		"":                    `{}`,
		"   ":                 `{}`,
		"nope":                `{}`,
		"null":                `{}`,
		"false":               `{}`,
		"0":                   `{}`,
		`""`:                  `{}`,
		"[]":                  `{}`,
		"{}":                  `{}`,
		`{ "a" : 1 }`:         `{"a":1}`,
		`[1, 2]`:              `[1,2]`,
		`"select 1"`:          `"select 1"`,
		`{"nested":{"b":[]}}`: `{"nested":{"b":[]}}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, string(queryPayload([]byte(in))), "input %q", in)
	}
}
