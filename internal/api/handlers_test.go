package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shared-clipboard/internal/logs"
	"shared-clipboard/internal/metrics"
	"shared-clipboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	server  *httptest.Server
	handler *Handler
	store   *store.Store
	clock   *fakeClock
	reg     *metrics.Registry
	logger  *logs.Logger
}

func setUpTestServer(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)}
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(50, logs.DEBUG)
	st := store.NewStore(reg, store.WithNow(clock.Now))

	h := NewHandler(st, reg, logger, opts...)

	mux := http.NewServeMux()
	server := httptest.NewServer(RegisterRoutes(mux, h))
	t.Cleanup(server.Close)

	return &testEnv{
		server:  server,
		handler: h,
		store:   st,
		clock:   clock,
		reg:     reg,
		logger:  logger,
	}
}

func (env *testEnv) post(t *testing.T, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(env.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (env *testEnv) list(t *testing.T, path string) []map[string]any {
	t.Helper()

	resp, err := http.Get(env.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

/* ---------------- POST /api/clipboard ---------------- */

func TestSubmitItem(t *testing.T) {
	env := setUpTestServer(t)

	t.Run("ValidRequest", func(t *testing.T) {
		resp, body := env.post(t, "/api/clipboard", `{"text":" hello "}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "hello", body["text"])
		assert.Equal(t, float64(env.clock.Now().UnixMilli()), body["id"])

		createdAt, err := time.Parse(time.RFC3339, body["createdAt"].(string))
		require.NoError(t, err)
		assert.True(t, createdAt.Equal(env.clock.Now()))

		items := env.list(t, "/api/clipboard")
		require.NotEmpty(t, items)
		assert.Equal(t, body["id"], items[0]["id"])
		assert.Equal(t, "hello", items[0]["text"])
		assert.Equal(t, body["createdAt"], items[0]["createdAt"])
	})

	rejected := map[string]string{
		"MissingText":   `{}`,
		"EmptyText":     `{"text":""}`,
		"Whitespace":    `{"text":"   "}`,
		"NonStringText": `{"text":123}`,
		"NullText":      `{"text":null}`,
		"InvalidJSON":   `{bad-json`,
		"ArrayBody":     `["hello"]`,
		"EmptyBody":     ``,
	}
	for name, payload := range rejected {
		t.Run(name, func(t *testing.T) {
			before := env.list(t, "/api/clipboard")

			resp, body := env.post(t, "/api/clipboard", payload)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, map[string]any{"success": false, "error": "empty text"}, body)
			assert.Equal(t, before, env.list(t, "/api/clipboard"))
		})
	}

	assert.Equal(t, int64(len(rejected)), env.reg.Get(metrics.RejectedTotal))
}

func TestSubmitItem_OversizedBody(t *testing.T) {
	env := setUpTestServer(t, WithMaxBodyBytes(16))

	resp, body := env.post(t, "/api/clipboard", `{"text":"this body is longer than sixteen bytes"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, map[string]any{"success": false, "error": "text too large"}, body)
	assert.Empty(t, env.list(t, "/api/clipboard"))
	assert.Equal(t, int64(1), env.reg.Get(metrics.RejectedTotal))

	resp, body = env.post(t, "/api/clipboard", `{"text":"fits"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fits", body["text"])
}

func TestSubmitItem_ItemsAlias(t *testing.T) {
	env := setUpTestServer(t)

	resp, _ := env.post(t, "/items", `{"text":"via alias"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	items := env.list(t, "/items")
	require.Len(t, items, 1)
	assert.Equal(t, "via alias", items[0]["text"])
}

/* ---------------- GET /api/clipboard ---------------- */

func TestListItems(t *testing.T) {
	t.Run("EmptyStoreIsEmptyArray", func(t *testing.T) {
		env := setUpTestServer(t)

		resp, err := http.Get(env.server.URL + "/api/clipboard")
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
	})

	t.Run("NewestFirst", func(t *testing.T) {
		env := setUpTestServer(t)

		for _, s := range []string{"s1", "s2", "s3"} {
			resp, _ := env.post(t, "/api/clipboard", `{"text":"`+s+`"}`)
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}

		items := env.list(t, "/api/clipboard")
		require.Len(t, items, 3)
		assert.Equal(t, "s3", items[0]["text"])
		assert.Equal(t, "s2", items[1]["text"])
		assert.Equal(t, "s1", items[2]["text"])

		assert.Equal(t, items, env.list(t, "/api/clipboard"), "repeated lists are identical")
	})

	t.Run("OnlyExposesPublicFields", func(t *testing.T) {
		env := setUpTestServer(t)
		env.post(t, "/api/clipboard", `{"text":"fields"}`)

		items := env.list(t, "/api/clipboard")
		require.Len(t, items, 1)
		assert.Len(t, items[0], 3)
		assert.Contains(t, items[0], "id")
		assert.Contains(t, items[0], "text")
		assert.Contains(t, items[0], "createdAt")
	})

	t.Run("ExpiredEntriesDisappear", func(t *testing.T) {
		env := setUpTestServer(t)

		_, body := env.post(t, "/api/clipboard", `{"text":"short lived"}`)
		require.Len(t, env.list(t, "/api/clipboard"), 1)

		env.clock.Advance(store.DefaultRetention)

		for _, item := range env.list(t, "/api/clipboard") {
			assert.NotEqual(t, body["id"], item["id"])
		}
	})
}

/* ---------------- Faults ---------------- */

func TestListItems_SerializationFailure(t *testing.T) {
	env := setUpTestServer(t)
	env.handler.encode = func(any) ([]byte, error) {
		return nil, errors.New("encoder exploded: secret detail")
	}

	resp, err := http.Get(env.server.URL + "/api/clipboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, string(raw))
	assert.NotContains(t, string(raw), "secret detail")

	assert.Equal(t, int64(1), env.reg.Get(metrics.HTTPInternalErrorsTotal))

	found := false
	for _, e := range env.logger.GetLast(50) {
		if e.Level == logs.ERROR && e.Message == "request failed" {
			found = true
			assert.Contains(t, e.Fields["error"], "secret detail")
		}
	}
	assert.True(t, found, "fault should be logged for operators")
}

type panickingStore struct{}

func (panickingStore) Submit(string) (store.Entry, error) { panic("submit exploded") }
func (panickingStore) List() []store.Entry                { panic("list exploded") }

type failingStore struct{}

func (failingStore) Submit(string) (store.Entry, error) { return store.Entry{}, errors.New("disk on fire") }
func (failingStore) List() []store.Entry                { return nil }

func TestHandlers_StoreFaults(t *testing.T) {
	t.Run("PanicBecomes500", func(t *testing.T) {
		reg := metrics.NewRegistry()
		logger := logs.NewLogger(10, logs.DEBUG)
		h := NewHandler(panickingStore{}, reg, logger)
		server := httptest.NewServer(RegisterRoutes(http.NewServeMux(), h))
		defer server.Close()

		resp, err := http.Get(server.URL + "/api/clipboard")
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, string(raw))
		assert.Equal(t, int64(1), reg.Get(metrics.HTTPPanicsTotal))

		// the access log still sees the recovered request
		assert.Equal(t, int64(1), reg.Get(metrics.HTTPRequestsTotal))
		entries := logger.GetLast(1)
		require.Len(t, entries, 1)
		assert.Equal(t, "request", entries[0].Message)
		assert.Equal(t, int64(http.StatusInternalServerError), entries[0].Fields["status"])
	})

	t.Run("SubmitErrorBecomes500", func(t *testing.T) {
		reg := metrics.NewRegistry()
		h := NewHandler(failingStore{}, reg, logs.NewLogger(10, logs.DEBUG))
		server := httptest.NewServer(RegisterRoutes(http.NewServeMux(), h))
		defer server.Close()

		resp, err := http.Post(server.URL+"/api/clipboard", "application/json", strings.NewReader(`{"text":"x"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.NotContains(t, string(raw), "disk on fire")
	})

	t.Run("NilListIsEmptyArray", func(t *testing.T) {
		h := NewHandler(failingStore{}, metrics.NewRegistry(), logs.NewLogger(10, logs.DEBUG))
		rr := httptest.NewRecorder()
		h.ListItems(rr, httptest.NewRequest(http.MethodGet, "/api/clipboard", nil))

		assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
	})
}

/* ---------------- GET /metrics ---------------- */

func TestGetMetrics(t *testing.T) {
	env := setUpTestServer(t)
	env.post(t, "/api/clipboard", `{"text":"counted"}`)

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, int64(1), data[string(metrics.SubmissionsTotal)])
	assert.Equal(t, int64(1), data[string(metrics.EntriesLive)])
}

func TestGetPrometheusMetrics(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		env := setUpTestServer(t)

		resp, err := http.Get(env.server.URL + "/metrics/prometheus")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Enabled", func(t *testing.T) {
		reg := metrics.NewRegistry()
		promReg, err := metrics.NewPrometheusRegistry(reg, "")
		require.NoError(t, err)

		h := NewHandler(store.NewStore(reg), reg, logs.NewLogger(10, logs.DEBUG), WithPrometheus(metrics.Handler(promReg)))
		server := httptest.NewServer(RegisterRoutes(http.NewServeMux(), h))
		defer server.Close()

		_, err = http.Post(server.URL+"/api/clipboard", "application/json", strings.NewReader(`{"text":"x"}`))
		require.NoError(t, err)

		resp, err := http.Get(server.URL + "/metrics/prometheus")
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), "clipboard_submissions_total 1")
	})
}

/* ---------------- GET /health ---------------- */

func TestGetHealth(t *testing.T) {
	env := setUpTestServer(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))

	assert.Equal(t, "OK", report["overall_status"])
	assert.Contains(t, report, "summary")
	assert.Contains(t, report, "live_entries")
	assert.Contains(t, report, "signals")
	assert.Contains(t, report, "recommendations")
}

/* ---------------- GET /admin/logs ---------------- */

func TestGetLogs(t *testing.T) {
	env := setUpTestServer(t)
	env.post(t, "/api/clipboard", `{"text":"logged"}`)

	t.Run("LastN", func(t *testing.T) {
		resp, err := http.Get(env.server.URL + "/admin/logs?n=1")
		require.NoError(t, err)
		defer resp.Body.Close()

		var entries []logs.Entry
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
		assert.Len(t, entries, 1)
	})

	t.Run("InvalidN", func(t *testing.T) {
		resp, err := http.Get(env.server.URL + "/admin/logs?n=abc")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

/* ---------------- Route validation ---------------- */

func TestRouteValidation(t *testing.T) {
	env := setUpTestServer(t)

	t.Run("MethodNotAllowed", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, env.server.URL+"/api/clipboard", bytes.NewBufferString(`{"text":"x"}`))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "method not allowed", body["error"])
		assert.Equal(t, "GET, POST", resp.Header.Get("Allow"))
	})

	t.Run("RequestIDAssigned", func(t *testing.T) {
		resp, err := http.Get(env.server.URL + "/api/clipboard")
		require.NoError(t, err)
		resp.Body.Close()
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	})

	t.Run("RequestIDPropagated", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/clipboard", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
	})
}
