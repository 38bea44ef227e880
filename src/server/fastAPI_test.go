package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"spread-observer/src/cache"
	"spread-observer/src/logger"
	"spread-observer/src/models"
	"spread-observer/src/monitor"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeed struct{}

func (stubFeed) FetchRealtime(_ context.Context, codes []string) models.MFetchResult[map[string]models.MQuote] {
	out := map[string]models.MQuote{}
	for _, c := range codes {
		out[c] = models.MQuote{Code: c, Name: "N" + c, Price: 1, Valid: true}
	}
	return models.OK(out)
}

func (stubFeed) FetchIntraday(context.Context, string) models.MFetchResult[[]models.MTimePoint] {
	return models.OK([]models.MTimePoint{})
}

func (stubFeed) FetchFiveDay(context.Context, string) models.MFetchResult[[]models.MTimePoint] {
	return models.OK([]models.MTimePoint{})
}

type memoryStore struct {
	mu      sync.Mutex
	pair    models.MTrackedPair
	saveErr error
}

func (m *memoryStore) Initialize() error { return nil }
func (m *memoryStore) Close() error      { return nil }
func (m *memoryStore) LoadPair(context.Context) (models.MTrackedPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair, nil
}
func (m *memoryStore) SavePair(_ context.Context, pair models.MTrackedPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.pair = pair
	return nil
}

func newTestServer(t *testing.T) (*FastAPIServer, *memoryStore) {
	t.Helper()
	log := logger.NewSilentLogger("server-test")
	cfg := &models.MConfig{Host: "127.0.0.1", Port: 5000, LogLevel: "info"}
	session := monitor.NewSession(cfg, stubFeed{}, cache.NewHistoryCache(time.Minute, log), log)
	store := &memoryStore{}
	s := NewFastAPIServer(cfg, session, store, log)
	t.Cleanup(func() { s.Stop() })
	return s, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// -----------------------------------------------------------------------------

func TestGetData_Unconfigured(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s.Handler(), http.MethodGet, "/api/get-data", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, string(body["stock1"]), monitor.NameNotConfigured)
	assert.Contains(t, string(body["index1"]), "上证指数")
	assert.JSONEq(t, `"unconfigured"`, string(body["state"]))
}

func TestUpdateStocks_Validation(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s.Handler(), http.MethodPost, "/api/update-stocks", `{"stock1":"600000","stock2":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s.Handler(), http.MethodPost, "/api/update-stocks", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.False(t, store.pair.IsConfigured())
	assert.Equal(t, models.StateUnconfigured, s.Session.State())
}

func TestUpdateStocks_PersistsAndActivates(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s.Handler(), http.MethodPost, "/api/update-stocks", `{"stock1":"600000","stock2":"000001"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	want := models.MTrackedPair{CodeA: "sh600000", CodeB: "sz000001"}
	assert.Equal(t, want, store.pair)
	assert.Equal(t, want, s.Session.Pair())

	rec = do(t, s.Handler(), http.MethodGet, "/api/config", "")
	assert.JSONEq(t, `{"stock1":"sh600000","stock2":"sz000001"}`, rec.Body.String())

	rec = do(t, s.Handler(), http.MethodGet, "/api/get-data", "")
	var snap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.JSONEq(t, `"active"`, string(snap["state"]))
	assert.Contains(t, string(snap["stock2"]), "Nsz000001")
}

func TestUpdateStocks_StoreFailureKeepsSession(t *testing.T) {
	s, store := newTestServer(t)
	store.saveErr = errors.New("disk full")

	rec := do(t, s.Handler(), http.MethodPost, "/api/config", `{"stock1":"600000","stock2":"000001"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, models.StateUnconfigured, s.Session.State())
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s.Handler(), http.MethodGet, "/api/get-data", "")

	rec := do(t, s.Handler(), http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.NotZero(t, health["latest_update"])

	rec = do(t, s.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spread_observer_snapshot_duration_seconds")
}

func TestWebSocket_ReceivesSnapshot(t *testing.T) {
	s, _ := newTestServer(t)
	go s.handleWebsockets()

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := http.Post(srv.URL+"/api/update-stocks", "application/json",
		bytes.NewBufferString(`{"stock1":"600000","stock2":"000001"}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/get-data")
	require.NoError(t, err)
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var pushed map[string]json.RawMessage
	require.NoError(t, conn.ReadJSON(&pushed))
	assert.JSONEq(t, `"active"`, string(pushed["state"]))
	assert.Contains(t, pushed, "index8")
}

func TestHandleClientMessage_LatestReplaysThroughHub(t *testing.T) {
	s, _ := newTestServer(t)
	go s.handleWebsockets()
	defer s.Stop()

	client := &Client{hub: s, send: make(chan *models.MSnapshot, 4)}
	s.register <- client

	snap := monitor.UnconfiguredPayload()
	s.stateMutex.Lock()
	s.latestState = snap
	s.stateMutex.Unlock()

	s.HandleClientMessage(client, []byte(`{"command":"latest"}`))

	select {
	case got := <-client.send:
		assert.Same(t, snap, got)
	case <-time.After(2 * time.Second):
		t.Fatal("latest snapshot was not replayed")
	}
}

func TestHandleClientMessage_LatestAfterDropIsIgnored(t *testing.T) {
	s, _ := newTestServer(t)
	go s.handleWebsockets()
	defer s.Stop()

	s.stateMutex.Lock()
	s.latestState = monitor.UnconfiguredPayload()
	s.stateMutex.Unlock()

	client := &Client{hub: s, send: make(chan *models.MSnapshot, 4)}
	s.register <- client
	s.unregister <- client
	for range client.send {
	}

	assert.NotPanics(t, func() {
		s.HandleClientMessage(client, []byte(`{"command":"latest"}`))
	})
}

func TestUpdateStocks_ConcurrentPostsLeaveConfigUntouched(t *testing.T) {
	s, store := newTestServer(t)
	s.Config.Monitor.StockA = "sh601398"
	s.Config.Monitor.StockB = "sh601288"

	bodies := []string{
		`{"stock1":"600000","stock2":"000001"}`,
		`{"stock1":"600036","stock2":"300750"}`,
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			rec := do(t, s.Handler(), http.MethodPost, "/api/update-stocks", body)
			assert.Equal(t, http.StatusOK, rec.Code)
		}(bodies[i%2])
	}
	wg.Wait()

	assert.Equal(t, "sh601398", s.Config.Monitor.StockA)
	assert.Equal(t, "sh601288", s.Config.Monitor.StockB)
	stored, err := store.LoadPair(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []models.MTrackedPair{
		{CodeA: "sh600000", CodeB: "sz000001"},
		{CodeA: "sh600036", CodeB: "sz300750"},
	}, stored)
	assert.True(t, s.Session.Pair().IsConfigured())
}
