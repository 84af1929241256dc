package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/bilanz"
	"github.com/cleared-dev/hgb/internal/metrics"
	"github.com/cleared-dev/hgb/internal/posting"
)

type testEnv struct {
	srv      *httptest.Server
	svc      *accounts.Service
	persists atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	env.svc = accounts.NewService(accounts.NewMemoryRepository(), nil)
	s := New(Options{
		Accounts: env.svc,
		Posting:  posting.NewProcessor(env.svc, nil, m),
		Bilanz:   bilanz.NewAggregator(env.svc, bilanz.DefaultTolerance, nil, m),
		Metrics:  m,
		Gatherer: reg,
		Version:  "v1.2.3",
		Persist: func(context.Context) error {
			env.persists.Add(1)
			return nil
		},
	})
	env.srv = httptest.NewServer(s.Handler())
	t.Cleanup(env.srv.Close)
	return env
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	status, env := e.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	data := decodeData[map[string]string](t, env)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "v1.2.3", data["version"])
}

func TestCreateAndGetAccount(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, http.MethodPost, "/api/v1/accounts",
		`{"number":"1000","name":"Kasse","account_type":"aktivkonto","initial_balance":"250.00"}`)
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "success", env.Status)
	assert.EqualValues(t, 1, e.persists.Load())

	status, env = e.do(t, http.MethodGet, "/api/v1/accounts/1000", "")
	require.Equal(t, http.StatusOK, status)
	acct := decodeData[map[string]any](t, env)
	assert.Equal(t, "Kasse", acct["name"])
	assert.Equal(t, "aktivkonto", acct["account_type"])
	assert.Equal(t, "250", acct["balance"])

	status, env = e.do(t, http.MethodGet, "/api/v1/accounts/1000/balance", "")
	require.Equal(t, http.StatusOK, status)
	bal := decodeData[map[string]string](t, env)
	assert.Equal(t, "250", bal["balance"])

	status, env = e.do(t, http.MethodGet, "/api/v1/accounts", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]map[string]any](t, env), 1)
}

func TestCreateAccount_Errors(t *testing.T) {
	e := newTestEnv(t)
	_, _ = e.do(t, http.MethodPost, "/api/v1/accounts", `{"number":"1000","name":"Kasse","account_type":"aktivkonto"}`)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"duplicate", `{"number":"1000","name":"Kasse","account_type":"aktivkonto"}`, http.StatusConflict},
		{"bad number", `{"number":"10","name":"Kasse","account_type":"aktivkonto"}`, http.StatusBadRequest},
		{"bad type", `{"number":"1001","name":"Kasse","account_type":"asset"}`, http.StatusBadRequest},
		{"malformed", `{"number":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := e.do(t, http.MethodPost, "/api/v1/accounts", tt.body)
			assert.Equal(t, tt.want, status)
			assert.Equal(t, "error", env.Status)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	e := newTestEnv(t)
	status, env := e.do(t, http.MethodGet, "/api/v1/accounts/4711", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", env.Status)
}

func TestDebitCredit(t *testing.T) {
	e := newTestEnv(t)
	_, _ = e.do(t, http.MethodPost, "/api/v1/accounts", `{"number":"1000","name":"Kasse","account_type":"aktivkonto"}`)

	status, env := e.do(t, http.MethodPost, "/api/v1/accounts/1000/debit", `{"amount":500.00}`)
	require.Equal(t, http.StatusOK, status, env.Message)
	op := decodeData[map[string]any](t, env)
	assert.Equal(t, "debit", op["operation"])
	assert.Equal(t, "500", op["new_balance"])

	status, env = e.do(t, http.MethodPost, "/api/v1/accounts/1000/credit", `{"amount":"200"}`)
	require.Equal(t, http.StatusOK, status, env.Message)
	op = decodeData[map[string]any](t, env)
	assert.Equal(t, "300", op["new_balance"])

	status, _ = e.do(t, http.MethodPost, "/api/v1/accounts/1000/debit", `{"amount":-5}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/accounts/9999/debit", `{"amount":5}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTransaction(t *testing.T) {
	e := newTestEnv(t)
	_, _ = e.do(t, http.MethodPost, "/api/v1/accounts", `{"number":"1000","name":"Kasse","account_type":"aktivkonto","initial_balance":"1000"}`)
	_, _ = e.do(t, http.MethodPost, "/api/v1/accounts", `{"number":"1200","name":"Bank","account_type":"aktivkonto","initial_balance":"5000"}`)

	body := `{"from_account":"1200","to_account":"1000","amount":"200.00"}`
	status, env := e.do(t, http.MethodPost, "/api/v1/accounts/transaction/preview", body)
	require.Equal(t, http.StatusOK, status, env.Message)
	pv := decodeData[map[string]any](t, env)
	assert.Equal(t, "Aktivtausch", pv["classification"])
	assert.Equal(t, "4800", pv["from_balance"])

	status, env = e.do(t, http.MethodGet, "/api/v1/accounts/1200/balance", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "5000", decodeData[map[string]string](t, env)["balance"], "preview does not mutate")

	status, env = e.do(t, http.MethodPost, "/api/v1/accounts/transaction", body)
	require.Equal(t, http.StatusOK, status, env.Message)
	txn := decodeData[map[string]any](t, env)
	assert.Equal(t, "Aktivtausch", txn["classification"])
	assert.Equal(t, "4800", txn["from_balance"])
	assert.Equal(t, "1200", txn["to_balance"])
	assert.NotEmpty(t, txn["id"])

	status, _ = e.do(t, http.MethodPost, "/api/v1/accounts/transaction", `{"from_account":"1000","to_account":"1000","amount":"1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/accounts/transaction", `{"from_account":"1000","to_account":"1800","amount":"1"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStandardAccounts(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, http.MethodGet, "/api/v1/accounts/standard/search?q=bank&limit=5", "")
	require.Equal(t, http.StatusOK, status)
	res := decodeData[searchResponse](t, env)
	assert.Equal(t, "bank", res.Query)
	assert.Equal(t, 2, res.TotalFound)

	status, _ = e.do(t, http.MethodGet, "/api/v1/accounts/standard/search?q=bank&limit=x", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = e.do(t, http.MethodPost, "/api/v1/accounts/standard/1200", `{"initial_balance":"100"}`)
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = e.do(t, http.MethodGet, "/api/v1/accounts/standard/1200", "")
	require.Equal(t, http.StatusOK, status)
	info := decodeData[map[string]any](t, env)
	assert.Equal(t, "Bank", info["name"])
	assert.Equal(t, true, info["already_exists"])
	assert.Equal(t, "100", info["current_balance"])

	status, _ = e.do(t, http.MethodGet, "/api/v1/accounts/standard/9999", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/accounts/standard/9999", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStarterPack(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, http.MethodPost, "/api/v1/accounts/standard/starter-pack", "")
	require.Equal(t, http.StatusOK, status, env.Message)
	res := decodeData[accounts.StarterResult](t, env)
	assert.Len(t, res.Created, 11)
	assert.Empty(t, res.Errors)

	status, env = e.do(t, http.MethodPost, "/api/v1/accounts/standard/starter-pack", "")
	require.Equal(t, http.StatusOK, status)
	res = decodeData[accounts.StarterResult](t, env)
	assert.Empty(t, res.Created)
	assert.Len(t, res.Errors, 11)
	assert.Contains(t, env.Message, "0 of 11")
}

func TestBilanzEndpoints(t *testing.T) {
	e := newTestEnv(t)
	_, _ = e.do(t, http.MethodPost, "/api/v1/accounts", `{"number":"1000","name":"Kasse","account_type":"aktivkonto","initial_balance":"1000"}`)
	_, _ = e.do(t, http.MethodPost, "/api/v1/accounts", `{"number":"3000","name":"Eigenkapital","account_type":"passivkonto","initial_balance":"1000"}`)

	status, env := e.do(t, http.MethodGet, "/api/v1/bilanz?period_end=2026-12-31", "")
	require.Equal(t, http.StatusOK, status, env.Message)
	b := decodeData[map[string]any](t, env)
	assert.Equal(t, true, b["is_balanced"])
	assert.Equal(t, "1000", b["aktiva_total"])
	assert.True(t, strings.HasPrefix(b["period_end"].(string), "2026-12-31"))

	status, _ = e.do(t, http.MethodGet, "/api/v1/bilanz?period_end=31.12.2026", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = e.do(t, http.MethodGet, "/api/v1/bilanz/validate", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decodeData[map[string]any](t, env)["is_balanced"])

	status, env = e.do(t, http.MethodGet, "/api/v1/bilanz/summary", "")
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 2, decodeData[map[string]any](t, env)["total_accounts"], 0)

	status, env = e.do(t, http.MethodGet, "/api/v1/bilanz/account/3000/resolution", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "passiva", decodeData[map[string]any](t, env)["bilanz_side"])

	status, _ = e.do(t, http.MethodGet, "/api/v1/bilanz/account/4711/resolution", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCategories(t *testing.T) {
	e := newTestEnv(t)
	status, env := e.do(t, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, status)
	res := decodeData[categoriesResponse](t, env)
	require.Len(t, res.Aktiva, 2)
	assert.Equal(t, "Anlagevermögen", res.Aktiva[0].Name)
	assert.Len(t, res.Aktiva[0].Subcategories, 3)
	require.Len(t, res.Passiva, 2)
	assert.NotEmpty(t, res.CatalogCategories)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	_, _ = e.do(t, http.MethodGet, "/health", "")

	resp, err := http.Get(e.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `hgb_http_request_duration_seconds_count{route="/health",status="200"} 1`)
}

func TestPersistFailureIs500(t *testing.T) {
	svc := accounts.NewService(accounts.NewMemoryRepository(), nil)
	s := New(Options{
		Accounts: svc,
		Posting:  posting.NewProcessor(svc, nil, nil),
		Bilanz:   bilanz.NewAggregator(svc, bilanz.DefaultTolerance, nil, nil),
		Persist:  func(context.Context) error { return errors.New("read-only filesystem") },
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts",
		strings.NewReader(`{"number":"1000","name":"Kasse","account_type":"aktivkonto"}`))
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
}

func TestServe_GracefulShutdown(t *testing.T) {
	svc := accounts.NewService(accounts.NewMemoryRepository(), nil)
	s := New(Options{
		Accounts: svc,
		Posting:  posting.NewProcessor(svc, nil, nil),
		Bilanz:   bilanz.NewAggregator(svc, bilanz.DefaultTolerance, nil, nil),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
