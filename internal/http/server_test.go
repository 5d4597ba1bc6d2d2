package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
	"saldo/internal/forecast"
	"saldo/internal/services"
	"saldo/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.Repository) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "saldo.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	forecasts := services.NewForecastService(repo, services.NewResultCache(16, time.Minute), 3)
	srv := NewServer(":0", repo, forecasts)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)
	return ts, repo
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createAccount(t *testing.T, ts *httptest.Server) core.Account {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", map[string]any{
		"name":             "Checking",
		"currency":         "EUR",
		"warningThreshold": "500",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create account: status %d", resp.StatusCode)
	}
	return decodeBody[core.Account](t, resp)
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d", path, resp.StatusCode)
		}
	}
}

func TestAccountLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	account := createAccount(t, ts)
	if account.ID == "" {
		t.Fatal("expected a generated account id")
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/accounts/"+account.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get account: status %d", resp.StatusCode)
	}
	got := decodeBody[core.Account](t, resp)
	if got.Name != "Checking" || !got.WarningThreshold.Equal(decimal.NewFromInt(500)) {
		t.Errorf("account round trip: %+v", got)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/accounts/"+account.ID, map[string]any{
		"name":             "Joint",
		"currency":         "EUR",
		"warningThreshold": "900",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update account: status %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/accounts/"+account.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete account: status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/"+account.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted account: status %d, want 404", resp.StatusCode)
	}
}

func TestCreateEventValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	account := createAccount(t, ts)

	// Monthly event without a day in 1-31 must be rejected.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/events", map[string]any{
		"accountId": account.ID,
		"name":      "Rent",
		"amount":    "800",
		"category":  "expense",
		"type":      "monthly",
		"startDate": "2025-01-01",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("invalid event: status %d, want 422", resp.StatusCode)
	}

	// Unknown account is a 404.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/events", map[string]any{
		"accountId":  "missing",
		"name":       "Rent",
		"amount":     "800",
		"category":   "expense",
		"type":       "monthly",
		"startDate":  "2025-01-01",
		"monthlyDay": 1,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown account: status %d, want 404", resp.StatusCode)
	}
}

func TestTimelineAndAnalyticsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	account := createAccount(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/events", map[string]any{
		"accountId":  account.ID,
		"name":       "Salary",
		"amount":     "2000",
		"category":   "income",
		"type":       "monthly",
		"startDate":  "2025-01-01",
		"monthlyDay": 10,
		"enabled":    true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create event: status %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/snapshots", map[string]any{
		"accountId": account.ID,
		"date":      "2025-01-01",
		"balance":   "10000",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert snapshot: status %d", resp.StatusCode)
	}

	url := fmt.Sprintf("%s/api/timeline?account=%s&months=2&today=2025-01-01", ts.URL, account.ID)
	resp = doJSON(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("timeline: status %d", resp.StatusCode)
	}
	timeline := decodeBody[[]forecast.DailyPoint](t, resp)
	if len(timeline) == 0 {
		t.Fatal("expected a non-empty timeline")
	}
	if !timeline[0].Balance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("anchor balance = %s", timeline[0].Balance)
	}

	url = fmt.Sprintf("%s/api/analytics?account=%s&months=2&today=2025-01-01", ts.URL, account.ID)
	resp = doJSON(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analytics: status %d", resp.StatusCode)
	}
	summary := decodeBody[forecast.Summary](t, resp)
	if !summary.TotalIncome.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("totalIncome = %s, want 4000", summary.TotalIncome)
	}
	if len(summary.Months) == 0 {
		t.Error("expected monthly buckets")
	}
}

func TestTimelineQueryValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	account := createAccount(t, ts)

	cases := []string{
		"/api/timeline",
		"/api/timeline?account=" + account.ID + "&months=0",
		"/api/timeline?account=" + account.ID + "&months=999",
		"/api/timeline?account=" + account.ID + "&mode=weekly",
		"/api/timeline?account=" + account.ID + "&today=01-02-2025",
	}
	for _, path := range cases {
		resp := doJSON(t, http.MethodGet, ts.URL+path, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s: status %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestSampleDataAndExportImport(t *testing.T) {
	ts, _ := newTestServer(t)
	account := createAccount(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sample-data?account="+account.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("seed sample data: status %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/events?account="+account.ID, nil)
	events := decodeBody[[]core.CashFlowEvent](t, resp)
	if len(events) != 6 {
		t.Fatalf("seeded events = %d, want 6", len(events))
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/state/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status %d", resp.StatusCode)
	}
	env := decodeBody[storage.Envelope](t, resp)
	if len(env.State.Accounts) != 1 || len(env.State.Events) != 6 {
		t.Fatalf("export contents: %d accounts, %d events", len(env.State.Accounts), len(env.State.Events))
	}

	// Importing into a fresh server reproduces the dataset.
	ts2, _ := newTestServer(t)
	resp = doJSON(t, http.MethodPost, ts2.URL+"/api/state/import", env)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("import: status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts2.URL+"/api/events?account="+account.ID, nil)
	imported := decodeBody[[]core.CashFlowEvent](t, resp)
	if len(imported) != 6 {
		t.Errorf("imported events = %d, want 6", len(imported))
	}
}
