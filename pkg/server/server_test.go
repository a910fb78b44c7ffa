package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/finsight-ai/finsight/pkg/breaker"
	"github.com/finsight-ai/finsight/pkg/confidence"
	"github.com/finsight-ai/finsight/pkg/config"
	"github.com/finsight-ai/finsight/pkg/health"
	"github.com/finsight-ai/finsight/pkg/marketdata"
	"github.com/finsight-ai/finsight/pkg/models"
	"github.com/finsight-ai/finsight/pkg/provider"
	"github.com/finsight-ai/finsight/pkg/research"
	"github.com/finsight-ai/finsight/pkg/store"
)

type fakeSource struct{}

func (fakeSource) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return &models.Quote{Symbol: symbol, CurrentPrice: 100}, nil
}
func (fakeSource) Financials(ctx context.Context, symbol string) (*models.Financials, error) {
	return &models.Financials{Symbol: symbol, Revenue: 10, NetIncome: 1}, nil
}
func (fakeSource) Technicals(ctx context.Context, symbol string) (*models.Technicals, error) {
	return &models.Technicals{Symbol: symbol, TrendSignal: models.TrendNeutral}, nil
}
func (fakeSource) News(ctx context.Context, symbol string) (*models.NewsSummary, error) {
	return &models.NewsSummary{Symbol: symbol, Headlines: []string{"h"}}, nil
}
func (fakeSource) AnalystViews(ctx context.Context, symbol string) (*models.AnalystViews, error) {
	return &models.AnalystViews{Symbol: symbol, RecommendationKey: "hold"}, nil
}

type fakeBackend struct{ err error }

func (f *fakeBackend) Complete(ctx context.Context, prompt string) (string, int, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return "analysis text", 100, nil
}

func (f *fakeBackend) Model() string { return "fake-model" }

func testServer(t *testing.T, backendErr error) (*Server, *breaker.Registry, *store.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.Retry.MinWait = time.Millisecond
	cfg.Retry.MaxWait = 2 * time.Millisecond
	cfg.Cache.FinancialsTTL = 24 * cfg.Cache.TTL

	reg := breaker.NewRegistry(breaker.DefaultConfig())
	client := marketdata.NewClient(fakeSource{}, cfg, reg)
	chain := provider.NewChainWithBackend(
		[]config.ProviderConfig{{Name: "fake", Model: "fake-model", Priority: 1}},
		func(config.ProviderConfig, string) (provider.Backend, error) {
			return &fakeBackend{err: backendErr}, nil
		},
	)
	scorer, err := confidence.New(cfg.Confidence)
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	svc := research.New(client, chain, scorer, st)
	monitor := health.NewMonitor(reg, chain, client)
	return New(cfg, svc, reg, monitor, st), reg, st
}

func TestResearchEndpoint(t *testing.T) {
	srv, _, _ := testServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/research",
		strings.NewReader(`{"symbol": "aapl", "query": "outlook?"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var report models.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", report.Symbol)
	}
	if report.ID == "" {
		t.Error("expected a persisted report ID")
	}
}

func TestResearchEndpointValidation(t *testing.T) {
	srv, _, _ := testServer(t, nil)

	// Wrong method.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/research", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}

	// Missing symbol.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/research", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty symbol status = %d, want 400", rec.Code)
	}

	// Malformed body.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/research", strings.NewReader(`{not json`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", rec.Code)
	}
}

func TestResearchEndpointBackendFailure(t *testing.T) {
	srv, _, _ := testServer(t, errors.New("model down"))

	req := httptest.NewRequest(http.MethodPost, "/v1/research",
		strings.NewReader(`{"symbol": "AAPL"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestHealthEndpointReflectsDegradation(t *testing.T) {
	srv, _, _ := testServer(t, nil)

	// No provider acquired yet: degraded.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("initial health status = %d, want 503", rec.Code)
	}

	// One successful research acquires a provider: healthy.
	req := httptest.NewRequest(http.MethodPost, "/v1/research",
		strings.NewReader(`{"symbol": "AAPL"}`))
	srv.ServeHTTP(httptest.NewRecorder(), req)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health after research = %d, body %s", rec.Code, rec.Body)
	}

	var snap models.HealthSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Status != health.StatusHealthy {
		t.Errorf("snapshot status = %s", snap.Status)
	}
	if _, ok := snap.Caches["prices"]; !ok {
		t.Error("cache stats missing from snapshot")
	}
}

func TestBreakersResetEndpoint(t *testing.T) {
	srv, reg, _ := testServer(t, nil)

	b := reg.Get(marketdata.BreakerName)
	for i := 0; i < breaker.DefaultConfig().FailureThreshold; i++ {
		_ = b.Do(func() error { return errors.New("down") })
	}
	if b.State() != breaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", b.State())
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/breakers/reset",
		strings.NewReader(`{"name": "market_data"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if b.State() != breaker.StateClosed {
		t.Errorf("breaker not reset: %s", b.State())
	}

	var statuses []models.BreakerStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatal(err)
	}
	if len(statuses) == 0 {
		t.Error("expected breaker statuses in response")
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	srv, _, st := testServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/feedback",
		strings.NewReader(`{"report_id": "r1", "rating": 4, "helpful_aspects": ["technicals"]}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	sum, err := st.FeedbackSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalFeedback != 1 || sum.AverageRating != 4 {
		t.Errorf("summary = %+v", sum)
	}

	// Out-of-range rating is rejected.
	req = httptest.NewRequest(http.MethodPost, "/v1/feedback",
		strings.NewReader(`{"report_id": "r1", "rating": 9}`))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid rating status = %d, want 400", rec.Code)
	}
}

func TestReportsEndpoint(t *testing.T) {
	srv, _, st := testServer(t, nil)
	ctx := context.Background()

	for _, sym := range []string{"AAPL", "MSFT"} {
		err := st.SaveReport(ctx, &models.Report{
			Symbol: sym, Query: "q", Analysis: "a",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports?symbol=AAPL", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var reports []models.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &reports); err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].Symbol != "AAPL" {
		t.Errorf("reports = %+v", reports)
	}
}
