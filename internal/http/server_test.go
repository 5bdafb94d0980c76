package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/operator"
	"ledger/internal/services"
	"ledger/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)

	writes := operator.NewOperatorDelegator(repo, 1)
	writes.Start()

	logger := log.New(log.DefaultConfig())
	cats := ledger.NewCategories(repo, writes)
	require.NoError(t, cats.Seed(context.Background()))

	srv, err := NewServer(":0", Deps{
		Ledger:     services.NewLedgerService(writes, nil, logger),
		Aggregator: ledger.NewAggregator(repo),
		Feed:       ledger.NewFeed(repo),
		Categories: cats,
		Store:      repo,
		Logger:     logger,
	}, DefaultOptions())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		writes.Stop()
		_ = repo.Close()
	})
	return srv
}

func do(srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func createMovement(t *testing.T, srv *Server, form url.Values) {
	t.Helper()
	rr := do(srv, http.MethodPost, "/movements", form)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	}

	rr := do(srv, http.MethodGet, "/readyz", nil)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])

	rr = do(srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ledger_movements_created_total 0")
}

func TestDashboardShowsBalanceAndRecent(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "$0.00")
	assert.Contains(t, rr.Body.String(), "No movements yet.")

	createMovement(t, srv, url.Values{"kind": {"income"}, "amount": {"100"}, "date": {"2024-01-05"}, "source": {"Salary"}})
	createMovement(t, srv, url.Values{"kind": {"expense"}, "amount": {"50"}, "date": {"2024-01-10"}, "category": {"Food"}})

	rr = do(srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "$50.00")
	assert.Contains(t, body, "$100.00")
	assert.Contains(t, body, "Salary")
	assert.Less(t, strings.Index(body, "Food"), strings.Index(body, "Salary"), "newest first")

	rr = do(srv, http.MethodGet, "/?as_of=2024-01-06", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "as of 2024-01-06")

	rr = do(srv, http.MethodGet, "/?as_of=yesterday", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCreateMovement(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		form   url.Values
		status int
		want   string
	}{
		{"invalid kind", url.Values{"kind": {"transfer"}, "amount": {"1"}, "date": {"2024-01-01"}}, http.StatusBadRequest, "invalid kind"},
		{"bad amount", url.Values{"kind": {"income"}, "amount": {"abc"}, "date": {"2024-01-01"}, "source": {"x"}}, http.StatusUnprocessableEntity, "amount"},
		{"zero amount", url.Values{"kind": {"income"}, "amount": {"0"}, "date": {"2024-01-01"}, "source": {"x"}}, http.StatusUnprocessableEntity, "amount"},
		{"bad date", url.Values{"kind": {"income"}, "amount": {"1"}, "date": {"01/02/2024"}, "source": {"x"}}, http.StatusUnprocessableEntity, "date"},
		{"missing source", url.Values{"kind": {"income"}, "amount": {"1"}, "date": {"2024-01-01"}}, http.StatusUnprocessableEntity, "source"},
		{"unknown category", url.Values{"kind": {"expense"}, "amount": {"1"}, "date": {"2024-01-01"}, "category": {"Yachts"}}, http.StatusUnprocessableEntity, "unknown category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(srv, http.MethodPost, "/movements", tt.form)
			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
			assert.Contains(t, rr.Body.String(), `role="alert"`)
		})
	}

	rr := do(srv, http.MethodPost, "/movements", url.Values{
		"kind": {"expense"}, "amount": {"12,5"}, "date": {"2024-02-01"}, "category": {"Food"}, "new_category": {"Pets"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, "movement:created")
	assert.Contains(t, trigger, "categories:changed")
	assert.Contains(t, rr.Body.String(), "$12.50")
	assert.Contains(t, rr.Body.String(), "Pets")

	rr = do(srv, http.MethodGet, "/ui/categories", nil)
	assert.Contains(t, rr.Body.String(), `<option value="Pets">`)

	rr = do(srv, http.MethodGet, "/metrics", nil)
	assert.Contains(t, rr.Body.String(), "ledger_movements_created_total 1")
}

func TestDeleteMovement(t *testing.T) {
	srv := newTestServer(t)
	createMovement(t, srv, url.Values{"kind": {"donation"}, "amount": {"25"}, "date": {"2024-03-01"}, "institution": {"Red Cross"}})

	decode := func(rr *httptest.ResponseRecorder) ActionResult {
		t.Helper()
		var res ActionResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res), rr.Body.String())
		return res
	}

	rr := do(srv, http.MethodPost, "/movements/transfer/1/delete", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, decode(rr).Success)

	rr = do(srv, http.MethodPost, "/movements/donation/999/delete", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(srv, http.MethodPost, "/movements/donation/abc/delete", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(srv, http.MethodPost, "/movements/donation/1/delete", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode(rr)
	assert.True(t, res.Success)
	assert.Equal(t, "Donation deleted", res.Message)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), "movement:deleted")

	rr = do(srv, http.MethodPost, "/movements/donation/1/delete", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "already inactive")

	rr = do(srv, http.MethodGet, "/statement?kind=donation", nil)
	assert.NotContains(t, rr.Body.String(), "Red Cross")
}

func TestStatementFilter(t *testing.T) {
	srv := newTestServer(t)
	createMovement(t, srv, url.Values{"kind": {"income"}, "amount": {"10"}, "date": {"2024-01-01"}, "source": {"Gift"}})
	createMovement(t, srv, url.Values{"kind": {"card"}, "amount": {"30"}, "date": {"2024-01-02"}, "installment": {"1/3"}})

	rr := do(srv, http.MethodGet, "/statement", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Gift")
	assert.Contains(t, rr.Body.String(), "1/3")
	assert.Contains(t, rr.Body.String(), "2 movements")
	assert.Equal(t, 1, strings.Count(rr.Body.String(), `class="num outflow"`), "only the card charge is an outflow")

	rr = do(srv, http.MethodGet, "/statement?kind=card", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Gift")
	assert.Contains(t, rr.Body.String(), "1 movements")

	rr = do(srv, http.MethodGet, "/statement?kind=loans", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReportsAreCachedUntilNextWrite(t *testing.T) {
	srv := newTestServer(t)
	createMovement(t, srv, url.Values{"kind": {"income"}, "amount": {"100"}, "date": {"2024-01-31"}, "source": {"Salary"}})
	createMovement(t, srv, url.Values{"kind": {"expense"}, "amount": {"40"}, "date": {"2024-02-01"}, "category": {"Food"}})

	rr := do(srv, http.MethodPost, "/reports/monthly", url.Values{"month": {"1"}, "year": {"2024"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "January 2024")
	assert.Contains(t, rr.Body.String(), "$100.00")
	assert.Equal(t, 1, srv.monthlyCache.Size())

	rr = do(srv, http.MethodPost, "/reports/monthly", url.Values{"month": {"1"}, "year": {"2024"}})
	require.Equal(t, http.StatusOK, rr.Code)
	hits, _ := srv.monthlyCache.Stats()
	assert.EqualValues(t, 1, hits)

	createMovement(t, srv, url.Values{"kind": {"income"}, "amount": {"5"}, "date": {"2024-01-15"}, "source": {"Refund"}})
	assert.Zero(t, srv.monthlyCache.Size(), "writes purge report caches")

	rr = do(srv, http.MethodPost, "/reports/monthly", url.Values{"month": {"1"}, "year": {"2024"}})
	assert.Contains(t, rr.Body.String(), "$105.00")

	rr = do(srv, http.MethodPost, "/reports/monthly", url.Values{"month": {"13"}, "year": {"2024"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(srv, http.MethodPost, "/reports/annual", url.Values{"year": {"2024"}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "January")
	assert.Contains(t, body, "February")
	assert.Contains(t, body, "$65.00", "year balance")
	assert.Contains(t, body, "No activity.", "kinds without records")

	rr = do(srv, http.MethodGet, "/reports", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodGet, "/ui/categories", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Less(t, strings.Index(body, "Food"), strings.Index(body, "Transport"), "ordered by name")

	rr = do(srv, http.MethodPost, "/categories", url.Values{"name": {"  Travel "}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<option value="Travel">`)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), "categories:changed")

	rr = do(srv, http.MethodPost, "/categories", url.Values{"name": {"travel"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, strings.Count(rr.Body.String(), `<option value="Travel">`), "ensure is idempotent")

	rr = do(srv, http.MethodPost, "/categories", url.Values{"name": {"   "}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestPagesAndMiddleware(t *testing.T) {
	srv := newTestServer(t)

	rr := do(srv, http.MethodGet, "/movements/new?kind=card", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<option value="card" selected>`)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = do(srv, http.MethodGet, "/static/app.css", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=3600")

	rr = do(srv, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(srv, http.MethodGet, "/movements", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
