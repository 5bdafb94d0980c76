package http

import (
	"net/http"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

type dashboardData struct {
	Totals core.Totals
	Recent []core.Record
	AsOf   string
	Today  string
}

// handleDashboard renders totals, balance and the most recent movements.
// ?as_of=YYYY-MM-DD limits the totals to records dated on or before it.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	asOf, err := ParseAsOf(r.URL.Query())
	if err != nil {
		s.writeError(w, r, log.OpParse, err, "Invalid date")
		return
	}

	ctx, cancel := readContext(r)
	defer cancel()

	totals, err := s.deps.Aggregator.Totals(ctx, asOf)
	if err != nil {
		s.writeError(w, r, log.OpReport, err, "Failed to load totals")
		return
	}
	recent, err := s.deps.Feed.Recent(ctx, s.opts.RecentLimit)
	if err != nil {
		s.writeError(w, r, log.OpList, err, "Failed to load recent movements")
		return
	}

	data := dashboardData{
		Totals: totals,
		Recent: recent,
		Today:  core.DateOf(time.Now()).String(),
	}
	if !asOf.IsZero() {
		data.AsOf = core.DateOf(asOf).String()
	}
	s.render(w, r, http.StatusOK, "dashboard_page", data)
}

type statementData struct {
	Filter  string
	Records []core.Record
	Total   int
}

// handleStatement lists every active record of the selected kind, or of all
// kinds, newest first.
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	filter, err := core.ParseKindFilter(r.URL.Query().Get("kind"))
	if err != nil {
		s.writeError(w, r, log.OpParse, err, "Invalid kind")
		return
	}

	ctx, cancel := readContext(r)
	defer cancel()

	records, err := s.deps.Feed.Statement(ctx, filter)
	if err != nil {
		s.writeError(w, r, log.OpList, err, "Failed to load statement")
		return
	}

	s.render(w, r, http.StatusOK, "statement_page", statementData{
		Filter:  filter.String(),
		Records: records,
		Total:   len(records),
	})
}
