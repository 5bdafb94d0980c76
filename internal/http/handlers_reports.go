package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

type reportsPageData struct {
	Year  int
	Month int
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	s.render(w, r, http.StatusOK, "reports_page", reportsPageData{Year: now.Year(), Month: int(now.Month())})
}

// handleMonthlyReport renders the totals of one calendar month. Results are
// cached per period until the next ledger write.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Malformed request body").Write(w)
		return
	}
	p, err := ParsePeriodParams(r.Form, time.Now(), true)
	if err != nil {
		s.writeError(w, r, log.OpParse, err, "Invalid period")
		return
	}

	ctx, cancel := readContext(r)
	defer cancel()

	key := fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	report, err := s.monthlyCache.GetOrLoad(key, func() (core.PeriodReport, error) {
		return s.deps.Aggregator.PeriodTotals(ctx, p.Month, p.Year)
	})
	if err != nil {
		s.writeError(w, r, log.OpReport, err, "Failed to build monthly report")
		return
	}
	s.render(w, r, http.StatusOK, "month_report", report)
}

// handleAnnualReport renders the per-kind month series and the totals of a year.
func (s *Server) handleAnnualReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Malformed request body").Write(w)
		return
	}
	p, err := ParsePeriodParams(r.Form, time.Now(), false)
	if err != nil {
		s.writeError(w, r, log.OpParse, err, "Invalid period")
		return
	}

	ctx, cancel := readContext(r)
	defer cancel()

	report, err := s.annualCache.GetOrLoad(strconv.Itoa(p.Year), func() (core.AnnualReport, error) {
		return s.deps.Aggregator.AnnualReport(ctx, p.Year)
	})
	if err != nil {
		s.writeError(w, r, log.OpReport, err, "Failed to build annual report")
		return
	}
	s.render(w, r, http.StatusOK, "annual_report", report)
}
