package http

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/log"
)

// readTimeout bounds the store reads behind a single page or partial.
const readTimeout = 7 * time.Second

var monthNames = [...]string{"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return core.FormatAmount(s.opts.CurrencySymbol, d)
		},
		"monthName": func(m int) string {
			if m < 1 || m > 12 {
				return ""
			}
			return monthNames[m]
		},
		"negative": func(d decimal.Decimal) bool { return d.IsNegative() },
		"kinds":    func() []core.Kind { return core.Kinds[:] },
	}
}

// render executes name into a buffer first so a template failure still
// produces a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.LogFields{"template": name})
		InternalServerError("Failed to render page").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderString executes a partial into memory.
func (s *Server) renderString(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	err := s.templates.ExecuteTemplate(&buf, name, data)
	return buf.Bytes(), err
}

// statusFor maps the typed ledger errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case core.IsInvalidKind(err):
		return http.StatusBadRequest
	case core.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failures from the client.
func publicMessage(err error, fallback string) string {
	if statusFor(err) == http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}

// writeError renders err as an HTML error partial and logs server faults.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.events.LogError(r.Context(), fallback, err, log.ComponentHTTP, op, nil)
	} else {
		s.logger.DebugContext(r.Context(), "Request rejected", "operation", op, "status", status, "error", err)
	}
	ErrorResponse(status, publicMessage(err, fallback)).Write(w)
}

func readContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), readTimeout)
}

// sanitizeInput trims and drops control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
