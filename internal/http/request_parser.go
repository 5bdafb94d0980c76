package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ledger/internal/core"
	"ledger/internal/services"
)

// maxBodyBytes bounds every form or JSON body.
const maxBodyBytes = 64 << 10

// PeriodParams is a report period. Month is zero for annual reports.
type PeriodParams struct {
	Year  int
	Month int
}

// ParsePeriodParams reads year (and month when withMonth is set) from values.
// Missing values default to now; present but malformed values are a
// ValidationError rather than silently replaced.
func ParsePeriodParams(values url.Values, now time.Time, withMonth bool) (PeriodParams, error) {
	p := PeriodParams{Year: now.Year()}
	if withMonth {
		p.Month = int(now.Month())
	}

	if v := strings.TrimSpace(values.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return PeriodParams{}, core.Invalid("year", core.ErrInvalidYear, "year must be a number")
		}
		p.Year = y
	}
	if err := core.ValidateYear(p.Year); err != nil {
		return PeriodParams{}, err
	}

	if withMonth {
		if v := strings.TrimSpace(values.Get("month")); v != "" {
			m, err := strconv.Atoi(v)
			if err != nil {
				return PeriodParams{}, core.Invalid("month", core.ErrInvalidMonth, "month must be a number")
			}
			p.Month = m
		}
		if p.Month < 1 || p.Month > 12 {
			return PeriodParams{}, core.Invalid("month", core.ErrInvalidMonth, "month must be between 1 and 12")
		}
	}
	return p, nil
}

// ParseAsOf reads the optional as_of cut-off date. Absent means no bound.
func ParseAsOf(query url.Values) (time.Time, error) {
	v := strings.TrimSpace(query.Get("as_of"))
	if v == "" {
		return time.Time{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

// ParseID parses a positive record id from a path segment.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// RequestBodyParser reads a body once and exposes it as JSON or form values.
// HTMX posts forms; scripts may post JSON.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns the sanitized value for key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// MovementInput maps the body to a service input. The kind-specific value is
// read from its own field, falling back to a generic "detail" field.
func (p *RequestBodyParser) MovementInput() services.MovementInput {
	in := services.MovementInput{
		Kind:        p.Get("kind"),
		Amount:      p.Get("amount"),
		Date:        p.Get("date"),
		Note:        p.Get("note"),
		NewCategory: p.Get("new_category"),
	}
	if k, err := core.ParseKind(in.Kind); err == nil {
		in.Detail = p.Get(k.DetailField())
	}
	if in.Detail == "" {
		in.Detail = p.Get("detail")
	}
	return in
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
