package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"

	maxNoteLen        = 200
	maxSourceLen      = 50
	maxCategoryLen    = 50
	maxInstallmentLen = 20
	maxInstitutionLen = 100
)

type (
	// Date is a calendar date stored as UTC midnight.
	Date struct {
		time.Time
	}

	// Detail is the kind-specific part of a record. The set of
	// implementations is closed: IncomeDetail, ExpenseDetail, CardDetail
	// and DonationDetail.
	Detail interface {
		Kind() Kind
		Value() string
		validate() error
	}

	IncomeDetail struct {
		Source string
	}

	ExpenseDetail struct {
		Category string
	}

	CardDetail struct {
		Installment string
	}

	DonationDetail struct {
		Institution string
	}

	// Record is a single income, expense, card charge or donation.
	Record struct {
		ID        int64
		Amount    decimal.Decimal
		Date      Date
		Note      string
		Active    bool
		CreatedAt time.Time
		Detail    Detail
	}

	// NewRecord carries the fields of a record that does not exist yet.
	NewRecord struct {
		Amount decimal.Decimal
		Date   Date
		Note   string
		Detail Detail
	}

	Category struct {
		ID        int64
		Name      string
		Active    bool
		CreatedAt time.Time
	}

	// Span is a half-open date interval [From, To). Zero bounds are open.
	Span struct {
		From Date
		To   Date
	}
)

func (IncomeDetail) Kind() Kind   { return KindIncome }
func (ExpenseDetail) Kind() Kind  { return KindExpense }
func (CardDetail) Kind() Kind     { return KindCard }
func (DonationDetail) Kind() Kind { return KindDonation }

func (d IncomeDetail) Value() string   { return d.Source }
func (d ExpenseDetail) Value() string  { return d.Category }
func (d CardDetail) Value() string     { return d.Installment }
func (d DonationDetail) Value() string { return d.Institution }

func (d IncomeDetail) validate() error {
	return requireText("source", d.Source, maxSourceLen)
}

func (d ExpenseDetail) validate() error {
	return requireText("category", d.Category, maxCategoryLen)
}

func (d CardDetail) validate() error {
	return requireText("installment", d.Installment, maxInstallmentLen)
}

func (d DonationDetail) validate() error {
	return requireText("institution", d.Institution, maxInstitutionLen)
}

// NewDetail builds the detail variant for kind k from its raw field value.
func NewDetail(k Kind, value string) (Detail, error) {
	value = strings.TrimSpace(value)
	switch k {
	case KindIncome:
		return IncomeDetail{Source: value}, nil
	case KindExpense:
		return ExpenseDetail{Category: value}, nil
	case KindCard:
		return CardDetail{Installment: value}, nil
	case KindDonation:
		return DonationDetail{Institution: value}, nil
	}
	return nil, &InvalidKindError{Value: k.String()}
}

// Kind derives the record kind from its detail.
func (r Record) Kind() Kind {
	if r.Detail == nil {
		return 0
	}
	return r.Detail.Kind()
}

func (r NewRecord) Kind() Kind {
	if r.Detail == nil {
		return 0
	}
	return r.Detail.Kind()
}

func (r NewRecord) Validate() error {
	if r.Detail == nil {
		return &InvalidKindError{Value: ""}
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if err := r.Detail.validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(r.Note) > maxNoteLen {
		return Invalid("note", ErrFieldTooLong, "note too long (max 200 characters)")
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, Invalid("date", ErrInvalidDate, "date must be YYYY-MM-DD")
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return Invalid("date", ErrInvalidDate, "date is required")
	}
	if y := d.Time.Year(); y < 1900 || y > 9999 {
		return Invalid("date", ErrInvalidDate, "date out of range")
	}
	return nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Month returns the month number (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// MonthSpan returns the calendar month containing year/month.
func MonthSpan(year, month int) (Span, error) {
	if err := ValidateYear(year); err != nil {
		return Span{}, err
	}
	if month < 1 || month > 12 {
		return Span{}, Invalid("month", ErrInvalidMonth, "month must be between 1 and 12")
	}
	from := NewDate(year, month, 1)
	return Span{From: from, To: Date{Time: from.AddDate(0, 1, 0)}}, nil
}

// YearSpan returns the calendar year.
func YearSpan(year int) (Span, error) {
	if err := ValidateYear(year); err != nil {
		return Span{}, err
	}
	return Span{From: NewDate(year, 1, 1), To: NewDate(year+1, 1, 1)}, nil
}

// Through returns the span of every date on or before d.
func Through(d Date) Span {
	return Span{To: Date{Time: d.AddDate(0, 0, 1)}}
}

func ValidateYear(year int) error {
	if year < 1900 || year > 9999 {
		return Invalid("year", ErrInvalidYear, "year out of range")
	}
	return nil
}

// Contains reports whether d falls inside the span.
func (s Span) Contains(d Date) bool {
	if !s.From.IsZero() && d.Before(s.From.Time) {
		return false
	}
	if !s.To.IsZero() && !d.Before(s.To.Time) {
		return false
	}
	return true
}

// NormalizeCategoryName trims the name and checks its length.
func NormalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := requireText("category", name, maxCategoryLen); err != nil {
		return "", err
	}
	return name, nil
}

func requireText(field, v string, max int) error {
	if strings.TrimSpace(v) == "" {
		return Invalid(field, ErrEmptyField, field+" is required")
	}
	if utf8.RuneCountInString(v) > max {
		return Invalid(field, ErrFieldTooLong, field+" too long")
	}
	return nil
}
