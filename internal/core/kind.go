package core

import "strings"

// Kind identifies one of the four record kinds. The zero value is invalid.
type Kind int

const (
	KindIncome Kind = iota + 1
	KindExpense
	KindCard
	KindDonation
)

// Kinds lists every kind in display order. Feed tie-breaks follow this order.
var Kinds = [...]Kind{KindIncome, KindExpense, KindCard, KindDonation}

var kindAliases = map[string]Kind{
	"income":      KindIncome,
	"incomes":     KindIncome,
	"ganho":       KindIncome,
	"ganhos":      KindIncome,
	"expense":     KindExpense,
	"expenses":    KindExpense,
	"despesa":     KindExpense,
	"despesas":    KindExpense,
	"card":        KindCard,
	"cards":       KindCard,
	"card_charge": KindCard,
	"cartao":      KindCard,
	"donation":    KindDonation,
	"donations":   KindDonation,
	"donativo":    KindDonation,
	"donativos":   KindDonation,
}

// ParseKind maps a wire name (or one of its aliases) to a Kind.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return 0, &InvalidKindError{Value: s}
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	return k >= KindIncome && k <= KindDonation
}

// String returns the wire name.
func (k Kind) String() string {
	switch k {
	case KindIncome:
		return "income"
	case KindExpense:
		return "expense"
	case KindCard:
		return "card"
	case KindDonation:
		return "donation"
	}
	return "unknown"
}

// Label is the human readable name used by the pages.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	case KindCard:
		return "Card charge"
	case KindDonation:
		return "Donation"
	}
	return "Unknown"
}

// DetailField is the form field carrying the kind-specific value.
func (k Kind) DetailField() string {
	switch k {
	case KindIncome:
		return "source"
	case KindExpense:
		return "category"
	case KindCard:
		return "installment"
	case KindDonation:
		return "institution"
	}
	return ""
}

// Outflow reports whether records of this kind reduce the balance.
func (k Kind) Outflow() bool {
	return k != KindIncome
}

// KindFilter selects one kind or all of them.
type KindFilter struct {
	Kind Kind // zero means all kinds
}

// AllKinds is the filter matching every kind.
var AllKinds = KindFilter{}

// ParseKindFilter accepts "all" (or empty, or "todos") besides any kind name.
func ParseKindFilter(s string) (KindFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todos":
		return AllKinds, nil
	}
	k, err := ParseKind(s)
	if err != nil {
		return KindFilter{}, err
	}
	return KindFilter{Kind: k}, nil
}

// Kinds returns the kinds selected by the filter.
func (f KindFilter) Kinds() []Kind {
	if f.Kind.Valid() {
		return []Kind{f.Kind}
	}
	return Kinds[:]
}

func (f KindFilter) String() string {
	if f.Kind.Valid() {
		return f.Kind.String()
	}
	return "all"
}
