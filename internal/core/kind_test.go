package core

import "testing"

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"income":   KindIncome,
		"Ganho":    KindIncome,
		"expense":  KindExpense,
		"despesa":  KindExpense,
		" card ":   KindCard,
		"cartao":   KindCard,
		"donation": KindDonation,
		"donativo": KindDonation,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "salary", "todos", "42"} {
		if _, err := ParseKind(bad); !IsInvalidKind(err) {
			t.Fatalf("ParseKind(%q) expected InvalidKindError, got %v", bad, err)
		}
	}
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("round trip of %s failed: %v %v", k, got, err)
		}
		if k.DetailField() == "" {
			t.Fatalf("%s has no detail field", k)
		}
	}
	if Kind(0).Valid() || Kind(5).Valid() {
		t.Fatal("out of range kinds must be invalid")
	}
}

func TestParseKindFilter(t *testing.T) {
	for _, in := range []string{"", "all", "todos"} {
		f, err := ParseKindFilter(in)
		if err != nil || len(f.Kinds()) != 4 {
			t.Fatalf("%q should select every kind, got %v %v", in, f, err)
		}
	}
	f, err := ParseKindFilter("despesas")
	if err != nil || f.Kind != KindExpense || len(f.Kinds()) != 1 {
		t.Fatalf("unexpected filter %v %v", f, err)
	}
	if _, err := ParseKindFilter("nope"); !IsInvalidKind(err) {
		t.Fatalf("expected InvalidKindError, got %v", err)
	}
}

func TestKindOutflow(t *testing.T) {
	for _, k := range Kinds {
		if got, want := k.Outflow(), k != KindIncome; got != want {
			t.Fatalf("%s.Outflow() = %v, want %v", k, got, want)
		}
	}
}
