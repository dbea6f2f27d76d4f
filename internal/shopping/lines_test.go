package shopping

import "testing"

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line, name, qty string
	}{
		{"Flour: 500 g", "Flour", "500 g"},
		{"Salt:", "Salt", ""},
		{"500 g flour", "flour", "500 g"},
		{"500g plain flour", "plain flour", "500 g"},
		{"2 eggs", "eggs", "2"},
		{"1.5 kg potatoes", "potatoes", "1.5 kg"},
		{".5 kg flour", "flour", ".5 kg"},
		{"salt", "salt", ""},
		{"3", "3", ""},
		{": 2 onions", "onions", "2"},
	}

	for _, tt := range tests {
		name, qty := splitLine(tt.line)
		if name != tt.name || qty != tt.qty {
			t.Fatalf("splitLine(%q) = (%q, %q), want (%q, %q)", tt.line, name, qty, tt.name, tt.qty)
		}
	}
}

func TestSplitEntries(t *testing.T) {
	got := splitEntries([]string{
		"- Flour: 500 g\n\n* Eggs: 2\r\n",
		"   ",
		"• salt",
	})

	want := []string{"Flour: 500 g", "Eggs: 2", "salt"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %q", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
