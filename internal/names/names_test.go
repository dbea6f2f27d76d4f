package names

import "testing"

func TestClean(t *testing.T) {
	cases := map[string]string{
		"  Eggs ":         "Eggs",
		"Updated Eggs":    "Eggs",
		"UPDATED   milk":  "milk",
		"updated":         "updated",
		"Updated ":        "Updated",
		"Eggs updated":    "Eggs updated",
		"Not Updated Jam": "Not Updated Jam",
		"":                "",
	}

	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeyIsCaseInsensitive(t *testing.T) {
	if Key("Updated Eggs") != Key("eggs") {
		t.Fatalf("expected %q and %q to share a key", "Updated Eggs", "eggs")
	}
	if Key("Flour") != "flour" {
		t.Fatalf("expected lower-cased key, got %q", Key("Flour"))
	}
}
