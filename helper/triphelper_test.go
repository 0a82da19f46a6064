package helper

import (
	"strings"
	"testing"
)

func TestSummarizeQuery(t *testing.T) {
	got := SummarizeQuery("  plan a   trip\nto Tokyo ")
	if got != "plan a trip to Tokyo" {
		t.Fatalf("unexpected summary: %q", got)
	}

	long := strings.Repeat("x", 200)
	got = SummarizeQuery(long)
	if len([]rune(got)) != 83 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated summary, got %q", got)
	}
}

func TestUniqueStrings(t *testing.T) {
	got := UniqueStrings([]string{"weather", "places", "weather", "currency", "places"})
	want := []string{"weather", "places", "currency"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
