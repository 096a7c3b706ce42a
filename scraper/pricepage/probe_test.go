package pricepage

import (
	"strings"
	"testing"
)

func TestExtractCandidates(t *testing.T) {
	lines := []string{
		"Service klein € 49,90",
		"Reifenwechsel 25,- €",
		"Großes Service EUR 1.200",
		"Schlauch 8 EUR inkl. Montage",
		"Leider teuer, ruf uns an",
		"Öffnungszeiten 9-18 Uhr",
		"Gratis-Check € 0,00",
	}

	got := ExtractCandidates(lines)
	want := []float64{49.9, 25, 1200, 8}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates; want %d: %+v", len(got), len(want), got)
	}
	for i, c := range got {
		if c.Value != want[i] {
			t.Errorf("candidate %d value = %v; want %v", i, c.Value, want[i])
		}
	}
	if got[0].Snippet != "Service klein € 49,90" {
		t.Errorf("snippet = %q", got[0].Snippet)
	}
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("ä", 200)
	got := snippet(long)
	if n := len([]rune(got)); n != snippetLimit {
		t.Errorf("snippet length = %d runes; want %d", n, snippetLimit)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("snippet should end with an ellipsis: %q", got)
	}
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	if got := findChromeBinary("/opt/chrome/chrome"); got != "/opt/chrome/chrome" {
		t.Errorf("findChromeBinary = %q", got)
	}
}
