package report

import (
	"errors"
	"testing"
)

func TestParseRejectsMalformedShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{not json`},
		{"top level array", `[1, 2, 3]`},
		{"top level scalar", `42`},
		{"items not array", `{"deckTotal": 5, "items": {"a": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			var dfe *DataFormatError
			if !errors.As(err, &dfe) {
				t.Errorf("Parse(%s) error = %v, want *DataFormatError", tt.raw, err)
			}
		})
	}
}

func TestParseMissingFieldsAreFine(t *testing.T) {
	r, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse({}) error = %v", err)
	}
	if r.DeckTotal != 0 || len(r.Items) != 0 {
		t.Errorf("empty object parsed to %+v, want zero report", r)
	}

	r, err = Parse([]byte(`{"deckTotal": 12, "items": null}`))
	if err != nil {
		t.Fatalf("Parse with null items error = %v", err)
	}
	if r.DeckTotal != 12 {
		t.Errorf("DeckTotal = %d, want 12", r.DeckTotal)
	}
}

func TestParseCoercesScalars(t *testing.T) {
	raw := `{
		"deckTotal": "32",
		"items": [
			{"name": "Zubat", "found": "4", "total": 32}
		]
	}`
	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if r.DeckTotal != 32 {
		t.Errorf("DeckTotal = %d, want numeric-string 32 coerced", r.DeckTotal)
	}
	if r.Items[0].Found != 4 {
		t.Errorf("Found = %d, want 4", r.Items[0].Found)
	}
	if r.Items[0].Pct != 12.5 {
		t.Errorf("Pct = %v, want recomputed 12.5", r.Items[0].Pct)
	}
}

func TestParseRecordsCorrections(t *testing.T) {
	raw := `{
		"deckTotal": true,
		"items": [
			{"name": "Zubat", "found": -3, "total": "junk"}
		]
	}`
	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if r.DeckTotal != 0 {
		t.Errorf("DeckTotal = %d, want coerced 0", r.DeckTotal)
	}
	if r.Items[0].Found != 0 || r.Items[0].Total != 0 {
		t.Errorf("item = %+v, want negative found and junk total reset to 0", r.Items[0])
	}
	if len(r.Corrections) == 0 {
		t.Error("no corrections recorded for out-of-contract scalars")
	}
}

func TestParseClampsFoundToTotal(t *testing.T) {
	raw := `{"items": [{"name": "Zubat", "found": 50, "total": 30}]}`
	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	item := r.Items[0]
	if item.Found != 30 {
		t.Errorf("Found = %d, want clamped to total 30", item.Found)
	}
	if item.Pct != 100.0 {
		t.Errorf("Pct = %v, want 100 after clamp", item.Pct)
	}
}

func TestParseKeepsPctWhenNoDenominator(t *testing.T) {
	raw := `{"items": [{"name": "Zubat", "found": 0, "total": 0, "pct": 7.5}]}`
	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if r.Items[0].Pct != 7.5 {
		t.Errorf("Pct = %v, want provided 7.5 kept when total is 0", r.Items[0].Pct)
	}
}

func TestParseDist(t *testing.T) {
	raw := `{
		"items": [
			{
				"name": "Zubat", "found": 2, "total": 10,
				"dist": [{"copies": 4, "players": 2, "percent": 100}]
			}
		]
	}`
	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	dist := r.Items[0].Dist
	if len(dist) != 1 {
		t.Fatalf("got %d dist buckets, want 1", len(dist))
	}
	if dist[0].Copies != 4 || dist[0].Players != 2 || dist[0].Percent != 100 {
		t.Errorf("dist = %+v, want {4 2 100}", dist[0])
	}
}

func TestParseSkipsNonObjectItems(t *testing.T) {
	raw := `{"items": [17, {"name": "Zubat", "found": 1, "total": 2}]}`
	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(r.Items) != 1 || r.Items[0].Name != "Zubat" {
		t.Errorf("items = %+v, want non-object entry skipped", r.Items)
	}
	if len(r.Corrections) == 0 {
		t.Error("skipped entry not recorded as a correction")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{23.333333, 23.33},
		{23.336, 23.34},
		{100.0, 100.0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
