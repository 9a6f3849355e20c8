package report

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Parse re-parses an existing report blob. A malformed overall shape
// (top level not an object, items present but not an array) returns a
// *DataFormatError; merely-missing optional fields never error. Scalar
// fields outside their contract are coerced to safe defaults and the
// corrections are recorded on the returned report.
func Parse(raw []byte) (*ParsedReport, error) {
	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &DataFormatError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	obj, ok := top.(map[string]any)
	if !ok {
		return nil, &DataFormatError{Reason: "report is not an object"}
	}

	parsed := &ParsedReport{}

	if v, present := obj["deckTotal"]; present {
		parsed.DeckTotal = parsed.coerceInt("deckTotal", v)
	}

	rawItems, present := obj["items"]
	if !present || rawItems == nil {
		return parsed, nil
	}
	list, ok := rawItems.([]any)
	if !ok {
		return nil, &DataFormatError{Reason: "items is not an array"}
	}

	for i, entry := range list {
		itemObj, ok := entry.(map[string]any)
		if !ok {
			parsed.correct(fmt.Sprintf("items[%d]", i), "not an object, skipped")
			continue
		}
		item := CardItem{
			Rank:     parsed.coerceInt("rank", itemObj["rank"]),
			Name:     coerceString(itemObj["name"]),
			Found:    parsed.coerceInt("found", itemObj["found"]),
			Total:    parsed.coerceInt("total", itemObj["total"]),
			Set:      coerceString(itemObj["set"]),
			Number:   coerceString(itemObj["number"]),
			UID:      coerceString(itemObj["uid"]),
			Category: coerceString(itemObj["category"]),
		}

		if item.Found < 0 {
			parsed.correct("found", "negative, reset to 0")
			item.Found = 0
		}
		if item.Total < 0 {
			parsed.correct("total", "negative, reset to 0")
			item.Total = 0
		}
		if item.Total > 0 && item.Found > item.Total {
			parsed.correct("found", "exceeds total, clamped")
			item.Found = item.Total
		}

		// Recompute pct whenever a denominator exists; keep a provided
		// pct verbatim only when total is 0.
		if item.Total > 0 {
			item.Pct = Round2(float64(item.Found) / float64(item.Total) * 100)
		} else if v, present := itemObj["pct"]; present {
			item.Pct = parsed.coerceFloat("pct", v)
		}

		if rawDist, ok := itemObj["dist"].([]any); ok {
			for _, d := range rawDist {
				distObj, ok := d.(map[string]any)
				if !ok {
					continue
				}
				item.Dist = append(item.Dist, Dist{
					Copies:  parsed.coerceInt("dist.copies", distObj["copies"]),
					Players: parsed.coerceInt("dist.players", distObj["players"]),
					Percent: parsed.coerceFloat("dist.percent", distObj["percent"]),
				})
			}
		}

		parsed.Items = append(parsed.Items, item)
	}

	return parsed, nil
}

func (r *ParsedReport) correct(field, reason string) {
	r.Corrections = append(r.Corrections, &ValidationError{Field: field, Reason: reason})
}

// coerceInt converts a decoded JSON scalar to an int, recording a
// correction and returning 0 for anything non-numeric.
func (r *ParsedReport) coerceInt(field string, v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			r.correct(field, "non-numeric string, reset to 0")
			return 0
		}
		return n
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			r.correct(field, "non-integer number, reset to 0")
			return 0
		}
		return int(n)
	default:
		r.correct(field, "non-numeric value, reset to 0")
		return 0
	}
}

func (r *ParsedReport) coerceFloat(field string, v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			r.correct(field, "non-numeric string, reset to 0")
			return 0
		}
		return f
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			r.correct(field, "non-numeric number, reset to 0")
			return 0
		}
		return f
	default:
		r.correct(field, "non-numeric value, reset to 0")
		return 0
	}
}

func coerceString(v any) string {
	s, _ := v.(string)
	return s
}
