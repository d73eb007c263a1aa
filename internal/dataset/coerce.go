package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ParseNumeric coerces a raw value to a number, anything that does not parse
// (nil, empty or non-numeric text, NaN, infinities, booleans, objects) becomes nil.
func ParseNumeric(v any) *float64 {
	var out float64
	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		out = value
	case float32:
		out = float64(value)
	case int:
		out = float64(value)
	case int64:
		out = float64(value)
	case json.Number:
		parsed, err := strconv.ParseFloat(string(value), 64)
		if err != nil {
			return nil
		}
		out = parsed
	case string:
		text := strings.TrimSpace(value)
		if text == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil
		}
		out = parsed
	default:
		return nil
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return nil
	}
	return &out
}

// FormatNumeric is the inverse of ParseNumeric, it renders the shortest text
// that parses back to the exact same value. nil renders as "".
func FormatNumeric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// CoerceString converts a raw value to a trimmed string, numeric values are
// rendered without an exponent so numeric-looking ids stay stable. nil becomes "".
func CoerceString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return strings.TrimSpace(string(value))
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case bool:
		return strconv.FormatBool(value)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
}

var primaryPositions = map[string]struct{}{
	"M":  {},
	"D":  {},
	"S":  {},
	"F":  {},
	"GK": {},
}

// ExtractPrimaryPosition returns the first whitespace separated token of `raw`
// that is one of M, D, S, F or GK, "" means no qualifying token.
func ExtractPrimaryPosition(raw string) string {
	for _, tok := range strings.Fields(raw) {
		if _, ok := primaryPositions[tok]; ok {
			return tok
		}
	}
	return ""
}

// Coerce converts reconciled rows into typed records. Every row gets the
// same scrape timestamp.
func Coerce(rows []RawRow, scrapedAt time.Time) Table {
	timestamp := scrapedAt.Format(time.RFC3339)

	out := make(Table, len(rows))
	for i, row := range rows {
		rec := Record{
			ID:              CoerceString(row["id"]),
			PlayerName:      CoerceString(row["player_name"]),
			TeamTitle:       CoerceString(row["team_title"]),
			Position:        CoerceString(row["position"]),
			League:          CoerceString(row["league"]),
			Season:          CoerceString(row["season"]),
			ScrapeTimestamp: timestamp,
		}
		if year := ParseNumeric(row["year"]); year != nil {
			rec.Year = int64(*year)
		}
		for _, name := range NumericColumns {
			*columns[columnIndex[name]].numeric(&rec) = ParseNumeric(row[name])
		}
		rec.PrimaryPosition = ExtractPrimaryPosition(rec.Position)
		out[i] = rec
	}
	return out
}
