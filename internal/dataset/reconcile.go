package dataset

import (
	"understat-pipeline/lib/season"
)

// RawRow is one reconciled source row, it always holds every source and
// context column. A nil value is the null marker.
type RawRow map[string]any

// Reconcile maps heterogeneous per-player objects onto the fixed column set.
// Missing keys are filled with nil, keys outside the column set are dropped.
// `league` is the display name, `year` the season's start year.
func Reconcile(players []map[string]any, league string, year int) []RawRow {
	label := season.Label(year)

	out := make([]RawRow, len(players))
	for i, player := range players {
		row := make(RawRow, len(SourceColumns)+len(ContextColumns))
		for _, col := range SourceColumns {
			row[col] = player[col]
		}
		row["league"] = league
		row["year"] = year
		row["season"] = label
		out[i] = row
	}
	return out
}
