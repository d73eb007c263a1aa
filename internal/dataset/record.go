package dataset

import (
	"strconv"
)

// Record is one player's accumulated statistics for one league-season.
//
// Numeric metrics are nil when the source did not provide a parseable value.
// The field order is the column order of both snapshot formats.
type Record struct {
	Assists         *float64 `parquet:"assists,optional,snappy"`
	Games           *float64 `parquet:"games,optional,snappy"`
	Goals           *float64 `parquet:"goals,optional,snappy"`
	ID              string   `parquet:"id,snappy"`
	KeyPasses       *float64 `parquet:"key_passes,optional,snappy"`
	Npg             *float64 `parquet:"npg,optional,snappy"`
	NpxG            *float64 `parquet:"npxG,optional,snappy"`
	PlayerName      string   `parquet:"player_name,snappy"`
	Position        string   `parquet:"position,snappy"`
	RedCards        *float64 `parquet:"red_cards,optional,snappy"`
	Shots           *float64 `parquet:"shots,optional,snappy"`
	TeamTitle       string   `parquet:"team_title,snappy"`
	Time            *float64 `parquet:"time,optional,snappy"`
	XA              *float64 `parquet:"xA,optional,snappy"`
	XG              *float64 `parquet:"xG,optional,snappy"`
	XGBuildup       *float64 `parquet:"xGBuildup,optional,snappy"`
	XGChain         *float64 `parquet:"xGChain,optional,snappy"`
	YellowCards     *float64 `parquet:"yellow_cards,optional,snappy"`
	League          string   `parquet:"league,snappy"`
	Year            int64    `parquet:"year,snappy"`
	Season          string   `parquet:"season,snappy"`
	PrimaryPosition string   `parquet:"primary_position,optional,snappy"`
	ScrapeTimestamp string   `parquet:"scrape_timestamp,optional,snappy"`

	// columns of a historical snapshot outside the fixed set, in file order
	Extra []Cell `parquet:"-"`
}

// Cell is the raw text of a column that is not part of the fixed set.
type Cell struct {
	Column string
	Value  string
}

// Table is an ordered sequence of records, row order is meaningful.
type Table []Record

// ExtraColumns returns the names of every extra column carried by the table
// in order of first appearance, they follow the fixed columns in snapshots.
func (t Table) ExtraColumns() []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range t {
		for _, c := range r.Extra {
			if seen[c.Column] {
				continue
			}
			seen[c.Column] = true
			out = append(out, c.Column)
		}
	}
	return out
}

// SourceColumns are the per-player keys understat returns, every reconciled row
// carries all of them.
var SourceColumns = []string{
	"assists", "games", "goals", "id", "key_passes", "npg", "npxG",
	"player_name", "position", "red_cards", "shots", "team_title",
	"time", "xA", "xG", "xGBuildup", "xGChain", "yellow_cards",
}

// ContextColumns are appended by the reconciler from the calling context.
var ContextColumns = []string{"league", "year", "season"}

// NumericColumns are coerced to numbers, unparseable values become null.
var NumericColumns = []string{
	"assists", "games", "goals", "key_passes", "npg", "npxG",
	"red_cards", "shots", "time", "xA", "xG", "xGBuildup",
	"xGChain", "yellow_cards",
}

// StringColumns are coerced to trimmed strings.
var StringColumns = []string{"id", "position", "team_title", "player_name"}

type column struct {
	name    string
	format  func(r *Record) string
	parse   func(r *Record, v string)
	numeric func(r *Record) **float64 // nil unless the column is a metric
}

func numericColumn(name string, field func(r *Record) **float64) column {
	return column{
		name:    name,
		numeric: field,
		format: func(r *Record) string {
			return FormatNumeric(*field(r))
		},
		parse: func(r *Record, v string) {
			*field(r) = ParseNumeric(v)
		},
	}
}

// stringColumn keeps stored text as is, only `id` is coerced on the way in.
func stringColumn(name string, field func(r *Record) *string) column {
	return column{
		name: name,
		format: func(r *Record) string {
			return *field(r)
		},
		parse: func(r *Record, v string) {
			*field(r) = v
		},
	}
}

var columns = []column{
	numericColumn("assists", func(r *Record) **float64 { return &r.Assists }),
	numericColumn("games", func(r *Record) **float64 { return &r.Games }),
	numericColumn("goals", func(r *Record) **float64 { return &r.Goals }),
	{
		name:   "id",
		format: func(r *Record) string { return r.ID },
		parse:  func(r *Record, v string) { r.ID = CoerceString(v) },
	},
	numericColumn("key_passes", func(r *Record) **float64 { return &r.KeyPasses }),
	numericColumn("npg", func(r *Record) **float64 { return &r.Npg }),
	numericColumn("npxG", func(r *Record) **float64 { return &r.NpxG }),
	stringColumn("player_name", func(r *Record) *string { return &r.PlayerName }),
	stringColumn("position", func(r *Record) *string { return &r.Position }),
	numericColumn("red_cards", func(r *Record) **float64 { return &r.RedCards }),
	numericColumn("shots", func(r *Record) **float64 { return &r.Shots }),
	stringColumn("team_title", func(r *Record) *string { return &r.TeamTitle }),
	numericColumn("time", func(r *Record) **float64 { return &r.Time }),
	numericColumn("xA", func(r *Record) **float64 { return &r.XA }),
	numericColumn("xG", func(r *Record) **float64 { return &r.XG }),
	numericColumn("xGBuildup", func(r *Record) **float64 { return &r.XGBuildup }),
	numericColumn("xGChain", func(r *Record) **float64 { return &r.XGChain }),
	numericColumn("yellow_cards", func(r *Record) **float64 { return &r.YellowCards }),
	stringColumn("league", func(r *Record) *string { return &r.League }),
	{
		name: "year",
		format: func(r *Record) string {
			if r.Year == 0 {
				return ""
			}
			return strconv.FormatInt(r.Year, 10)
		},
		parse: func(r *Record, v string) {
			n := ParseNumeric(v)
			if n == nil {
				r.Year = 0
				return
			}
			r.Year = int64(*n)
		},
	},
	stringColumn("season", func(r *Record) *string { return &r.Season }),
	stringColumn("primary_position", func(r *Record) *string { return &r.PrimaryPosition }),
	stringColumn("scrape_timestamp", func(r *Record) *string { return &r.ScrapeTimestamp }),
}

var columnIndex = func() map[string]int {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c.name] = i
	}
	return index
}()

// Columns returns the full column list of a stored table, in order.
func Columns() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

// Value renders a single column of a record the way it is stored in CSV,
// null is the empty string. Extra columns are looked up by name.
func (r Record) Value(name string) (string, bool) {
	idx, ok := columnIndex[name]
	if ok {
		return columns[idx].format(&r), true
	}
	for _, c := range r.Extra {
		if c.Column == name {
			return c.Value, true
		}
	}
	return "", false
}

// Float returns the value of a numeric metric or 0 if it is null.
func Float(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
