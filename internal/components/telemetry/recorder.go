package telemetry

import "sync"

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelBroken
	LevelCount
)

type Report struct {
	Level  Level
	ID     string
	Params []any
	Count  int64
}

// Recorder is an API that keeps every report in memory so tests can
// assert on what a component reported.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *Recorder) push(report Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.push(Report{Level: LevelBroken, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.push(Report{Level: LevelWarning, ID: id, Params: params})
}

func (r *Recorder) ReportInfo(msg string, params ...any) {
	r.push(Report{Level: LevelInfo, ID: msg, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.push(Report{Level: LevelDebug, ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.push(Report{Level: LevelCount, ID: id, Count: count})
}

// Reports returns every report at the given level in the order they were made.
func (r *Recorder) Reports(level Level) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Level == level {
			out = append(out, report)
		}
	}
	return out
}

// IDs is Reports but only the ids.
func (r *Recorder) IDs(level Level) []string {
	reports := r.Reports(level)
	out := make([]string, len(reports))
	for i, report := range reports {
		out[i] = report.ID
	}
	return out
}
