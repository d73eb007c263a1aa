package telemetry

import (
	"fmt"
)

// API is what components report through instead of logging directly, so tests
// can assert on what was reported.
type API interface {
	// ReportBroken reports a component failing in a way someone should look at.
	//
	// `id` names the component, not the line that failed. ex. every failed league
	// request is `understat.fetch-league`, which league goes into the params.
	// ids are lowercase, underscores separate words of a component and dashes
	// separate a component from its method.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something unexpected the run recovered from.
	ReportWarning(id string, params ...any)

	// ReportInfo reports progress of a batch run.
	ReportInfo(msg string, params ...any)

	ReportDebug(msg string, params ...any)

	// ReportCount reports a gauge-like count at the current point of the run,
	// counts are not meant to be summed.
	ReportCount(id string, count int64)
}

// KV is a param rendered as a named attribute instead of a positional one.
type KV struct {
	Key   string
	Value any
}

// ScopedAPI prefixes every id and message with a namespace, scopes nest.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportInfo(msg string, params ...any) {
	s.inner.ReportInfo(s.scope(msg), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
