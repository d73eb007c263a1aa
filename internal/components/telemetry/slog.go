package telemetry

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAPI writes every report through a slog logger, the zero value uses
// slog.Default().
type SlogAPI struct {
	Logger *slog.Logger
}

func NewSlogAPI(logger *slog.Logger) SlogAPI {
	return SlogAPI{Logger: logger}
}

func (s SlogAPI) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// attrs turns report params into slog attributes, KV params keep their key
// and anything else is named after its position.
func attrs(params []any) []slog.Attr {
	out := make([]slog.Attr, 0, len(params))
	for i, p := range params {
		switch v := p.(type) {
		case KV:
			out = append(out, slog.Any(v.Key, v.Value))
		case error:
			out = append(out, slog.String("err", v.Error()))
		default:
			out = append(out, slog.Any(fmt.Sprintf("params.%d", i), v))
		}
	}
	return out
}

func (s SlogAPI) log(level slog.Level, msg string, id string, params []any) {
	list := attrs(params)
	if id != "" {
		list = append([]slog.Attr{slog.String("id", id)}, list...)
	}
	s.logger().LogAttrs(context.Background(), level, msg, list...)
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	s.log(slog.LevelError, "broken component", id, params)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	s.log(slog.LevelWarn, "warning", id, params)
}

func (s SlogAPI) ReportInfo(msg string, params ...any) {
	s.log(slog.LevelInfo, msg, "", params)
}

func (s SlogAPI) ReportDebug(msg string, params ...any) {
	s.log(slog.LevelDebug, msg, "", params)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger().LogAttrs(context.Background(), slog.LevelInfo, "count", slog.String("id", id), slog.Int64("n", count))
}
