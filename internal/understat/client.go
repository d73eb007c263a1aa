package understat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
	"understat-pipeline/internal/components/telemetry"
	"understat-pipeline/lib/htmlutil"
	"understat-pipeline/lib/restyutil"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const PlayersStatsURL = "https://understat.com/main/getPlayersStats/"

const (
	report_fetch_league = "understat.fetch-league"
)

var tracer = otel.Tracer("understat.client")

var ErrMissingPlayers = errors.New("response is missing response.players")

var defaultHeaders = map[string]string{
	"User-Agent":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Accept":           "application/json, text/javascript, */*; q=0.01",
	"X-Requested-With": "XMLHttpRequest",
}

type Options struct {
	// defaults to PlayersStatsURL
	URL string
	// per request, defaults to 30s
	Timeout time.Duration
	// total attempts including the first one, defaults to 3
	MaxAttempts int
	// wait before the second attempt, it doubles after every failure, defaults to 1s
	InitialBackoff time.Duration
	// when set every HTTP exchange is dumped to it
	Output restyutil.InstrumentOutput
}

type Client struct {
	http           *resty.Client
	url            string
	maxAttempts    int
	initialBackoff time.Duration
	tel            telemetry.API
}

func NewClient(opts Options, tel telemetry.API) Client {
	if opts.URL == "" {
		opts.URL = PlayersStatsURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeaders(defaultHeaders)
	restyutil.InstrumentClient(client, tracer, opts.Output)

	return Client{
		http:           client,
		url:            opts.URL,
		maxAttempts:    opts.MaxAttempts,
		initialBackoff: opts.InitialBackoff,
		tel:            telemetry.NewScopedAPI("understat", tel),
	}
}

func (c Client) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = c.initialBackoff << c.maxAttempts
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx)
}

// FetchLeaguePlayers requests the per-player statistics of one league-season.
// Failures are never returned as errors, they are described by the result status.
//
// Transport errors, 5xx responses, 408, 429 and malformed bodies are retried
// until the attempts run out (FetchExhausted). Every other 4xx response and a
// cancelled context end the fetch at once (FetchPermanent).
func (c Client) FetchLeaguePlayers(ctx context.Context, league, season string) FetchResult {
	ctx, span := tracer.Start(ctx, "understat:FetchLeaguePlayers")
	defer span.End()
	span.SetAttributes(
		attribute.String("league", league),
		attribute.String("season", season),
	)

	var result FetchResult
	permanent := false

	op := func() error {
		result.Attempts++
		players, err := c.fetchOnce(ctx, league, season)
		if err == nil {
			result.Players = players
			return nil
		}

		var statusErr StatusError
		if ctx.Err() != nil || (errors.As(err, &statusErr) && !statusErr.retryable()) {
			permanent = true
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.tel.ReportWarning(
			report_fetch_league,
			err,
			telemetry.KV{Key: "league", Value: league},
			telemetry.KV{Key: "attempt", Value: result.Attempts},
			telemetry.KV{Key: "retry_in", Value: wait},
		)
	}

	err := backoff.RetryNotify(op, c.newBackoff(ctx), notify)
	if err == nil {
		result.Status = FetchOK
		span.SetAttributes(attribute.Int("players", len(result.Players)))
		return result
	}

	result.Err = err
	result.Status = FetchExhausted
	if permanent || ctx.Err() != nil {
		result.Status = FetchPermanent
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, result.Status.String())
	c.tel.ReportBroken(
		report_fetch_league,
		err,
		telemetry.KV{Key: "league", Value: league},
		telemetry.KV{Key: "status", Value: result.Status.String()},
		telemetry.KV{Key: "attempts", Value: result.Attempts},
	)
	return result
}

type playersResponse struct {
	Response *struct {
		Players *[]map[string]any `json:"players"`
	} `json:"response"`
}

func (c Client) fetchOnce(ctx context.Context, league, season string) ([]map[string]any, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"league": league,
			"season": season,
		}).
		Post(c.url)
	if err != nil {
		return nil, err
	}

	body := res.Body()
	if !res.IsSuccess() {
		return nil, StatusError{
			Code:   res.StatusCode(),
			Status: res.Status(),
			Title:  htmlutil.PageTitle(body),
		}
	}

	var payload playersResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	err = dec.Decode(&payload)
	if err != nil {
		if title := htmlutil.PageTitle(body); title != "" {
			return nil, fmt.Errorf("decode response: got html page %q: %w", title, err)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Response == nil || payload.Response.Players == nil {
		return nil, ErrMissingPlayers
	}

	players := *payload.Response.Players
	if players == nil {
		players = []map[string]any{}
	}
	return players, nil
}
