package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// multiTracer fans pgx query tracing out to several tracers; pgx only has
// one Tracer slot.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

type slowQueryCtxKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// slowQueryTracer warns about queries that take longer than threshold.
type slowQueryTracer struct {
	logger    *zerolog.Logger
	threshold time.Duration
	now       func() time.Time
}

func newSlowQueryTracer(logger *zerolog.Logger, threshold time.Duration) *slowQueryTracer {
	return &slowQueryTracer{logger: logger, threshold: threshold, now: time.Now}
}

func (t *slowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, slowQueryCtxKey{}, queryStart{sql: data.SQL, at: t.now()})
}

func (t *slowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(slowQueryCtxKey{}).(queryStart)
	if !ok {
		return
	}

	elapsed := t.now().Sub(start.at)
	if elapsed < t.threshold {
		return
	}

	t.logger.Warn().
		Err(data.Err).
		Dur("duration", elapsed).
		Dur("threshold", t.threshold).
		Str("sql", start.sql).
		Msg("slow query")
}

// combineTracers returns nil, the single tracer, or a multiTracer.
func combineTracers(tracers []pgx.QueryTracer) pgx.QueryTracer {
	switch len(tracers) {
	case 0:
		return nil
	case 1:
		return tracers[0]
	default:
		return &multiTracer{tracers: tracers}
	}
}
