package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rocks-admin/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Walked 42 rules (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks forwards resolver and memo events to a debug logger.
type logHooks struct {
	observability.NoopCacheHooks
	logger *log.Logger
}

func (h *logHooks) OnWalkStart(_ context.Context, pkg, ver string) {
	h.logger.Debug("walk started", "package", pkg, "version", ver)
}

func (h *logHooks) OnNode(_ context.Context, depth int, pkg, status string) {
	h.logger.Debug("rule", "depth", depth, "package", pkg, "status", status)
}

func (h *logHooks) OnWalkComplete(_ context.Context, pkg, ver string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("walk aborted", "package", pkg, "version", ver, "rules", nodes, "err", err)
		return
	}
	h.logger.Debug("walk finished", "package", pkg, "version", ver, "rules", nodes, "elapsed", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("memo hit", "kind", keyType)
}

// registerLogHooks routes observability events to l when debug logging is on.
func registerLogHooks(l *log.Logger) {
	if l.GetLevel() > log.DebugLevel {
		return
	}
	h := &logHooks{logger: l}
	observability.SetResolveHooks(h)
	observability.SetCacheHooks(h)
}
