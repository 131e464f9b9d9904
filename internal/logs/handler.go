package logs

import (
	"context"
	"log/slog"
)

type pathKey struct{}

// WithPath tags ctx with the song file being processed; records logged
// with that context carry it as the "path" attribute.
func WithPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, pathKey{}, path)
}

// PathFrom returns the path stored by WithPath.
func PathFrom(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(pathKey{}).(string)
	return p, ok
}

// Handler adds context attributes before delegating.
type Handler struct {
	slog.Handler
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if p, ok := PathFrom(ctx); ok {
		record.AddAttrs(slog.String("path", p))
	}
	return h.Handler.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name)}
}
