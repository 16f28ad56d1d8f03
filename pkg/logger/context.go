package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// With returns a new context that includes a logger with the given string fields.
func With(ctx context.Context, fields ...string) context.Context {
	c := From(ctx).With()
	for i := 0; i+1 < len(fields); i += 2 {
		c = c.Str(fields[i], fields[i+1])
	}
	return c.Logger().WithContext(ctx)
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	l := LoggerWrapper()
	return &l
}
