package logging

import "github.com/rs/zerolog"

// ZerologAdapter wraps a zerolog.Logger to implement the Logger interface,
// for deployments already standardized on zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a Logger backed by the given zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) Logger {
	return &ZerologAdapter{logger: logger}
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, args ...any) { z.emit(z.logger.Debug(), msg, args) }

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, args ...any) { z.emit(z.logger.Info(), msg, args) }

// Warn logs a warning message.
func (z *ZerologAdapter) Warn(msg string, args ...any) { z.emit(z.logger.Warn(), msg, args) }

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, args ...any) { z.emit(z.logger.Error(), msg, args) }

// emit maps slog-style key/value pairs onto zerolog fields. Dangling keys
// are logged under "arg" to avoid silently dropping context.
func (z *ZerologAdapter) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			ev = ev.Interface("arg", args[i])
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	if len(args)%2 != 0 {
		ev = ev.Interface("arg", args[len(args)-1])
	}
	ev.Msg(msg)
}
