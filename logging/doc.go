// Package logging provides a tiny abstraction over structured loggers so
// downstream code can depend on a minimal interface (Logger) while users
// plug in slog, zerolog or anything else. A NoOpLogger keeps constructors
// dependency-free by default.
package logging
