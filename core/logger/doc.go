// Package logger builds slog loggers and offers attribute helpers.
//
//	log := logger.New(logger.WithConfig(cfg))
//	log.Info("dispatch", logger.Method(m), logger.Path(p), logger.Error(err))
//
// Helpers that take an optional value (Error, RequestID, Stack, Key) return
// an empty slog.Attr for zero values, which slog drops.
package logger
