// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and can mirror every entry into a size-rotated file through lumberjack.
//
// # Run Awareness
//
// Every sync run gets a RunID (a UUID). The WithRunID helper attaches it to the
// logger, so all lines emitted by one run, including per-file copy failures, can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//   - File: optional rotated JSON log file (MaxSizeMB, MaxBackups, MaxAgeDays)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
//
//	l := logger.WithRunID(log, runID)
//	l.Error("Copy failed", zap.Error(err))
package logger
