// Package log provides the structured logging facade used across the journal
// codebase.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by Go's standard
// library slog via a bridge handler that preserves the formatter/outputs
// pipeline, so callers can interop with the slog ecosystem while keeping
// consistent output across the codebase.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("gateway"))
//	l.Info("listening", log.Str("addr", ":19531"))
//
// To integrate with libraries expecting *log.Logger (Pebble, net/http), use
// RedirectStdLog or ToStdLogger.
package log
