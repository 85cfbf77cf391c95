// Package applog configures the structured logger shared by the CLI and
// every ambient package (pkg/source, pkg/tdnet).
package applog

import (
	"go.uber.org/zap"
)

// New builds a zap logger. Development mode uses a human-readable console
// encoder with debug level; production mode uses JSON at info level, so
// scraping runs can be piped straight into log aggregation.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Sugared is a convenience wrapper returning the SugaredLogger most call
// sites want, since jpxbrl's logging is call sites sprinkled through
// fetch/parse/resolve pipelines rather than a hot loop.
func Sugared(development bool) (*zap.SugaredLogger, error) {
	l, err := New(development)
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
