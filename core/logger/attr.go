package logger

import (
	"log/slog"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit
// nil checks, following the principle of making zero values useful.

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// Component tags log lines with the emitting component name.
func Component(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("component", name)
}

// Domain creates an attribute for the certificate domain.
func Domain(domain string) slog.Attr {
	if domain == "" {
		return slog.Attr{}
	}
	return slog.String("domain", domain)
}

// CertID creates an attribute for a certificate record identifier.
func CertID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("cert_id", id)
}

// FlowID creates an attribute distinguishing concurrent issuance flows.
func FlowID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("flow_id", id)
}

// Status creates an attribute for a certificate or order status.
func Status(status string) slog.Attr {
	if status == "" {
		return slog.Attr{}
	}
	return slog.String("status", status)
}

// Token creates an attribute for a challenge token, truncated so full tokens
// never land in logs.
func Token(token string) slog.Attr {
	if token == "" {
		return slog.Attr{}
	}
	if len(token) > 8 {
		token = token[:8] + "..."
	}
	return slog.String("token", token)
}
