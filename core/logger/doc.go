// Package logger provides nil-safe slog attribute helpers shared by the
// certificate packages. Helpers return an empty Attr for zero values, so
// callers never need nil checks:
//
//	log.Info("certificate issued",
//		logger.Domain(cert.Domain),
//		logger.CertID(cert.ID),
//		logger.Error(err), // no-op when err is nil
//	)
package logger
