// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/JejuNetwork/certkit/core/config"
//
//	type ManagerConfig struct {
//		RenewalDays   int           `env:"CERT_RENEWAL_DAYS" envDefault:"30"`
//		SweepInterval time.Duration `env:"CERT_SWEEP_INTERVAL" envDefault:"1h"`
//	}
//
//	func main() {
//		var cfg ManagerConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime;
// later calls for the same type return the cached value. Different types are
// cached independently.
package config
