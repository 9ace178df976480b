// Package redis persists certificate records in Redis, backing
// core/certmanager in multi-instance deployments where every instance must
// see the same certificate inventory.
//
// Connect wraps the go-redis client with URL validation, retry logic with
// exponential backoff, and a ping-based readiness check, so a certificate
// manager never starts against a Redis it cannot reach. Healthcheck returns
// a probe function for readiness endpoints.
//
// # Configuration
//
// Configuration maps to environment variables for loading through
// core/config:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ScanBatchSize  int64         `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
//	}
//
// Both redis:// and rediss:// URL schemes are supported.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	manager, err := certmanager.New(managerCfg, secret,
//		certmanager.WithStore(redis.NewStore(client)),
//	)
//
// Records are stored as JSON under certkit:cert:{id}; List scans that
// keyspace in ScanBatchSize batches. Only the certificate manager writes
// these keys, and the records it writes hold sealed material, so a Redis
// compromise exposes no private keys.
package redis
