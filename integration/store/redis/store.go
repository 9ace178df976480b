package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/JejuNetwork/certkit/core/certmanager"
)

// keyPrefix namespaces certificate records in a shared Redis.
const keyPrefix = "certkit:cert:"

// Store is a certmanager.Store backed by Redis. Records are JSON values
// keyed by certificate ID; they carry only sealed material, so no private
// keys reach Redis in the clear.
type Store struct {
	client    *redis.Client
	scanBatch int64
}

var _ certmanager.Store = (*Store)(nil)

// NewStore wraps an established Redis client. scanBatch controls List's SCAN
// batch size; pass 0 for the default.
func NewStore(client *redis.Client, scanBatch ...int64) *Store {
	batch := int64(1000)
	if len(scanBatch) > 0 && scanBatch[0] > 0 {
		batch = scanBatch[0]
	}
	return &Store{client: client, scanBatch: batch}
}

func (s *Store) Get(ctx context.Context, id string) (*certmanager.Certificate, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", certmanager.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get certificate: %w", err)
	}

	cert := &certmanager.Certificate{}
	if err := json.Unmarshal(data, cert); err != nil {
		return nil, fmt.Errorf("decode certificate record: %w", err)
	}
	return cert, nil
}

func (s *Store) Put(ctx context.Context, cert *certmanager.Certificate) error {
	data, err := json.Marshal(cert)
	if err != nil {
		return fmt.Errorf("encode certificate record: %w", err)
	}
	// No TTL: lifecycle state must outlive the certificate itself so
	// expired records remain visible for renewal.
	if err := s.client.Set(ctx, keyPrefix+cert.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("redis store certificate: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("redis delete certificate: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", certmanager.ErrNotFound, id)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*certmanager.Certificate, error) {
	var out []*certmanager.Certificate
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", s.scanBatch).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			// Deleted between scan and get.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get certificate: %w", err)
		}
		cert := &certmanager.Certificate{}
		if err := json.Unmarshal(data, cert); err != nil {
			return nil, fmt.Errorf("decode certificate record: %w", err)
		}
		out = append(out, cert)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan certificates: %w", err)
	}
	return out, nil
}
