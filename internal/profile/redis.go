package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/autofill/internal/secrets"
)

const passwordEnv = "AUTOFILL_REDIS_PASSWORD"

// RedisStore keeps the profile as a JSON string under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(cfg *RedisConfig) (*RedisStore, error) {
	password, err := secrets.LoadOptional(secrets.Source{
		Name:  "redis password",
		Value: cfg.Password,
		File:  cfg.PasswordFile,
		Env:   passwordEnv,
	})
	if err != nil {
		return nil, err
	}

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       cfg.DB,
	})

	return NewRedisStoreWithClient(client, cfg.Key), nil
}

func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if strings.TrimSpace(key) == "" {
		key = FormDataKey
	}

	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) GetFormData(ctx context.Context) (*FormData, error) {
	value, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile key %q: %w", s.key, err)
	}

	p, err := decodeJSON(value)
	if err != nil {
		return nil, err
	}

	return &FormData{UserData: p}, nil
}

func (s *RedisStore) SaveFormData(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set profile key %q: %w", s.key, err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var (
	_ Store  = (*RedisStore)(nil)
	_ Writer = (*RedisStore)(nil)
)
