package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("no saved profile found")

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// FormData is the answer to a getFormData request.
type FormData struct {
	UserData *Profile `json:"userData"`
}

// Store is the external key-value persistence holding the profile record.
type Store interface {
	GetFormData(ctx context.Context) (*FormData, error)
}

// Writer is implemented by stores that can persist a profile, e.g. for imports.
type Writer interface {
	SaveFormData(ctx context.Context, p *Profile) error
}

// Config selects and configures a store backend.
type Config struct {
	Backend string       `mapstructure:"backend"`
	Path    string       `mapstructure:"path"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	DB           int    `mapstructure:"db"`
	Key          string `mapstructure:"key"`
}

// NewStore builds the configured backend. A nil config means a JSON file store at the default path.
func NewStore(cfg *Config) (Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path), nil
	case BackendSQLite:
		return OpenSQLiteStore(cfg.Path)
	case BackendRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis configuration is required for the %s backend", BackendRedis)
		}
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}

// MemoryStore serves a fixed profile. A nil profile behaves like an empty store.
type MemoryStore struct {
	profile *Profile
}

func NewMemoryStore(p *Profile) *MemoryStore {
	return &MemoryStore{profile: p}
}

func (m *MemoryStore) GetFormData(_ context.Context) (*FormData, error) {
	if m.profile == nil {
		return nil, ErrNotFound
	}

	return &FormData{UserData: m.profile}, nil
}

func (m *MemoryStore) SaveFormData(_ context.Context, p *Profile) error {
	m.profile = p
	return nil
}

// decodeJSON turns a stored userData value into a profile.
func decodeJSON(data []byte) (*Profile, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}

	if raw == nil {
		return nil, ErrNotFound
	}

	return Decode(raw)
}

// ParseRecord reads an exported record, either the whole storage area
// ({"userData": {...}}) or the bare profile object.
func ParseRecord(data []byte) (*Profile, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}

	if raw == nil {
		return nil, ErrNotFound
	}

	if inner, ok := raw[FormDataKey]; ok {
		userData, ok := inner.(map[string]any)
		if !ok {
			return nil, ErrNotFound
		}
		raw = userData
	}

	return Decode(raw)
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Writer = (*MemoryStore)(nil)
)
