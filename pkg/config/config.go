// Package config loads objgraph configuration from TOML or YAML files.
//
// A minimal TOML file:
//
//	max_depth = 32
//
//	[log]
//	level = "debug"
//
//	[store]
//	backend = "redis"
//	compress = true
//	ttl = "24h"
//
//	[store.redis]
//	addr = "localhost:6379"
//
// Fields left out keep the values of [Default].
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/objgraph/pkg/codec"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/store"
)

// Store backends.
const (
	BackendNull   = "null"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the complete objgraph configuration.
type Config struct {
	MaxDepth int          `toml:"max_depth" yaml:"max_depth"`
	Log      LogConfig    `toml:"log" yaml:"log"`
	Store    StoreConfig  `toml:"store" yaml:"store"`
	Server   ServerConfig `toml:"server" yaml:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// StoreConfig selects and configures the snapshot store.
type StoreConfig struct {
	Backend   string      `toml:"backend" yaml:"backend"`
	Dir       string      `toml:"dir" yaml:"dir"`
	Compress  bool        `toml:"compress" yaml:"compress"`
	TTL       Duration    `toml:"ttl" yaml:"ttl"`
	Namespace string      `toml:"namespace" yaml:"namespace"`
	Redis     RedisConfig `toml:"redis" yaml:"redis"`
	Mongo     MongoConfig `toml:"mongo" yaml:"mongo"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
}

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI        string `toml:"uri" yaml:"uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
}

// ServerConfig configures the snapshot HTTP service.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxDepth: codec.DefaultMaxDepth,
		Log:      LogConfig{Level: "info"},
		Store: StoreConfig{
			Backend:   BackendFile,
			Namespace: "default",
			Redis:     RedisConfig{Addr: "localhost:6379"},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "objgraph",
				Collection: "snapshots",
			},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the file at path over [Default]. The format follows the
// extension: .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := errors.ValidatePath(path); err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
	default:
		return cfg, errors.New(errors.ErrCodeInvalidInput, "unsupported config format %q", ext)
	}

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ValidateAndSetDefaults fills zero values with defaults and rejects invalid
// settings.
func (c *Config) ValidateAndSetDefaults() error {
	def := Default()
	if c.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = def.MaxDepth
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "log.level")
	}

	s := &c.Store
	if s.Backend == "" {
		s.Backend = def.Store.Backend
	}
	switch s.Backend {
	case BackendNull, BackendMemory, BackendFile, BackendRedis, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", s.Backend)
	}
	if s.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "store.ttl must not be negative")
	}
	if s.Namespace == "" {
		s.Namespace = def.Store.Namespace
	}
	if err := errors.ValidateSnapshotID(s.Namespace); err != nil {
		return fmt.Errorf("store.namespace: %w", err)
	}
	if s.Dir != "" {
		if err := errors.ValidatePath(s.Dir); err != nil {
			return fmt.Errorf("store.dir: %w", err)
		}
	}
	if s.Redis.Addr == "" {
		s.Redis.Addr = def.Store.Redis.Addr
	}
	if s.Mongo.URI == "" {
		s.Mongo.URI = def.Store.Mongo.URI
	}
	if s.Mongo.Database == "" {
		s.Mongo.Database = def.Store.Mongo.Database
	}
	if s.Mongo.Collection == "" {
		s.Mongo.Collection = def.Store.Mongo.Collection
	}

	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	return nil
}

// LogLevel returns the parsed log level, or info if it is invalid.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Open creates the configured store, wrapped with compression if enabled.
func (s StoreConfig) Open(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch s.Backend {
	case BackendNull:
		st = store.NewNullStore()
	case BackendMemory:
		st = store.NewMemoryStore()
	case BackendFile, "":
		st, err = store.NewFileStore(s.Dir)
	case BackendRedis:
		st, err = store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
		})
	case BackendMongo:
		st, err = store.NewMongoStore(ctx, store.MongoConfig{
			URI:        s.Mongo.URI,
			Database:   s.Mongo.Database,
			Collection: s.Mongo.Collection,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", s.Backend)
	}
	if err != nil {
		return nil, err
	}
	if s.Compress {
		st = store.NewCompressedStore(st)
	}
	return st, nil
}

// Duration is a time.Duration written as a string such as "90s" or "24h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
