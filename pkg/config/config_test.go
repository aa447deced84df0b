package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if cfg.MaxDepth != 20 || cfg.Store.Backend != BackendFile || cfg.Server.Addr != ":8080" {
		t.Errorf("Default() = %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "objgraph.toml", `
max_depth = 32

[log]
level = "debug"

[store]
backend = "redis"
compress = true
ttl = "24h"
namespace = "team"

[store.redis]
addr = "cache:6379"
db = 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxDepth != 32 || cfg.LogLevel() != log.DebugLevel {
		t.Errorf("MaxDepth = %d, level = %v", cfg.MaxDepth, cfg.LogLevel())
	}
	s := cfg.Store
	if s.Backend != BackendRedis || !s.Compress || s.TTL.Std() != 24*time.Hour || s.Namespace != "team" {
		t.Errorf("Store = %+v", s)
	}
	if s.Redis.Addr != "cache:6379" || s.Redis.DB != 2 {
		t.Errorf("Redis = %+v", s.Redis)
	}
	if s.Mongo.Database != "objgraph" || cfg.Server.Addr != ":8080" {
		t.Error("unset sections should keep defaults")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "objgraph.yaml", `
max_depth: 8
store:
  backend: mongo
  ttl: 90s
  mongo:
    uri: mongodb://db:27017
    collection: graphs
server:
  addr: 127.0.0.1:9000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxDepth != 8 || cfg.Store.Backend != BackendMongo || cfg.Store.TTL.Std() != 90*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	m := cfg.Store.Mongo
	if m.URI != "mongodb://db:27017" || m.Collection != "graphs" || m.Database != "objgraph" {
		t.Errorf("Mongo = %+v", m)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Log.Level != "info" {
		t.Errorf("Server = %+v, Log = %+v", cfg.Server, cfg.Log)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown extension", "cfg.ini", "max_depth=1"},
		{"bad toml", "cfg.toml", "max_depth = ["},
		{"bad yaml", "cfg.yaml", "max_depth: [1"},
		{"negative depth", "cfg.toml", "max_depth = -1"},
		{"unknown backend", "cfg.toml", "[store]\nbackend = \"s3\""},
		{"bad level", "cfg.yml", "log:\n  level: loud"},
		{"bad ttl", "cfg.toml", "[store]\nttl = \"soon\""},
		{"bad namespace", "cfg.toml", "[store]\nnamespace = \"a/b\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load should fail")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing) should fail")
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		cfg   StoreConfig
		check func(store.Store) bool
	}{
		{"null", StoreConfig{Backend: BackendNull}, func(s store.Store) bool { _, ok := s.(*store.NullStore); return ok }},
		{"memory", StoreConfig{Backend: BackendMemory}, func(s store.Store) bool { _, ok := s.(*store.MemoryStore); return ok }},
		{"file", StoreConfig{Backend: BackendFile, Dir: t.TempDir()}, func(s store.Store) bool { _, ok := s.(*store.FileStore); return ok }},
		{"compressed", StoreConfig{Backend: BackendMemory, Compress: true}, func(s store.Store) bool { _, ok := s.(*store.CompressedStore); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.cfg.Open(ctx)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			if !tt.check(s) {
				t.Errorf("Open returned %T", s)
			}
		})
	}

	_, err := StoreConfig{Backend: "s3"}.Open(ctx)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open(s3) error = %v", err)
	}
}
