package store

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// Keyer derives store keys for snapshots.
type Keyer interface {
	// SnapshotKey returns the key of snapshot id within namespace.
	SnapshotKey(namespace, id string) string

	// SnapshotPrefix returns the common prefix of every key in namespace.
	SnapshotPrefix(namespace string) string
}

// DefaultKeyer produces keys of the form snapshot:<namespace>:<id>.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SnapshotKey(namespace, id string) string {
	return "snapshot:" + namespace + ":" + id
}

func (DefaultKeyer) SnapshotPrefix(namespace string) string {
	return "snapshot:" + namespace + ":"
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation, so
// that several services can share one backend:
//
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:graphs:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SnapshotKey(namespace, id string) string {
	return k.prefix + k.inner.SnapshotKey(namespace, id)
}

func (k *ScopedKeyer) SnapshotPrefix(namespace string) string {
	return k.prefix + k.inner.SnapshotPrefix(namespace)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// NewID returns a fresh random snapshot id.
func NewID() string {
	return uuid.NewString()
}
