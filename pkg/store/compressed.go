package store

import (
	"context"
	"time"

	"github.com/golang/snappy"

	"github.com/matzehuels/objgraph/pkg/errors"
)

// CompressedStore compresses values with snappy before handing them to the
// wrapped store.
type CompressedStore struct {
	inner Store
}

// NewCompressedStore wraps inner with snappy compression.
func NewCompressedStore(inner Store) *CompressedStore {
	return &CompressedStore{inner: inner}
}

func (s *CompressedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "decompress %s", key)
	}
	return out, true, nil
}

func (s *CompressedStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, key, snappy.Encode(nil, data), ttl)
}

func (s *CompressedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Keys delegates to the wrapped store if it is a [Lister].
func (s *CompressedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	l, ok := s.inner.(Lister)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "store %T cannot list keys", s.inner)
	}
	return l.Keys(ctx, prefix)
}

// Unwrap returns the wrapped store.
func (s *CompressedStore) Unwrap() Store { return s.inner }

func (s *CompressedStore) Close() error { return s.inner.Close() }

var (
	_ Store  = (*CompressedStore)(nil)
	_ Lister = (*CompressedStore)(nil)
)
