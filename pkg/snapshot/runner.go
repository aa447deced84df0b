// Package snapshot persists serialized object graphs in a store.
//
// A [Runner] joins a [codec.Serializer] with a [store.Store]: graphs are
// serialized, validated and written under a key derived from a namespace and
// a snapshot id, and read back the same way. The CLI and the HTTP service
// share it so that both use identical keys and retry behaviour.
package snapshot

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/objgraph/pkg/codec"
	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/store"
)

// DefaultNamespace is used when a Runner has no namespace.
const DefaultNamespace = "default"

// Runner stores and loads snapshots.
//
// The Runner holds no per-call state. Multiple goroutines may share one
// Runner once its Serializer is fully registered.
type Runner struct {
	Serializer *codec.Serializer
	Store      store.Store
	Keyer      store.Keyer
	Logger     *log.Logger
	Namespace  string
	TTL        time.Duration
}

// NewRunner creates a runner. A nil serializer gets a fresh [codec.New]; a
// nil store disables persistence; a nil keyer uses the default keyer.
func NewRunner(s *codec.Serializer, st store.Store, keyer store.Keyer, logger *log.Logger) *Runner {
	if s == nil {
		s = codec.New(codec.WithLogger(logger))
	}
	if st == nil {
		st = store.NewNullStore()
	}
	if keyer == nil {
		keyer = store.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Serializer: s,
		Store:      st,
		Keyer:      keyer,
		Logger:     logger,
		Namespace:  DefaultNamespace,
	}
}

func (r *Runner) namespace() string {
	if r.Namespace == "" {
		return DefaultNamespace
	}
	return r.Namespace
}

// Key returns the store key of snapshot id.
func (r *Runner) Key(id string) string {
	return r.Keyer.SnapshotKey(r.namespace(), id)
}

// Save serializes v under a newly generated id and returns the id.
func (r *Runner) Save(ctx context.Context, v any) (string, error) {
	id := store.NewID()
	if err := r.SaveAs(ctx, id, v); err != nil {
		return "", err
	}
	return id, nil
}

// SaveAs serializes v under id, replacing any existing snapshot.
func (r *Runner) SaveAs(ctx context.Context, id string, v any) error {
	env, err := r.Serializer.Serialize(v)
	if err != nil {
		return err
	}
	return r.SaveEnvelope(ctx, id, env)
}

// SaveEnvelope validates env and writes it under id.
func (r *Runner) SaveEnvelope(ctx context.Context, id string, env *envelope.Envelope) error {
	if err := errors.ValidateSnapshotID(id); err != nil {
		return err
	}
	if err := env.Validate(); err != nil {
		return err
	}
	data, err := env.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot %s", id)
	}

	start := time.Now()
	key := r.Key(id)
	err = store.RetryWithBackoff(ctx, func() error {
		return r.Store.Set(ctx, key, data, r.TTL)
	})
	if err != nil {
		return err
	}
	r.Logger.Debug("saved snapshot",
		"id", id,
		"records", env.Len(),
		"bytes", len(data),
		"duration", time.Since(start))
	return nil
}

// LoadEnvelope reads the envelope stored under id without deserializing it.
func (r *Runner) LoadEnvelope(ctx context.Context, id string) (*envelope.Envelope, error) {
	if err := errors.ValidateSnapshotID(id); err != nil {
		return nil, err
	}
	var (
		data []byte
		hit  bool
	)
	key := r.Key(id)
	err := store.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Store.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id)
	}

	env, err := envelope.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedRecord, err, "snapshot %q", id)
	}
	r.Logger.Debug("loaded snapshot", "id", id, "records", env.Len())
	return env, nil
}

// Load reads and deserializes the snapshot stored under id.
func (r *Runner) Load(ctx context.Context, id string) (any, error) {
	env, err := r.LoadEnvelope(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Serializer.Deserialize(env)
}

// Delete removes the snapshot stored under id.
func (r *Runner) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateSnapshotID(id); err != nil {
		return err
	}
	key := r.Key(id)
	_, hit, err := r.Store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id)
	}
	if err := store.RetryWithBackoff(ctx, func() error { return r.Store.Delete(ctx, key) }); err != nil {
		return err
	}
	r.Logger.Debug("deleted snapshot", "id", id)
	return nil
}

// List returns the ids of all snapshots in the runner's namespace. The
// store must implement [store.Lister].
func (r *Runner) List(ctx context.Context) ([]string, error) {
	l, ok := r.Store.(store.Lister)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "store %T cannot list snapshots", r.Store)
	}
	prefix := r.Keyer.SnapshotPrefix(r.namespace())
	keys, err := l.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}
