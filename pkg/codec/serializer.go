package codec

import (
	"reflect"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/objgraph/pkg/envelope"
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/observability"
	"github.com/matzehuels/objgraph/pkg/registry"
)

// NamespaceSeparator joins a namespace prefix and an entry name.
const NamespaceSeparator = "."

// Serializer is a configured codec instance: a symbolic registry, a codec
// dispatch table and a depth budget.
//
// Register everything before the first Serialize or Deserialize. The first
// of those freezes the registry, after which registration fails with
// REGISTRY_FROZEN and the Serializer may be shared between goroutines.
type Serializer struct {
	reg      *registry.Registry
	dispatch *Dispatch
	maxDepth int
	logger   *log.Logger
}

// Option configures a [Serializer].
type Option func(*Serializer)

// WithMaxDepth sets the recursion budget. Values below 1 keep
// [DefaultMaxDepth].
func WithMaxDepth(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithLogger sets the logger for debug output. A nil logger keeps the
// default.
func WithLogger(l *log.Logger) Option {
	return func(s *Serializer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Serializer with the built-in entities registered.
func New(opts ...Option) *Serializer {
	s := &Serializer{
		reg:      registry.New(),
		dispatch: NewDispatch(ObjectCodec{}),
		maxDepth: DefaultMaxDepth,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, b := range builtins() {
		if err := s.reg.RegisterBuiltin(b.name, b.entity); err != nil {
			panic(err)
		}
		if err := s.dispatch.Attach(b.entity, b.codec); err != nil {
			panic(err)
		}
	}
	return s
}

// Registry returns the symbolic registry.
func (s *Serializer) Registry() *registry.Registry { return s.reg }

// Dispatch returns the codec dispatch table.
func (s *Serializer) Dispatch() *Dispatch { return s.dispatch }

// MaxDepth returns the recursion budget.
func (s *Serializer) MaxDepth() int { return s.maxDepth }

// binding is a validated registration that cannot fail when applied.
type binding struct {
	name   string
	entity any
	codec  Codec
}

// prepare validates a registration without applying it.
func (s *Serializer) prepare(name string, entity any, c Codec) (binding, error) {
	if s.reg.Frozen() {
		return binding{}, errors.New(errors.ErrCodeRegistryFrozen, "cannot register %q: registry is frozen", name)
	}
	if err := errors.ValidateName(name, false); err != nil {
		return binding{}, err
	}
	if _, ok := registry.KeyOf(entity); !ok {
		return binding{}, errors.New(errors.ErrCodeInvalidInput, "cannot register %q: %T has no identity", name, entity)
	}
	if existing, ok := s.reg.NameOf(entity); ok {
		return binding{}, errors.New(errors.ErrCodeNameConflict, "cannot register %q: entity is already registered under %q", name, existing)
	}
	if _, err := s.reg.Resolve(name); err == nil {
		return binding{}, errors.New(errors.ErrCodeNameConflict, "name %q is taken", name)
	}

	if t, ok := entity.(reflect.Type); ok && c == nil {
		switch {
		case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
			sc, err := NewStructCodec(t)
			if err != nil {
				return binding{}, errors.Wrap(errors.ErrCodeMalformedObject, err, "register %q", name)
			}
			c = sc
		case t.Kind() == reflect.Pointer || t.Kind() == reflect.Map:
			return binding{}, errors.New(errors.ErrCodeInvalidInput, "register %q: type %s needs an explicit codec", name, t)
		}
	}
	return binding{name: name, entity: entity, codec: c}, nil
}

func (s *Serializer) bind(b binding) error {
	if err := s.reg.Register(b.name, b.entity); err != nil {
		return err
	}
	if b.codec != nil {
		return s.dispatch.Attach(b.entity, b.codec)
	}
	return nil
}

// Register binds name to entity. If c is non-nil it becomes the codec for
// values whose type identity is entity, typically a prototype object.
func (s *Serializer) Register(name string, entity any, c Codec) error {
	b, err := s.prepare(name, entity, c)
	if err != nil {
		return err
	}
	if err := s.bind(b); err != nil {
		return err
	}
	s.logger.Debug("registered entity", "name", name, "codec", c != nil)
	return nil
}

// RegisterType binds name to the Go type t so that values of that type can
// be serialized. A nil codec on a pointer-to-struct type selects a
// [StructCodec]; pointer and map types of other kinds need an explicit codec.
func (s *Serializer) RegisterType(name string, t reflect.Type, c Codec) error {
	if t == nil {
		return errors.New(errors.ErrCodeInvalidInput, "register %q: nil type", name)
	}
	if k := t.Kind(); k != reflect.Pointer && k != reflect.Map {
		return errors.New(errors.ErrCodeInvalidInput, "register %q: type %s is not a pointer or map type", name, t)
	}
	return s.Register(name, t, c)
}

// RegisterTypeOf is [Serializer.RegisterType] for the type parameter T.
func RegisterTypeOf[T any](s *Serializer, name string, c Codec) error {
	return s.RegisterType(name, reflect.TypeFor[T](), c)
}

// Entry is one member of a namespace passed to
// [Serializer.RegisterNamespace]. Codec may be nil.
type Entry struct {
	Entity any
	Codec  Codec
}

// RegisterNamespace registers every entry as prefix.name, in sorted name
// order. All entries are validated first: if any would fail, none is
// registered.
func (s *Serializer) RegisterNamespace(prefix string, entries map[string]Entry) error {
	if err := errors.ValidateName(prefix, false); err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	slices.Sort(names)

	bindings := make([]binding, 0, len(names))
	seen := make(map[registry.Key]string, len(names))
	for _, name := range names {
		entry := entries[name]
		full := prefix + NamespaceSeparator + name
		if name == "" {
			return errors.New(errors.ErrCodeInvalidName, "namespace %q: empty entry name", prefix)
		}
		b, err := s.prepare(full, entry.Entity, entry.Codec)
		if err != nil {
			return err
		}
		key, _ := registry.KeyOf(entry.Entity)
		if other, dup := seen[key]; dup {
			return errors.New(errors.ErrCodeNameConflict, "namespace %q: %q and %q name the same entity", prefix, other, full)
		}
		seen[key] = full
		bindings = append(bindings, b)
	}

	for _, b := range bindings {
		if err := s.bind(b); err != nil {
			return err
		}
	}
	s.logger.Debug("registered namespace", "prefix", prefix, "entries", len(bindings))
	return nil
}

// Serialize encodes the graph reachable from v.
func (s *Serializer) Serialize(v any) (*envelope.Envelope, error) {
	s.reg.Freeze()
	start := time.Now()
	env, err := Serialize(v, s.reg, s.dispatch, s.maxDepth)
	records := 0
	if env != nil {
		records = env.Len()
	}
	elapsed := time.Since(start)
	observability.Codec().OnSerialize(records, elapsed, err)
	if err != nil {
		s.logger.Debug("serialize failed", "error", err)
		return nil, err
	}
	s.logger.Debug("serialized graph", "records", records, "duration", elapsed)
	return env, nil
}

// Deserialize rebuilds the graph described by env.
func (s *Serializer) Deserialize(env *envelope.Envelope) (any, error) {
	if env == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil envelope")
	}
	s.reg.Freeze()
	start := time.Now()
	v, err := Deserialize(env, s.reg, s.dispatch)
	elapsed := time.Since(start)
	observability.Codec().OnDeserialize(env.Len(), elapsed, err)
	if err != nil {
		s.logger.Debug("deserialize failed", "error", err)
		return nil, err
	}
	s.logger.Debug("deserialized graph", "records", env.Len(), "duration", elapsed)
	return v, nil
}

// Marshal serializes v and encodes the envelope as JSON.
func (s *Serializer) Marshal(v any) ([]byte, error) {
	env, err := s.Serialize(v)
	if err != nil {
		return nil, err
	}
	return env.Marshal()
}

// Unmarshal parses a JSON envelope and deserializes it.
func (s *Serializer) Unmarshal(data []byte) (any, error) {
	env, err := envelope.Parse(data)
	if err != nil {
		return nil, err
	}
	return s.Deserialize(env)
}
