package codec

import (
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/registry"
)

// Dispatch maps type identities to codecs.
//
// Like the registry it is written during setup only; Find is safe for
// concurrent use once setup is done.
type Dispatch struct {
	codecs   map[registry.Key]Codec
	fallback Codec
}

// NewDispatch creates a dispatch table that falls back to fallback for
// unknown type identities.
func NewDispatch(fallback Codec) *Dispatch {
	return &Dispatch{codecs: make(map[registry.Key]Codec), fallback: fallback}
}

// Attach binds c to the type identity typ, replacing any earlier binding.
func (d *Dispatch) Attach(typ any, c Codec) error {
	key, ok := registry.KeyOf(typ)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "type identity %T cannot carry a codec", typ)
	}
	if c == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil codec for %s", key)
	}
	d.codecs[key] = c
	return nil
}

// Find returns the codec bound to typ, or the fallback codec.
func (d *Dispatch) Find(typ any) Codec {
	if key, ok := registry.KeyOf(typ); ok {
		if c, ok := d.codecs[key]; ok {
			return c
		}
	}
	return d.fallback
}

// Len returns the number of attached codecs.
func (d *Dispatch) Len() int { return len(d.codecs) }
