package codec

import (
	"github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/object"
)

// Attribute flag bits. A set bit means the attribute is false.
const (
	FlagNotConfigurable uint8 = 1 << iota
	FlagNotEnumerable
	FlagNotWritable

	flagMask = FlagNotConfigurable | FlagNotEnumerable | FlagNotWritable
)

// PackAttributes packs a into its flag byte. present is false when every
// attribute is true, in which case the byte is omitted on the wire.
func PackAttributes(a object.Attributes) (flags uint8, present bool) {
	if !a.Configurable {
		flags |= FlagNotConfigurable
	}
	if !a.Enumerable {
		flags |= FlagNotEnumerable
	}
	if !a.Writable {
		flags |= FlagNotWritable
	}
	return flags, flags != 0
}

// UnpackAttributes inverts [PackAttributes]. An absent byte means
// [object.DefaultAttributes].
func UnpackAttributes(flags uint8, present bool) (object.Attributes, error) {
	if !present {
		return object.DefaultAttributes, nil
	}
	if flags&^flagMask != 0 {
		return object.Attributes{}, errors.New(errors.ErrCodeMalformedRecord, "attribute flags %d out of range [0, 7]", flags)
	}
	return object.Attributes{
		Configurable: flags&FlagNotConfigurable == 0,
		Enumerable:   flags&FlagNotEnumerable == 0,
		Writable:     flags&FlagNotWritable == 0,
	}, nil
}
