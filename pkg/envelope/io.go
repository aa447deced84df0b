package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/objgraph/pkg/errors"
)

// Parse decodes an envelope from JSON bytes.
func Parse(data []byte) (*Envelope, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedRecord, "empty envelope")
	}
	if !json.Valid(data) {
		return nil, errors.New(errors.ErrCodeMalformedRecord, "envelope is not valid JSON")
	}
	var env Envelope
	if err := env.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &env, nil
}

// Read decodes an envelope from r.
func Read(r io.Reader) (*Envelope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read envelope: %w", err)
	}
	return Parse(data)
}

// ImportFile reads an envelope from the file at path.
func ImportFile(path string) (*Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	env, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// Marshal encodes the envelope as compact JSON.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Write encodes the envelope as compact JSON followed by a newline.
func (e *Envelope) Write(w io.Writer) error {
	data, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportFile writes the envelope to a file at path.
func (e *Envelope) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := e.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
