// Package store persists boundary probability sequences.
//
// An artifact is a single protobuf message, encoded by hand with protowire:
//
//	message Boundary {
//	  string dataset = 1;
//	  repeated double values = 2 [packed = true];
//	  uint32 max_n = 3;
//	  int64 seed = 4;
//	}
package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protowire"
)

// DefaultDataset is the key probabilities are stored under.
const DefaultDataset = "word_boundary"

const (
	fieldDataset protowire.Number = 1
	fieldValues  protowire.Number = 2
	fieldMaxN    protowire.Number = 3
	fieldSeed    protowire.Number = 4
)

// ErrCorrupt is returned when an artifact cannot be decoded.
var ErrCorrupt = errors.New("store: corrupt artifact")

// Artifact is one stored probability sequence with the settings that
// produced it.
type Artifact struct {
	Dataset string
	Values  []float64
	MaxN    uint32
	Seed    int64
}

// Encode writes a as a protobuf message. Values are streamed rather than
// staged in memory.
func Encode(w io.Writer, a Artifact) error {
	bw := bufio.NewWriter(w)

	var head []byte
	if a.Dataset != "" {
		head = protowire.AppendTag(head, fieldDataset, protowire.BytesType)
		head = protowire.AppendString(head, a.Dataset)
	}
	if len(a.Values) > 0 {
		head = protowire.AppendTag(head, fieldValues, protowire.BytesType)
		head = protowire.AppendVarint(head, uint64(len(a.Values))*8)
	}
	if _, err := bw.Write(head); err != nil {
		return err
	}

	var buf [8]byte
	for _, v := range a.Values {
		b := protowire.AppendFixed64(buf[:0], math.Float64bits(v))
		if _, err := bw.Write(b); err != nil {
			return err
		}
	}

	var tail []byte
	if a.MaxN != 0 {
		tail = protowire.AppendTag(tail, fieldMaxN, protowire.VarintType)
		tail = protowire.AppendVarint(tail, uint64(a.MaxN))
	}
	if a.Seed != 0 {
		tail = protowire.AppendTag(tail, fieldSeed, protowire.VarintType)
		tail = protowire.AppendVarint(tail, uint64(a.Seed))
	}
	if _, err := bw.Write(tail); err != nil {
		return err
	}
	return bw.Flush()
}

// Decode parses an artifact produced by Encode. Unknown fields are skipped;
// values may be packed or unpacked.
func Decode(b []byte) (Artifact, error) {
	var a Artifact
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Artifact{}, fmt.Errorf("%w: %w", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldDataset && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return Artifact{}, fmt.Errorf("%w: dataset: %w", ErrCorrupt, protowire.ParseError(n))
			}
			a.Dataset = s
			b = b[n:]

		case num == fieldValues && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Artifact{}, fmt.Errorf("%w: values: %w", ErrCorrupt, protowire.ParseError(n))
			}
			if len(packed)%8 != 0 {
				return Artifact{}, fmt.Errorf("%w: packed values of %d bytes", ErrCorrupt, len(packed))
			}
			if a.Values == nil {
				a.Values = make([]float64, 0, len(packed)/8)
			}
			for len(packed) > 0 {
				v, m := protowire.ConsumeFixed64(packed)
				a.Values = append(a.Values, math.Float64frombits(v))
				packed = packed[m:]
			}
			b = b[n:]

		case num == fieldValues && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return Artifact{}, fmt.Errorf("%w: value: %w", ErrCorrupt, protowire.ParseError(n))
			}
			a.Values = append(a.Values, math.Float64frombits(v))
			b = b[n:]

		case (num == fieldMaxN || num == fieldSeed) && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Artifact{}, fmt.Errorf("%w: field %d: %w", ErrCorrupt, num, protowire.ParseError(n))
			}
			if num == fieldMaxN {
				a.MaxN = uint32(v)
			} else {
				a.Seed = int64(v)
			}
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Artifact{}, fmt.Errorf("%w: field %d: %w", ErrCorrupt, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return a, nil
}

// Save writes a to path. The file appears only once fully written; on
// error nothing is left behind.
func Save(path string, a Artifact) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wbp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, a); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Load reads an artifact written by Save.
func Load(path string) (Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, err
	}
	a, err := Decode(b)
	if err != nil {
		return Artifact{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}
