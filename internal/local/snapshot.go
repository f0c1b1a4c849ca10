package local

import (
	"bytes"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Snapshot is the full local state: collection name to ordered records.
type Snapshot map[string][]types.Record

// EmptySnapshot returns a snapshot holding every standard collection, empty.
func EmptySnapshot() Snapshot {
	s := make(Snapshot, len(types.StandardCollections))
	for _, name := range types.StandardCollections {
		s[name] = []types.Record{}
	}
	return s
}

// ParseSnapshot decodes a state document. The document must be a JSON
// object; any standard collection that is missing or not an array becomes
// empty, non-object elements are dropped and unknown keys are ignored.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var doc map[string]any
	if err := gojson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is not an object")
	}

	s := EmptySnapshot()
	for _, name := range types.StandardCollections {
		items, ok := doc[name].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			s[name] = append(s[name], types.Record(obj))
		}
	}
	return s, nil
}

// Clone returns a deep copy holding exactly the standard collections.
func (s Snapshot) Clone() Snapshot {
	out := EmptySnapshot()
	for _, name := range types.StandardCollections {
		recs := s[name]
		cp := make([]types.Record, 0, len(recs))
		for _, rec := range recs {
			cp = append(cp, copyRecord(rec))
		}
		out[name] = cp
	}
	return out
}

// Len returns the total number of records.
func (s Snapshot) Len() int {
	n := 0
	for _, recs := range s {
		n += len(recs)
	}
	return n
}

// MarshalJSON encodes the standard collections in their canonical order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range types.StandardCollections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := gojson.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		recs := s[name]
		if recs == nil {
			recs = []types.Record{}
		}
		val, err := gojson.Marshal(recs)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Indented encodes the snapshot as pretty-printed JSON with two-space indent.
func (s Snapshot) Indented() ([]byte, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := gojson.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func copyRecord(rec types.Record) types.Record {
	if rec == nil {
		return nil
	}
	out := make(types.Record, len(rec))
	for k, v := range rec {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = copyValue(inner)
		}
		return out
	case types.Record:
		return copyRecord(val)
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = copyValue(inner)
		}
		return out
	default:
		return v
	}
}
