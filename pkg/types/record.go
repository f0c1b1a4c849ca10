package types

import (
	"fmt"
	"strconv"
	"strings"
)

// IDField is the identifier key carried by every record.
const IDField = "_id"

// Record is a single entity instance: a JSON object whose keys are the
// entity's field names plus IDField.
type Record map[string]any

// ID returns the record identifier, or "" when absent.
func (r Record) ID() string {
	return r.String(IDField)
}

// String returns the field value rendered as text. Missing and null values
// render as "". Whole numbers render without a fractional part.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// Has reports whether field is present and non-blank after trimming.
func (r Record) Has(field string) bool {
	return strings.TrimSpace(r.String(field)) != ""
}

// Clone returns a shallow copy of the record. Field values are scalars in
// practice, so a shallow copy isolates callers from the original map.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of r with every key of partial applied on top, except
// IDField which is immutable.
func (r Record) Merge(partial Record) Record {
	out := r.Clone()
	if out == nil {
		out = make(Record, len(partial))
	}
	for k, v := range partial {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// WithoutID returns a copy of r with IDField removed.
func (r Record) WithoutID() Record {
	out := r.Clone()
	delete(out, IDField)
	return out
}

// FormatValue renders a JSON scalar the way listings display it.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
