package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	gojson "github.com/goccy/go-json"

	"github.com/mesh-intelligence/biblio/pkg/types"
)

// Kind is the value kind of a field. The set is closed.
type Kind int

// Field kinds.
const (
	KindText Kind = iota
	KindTextarea
	KindNumber
	KindDate
	KindEmail
	KindPassword
	KindSelect
)

var kindNames = map[Kind]string{
	KindText:     "text",
	KindTextarea: "textarea",
	KindNumber:   "number",
	KindDate:     "date",
	KindEmail:    "email",
	KindPassword: "password",
	KindSelect:   "select",
}

// DateLayout is the calendar date format stored in date fields.
const DateLayout = "2006-01-02"

// validate is shared by all kinds; validator.Validate is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// String implements fmt.Stringer.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// InputType returns the rendering hint for form builders.
func (k Kind) InputType() string {
	return k.String()
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown field kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, s := range kindNames {
		if s == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q", name)
}

// errInvalid is returned by normalize; callers wrap it with the field label.
var errInvalid = types.ErrInvalidFieldValue

// normalize checks value against the kind and returns the canonical value to
// store. Blank values are returned unchanged (select blanks become nil).
func (k Kind) normalize(value any, options []Option) (any, error) {
	if isBlank(value) {
		if k == KindSelect {
			return nil, nil
		}
		return value, nil
	}

	switch k {
	case KindNumber:
		return normalizeNumber(value)
	case KindDate:
		s, ok := value.(string)
		if !ok {
			return nil, errInvalid
		}
		s = strings.TrimSpace(s)
		if err := validate.Var(s, "datetime="+DateLayout); err != nil {
			return nil, errInvalid
		}
		return s, nil
	case KindEmail:
		s, ok := value.(string)
		if !ok {
			return nil, errInvalid
		}
		s = strings.TrimSpace(s)
		if err := validate.Var(s, "email"); err != nil {
			return nil, errInvalid
		}
		return s, nil
	case KindSelect:
		s, ok := value.(string)
		if !ok {
			return nil, errInvalid
		}
		if len(options) == 0 {
			return s, nil
		}
		values := make([]string, len(options))
		for i, o := range options {
			values[i] = o.Value
		}
		if err := validate.Var(s, "oneof="+strings.Join(values, " ")); err != nil {
			return nil, errInvalid
		}
		return s, nil
	default:
		switch value.(type) {
		case string, float64, float32, int, int64, bool:
			return value, nil
		}
		return nil, errInvalid
	}
}

func normalizeNumber(value any) (any, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case gojson.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, errInvalid
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, errInvalid
		}
		f = parsed
	default:
		return nil, errInvalid
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, errInvalid
	}
	return f, nil
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}
