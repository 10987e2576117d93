// Package payload reads loosely typed request field maps, as produced by
// decoding a JSON object into map[string]any, and collects every offending
// field into a single validation error.
//
//	r := payload.Read(fields)
//	userID := r.PositiveInt("user_id")
//	qty := r.PositiveInt("quantity")
//	if err := r.Err(); err != nil {
//		return err // common.ErrValidation listing user_id and/or quantity
//	}
package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Fields is a decoded JSON object.
type Fields map[string]any

// Reader extracts typed values from Fields. Each accessor returns the zero
// value on failure and records the field name.
type Reader struct {
	fields Fields
	bad    []string
}

func Read(f Fields) *Reader {
	return &Reader{fields: f}
}

func (r *Reader) fail(name string) {
	for _, b := range r.bad {
		if b == name {
			return
		}
	}
	r.bad = append(r.bad, name)
}

// Err returns a validation error naming every offending field, or nil.
func (r *Reader) Err() error {
	if len(r.bad) == 0 {
		return nil
	}
	return common.Validation("invalid or missing fields", r.bad...)
}

// text renders scalars the way a loosely typed client would send them.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	default:
		return "", false
	}
}

// OptionalString returns the trimmed value and whether it was present and
// non-empty. Non-scalar values are recorded as invalid.
func (r *Reader) OptionalString(name string) (string, bool) {
	v, ok := r.fields[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := text(v)
	if !ok {
		r.fail(name)
		return "", false
	}
	return s, s != ""
}

// String returns a required non-empty value.
func (r *Reader) String(name string) string {
	s, ok := r.OptionalString(name)
	if !ok {
		r.fail(name)
	}
	return s
}

// Secret is String without trimming: surrounding spaces are significant.
func (r *Reader) Secret(name string) string {
	v, ok := r.fields[name].(string)
	if !ok || v == "" {
		r.fail(name)
		return ""
	}
	return v
}

// PositiveInt returns a required integer > 0.
func (r *Reader) PositiveInt(name string) uint64 {
	s := r.String(name)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		r.fail(name)
		return 0
	}
	return n
}

// NonNegativeInt returns a required integer >= 0.
func (r *Reader) NonNegativeInt(name string) int64 {
	s := r.String(name)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		r.fail(name)
		return 0
	}
	return n
}

// PositiveDecimal returns a required decimal > 0 in canonical form.
func (r *Reader) PositiveDecimal(name string) string {
	s := r.String(name)
	if s == "" {
		return ""
	}
	d, err := ParseDecimal(s)
	if err != nil || !d.IsPositive() {
		r.fail(name)
		return ""
	}
	return d.String()
}

// Email returns a required, syntactically valid address.
func (r *Reader) Email(name string) string {
	s := r.String(name)
	if s == "" {
		return ""
	}
	if err := validate.Var(s, "email"); err != nil {
		r.fail(name)
		return ""
	}
	return s
}

// OneOf returns a required value that must equal one of allowed.
func (r *Reader) OneOf(name string, allowed ...string) string {
	s := r.String(name)
	if s == "" {
		return ""
	}
	if err := validate.Var(s, "oneof="+strings.Join(allowed, " ")); err != nil {
		r.fail(name)
		return ""
	}
	return s
}

// ParseDecimal parses a decimal string such as "19.99".
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// ID parses a path identifier such as the {id} of /orders/{id}/status.
func ID(name, raw string) (uint64, error) {
	return Read(Fields{name: raw}).positiveIntErr(name)
}

func (r *Reader) positiveIntErr(name string) (uint64, error) {
	n := r.PositiveInt(name)
	return n, r.Err()
}
