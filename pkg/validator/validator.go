package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

var (
	ErrUnset = errors.New("value is required")
)

// Validator checks a single request field.
type Validator interface {
	Validate(value interface{}) error
}

type StringFunc func(s string) error

// String validates string and *string fields.
type String struct {
	Optional   bool
	UnsetZero  bool // treat "" as unset
	MinLen     int
	MaxLen     int
	Regex      *regexp.Regexp
	Validators []StringFunc
}

func (v *String) Validate(value interface{}) error {
	s, ok := toString(value)
	if !ok {
		if v.Optional {
			return nil
		}
		return ErrUnset
	}

	if v.UnsetZero && s == "" {
		if v.Optional {
			return nil
		}
		return ErrUnset
	}

	if v.MinLen > 0 && len(s) < v.MinLen {
		return fmt.Errorf("length must be at least %d", v.MinLen)
	}

	if v.MaxLen > 0 && len(s) > v.MaxLen {
		return fmt.Errorf("length must be at most %d", v.MaxLen)
	}

	if v.Regex != nil && !v.Regex.MatchString(s) {
		return errors.New("invalid format")
	}

	for _, fn := range v.Validators {
		if err := fn(s); err != nil {
			return err
		}
	}

	return nil
}

func toString(value interface{}) (string, bool) {
	switch s := value.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	}
	return "", false
}

// UInt32 validates uint32 and *uint32 fields.
type UInt32 struct {
	Optional bool
	Min      *uint32
	Max      *uint32
}

func (v *UInt32) Validate(value interface{}) error {
	var ui uint32
	switch i := value.(type) {
	case uint32:
		ui = i
	case *uint32:
		if i == nil {
			if v.Optional {
				return nil
			}
			return ErrUnset
		}
		ui = *i
	default:
		return errors.New("expect uint32")
	}

	if v.Min != nil && ui < *v.Min {
		return fmt.Errorf("must be at least %d", *v.Min)
	}

	if v.Max != nil && ui > *v.Max {
		return fmt.Errorf("must be at most %d", *v.Max)
	}

	return nil
}

// Slice validates slice fields, applying Validator to every element.
type Slice struct {
	Optional  bool
	MinLen    int
	MaxLen    int
	Validator Validator
}

func (v *Slice) Validate(value interface{}) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		if v.Optional {
			return nil
		}
		return errors.New("expect slice")
	}

	if rv.Len() == 0 && v.Optional {
		return nil
	}

	if v.MinLen > 0 && rv.Len() < v.MinLen {
		return fmt.Errorf("must have at least %d elements", v.MinLen)
	}

	if v.MaxLen > 0 && rv.Len() > v.MaxLen {
		return fmt.Errorf("must have at most %d elements", v.MaxLen)
	}

	if v.Validator != nil {
		for i := 0; i < rv.Len(); i++ {
			if err := v.Validator.Validate(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("element %d: %v", i, err)
			}
		}
	}

	return nil
}

// Form validates a request struct field by field. Keys are matched against the
// field's json tag, schema tag, or exported name.
type Form struct {
	rules map[string]Validator
}

func MustForm(rules map[string]Validator) *Form {
	if rules == nil {
		panic("validator: nil form rules")
	}
	return &Form{rules: rules}
}

func (f *Form) Validate(req interface{}) error {
	rv := reflect.ValueOf(req)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errors.New("nil request")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errors.New("expect struct request")
	}

	fields := fieldIndex(rv.Type())
	for key, v := range f.rules {
		i, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown form field: %s", key)
		}
		if err := v.Validate(rv.Field(i).Interface()); err != nil {
			return fmt.Errorf("%s: %v", key, err)
		}
	}

	return nil
}

func fieldIndex(t reflect.Type) map[string]int {
	idx := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		ft := t.Field(i)
		idx[ft.Name] = i
		if tag := tagName(ft.Tag.Get("json")); tag != "" {
			idx[tag] = i
		}
		if tag := tagName(ft.Tag.Get("schema")); tag != "" {
			idx[tag] = i
		}
	}
	return idx
}

func tagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
