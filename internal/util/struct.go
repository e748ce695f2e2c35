package util

import (
	"reflect"

	"github.com/pkg/errors"
)

// IsStructInitialized returns an error naming the first nil or zero field of s.
// Fields tagged `wire:"-"` are skipped. s must be a struct or a pointer to one.
func IsStructInitialized(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return errors.New("struct is nil")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.Errorf("expected struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("wire") == "-" || !field.IsExported() {
			continue
		}

		if v.Field(i).IsZero() {
			return errors.Errorf("field %s is not initialized", field.Name)
		}
	}

	return nil
}
