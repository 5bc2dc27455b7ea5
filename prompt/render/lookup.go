/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package render

import (
	"fmt"
	"reflect"
	"strings"
)

// lookup descends through maps and structs following path. A missing key or
// field, or a nil value on the way, reports not found. Descending into any
// other kind of value is an error.
func lookup(v any, path []string) (any, bool, error) {
	for _, segment := range path {
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil, false, nil
			}
			rv = rv.Elem()
		}

		switch rv.Kind() {
		case reflect.Invalid:
			return nil, false, nil
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return nil, false, fmt.Errorf("cannot look up %q in map with %s keys", segment, rv.Type().Key())
			}
			val := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
			if !val.IsValid() {
				return nil, false, nil
			}
			v = val.Interface()
		case reflect.Struct:
			field, ok := structField(rv, segment)
			if !ok {
				return nil, false, nil
			}
			v = field.Interface()
		default:
			return nil, false, fmt.Errorf("cannot look up %q in value of type %s", segment, rv.Type())
		}
	}
	return v, true, nil
}

// structField finds an exported field by Go name or by its json tag name.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if f.Name == name || (tag != "" && tag != "-" && tag == name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
