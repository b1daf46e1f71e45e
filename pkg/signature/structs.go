package signature

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/llm"
)

// FromStructs derives a signature from a request struct and a response
// struct. Each exported field becomes a signature field named after its
// json tag, described by its desc (or description) tag and typed after its Go kind. Lists,
// maps and nested structs carry a JSON schema of their values.
func FromStructs(in, out any, instructions string) (Signature, error) {
	inputs, err := structFields(in)
	if err != nil {
		return Signature{}, fmt.Errorf("input struct: %w", err)
	}
	outputs, err := structFields(out)
	if err != nil {
		return Signature{}, fmt.Errorf("output struct: %w", err)
	}
	return New(instructions, inputs, outputs)
}

func structFields(v any) ([]Field, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct, got %v", t)
	}

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, ok := FieldName(sf)
		if !ok {
			continue
		}

		field := Field{
			Name:        name,
			Description: sf.Tag.Get("desc"),
		}
		if field.Description == "" {
			field.Description = sf.Tag.Get("description")
		}

		ft := sf.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		switch ft.Kind() {
		case reflect.String:
			field.Type = TypeString
		case reflect.Bool:
			field.Type = TypeBool
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			field.Type = TypeInt
		case reflect.Float32, reflect.Float64:
			field.Type = TypeFloat
		case reflect.Slice, reflect.Array:
			field.Type = TypeList
			field.Annotation = "list[" + elemName(ft.Elem()) + "]"
		case reflect.Map, reflect.Struct:
			field.Type = TypeDict
			if ft.Kind() == reflect.Map {
				field.Annotation = "dict[" + elemName(ft.Key()) + ", " + elemName(ft.Elem()) + "]"
			} else {
				field.Annotation = ft.Name()
			}
		default:
			return nil, fmt.Errorf("field %s has unsupported type %s", sf.Name, sf.Type)
		}

		if field.Type == TypeList || field.Type == TypeDict {
			schema, err := llm.SchemaFromStructAsMap(reflect.Zero(ft).Interface())
			if err != nil {
				return nil, fmt.Errorf("field %s schema: %w", sf.Name, err)
			}
			field.Schema = schema
		}

		fields = append(fields, field)
	}
	return fields, nil
}

// FieldName returns the signature field name of a struct field: its json
// tag name, or the Go name when untagged. It reports false for unexported
// fields and fields tagged json:"-".
func FieldName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() {
		return "", false
	}
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name, true
	}
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return "", false
	case "":
		return sf.Name, true
	}
	return name, true
}

func elemName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Pointer:
		return elemName(t.Elem())
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.Kind().String()
}
