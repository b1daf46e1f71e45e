package signature

import (
	"fmt"
	"strings"
)

// Parse builds a signature from shorthand of the form
//
//	name[: type], ... -> name[: type], ...
//
// Types are str (the default), int, float, bool, list, dict, and the
// parameterised list[...] and dict[...].
func Parse(shorthand string) (Signature, error) {
	sides := strings.Split(shorthand, "->")
	if len(sides) != 2 {
		return Signature{}, fmt.Errorf("signature %q must contain exactly one '->'", shorthand)
	}

	inputs, err := parseFields(sides[0])
	if err != nil {
		return Signature{}, fmt.Errorf("signature %q inputs: %w", shorthand, err)
	}
	outputs, err := parseFields(sides[1])
	if err != nil {
		return Signature{}, fmt.Errorf("signature %q outputs: %w", shorthand, err)
	}
	if len(outputs) == 0 {
		return Signature{}, fmt.Errorf("signature %q has no output fields", shorthand)
	}

	sig, err := New("", inputs, outputs)
	if err != nil {
		return Signature{}, fmt.Errorf("signature %q: %w", shorthand, err)
	}
	return sig, nil
}

// MustParse is like Parse but panics on error
func MustParse(shorthand string) Signature {
	sig, err := Parse(shorthand)
	if err != nil {
		panic(err)
	}
	return sig
}

func parseFields(s string) ([]Field, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var fields []Field
	for _, item := range splitTopLevel(s) {
		name, typ, hasType := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty field name in %q", strings.TrimSpace(s))
		}

		field := Field{Name: name, Type: TypeString}
		if hasType {
			t, annotation, err := parseType(strings.TrimSpace(typ))
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			field.Type = t
			field.Annotation = annotation
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// parseType returns the type tag and, for parameterised types, the annotation
func parseType(s string) (Type, string, error) {
	switch s {
	case "str", "int", "float", "bool", "list", "dict":
		return Type(s), "", nil
	}

	base, rest, ok := strings.Cut(s, "[")
	if ok && strings.HasSuffix(rest, "]") && strings.TrimSpace(rest) != "]" {
		switch base {
		case "list":
			return TypeList, s, nil
		case "dict":
			return TypeDict, s, nil
		}
	}
	return "", "", fmt.Errorf("unknown type %q", s)
}

// splitTopLevel splits on commas that are not nested inside brackets
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
