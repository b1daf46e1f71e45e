package program

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/signature"
)

// coerce converts the text of a section to the type of its field
func coerce(f signature.Field, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	switch f.Type {
	case signature.TypeString, "":
		return s, nil
	case signature.TypeInt:
		return parseInt(scalarText(s))
	case signature.TypeFloat:
		return parseFloat(scalarText(s))
	case signature.TypeBool:
		return parseBool(scalarText(s))
	case signature.TypeList, signature.TypeDict:
		var v any
		if err := json.Unmarshal([]byte(llm.ExtractJSONFromResponse(s)), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON for %s: %w", f.TypeName(), err)
		}
		return coerceValue(f, v)
	}
	return nil, fmt.Errorf("unknown type %q", f.Type)
}

// coerceValue converts a decoded JSON value to the type of its field
func coerceValue(f signature.Field, v any) (any, error) {
	switch f.Type {
	case signature.TypeString, "":
		if s, ok := v.(string); ok {
			return s, nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	case signature.TypeInt:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("%v is not an integer", n)
			}
			return int(n), nil
		case string:
			return parseInt(scalarText(n))
		}
	case signature.TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case string:
			return parseFloat(scalarText(n))
		}
	case signature.TypeBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return parseBool(scalarText(b))
		}
	case signature.TypeList:
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected a JSON array, got %T", v)
		}
		return stringsIfAll(items), nil
	case signature.TypeDict:
		if obj, ok := v.(map[string]any); ok {
			return obj, nil
		}
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	default:
		return nil, fmt.Errorf("unknown type %q", f.Type)
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, f.TypeName())
}

// scalarText strips quotes, backticks and a trailing period
func scalarText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}

func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

func parseFloat(s string) (float64, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, err2 := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err := errors.Join(err1, err2); err != nil {
			return 0, fmt.Errorf("%q is not a fraction: %w", s, err)
		}
		if d == 0 {
			return 0, fmt.Errorf("%q divides by zero", s)
		}
		return n / d, nil
	}
	return 0, fmt.Errorf("%q is not a number", s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes":
		return true, nil
	case "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}

func stringsIfAll(items []any) any {
	strs := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return items
		}
		strs = append(strs, s)
	}
	return strs
}

func jsonCompact(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
