package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ParamType is the value type of a task parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInt     ParamType = "int"
	ParamFloat   ParamType = "float"
	ParamBool    ParamType = "bool"
	ParamStrings ParamType = "strings"
	ParamInts    ParamType = "ints"
	ParamFloats  ParamType = "floats"
)

// IsList reports whether the type holds multiple values.
func (t ParamType) IsList() bool {
	return t == ParamStrings || t == ParamInts || t == ParamFloats
}

// Elem returns the element type of a list type, or t itself.
func (t ParamType) Elem() ParamType {
	switch t {
	case ParamStrings:
		return ParamString
	case ParamInts:
		return ParamInt
	case ParamFloats:
		return ParamFloat
	}
	return t
}

// ParseParamType parses a type name. Aliases like "str", "number" and
// "list[int]" are accepted; the empty string means string.
func ParseParamType(s string) (ParamType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "str":
		return ParamString, nil
	case "int", "integer":
		return ParamInt, nil
	case "float", "number":
		return ParamFloat, nil
	case "bool", "boolean", "flag":
		return ParamBool, nil
	case "strings", "list", "[]string", "list[str]", "list[string]":
		return ParamStrings, nil
	case "ints", "[]int", "list[int]":
		return ParamInts, nil
	case "floats", "[]float", "list[float]":
		return ParamFloats, nil
	}
	return "", ErrInvalidTask.WithDetailsf("unknown parameter type %q", s)
}

// Param declares one task parameter.
type Param struct {
	Name       string    `json:"name" yaml:"name"`
	Type       ParamType `json:"type" yaml:"type"`
	Default    any       `json:"default,omitempty" yaml:"default,omitempty"`
	Usage      string    `json:"usage,omitempty" yaml:"usage,omitempty"`
	EnvVar     string    `json:"env,omitempty" yaml:"env,omitempty"`
	Short      string    `json:"short,omitempty" yaml:"short,omitempty"`
	Required   bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Positional bool      `json:"positional,omitempty" yaml:"positional,omitempty"`
	Choices    []string  `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// FlagName returns the command-string form used on the command line.
func (p Param) FlagName() string {
	return CommandName(p.Name)
}

// Validate checks the declaration and normalizes Type and Default in place.
func (p *Param) Validate() error {
	if CommandName(p.Name) == "" {
		return ErrInvalidTask.WithDetails("parameter name is empty")
	}
	if p.Type == "" {
		p.Type = ParamString
	}
	t, err := ParseParamType(string(p.Type))
	if err != nil {
		return err
	}
	p.Type = t
	if p.Default != nil {
		v, err := Coerce(t, p.Default)
		if err != nil {
			return ErrInvalidTask.WithDetailsf("parameter %q default: %v", p.Name, err)
		}
		p.Default = v
	}
	return nil
}

// Zero returns the zero value for the parameter type.
func (p Param) Zero() any {
	switch p.Type {
	case ParamInt:
		return 0
	case ParamFloat:
		return 0.0
	case ParamBool:
		return false
	case ParamStrings:
		return []string(nil)
	case ParamInts:
		return []int(nil)
	case ParamFloats:
		return []float64(nil)
	}
	return ""
}

// CheckChoice returns ErrInvalidArgument when v is not one of p.Choices.
func (p Param) CheckChoice(v any) error {
	if len(p.Choices) == 0 {
		return nil
	}
	var vals []string
	switch x := v.(type) {
	case []string:
		vals = x
	default:
		vals = []string{fmt.Sprint(x)}
	}
	for _, s := range vals {
		if !slices.Contains(p.Choices, s) {
			return ErrInvalidArgument.WithDetailsf("%s: %q is not one of %s", p.FlagName(), s, strings.Join(p.Choices, ", "))
		}
	}
	return nil
}

// ParseValue parses raw command-line text into the parameter's type.
// List types split on commas.
func ParseValue(t ParamType, raw string) (any, error) {
	if t.IsList() {
		var parts []string
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		vals := make([]any, len(parts))
		for i, s := range parts {
			v, err := ParseValue(t.Elem(), s)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return Coerce(t, vals)
	}

	switch t {
	case ParamInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, ErrInvalidArgument.WithDetailsf("%q is not an integer", raw)
		}
		return n, nil
	case ParamFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, ErrInvalidArgument.WithDetailsf("%q is not a number", raw)
		}
		return f, nil
	case ParamBool:
		return ParseBool(raw)
	}
	return raw, nil
}

// ParseBool accepts true/false, yes/no, y/n, on/off and 1/0.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off", "":
		return false, nil
	}
	return false, ErrInvalidArgument.WithDetailsf("%q is not a boolean", raw)
}

// Coerce converts a loosely typed value (from Lua, YAML or JSON) into t.
func Coerce(t ParamType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if t.IsList() {
		var items []any
		switch x := v.(type) {
		case []any:
			items = x
		case []string:
			for _, s := range x {
				items = append(items, s)
			}
		case []int:
			for _, n := range x {
				items = append(items, n)
			}
		case []float64:
			for _, f := range x {
				items = append(items, f)
			}
		case string:
			return ParseValue(t, x)
		default:
			items = []any{x}
		}
		for i, it := range items {
			if it == nil {
				return nil, ErrInvalidArgument.WithDetailsf("%s item %d is null", t, i)
			}
		}
		switch t {
		case ParamStrings:
			out := make([]string, 0, len(items))
			for _, it := range items {
				s, err := Coerce(ParamString, it)
				if err != nil {
					return nil, err
				}
				out = append(out, s.(string))
			}
			return out, nil
		case ParamInts:
			out := make([]int, 0, len(items))
			for _, it := range items {
				n, err := Coerce(ParamInt, it)
				if err != nil {
					return nil, err
				}
				out = append(out, n.(int))
			}
			return out, nil
		default:
			out := make([]float64, 0, len(items))
			for _, it := range items {
				f, err := Coerce(ParamFloat, it)
				if err != nil {
					return nil, err
				}
				out = append(out, f.(float64))
			}
			return out, nil
		}
	}

	switch t {
	case ParamString:
		switch x := v.(type) {
		case string:
			return x, nil
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		default:
			return fmt.Sprint(x), nil
		}
	case ParamInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x != float64(int(x)) {
				return nil, ErrInvalidArgument.WithDetailsf("%v is not an integer", x)
			}
			return int(x), nil
		case string:
			return ParseValue(t, x)
		}
	case ParamFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			return ParseValue(t, x)
		}
	case ParamBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			return ParseBool(x)
		}
	}
	return nil, ErrInvalidArgument.WithDetailsf("cannot use %v (%T) as %s", v, v, t)
}
