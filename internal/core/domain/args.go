package domain

import (
	"maps"
	"slices"
)

// Args holds the parsed parameter values of one task invocation.
type Args struct {
	values map[string]any
	rest   []string
}

// NewArgs builds Args from a value map and trailing arguments.
func NewArgs(values map[string]any, rest []string) Args {
	if values == nil {
		values = map[string]any{}
	}
	return Args{values: values, rest: rest}
}

// Get returns the raw value of name and whether it is present.
func (a Args) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Has reports whether name has a value.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// String returns a string value, or "" when absent.
func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// Int returns an int value, or 0 when absent.
func (a Args) Int(name string) int {
	n, _ := a.values[name].(int)
	return n
}

// Float returns a float value, or 0 when absent.
func (a Args) Float(name string) float64 {
	f, _ := a.values[name].(float64)
	return f
}

// Bool returns a bool value, or false when absent.
func (a Args) Bool(name string) bool {
	b, _ := a.values[name].(bool)
	return b
}

// Strings returns a string list value.
func (a Args) Strings(name string) []string {
	s, _ := a.values[name].([]string)
	return s
}

// Ints returns an int list value.
func (a Args) Ints(name string) []int {
	n, _ := a.values[name].([]int)
	return n
}

// Floats returns a float list value.
func (a Args) Floats(name string) []float64 {
	f, _ := a.values[name].([]float64)
	return f
}

// Rest returns arguments not consumed by declared parameters.
func (a Args) Rest() []string {
	return a.rest
}

// Map returns a copy of all values.
func (a Args) Map() map[string]any {
	return maps.Clone(a.values)
}

// Names returns the parameter names with values, sorted.
func (a Args) Names() []string {
	return slices.Sorted(maps.Keys(a.values))
}
