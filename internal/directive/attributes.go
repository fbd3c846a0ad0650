package directive

import "strings"

// Attributes keeps directive attributes in order of first appearance.
type Attributes struct {
	keys   []string
	values map[string]string
}

// ParseAttributes picks every key="value" pair out of s. Single-quoted or
// unquoted values are ignored, as are any other fragments. A repeated key
// keeps its first position but takes the last value.
func ParseAttributes(s string) Attributes {
	var a Attributes
	for _, m := range attribute.FindAllStringSubmatch(s, -1) {
		a.Set(strings.TrimSpace(m[1]), m[2])
	}
	return a
}

func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

func (a Attributes) Len() int {
	return len(a.keys)
}

// Keys returns a copy of the keys in order.
func (a Attributes) Keys() []string {
	ret := make([]string, len(a.keys))
	copy(ret, a.keys)
	return ret
}

// Each calls fn for every attribute in order.
func (a Attributes) Each(fn func(key, value string)) {
	for _, k := range a.keys {
		fn(k, a.values[k])
	}
}
