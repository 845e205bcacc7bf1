package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNoMapping is returned when an entity has no mapping.
	ErrNoMapping = errors.New("no mapping configured")

	// ErrAmbiguousMapping is returned when a lookup or declaration
	// resolves to more than one mapping.
	ErrAmbiguousMapping = errors.New("ambiguous mapping")
)

// Property is the resolved mapping of one struct field.
type Property struct {
	Field     string    // Go field name
	Column    string    // backing column name
	Type      StoreType // declared or inferred column type
	Explicit  bool      // Type came from the mapping rather than inference
	Key       bool
	Generated bool // value is generated by the store (identity)

	index []int
}

// Entity is the resolved mapping of one struct type.
type Entity struct {
	Name  string
	Table string

	goType  reflect.Type
	key     int
	props   []Property
	byField map[string]int
}

// Properties returns the mapped properties in struct field order.
func (e *Entity) Properties() []Property {
	out := make([]Property, len(e.props))
	copy(out, e.props)
	return out
}

// Property returns the mapping of the named Go field.
func (e *Entity) Property(field string) (Property, bool) {
	i, ok := e.byField[field]
	if !ok {
		return Property{}, false
	}
	return e.props[i], true
}

// Key returns the key property.
func (e *Entity) Key() Property {
	return e.props[e.key]
}

// FieldIndex returns the reflect index path of a mapped property.
func (p Property) FieldIndex() []int {
	return p.index
}

// Config is an immutable set of entity mappings.
type Config struct {
	byType map[reflect.Type]*Entity
	byName map[string][]*Entity
	order  []*Entity
}

// Entity resolves the mapping for the type of sample.
// sample may be a value or a pointer to one.
func (c *Config) Entity(sample any) (*Entity, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: configuration is nil", ErrNoMapping)
	}
	t, err := structType(sample)
	if err != nil {
		return nil, err
	}
	e, ok := c.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w for entity %s", ErrNoMapping, t)
	}
	return e, nil
}

// Lookup resolves a mapping by entity type name (case-insensitive).
func (c *Config) Lookup(name string) (*Entity, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: configuration is nil", ErrNoMapping)
	}
	matches := c.byName[strings.ToLower(name)]
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w for entity %q", ErrNoMapping, name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d entities named %q", ErrAmbiguousMapping, len(matches), name)
	}
}

// Entities returns all mappings in registration order.
func (c *Config) Entities() []*Entity {
	out := make([]*Entity, len(c.order))
	copy(out, c.order)
	return out
}

func structType(sample any) (reflect.Type, error) {
	t := reflect.TypeOf(sample)
	if t == nil {
		return nil, fmt.Errorf("entity sample is nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity %s is not a struct", t)
	}
	return t, nil
}
