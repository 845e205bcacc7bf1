// Package entity declares the two record shapes queried by the demo.
//
// BadType and GoodType are deliberately identical. Any behavioral
// difference between them comes from their mappings (see package mapping),
// never from the Go types.
package entity

// BadType is backed by a table whose SomeVarchar column is varchar, but its
// mapping leaves the property at the default (wide) inference.
type BadType struct {
	Id          int
	SomeVarchar string
}

// GoodType is backed by a varchar column and its mapping says so.
type GoodType struct {
	Id          int
	SomeVarchar string
}

// Registry returns a sample value for every entity, keyed by type name.
// File-based mapping loaders use it to resolve entity names.
func Registry() map[string]any {
	return map[string]any{
		"BadType":  BadType{},
		"GoodType": GoodType{},
	}
}
