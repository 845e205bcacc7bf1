package queryir

// Query represents an abstract query in the IR.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate represents a filter condition.
//
// Predicate types:
//   - Equals: field = literal
//   - And: all predicates must be true
type Predicate interface {
	predicateNode()
}

// Value is a typed literal compared against a field.
type Value interface {
	valueNode()
}

// Text is a string literal. How it is typed on the wire depends on the
// encoding declared for the field it is compared with.
type Text string

func (Text) valueNode() {}

// Int is an integer literal.
type Int int64

func (Int) valueNode() {}

// Select reads rows of one mapped entity.
//
// Semantics:
//
//	SELECT <fields> FROM <entity table> WHERE <filter> ORDER BY <key>
//
// Fields lists Go property names in output order. An empty list selects
// every mapped property, spelled out explicitly. Results are always
// ordered by the entity key.
type Select struct {
	Entity string    // mapped entity name, e.g. "BadType"
	Fields []string  // property names (nil = all mapped properties)
	Filter Predicate // WHERE condition (nil = no filter)
}

func (Select) queryNode() {}

// Equals compares a property with a literal.
//
//	Equals{Field: "SomeVarchar", Value: Text("Hello World")}
//
// compiles, for a wide property on SQL Server, to
//
//	[b].[SomeVarchar] = N'Hello World'
type Equals struct {
	Field string
	Value Value
}

func (Equals) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Where is shorthand for a Select over all properties with one equality
// filter.
func Where(entity, field string, value Value) Select {
	return Select{
		Entity: entity,
		Filter: Equals{Field: field, Value: value},
	}
}
