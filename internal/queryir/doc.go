// Package queryir provides the query intermediate representation (IR)
// used by the data context.
//
// A query names a mapped entity, the properties to project and a filter.
// It never names tables, columns or column types; those come from the
// mapping configuration when the query is compiled (see package querysql).
// This keeps the typing of filter literals a function of the mapping alone.
//
// Query, Predicate and Value are sealed interfaces using the marker method
// pattern, so backends can switch over them exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	    // column = literal
//	case And:
//	    // conjunction
//	}
//
// Validate inspects a query against a mapping and reports comparisons the
// database would have to resolve with an implicit conversion.
package queryir
