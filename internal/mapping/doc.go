// Package mapping declares how entity types map onto database tables.
//
// A Config is built once at startup through a Builder and is immutable
// afterwards. Every string property is inferred as wide text
// (nvarchar(max)) unless the mapping says otherwise:
//
//	b := mapping.NewBuilder()
//	b.Entity(entity.BadType{}).ToTable("BadType")
//	b.Entity(entity.GoodType{}).ToTable("GoodType").
//	    Property("SomeVarchar").HasColumnType("varchar(100)")
//	cfg, err := b.Build()
//
// The declared encoding is what the SQL compiler uses to type filter
// literals. Nothing here inspects the live schema; a declared encoding that
// disagrees with the actual column is a deployment defect that only shows
// up in generated query text and in the drift report (CompareColumns).
//
// Mappings can also be loaded from CUE or YAML files (LoadFile). CUE files
// are validated against an embedded schema before they are applied.
package mapping
