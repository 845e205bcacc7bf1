package mapping

import "github.com/roach88/seekdemo/internal/entity"

// Default returns the demo mappings. Both tables hold varchar columns, but
// only GoodType says so; BadType keeps the wide default.
func Default() (*Config, error) {
	b := NewBuilder()

	b.Entity(entity.BadType{}).ToTable("BadType")

	b.Entity(entity.GoodType{}).ToTable("GoodType").
		Property("SomeVarchar").HasColumnType("varchar(100)")

	return b.Build()
}
