package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seekdemo/internal/entity"
)

func TestDefault_BadTypeKeepsWideInference(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	e, err := cfg.Entity(entity.BadType{})
	require.NoError(t, err)
	assert.Equal(t, "BadType", e.Table)

	p, ok := e.Property("SomeVarchar")
	require.True(t, ok)
	assert.False(t, p.Explicit)
	assert.Equal(t, EncodingWide, p.Type.Encoding)
	assert.Equal(t, "nvarchar(max)", p.Type.String())
}

func TestDefault_GoodTypeDeclaresNarrow(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	e, err := cfg.Entity(&entity.GoodType{})
	require.NoError(t, err)
	assert.Equal(t, "GoodType", e.Table)

	p, ok := e.Property("SomeVarchar")
	require.True(t, ok)
	assert.True(t, p.Explicit)
	assert.Equal(t, EncodingNarrow, p.Type.Encoding)
	assert.Equal(t, "varchar(100)", p.Type.String())
}

func TestDefault_KeyIsGeneratedId(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	for _, e := range cfg.Entities() {
		key := e.Key()
		assert.Equal(t, "Id", key.Field, e.Name)
		assert.True(t, key.Key)
		assert.True(t, key.Generated)
		assert.Equal(t, KindInteger, key.Type.Kind)
	}
}

func TestEntities_RegistrationOrder(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	entities := cfg.Entities()
	require.Len(t, entities, 2)
	assert.Equal(t, "BadType", entities[0].Name)
	assert.Equal(t, "GoodType", entities[1].Name)
}

func TestConfig_EntityMissing(t *testing.T) {
	b := NewBuilder()
	b.Entity(entity.BadType{})
	cfg, err := b.Build()
	require.NoError(t, err)

	_, err = cfg.Entity(entity.GoodType{})
	assert.ErrorIs(t, err, ErrNoMapping)

	_, err = cfg.Lookup("GoodType")
	assert.ErrorIs(t, err, ErrNoMapping)
}

func TestConfig_NilConfig(t *testing.T) {
	var cfg *Config
	_, err := cfg.Entity(entity.BadType{})
	assert.ErrorIs(t, err, ErrNoMapping)
}

func TestConfig_LookupCaseInsensitive(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	e, err := cfg.Lookup("goodtype")
	require.NoError(t, err)
	assert.Equal(t, "GoodType", e.Name)
}

type otherBadType struct {
	Id          int
	SomeVarchar string
}

func TestConfig_LookupAmbiguous(t *testing.T) {
	type BadType struct {
		Id          int
		SomeVarchar string
	}

	b := NewBuilder()
	b.Entity(entity.BadType{})
	b.Entity(BadType{}).ToTable("BadTypeCopy")
	cfg, err := b.Build()
	require.NoError(t, err)

	_, err = cfg.Lookup("BadType")
	assert.ErrorIs(t, err, ErrAmbiguousMapping)

	// Type-based resolution is still exact.
	e, err := cfg.Entity(BadType{})
	require.NoError(t, err)
	assert.Equal(t, "BadTypeCopy", e.Table)
}

func TestBuild_SharedTableIsAmbiguous(t *testing.T) {
	b := NewBuilder()
	b.Entity(entity.BadType{}).ToTable("Shared")
	b.Entity(otherBadType{}).ToTable("shared")

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrAmbiguousMapping)
}

func TestBuild_ConflictingColumnTypes(t *testing.T) {
	b := NewBuilder()
	b.Entity(entity.GoodType{}).Property("SomeVarchar").HasColumnType("varchar(100)")
	b.Entity(entity.GoodType{}).Property("SomeVarchar").HasColumnType("nvarchar(100)")

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrAmbiguousMapping)
}

func TestBuild_UnicodeContradictsColumnType(t *testing.T) {
	b := NewBuilder()
	b.Entity(entity.GoodType{}).Property("SomeVarchar").
		HasColumnType("nvarchar(100)").
		IsUnicode(false)

	_, err := b.Build()
	assert.ErrorIs(t, err, ErrAmbiguousMapping)
}

func TestBuild_IsUnicodeFalse(t *testing.T) {
	b := NewBuilder()
	b.Entity(entity.GoodType{}).Property("SomeVarchar").IsUnicode(false).HasMaxLength(100)
	cfg, err := b.Build()
	require.NoError(t, err)

	e, err := cfg.Entity(entity.GoodType{})
	require.NoError(t, err)
	p, _ := e.Property("SomeVarchar")
	assert.Equal(t, "varchar(100)", p.Type.String())
	assert.True(t, p.Explicit)
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		build func(b *Builder)
		want  string
	}{
		{
			name:  "missing property",
			build: func(b *Builder) { b.Entity(entity.BadType{}).Property("Nope").IsUnicode(false) },
			want:  `property "Nope" does not exist`,
		},
		{
			name:  "empty table",
			build: func(b *Builder) { b.Entity(entity.BadType{}).ToTable(" ") },
			want:  "table name is empty",
		},
		{
			name:  "bad column type",
			build: func(b *Builder) { b.Entity(entity.BadType{}).Property("SomeVarchar").HasColumnType("blob") },
			want:  "unsupported column type",
		},
		{
			name:  "kind mismatch",
			build: func(b *Builder) { b.Entity(entity.BadType{}).Property("SomeVarchar").HasColumnType("int") },
			want:  "field is text",
		},
		{
			name:  "unicode on integer",
			build: func(b *Builder) { b.Entity(entity.BadType{}).Property("Id").IsUnicode(false) },
			want:  "text properties only",
		},
		{
			name:  "not a struct",
			build: func(b *Builder) { b.Entity(42) },
			want:  "is not a struct",
		},
		{
			name:  "missing key",
			build: func(b *Builder) { b.Entity(entity.BadType{}).HasKey("Nope") },
			want:  `key "Nope" does not exist`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder()
			tc.build(b)
			_, err := b.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuild_NoKey(t *testing.T) {
	type keyless struct {
		Name string
	}
	b := NewBuilder()
	b.Entity(keyless{})

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no key property")
}

func TestBuild_DBTagsAndSkippedFields(t *testing.T) {
	type tagged struct {
		ID       int    `db:"row_id"`
		Name     string `db:"display_name,notnull"`
		Ignored  string `db:"-"`
		internal string
	}

	b := NewBuilder()
	b.Entity(tagged{}).ToTable("tagged")
	cfg, err := b.Build()
	require.NoError(t, err)

	e, err := cfg.Entity(tagged{})
	require.NoError(t, err)

	props := e.Properties()
	require.Len(t, props, 2)
	assert.Equal(t, "row_id", props[0].Column)
	assert.True(t, props[0].Key)
	assert.Equal(t, "display_name", props[1].Column)

	_, ok := e.Property("Ignored")
	assert.False(t, ok)
	_ = tagged{}.internal
}

func TestRepresentable(t *testing.T) {
	assert.True(t, Representable("Hello World"))
	assert.True(t, Representable("café"))
	assert.True(t, Representable("cafe\u0301"), "decomposed é composes to a code page character")
	assert.True(t, Representable("€"))
	assert.False(t, Representable("こんにちは"))
	assert.False(t, Representable("Hello 🌍"))
}
