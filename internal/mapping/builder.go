package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Builder accumulates entity declarations until Build.
// A Builder is not safe for concurrent use.
type Builder struct {
	entities []*EntityBuilder
	byType   map[reflect.Type]*EntityBuilder
	errs     []error
}

// EntityBuilder declares the mapping of one entity type.
type EntityBuilder struct {
	goType reflect.Type
	table  string
	key    string
	props  map[string]*PropertyBuilder
	order  []string
}

// PropertyBuilder declares the mapping of one property.
type PropertyBuilder struct {
	field     string
	column    string
	colType   string
	unicode   *bool
	maxLength int
	conflicts []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byType: make(map[reflect.Type]*EntityBuilder)}
}

// Entity returns the builder for the type of sample, creating it on first
// use. Repeated calls for the same type return the same builder.
func (b *Builder) Entity(sample any) *EntityBuilder {
	t, err := structType(sample)
	if err != nil {
		b.errs = append(b.errs, err)
		// Detached builder so chained calls stay valid.
		return &EntityBuilder{props: make(map[string]*PropertyBuilder)}
	}
	if eb, ok := b.byType[t]; ok {
		return eb
	}
	eb := &EntityBuilder{
		goType: t,
		table:  t.Name(),
		props:  make(map[string]*PropertyBuilder),
	}
	b.byType[t] = eb
	b.entities = append(b.entities, eb)
	return eb
}

// ToTable sets the backing table name. Defaults to the type name.
func (eb *EntityBuilder) ToTable(name string) *EntityBuilder {
	eb.table = name
	return eb
}

// HasKey names the key property. Defaults to a field named Id or ID.
func (eb *EntityBuilder) HasKey(field string) *EntityBuilder {
	eb.key = field
	return eb
}

// Property returns the builder for the named Go field.
func (eb *EntityBuilder) Property(field string) *PropertyBuilder {
	if pb, ok := eb.props[field]; ok {
		return pb
	}
	pb := &PropertyBuilder{field: field}
	eb.props[field] = pb
	eb.order = append(eb.order, field)
	return pb
}

// HasColumnName sets the backing column name. Defaults to the db tag or
// the field name.
func (pb *PropertyBuilder) HasColumnName(name string) *PropertyBuilder {
	pb.column = name
	return pb
}

// HasColumnType declares the exact column type, e.g. "varchar(100)".
func (pb *PropertyBuilder) HasColumnType(t string) *PropertyBuilder {
	if pb.colType != "" && !strings.EqualFold(pb.colType, t) {
		pb.conflicts = append(pb.conflicts, fmt.Sprintf("column type %q vs %q", pb.colType, t))
	}
	pb.colType = t
	return pb
}

// IsUnicode declares the text encoding without naming a full type.
// IsUnicode(false) maps the property to a narrow column.
func (pb *PropertyBuilder) IsUnicode(unicode bool) *PropertyBuilder {
	if pb.unicode != nil && *pb.unicode != unicode {
		pb.conflicts = append(pb.conflicts, "unicode declared both true and false")
	}
	pb.unicode = &unicode
	return pb
}

// HasMaxLength sets the text column length.
func (pb *PropertyBuilder) HasMaxLength(n int) *PropertyBuilder {
	pb.maxLength = n
	return pb
}

// Build resolves every declaration into an immutable Config.
// All problems are reported together.
func (b *Builder) Build() (*Config, error) {
	errs := append([]error(nil), b.errs...)

	cfg := &Config{
		byType: make(map[reflect.Type]*Entity),
		byName: make(map[string][]*Entity),
	}
	tables := make(map[string]string)

	for _, eb := range b.entities {
		e, err := eb.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tableKey := strings.ToLower(e.Table)
		if other, ok := tables[tableKey]; ok {
			errs = append(errs, fmt.Errorf("%w: entities %s and %s both map to table %q",
				ErrAmbiguousMapping, other, e.Name, e.Table))
			continue
		}
		tables[tableKey] = e.Name

		cfg.byType[e.goType] = e
		nameKey := strings.ToLower(e.Name)
		cfg.byName[nameKey] = append(cfg.byName[nameKey], e)
		cfg.order = append(cfg.order, e)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("build mappings: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (eb *EntityBuilder) build() (*Entity, error) {
	name := eb.goType.Name()
	if strings.TrimSpace(eb.table) == "" {
		return nil, fmt.Errorf("entity %s: table name is empty", name)
	}

	e := &Entity{
		Name:    name,
		Table:   eb.table,
		goType:  eb.goType,
		key:     -1,
		byField: make(map[string]int),
	}

	var errs []error
	for _, sf := range reflect.VisibleFields(eb.goType) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		tag := sf.Tag.Get("db")
		if tag == "-" {
			continue
		}

		p, err := inferProperty(sf, tag)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", name, err))
			continue
		}
		if pb, ok := eb.props[sf.Name]; ok {
			if err := pb.apply(&p); err != nil {
				errs = append(errs, fmt.Errorf("entity %s: %w", name, err))
				continue
			}
		}
		e.byField[p.Field] = len(e.props)
		e.props = append(e.props, p)
	}

	for _, field := range eb.order {
		if _, ok := e.byField[field]; !ok {
			errs = append(errs, fmt.Errorf("entity %s: property %q does not exist", name, field))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := e.resolveKey(eb.key); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Entity) resolveKey(declared string) error {
	if declared != "" {
		i, ok := e.byField[declared]
		if !ok {
			return fmt.Errorf("entity %s: key %q does not exist", e.Name, declared)
		}
		e.key = i
	} else {
		for _, candidate := range []string{"Id", "ID"} {
			if i, ok := e.byField[candidate]; ok {
				e.key = i
				break
			}
		}
	}
	if e.key < 0 {
		return fmt.Errorf("entity %s: no key property (declare one with HasKey)", e.Name)
	}

	key := &e.props[e.key]
	key.Key = true
	key.Generated = key.Type.Kind == KindInteger
	return nil
}

func inferProperty(sf reflect.StructField, tag string) (Property, error) {
	p := Property{
		Field:  sf.Name,
		Column: sf.Name,
		index:  sf.Index,
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		p.Column = name
	}

	switch sf.Type.Kind() {
	case reflect.Int, reflect.Int32, reflect.Int16, reflect.Int8:
		p.Type = StoreType{Name: "int", Kind: KindInteger}
	case reflect.Int64:
		p.Type = StoreType{Name: "bigint", Kind: KindInteger}
	case reflect.String:
		// Strings are inferred wide whatever the real column is.
		p.Type = StoreType{Name: "nvarchar", Kind: KindText, Encoding: EncodingWide}
	default:
		return Property{}, fmt.Errorf("property %q: unsupported field type %s", sf.Name, sf.Type)
	}
	return p, nil
}

func (pb *PropertyBuilder) apply(p *Property) error {
	if len(pb.conflicts) > 0 {
		return fmt.Errorf("%w: property %q: %s", ErrAmbiguousMapping, pb.field, strings.Join(pb.conflicts, "; "))
	}
	if pb.column != "" {
		p.Column = pb.column
	}

	if pb.colType != "" {
		t, err := ParseStoreType(pb.colType)
		if err != nil {
			return fmt.Errorf("property %q: %w", pb.field, err)
		}
		if t.Kind != p.Type.Kind {
			return fmt.Errorf("property %q: column type %s is %s but field is %s", pb.field, t, t.Kind, p.Type.Kind)
		}
		p.Type = t
		p.Explicit = true
	}

	if pb.unicode != nil {
		if p.Type.Kind != KindText {
			return fmt.Errorf("property %q: IsUnicode applies to text properties only", pb.field)
		}
		want := EncodingNarrow
		if *pb.unicode {
			want = EncodingWide
		}
		if pb.colType != "" && p.Type.Encoding != want {
			return fmt.Errorf("%w: property %q: column type %s contradicts unicode=%t",
				ErrAmbiguousMapping, pb.field, p.Type, *pb.unicode)
		}
		p.Type = p.Type.withEncoding(want)
		p.Explicit = true
	}

	if pb.maxLength != 0 {
		if p.Type.Kind != KindText {
			return fmt.Errorf("property %q: max length applies to text properties only", pb.field)
		}
		if pb.maxLength < 0 {
			return fmt.Errorf("property %q: max length must be positive", pb.field)
		}
		p.Type.MaxLength = pb.maxLength
	}
	return nil
}
