package querysql

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/roach88/seekdemo/internal/mapping"
	"github.com/roach88/seekdemo/internal/queryir"
)

// Param describes one bound parameter.
type Param struct {
	Placeholder string
	Value       any    // literal value as written in the query
	DBType      string // parameter type the database sees
}

// Statement is a compiled query.
type Statement struct {
	// SQL is the parameterized statement sent to the driver.
	SQL string

	// Text is SQL with every parameter inlined as a typed literal. It is the
	// form written to the diagnostic log and compared in tests.
	Text string

	// Args are the driver arguments for SQL, in placeholder order.
	Args []any

	Params []Param

	// Columns are the projected properties, in select-list order.
	Columns []mapping.Property

	// Warnings are implicit-conversion findings from queryir.Validate.
	Warnings []string
}

// SQLCompiler compiles IR queries to SQL for one dialect and mapping.
//
// Every query has an explicit select list and ORDER BY on the entity key,
// so results are deterministic. Values are always parameterized in SQL;
// Text carries the inlined rendering.
type SQLCompiler struct {
	Dialect Dialect
	Config  *mapping.Config
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler(d Dialect, cfg *mapping.Config) *SQLCompiler {
	return &SQLCompiler{Dialect: d, Config: cfg}
}

// Compile converts an IR query into a Statement.
func (c *SQLCompiler) Compile(q queryir.Query) (Statement, error) {
	if c.Dialect == nil {
		return Statement{}, fmt.Errorf("compile: no dialect")
	}

	res := queryir.Validate(q, c.Config)
	if !res.OK() {
		return Statement{}, fmt.Errorf("compile: %w", res.Err())
	}

	var sel queryir.Select
	switch query := q.(type) {
	case queryir.Select:
		sel = query
	case *queryir.Select:
		sel = *query
	}

	e, err := c.Config.Lookup(sel.Entity)
	if err != nil {
		return Statement{}, fmt.Errorf("compile: %w", err)
	}

	b := &builder{dialect: c.Dialect, entity: e, alias: aliasFor(e.Table)}
	stmt := b.compileSelect(sel)
	stmt.Warnings = res.Warnings
	return stmt, nil
}

// builder writes the parameterized and inlined forms side by side.
type builder struct {
	dialect Dialect
	entity  *mapping.Entity
	alias   string

	sql    strings.Builder
	text   strings.Builder
	args   []any
	params []Param
}

func (b *builder) write(s string) {
	b.sql.WriteString(s)
	b.text.WriteString(s)
}

func (b *builder) compileSelect(sel queryir.Select) Statement {
	cols := b.projection(sel.Fields)

	b.write("SELECT ")
	for i, p := range cols {
		if i > 0 {
			b.write(", ")
		}
		b.write(b.column(p))
	}

	b.write(" FROM ")
	b.write(b.dialect.Quote(b.entity.Table))
	b.write(" AS ")
	b.write(b.dialect.Quote(b.alias))

	if sel.Filter != nil {
		b.write(" WHERE ")
		b.compilePredicate(sel.Filter)
	}

	b.write(" ORDER BY ")
	b.write(b.column(b.entity.Key()))

	return Statement{
		SQL:     b.sql.String(),
		Text:    b.text.String(),
		Args:    b.args,
		Params:  b.params,
		Columns: cols,
	}
}

func (b *builder) projection(fields []string) []mapping.Property {
	if len(fields) == 0 {
		return b.entity.Properties()
	}
	cols := make([]mapping.Property, 0, len(fields))
	for _, f := range fields {
		p, _ := b.entity.Property(f) // checked by Validate
		cols = append(cols, p)
	}
	return cols
}

func (b *builder) column(p mapping.Property) string {
	return b.dialect.Quote(b.alias) + "." + b.dialect.Quote(p.Column)
}

func (b *builder) compilePredicate(p queryir.Predicate) {
	switch pred := p.(type) {
	case queryir.Equals:
		b.compileEquals(pred)
	case *queryir.Equals:
		b.compileEquals(*pred)
	case queryir.And:
		b.compileAnd(pred)
	case *queryir.And:
		b.compileAnd(*pred)
	}
}

func (b *builder) compileEquals(eq queryir.Equals) {
	prop, _ := b.entity.Property(eq.Field)

	b.write(b.column(prop))
	b.write(" = ")

	placeholder := b.dialect.Placeholder(len(b.args) + 1)
	b.sql.WriteString(placeholder)

	switch val := eq.Value.(type) {
	case queryir.Text:
		s := string(val)
		// A text literal takes the encoding declared for the property;
		// against a non-text property it falls back to the wide default.
		enc := prop.Type.Encoding
		if prop.Type.Kind != mapping.KindText {
			enc = mapping.EncodingWide
		}
		arg, dbType := b.dialect.BindText(s, prop)
		b.text.WriteString(b.dialect.TextLiteral(s, enc))
		b.args = append(b.args, arg)
		b.params = append(b.params, Param{Placeholder: placeholder, Value: s, DBType: dbType})
	case queryir.Int:
		n := int64(val)
		b.text.WriteString(strconv.FormatInt(n, 10))
		b.args = append(b.args, n)
		b.params = append(b.params, Param{Placeholder: placeholder, Value: n, DBType: "int"})
	}
}

func (b *builder) compileAnd(and queryir.And) {
	if len(and.Predicates) == 0 {
		b.write("1 = 1")
		return
	}
	for i, pred := range and.Predicates {
		if i > 0 {
			b.write(" AND ")
		}
		var nested bool
		switch pred.(type) {
		case queryir.And, *queryir.And:
			nested = true
		}
		if nested {
			b.write("(")
		}
		b.compilePredicate(pred)
		if nested {
			b.write(")")
		}
	}
}

// aliasFor derives a table alias from the first letter of the table name.
func aliasFor(table string) string {
	for _, r := range table {
		if unicode.IsLetter(r) {
			return string(unicode.ToLower(r))
		}
	}
	return "t"
}

// String renders the parameters the way the diagnostic log shows them:
// @p1='Hello World' (nvarchar(11)).
func (p Param) String() string {
	switch v := p.Value.(type) {
	case string:
		return fmt.Sprintf("%s=%s (%s)", p.Placeholder, quoteString(v), p.DBType)
	default:
		return fmt.Sprintf("%s=%v (%s)", p.Placeholder, v, p.DBType)
	}
}
