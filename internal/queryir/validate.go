package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/seekdemo/internal/mapping"
)

// ValidationResult describes how a query lines up with its mapping.
type ValidationResult struct {
	// Errors lists problems that make the query uncompilable: unknown
	// entities or fields, unsupported node types.
	Errors []error

	// Warnings lists comparisons that compile but force the database to
	// convert values, or literals the declared column cannot hold.
	Warnings []string
}

// OK reports whether the query compiles.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Err joins Errors into a single error, or returns nil.
func (r ValidationResult) Err() error {
	return errors.Join(r.Errors...)
}

// Validate checks a query against cfg.
//
// Validate is a pure function with no side effects.
func Validate(q Query, cfg *mapping.Config) ValidationResult {
	v := &validator{cfg: cfg}
	v.validateQuery(q)
	return ValidationResult{Errors: v.errs, Warnings: v.warnings}
}

// validator accumulates findings during traversal.
type validator struct {
	cfg      *mapping.Config
	entity   *mapping.Entity
	errs     []error
	warnings []string
}

func (v *validator) addError(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addError("nil query")
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addError("nil query")
	default:
		v.addError("unsupported query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	e, err := v.cfg.Lookup(sel.Entity)
	if err != nil {
		v.errs = append(v.errs, err)
		return
	}
	v.entity = e

	for _, f := range sel.Fields {
		if _, ok := e.Property(f); !ok {
			v.addError("entity %s has no property %q", e.Name, f)
		}
	}

	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	default:
		v.addError("unsupported predicate type %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	prop, ok := v.entity.Property(eq.Field)
	if !ok {
		v.addError("entity %s has no property %q", v.entity.Name, eq.Field)
		return
	}

	switch val := eq.Value.(type) {
	case Text:
		if prop.Type.Kind != mapping.KindText {
			v.addWarning("%s.%s is %s but is compared with text %q; the database converts one side implicitly",
				v.entity.Name, eq.Field, prop.Type, string(val))
			return
		}
		if prop.Type.Encoding == mapping.EncodingNarrow && !mapping.Representable(string(val)) {
			v.addWarning("%s.%s is %s; text %q has characters outside the narrow code page",
				v.entity.Name, eq.Field, prop.Type, string(val))
		}
	case Int:
		if prop.Type.Kind != mapping.KindInteger {
			v.addWarning("%s.%s is %s but is compared with integer %d; the database converts one side implicitly",
				v.entity.Name, eq.Field, prop.Type, int64(val))
		}
	case nil:
		v.addError("%s.%s compared with nil value", v.entity.Name, eq.Field)
	default:
		v.addError("unsupported value type %T", eq.Value)
	}
}

func (v *validator) validateAnd(and And) {
	for _, sub := range and.Predicates {
		v.validatePredicate(sub)
	}
}
