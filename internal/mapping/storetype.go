package mapping

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Encoding is the physical representation of a text column.
type Encoding int

const (
	// EncodingNone applies to non-text columns.
	EncodingNone Encoding = iota
	// EncodingWide is a multi-byte-per-character encoding (nvarchar).
	EncodingWide
	// EncodingNarrow is a single-byte-per-character encoding (varchar).
	EncodingNarrow
)

func (e Encoding) String() string {
	switch e {
	case EncodingWide:
		return "wide"
	case EncodingNarrow:
		return "narrow"
	default:
		return "none"
	}
}

// Kind is the broad value class of a column.
type Kind int

const (
	KindInteger Kind = iota + 1
	KindText
	// KindUnmodelled marks live columns whose type the mapping layer does
	// not represent (dates, blobs, ...).
	KindUnmodelled
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	case KindUnmodelled:
		return "unmodelled"
	default:
		return "unknown"
	}
}

// StoreType is a parsed column type such as varchar(100) or int.
type StoreType struct {
	Name      string // lower-case base name, e.g. "nvarchar"
	Kind      Kind
	Encoding  Encoding
	MaxLength int // 0 means max or unspecified
}

type baseType struct {
	kind     Kind
	encoding Encoding
}

var baseTypes = map[string]baseType{
	"varchar":  {KindText, EncodingNarrow},
	"char":     {KindText, EncodingNarrow},
	"text":     {KindText, EncodingNarrow},
	"nvarchar": {KindText, EncodingWide},
	"nchar":    {KindText, EncodingWide},
	"ntext":    {KindText, EncodingWide},
	"int":      {KindInteger, EncodingNone},
	"integer":  {KindInteger, EncodingNone},
	"bigint":   {KindInteger, EncodingNone},
	"smallint": {KindInteger, EncodingNone},
	"tinyint":  {KindInteger, EncodingNone},
}

var storeTypePattern = regexp.MustCompile(`^([a-z]+)\s*(?:\(\s*(max|\d+)\s*\))?$`)

// ParseStoreType parses a column type declaration. Matching is
// case-insensitive, so declared SQLite types such as "VARCHAR(100)" parse
// the same as SQL Server's.
func ParseStoreType(s string) (StoreType, error) {
	m := storeTypePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return StoreType{}, fmt.Errorf("invalid column type %q", s)
	}

	base, ok := baseTypes[m[1]]
	if !ok {
		return StoreType{}, fmt.Errorf("unsupported column type %q", s)
	}

	t := StoreType{Name: m[1], Kind: base.kind, Encoding: base.encoding}
	if m[2] != "" && base.kind != KindText {
		return StoreType{}, fmt.Errorf("column type %q does not take a length", s)
	}
	if m[2] != "" && m[2] != "max" {
		n, err := strconv.Atoi(m[2])
		if err != nil || n <= 0 {
			return StoreType{}, fmt.Errorf("invalid length in column type %q", s)
		}
		t.MaxLength = n
	}
	return t, nil
}

// Unmodelled wraps a column type ParseStoreType does not understand, so
// introspection can still report it.
func Unmodelled(raw string) StoreType {
	return StoreType{Name: strings.ToLower(strings.TrimSpace(raw)), Kind: KindUnmodelled}
}

// String renders the type the way SQL Server spells it.
func (t StoreType) String() string {
	if t.Kind != KindText {
		return t.Name
	}
	if t.MaxLength == 0 {
		return t.Name + "(max)"
	}
	return fmt.Sprintf("%s(%d)", t.Name, t.MaxLength)
}

// withEncoding swaps the text base name for the one matching enc.
func (t StoreType) withEncoding(enc Encoding) StoreType {
	if t.Kind != KindText || t.Encoding == enc {
		return t
	}
	switch {
	case enc == EncodingNarrow && strings.HasPrefix(t.Name, "n"):
		t.Name = strings.TrimPrefix(t.Name, "n")
	case enc == EncodingWide && !strings.HasPrefix(t.Name, "n"):
		t.Name = "n" + t.Name
	}
	t.Encoding = enc
	return t
}
