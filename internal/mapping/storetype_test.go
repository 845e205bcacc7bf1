package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreType(t *testing.T) {
	testCases := []struct {
		in       string
		name     string
		kind     Kind
		encoding Encoding
		length   int
		rendered string
	}{
		{"varchar(100)", "varchar", KindText, EncodingNarrow, 100, "varchar(100)"},
		{"VARCHAR(100)", "varchar", KindText, EncodingNarrow, 100, "varchar(100)"},
		{"nvarchar(max)", "nvarchar", KindText, EncodingWide, 0, "nvarchar(max)"},
		{"nvarchar ( 50 )", "nvarchar", KindText, EncodingWide, 50, "nvarchar(50)"},
		{"char(10)", "char", KindText, EncodingNarrow, 10, "char(10)"},
		{"TEXT", "text", KindText, EncodingNarrow, 0, "text(max)"},
		{"int", "int", KindInteger, EncodingNone, 0, "int"},
		{"INTEGER", "integer", KindInteger, EncodingNone, 0, "integer"},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			st, err := ParseStoreType(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.name, st.Name)
			assert.Equal(t, tc.kind, st.Kind)
			assert.Equal(t, tc.encoding, st.Encoding)
			assert.Equal(t, tc.length, st.MaxLength)
			assert.Equal(t, tc.rendered, st.String())
		})
	}
}

func TestParseStoreType_Invalid(t *testing.T) {
	for _, in := range []string{"", "varchar(", "blob", "int(10)", "int(max)", "bigint(MAX)", "varchar(0)", "varchar(-1)"} {
		_, err := ParseStoreType(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestStoreType_WithEncoding(t *testing.T) {
	st, err := ParseStoreType("nvarchar(100)")
	require.NoError(t, err)

	narrow := st.withEncoding(EncodingNarrow)
	assert.Equal(t, "varchar(100)", narrow.String())
	assert.Equal(t, EncodingNarrow, narrow.Encoding)

	assert.Equal(t, "nvarchar(100)", narrow.withEncoding(EncodingWide).String())
}

func TestEncodingString(t *testing.T) {
	assert.Equal(t, "wide", EncodingWide.String())
	assert.Equal(t, "narrow", EncodingNarrow.String())
	assert.Equal(t, "none", EncodingNone.String())
}

func TestUnmodelled(t *testing.T) {
	st := Unmodelled(" DATETIME2(7) ")
	assert.Equal(t, KindUnmodelled, st.Kind)
	assert.Equal(t, EncodingNone, st.Encoding)
	assert.Equal(t, "datetime2(7)", st.String())
	assert.Equal(t, "unmodelled", st.Kind.String())
}
