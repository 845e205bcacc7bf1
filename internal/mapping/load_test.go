package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seekdemo/internal/entity"
)

func assertDemoMappings(t *testing.T, cfg *Config) {
	t.Helper()

	bad, err := cfg.Entity(entity.BadType{})
	require.NoError(t, err)
	p, _ := bad.Property("SomeVarchar")
	assert.Equal(t, "nvarchar(max)", p.Type.String())
	assert.False(t, p.Explicit)

	good, err := cfg.Entity(entity.GoodType{})
	require.NoError(t, err)
	p, _ = good.Property("SomeVarchar")
	assert.Equal(t, "varchar(100)", p.Type.String())
	assert.True(t, p.Explicit)
}

func TestLoadFile_CUE(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "demo.cue"), entity.Registry())
	require.NoError(t, err)
	assertDemoMappings(t, cfg)
}

func TestLoadFile_YAML(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "demo.yaml"), entity.Registry())
	require.NoError(t, err)
	assertDemoMappings(t, cfg)
}

func TestLoadFile_Errors(t *testing.T) {
	testCases := []struct {
		name string
		file string
		code string
	}{
		{"schema violation", "bad_schema.cue", ErrCodeSchema},
		{"unknown entity", "unknown_entity.yaml", ErrCodeUnknownEntity},
		{"conflicting declarations", "conflict.yaml", ErrCodeBuildFailed},
		{"missing file", "nope.cue", ErrCodeReadFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(filepath.Join("testdata", tc.file), entity.Registry())
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le), "want *LoadError, got %T", err)
			assert.Equal(t, tc.code, le.Code)
		})
	}
}

func TestLoadFile_ConflictIsAmbiguous(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "conflict.yaml"), entity.Registry())
	assert.ErrorIs(t, err, ErrAmbiguousMapping)
}

func TestLoadFile_SchemaErrorNamesField(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "bad_schema.cue"), entity.Registry())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Message, "maxLength")
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadFile(path, entity.Registry())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeUnsupported, le.Code)
}

func TestLoadFile_CUESyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cue")
	require.NoError(t, os.WriteFile(path, []byte("entities: {"), 0o644))

	_, err := LoadFile(path, entity.Registry())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeParseFailed, le.Code)
}

func TestLoadFile_YAMLUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities:\n  BadType:\n    table: BadType\n    colour: red\n"), 0o644))

	_, err := LoadFile(path, entity.Registry())

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeParseFailed, le.Code)
}
