package mapping

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Error codes for mapping file problems.
const (
	ErrCodeReadFailed    = "M001" // file could not be read
	ErrCodeUnsupported   = "M002" // unknown file extension
	ErrCodeParseFailed   = "M003" // CUE/YAML syntax error
	ErrCodeSchema        = "M004" // file does not satisfy the mapping schema
	ErrCodeUnknownEntity = "M005" // entity name not in the registry
	ErrCodeBuildFailed   = "M006" // declarations rejected by Build
)

// LoadError reports a mapping file problem.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type fileMappings struct {
	Entities map[string]fileEntity `json:"entities" yaml:"entities"`
}

type fileEntity struct {
	Table      string                  `json:"table" yaml:"table"`
	Key        string                  `json:"key,omitempty" yaml:"key,omitempty"`
	Properties map[string]fileProperty `json:"properties,omitempty" yaml:"properties,omitempty"`
}

type fileProperty struct {
	Column    string `json:"column,omitempty" yaml:"column,omitempty"`
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Unicode   *bool  `json:"unicode,omitempty" yaml:"unicode,omitempty"`
	MaxLength int    `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
}

// LoadFile reads a .cue, .yaml or .yml mapping file. Entity names in the
// file are resolved against registry (see entity.Registry).
func LoadFile(path string, registry map[string]any) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err), Err: err}
	}

	var fm *fileMappings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		fm, err = decodeCUE(path, data)
	case ".yaml", ".yml":
		fm, err = decodeYAML(path, data)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported mapping file %s (want .cue, .yaml or .yml)", path)}
	}
	if err != nil {
		return nil, err
	}

	return fm.build(registry)
}

func decodeCUE(path string, data []byte) (*fileMappings, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile mapping schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(ErrCodeParseFailed, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Mappings")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	var fm fileMappings
	if err := unified.Decode(&fm); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}
	return &fm, nil
}

func cueLoadError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: err.Error(), Err: err}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Message = errs[0].Error()
		le.Pos = errs[0].Position()
	}
	return le
}

func decodeYAML(path string, data []byte) (*fileMappings, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var fm fileMappings
	if err := dec.Decode(&fm); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("%s: %v", path, err), Err: err}
	}
	for name, fe := range fm.Entities {
		if strings.TrimSpace(fe.Table) == "" {
			return nil, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("%s: entity %s: table is required", path, name)}
		}
	}
	return &fm, nil
}

func (fm *fileMappings) build(registry map[string]any) (*Config, error) {
	names := make([]string, 0, len(fm.Entities))
	for name := range fm.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	b := NewBuilder()
	for _, name := range names {
		sample, ok := registry[name]
		if !ok {
			return nil, &LoadError{Code: ErrCodeUnknownEntity, Message: fmt.Sprintf("unknown entity %q", name)}
		}
		fe := fm.Entities[name]

		eb := b.Entity(sample).ToTable(fe.Table)
		if fe.Key != "" {
			eb.HasKey(fe.Key)
		}

		fields := make([]string, 0, len(fe.Properties))
		for field := range fe.Properties {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			fp := fe.Properties[field]
			pb := eb.Property(field)
			if fp.Column != "" {
				pb.HasColumnName(fp.Column)
			}
			if fp.Type != "" {
				pb.HasColumnType(fp.Type)
			}
			if fp.Unicode != nil {
				pb.IsUnicode(*fp.Unicode)
			}
			if fp.MaxLength != 0 {
				pb.HasMaxLength(fp.MaxLength)
			}
		}
	}

	cfg, err := b.Build()
	if err != nil {
		le := &LoadError{Code: ErrCodeBuildFailed, Message: err.Error(), Err: err}
		if errors.Is(err, ErrAmbiguousMapping) {
			le.Message = "ambiguous declarations: " + err.Error()
		}
		return nil, le
	}
	return cfg, nil
}
