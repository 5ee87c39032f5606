package points

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/autofree/pkg/store"
)

func sample() *Set {
	return NewSet(
		Point{FunctionName: "main", LineNumber: 12, VariableName: "buf"},
		Point{FunctionName: "main", LineNumber: 12, VariableName: "tmp"},
		Point{FunctionName: "helper", LineNumber: 3, VariableName: "buf"},
	)
}

func TestSet(t *testing.T) {
	s := sample()
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Empty())
	assert.True(t, NewSet().Empty())

	at := s.At("main", 12)
	require.Len(t, at, 2)
	assert.Equal(t, "buf", at[0].VariableName)
	assert.Equal(t, "tmp", at[1].VariableName)
	assert.Empty(t, s.At("helper", 12))

	pts := s.Points()
	pts[0].VariableName = "changed"
	assert.Equal(t, "buf", s.Points()[0].VariableName, "Points returns a copy")
}

func TestEncodeJSONLayout(t *testing.T) {
	data, err := Encode(FormatJSON, NewSet(Point{FunctionName: "main", LineNumber: 3, VariableName: "p"}))
	require.NoError(t, err)

	want := `{
    "deallocations": [
        {
            "function_name": "main",
            "line_number": 3,
            "variable_name": "p"
        }
    ]
}`
	assert.Equal(t, want, string(data))
}

func TestEncodeDeterministic(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML, FormatMsgpack} {
		t.Run(string(format), func(t *testing.T) {
			first, err := Encode(format, sample())
			require.NoError(t, err)
			second, err := Encode(format, sample())
			require.NoError(t, err)
			assert.Equal(t, first, second)

			decoded, err := Decode(format, first)
			require.NoError(t, err)
			assert.Equal(t, sample().Points(), decoded.Points())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"missing field", FormatJSON, `{"points": []}`},
		{"null field", FormatJSON, `{"deallocations": null}`},
		{"not json", FormatJSON, `deallocations`},
		{"zero line", FormatJSON, `{"deallocations": [{"function_name": "f", "line_number": 0, "variable_name": "p"}]}`},
		{"empty function", FormatJSON, `{"deallocations": [{"function_name": "", "line_number": 2, "variable_name": "p"}]}`},
		{"empty variable", FormatJSON, `{"deallocations": [{"function_name": "f", "line_number": 2}]}`},
		{"yaml missing field", FormatYAML, "other: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.format, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat))
		})
	}
}

func TestDecodeEmptyList(t *testing.T) {
	s, err := Decode(FormatJSON, []byte(`{"deallocations": []}`))
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"references.json", FormatJSON, false},
		{"out/points.YAML", FormatYAML, false},
		{"points.yml", FormatYAML, false},
		{"points.msgpack", FormatMsgpack, false},
		{"points.txt", "", true},
		{"points", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFor(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	st := store.New()
	dir := t.TempDir()

	for _, name := range []string{"refs.json", "refs.yaml", "refs.msgpack"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(ctx, st, path, sample()))

			loaded, err := Load(ctx, st, path)
			require.NoError(t, err)
			assert.Equal(t, sample().Points(), loaded.Points())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), store.New(), filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrIO))
}
