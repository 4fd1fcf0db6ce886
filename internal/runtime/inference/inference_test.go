package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Metadata
	}{
		{
			name:   "http without literal",
			source: "resp := http.Get(endpoint)",
			want:   Metadata{Type: TypeAPI, Format: FormatJSON, Path: DefaultPath},
		},
		{
			name:   "requests keyword",
			source: "n := requests + 1",
			want:   Metadata{Type: TypeAPI, Format: FormatJSON, Path: DefaultPath},
		},
		{
			name:   "s3 with literal",
			source: `bucket := s3://x; name := "foo"`,
			want:   Metadata{Type: TypeCloud, Format: FormatParquet, Path: "foo"},
		},
		{
			name:   "neither and no literal",
			source: "return rows, nil",
			want:   Default(),
		},
		{
			name:   "http wins over s3",
			source: "copy(http, s3://bucket)",
			want:   Metadata{Type: TypeAPI, Format: FormatJSON, Path: DefaultPath},
		},
		{
			name:   "literal on file source",
			source: `os.Open("data/prices.csv")`,
			want:   Metadata{Type: TypeFile, Format: FormatCSV, Path: "data/prices.csv"},
		},
		{
			name:   "first literal wins",
			source: `fetch("https://api.example.com/prices", "backup")`,
			want:   Metadata{Type: TypeAPI, Format: FormatJSON, Path: "https://api.example.com/prices"},
		},
		{
			name:   "single quotes",
			source: `load('s3://bucket/key.parquet')`,
			want:   Metadata{Type: TypeCloud, Format: FormatParquet, Path: "s3://bucket/key.parquet"},
		},
		{
			name:   "mixed quote kinds pair up",
			source: `x := 'a" + "b'`,
			want:   Metadata{Type: TypeFile, Format: FormatCSV, Path: "a"},
		},
		{
			name:   "empty literal",
			source: `name := ""`,
			want:   Metadata{Type: TypeFile, Format: FormatCSV, Path: ""},
		},
		{
			name:   "literal does not span lines",
			source: "a := \"open\nclose\"",
			want:   Default(),
		},
		{
			name:   "empty source",
			source: "",
			want:   Default(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.source))
		})
	}
}

func TestInferIsPure(t *testing.T) {
	src := `http.Get("https://example.com")`
	assert.Equal(t, Infer(src), Infer(src))
}
