// Package inference guesses data source metadata from the source text of the
// function that loads the data.
package inference

import (
	"regexp"
	"strings"
)

// Source types.
const (
	TypeAPI   = "API"
	TypeCloud = "CLOUD"
	TypeFile  = "FILE"
)

// Formats.
const (
	FormatJSON    = "JSON"
	FormatParquet = "PARQUET"
	FormatCSV     = "CSV"
)

// DefaultPath is reported when the source contains no quoted literal.
const DefaultPath = "local_storage"

// Metadata is the result of Infer. It is never persisted on its own.
type Metadata struct {
	Type   string `json:"type"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

// Default returns the metadata of a source text that matches no rule.
func Default() Metadata {
	return Metadata{Type: TypeFile, Format: FormatCSV, Path: DefaultPath}
}

// quotedLiteral matches the shortest run between any two quote characters.
// The quotes do not have to be the same kind.
var quotedLiteral = regexp.MustCompile(`['"](.*?)['"]`)

// Infer applies the heuristics in order:
//   - "http" or "requests" anywhere means an API returning JSON;
//   - otherwise "s3://" means cloud storage holding Parquet;
//   - otherwise a local CSV file.
//
// Independently of the branch taken, the first quoted literal replaces the
// path.
func Infer(source string) Metadata {
	meta := Default()

	switch {
	case strings.Contains(source, "http") || strings.Contains(source, "requests"):
		meta.Type, meta.Format = TypeAPI, FormatJSON
	case strings.Contains(source, "s3://"):
		meta.Type, meta.Format = TypeCloud, FormatParquet
	}

	if m := quotedLiteral.FindStringSubmatch(source); m != nil {
		meta.Path = m[1]
	}
	return meta
}
