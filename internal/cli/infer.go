package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drblury/catalogflow"
)

func newInferCommand() *cobra.Command {
	var (
		funcName string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "infer <file>",
		Short: "Print the data source metadata inferred from a source file",
		Long: `Infer reads a source file and applies the data source heuristics to it.
With --func only the text of that function is inspected, the same text a
wrapper built with WithSourceFile would see.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := inferFile(args[0], funcName)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), meta)
			}
			printFields(cmd.OutOrStdout(),
				"type", meta.Type,
				"format", meta.Format,
				"path", meta.Path,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&funcName, "func", "", "only inspect this function or method")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output in JSON format")
	return cmd
}

func inferFile(path, funcName string) (catalogflow.SourceMetadata, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return catalogflow.SourceMetadata{}, fmt.Errorf("reading source: %w", err)
	}
	text := string(src)
	if funcName != "" {
		text, err = catalogflow.FuncSource(path, src, funcName)
		if err != nil {
			return catalogflow.SourceMetadata{}, err
		}
	}
	return catalogflow.InferMetadata(text), nil
}
