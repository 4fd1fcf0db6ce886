package inference

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
)

// FuncSource returns the text of the top-level function or method funcName
// declared in filename, from the func keyword to the closing brace. src may
// be nil, in which case the file is read from disk.
func FuncSource(filename string, src []byte, funcName string) (string, error) {
	if src == nil {
		data, err := os.ReadFile(filename)
		if err != nil {
			return "", fmt.Errorf("read source: %w", err)
		}
		src = data
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return "", fmt.Errorf("parse source: %w", err)
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Name.Name != funcName {
			continue
		}
		start := fset.Position(fn.Pos()).Offset
		end := fset.Position(fn.End()).Offset
		return string(src[start:end]), nil
	}

	for _, decl := range file.Decls {
		if text, ok := funcLiteralVar(fset, src, decl, funcName); ok {
			return text, nil
		}
	}

	return "", fmt.Errorf("function %q not found in %s", funcName, filename)
}

// funcLiteralVar finds `var name = func(...) {...}` declarations.
func funcLiteralVar(fset *token.FileSet, src []byte, decl ast.Decl, name string) (string, bool) {
	gen, ok := decl.(*ast.GenDecl)
	if !ok || gen.Tok != token.VAR {
		return "", false
	}
	for _, spec := range gen.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i, ident := range vs.Names {
			if ident.Name != name || i >= len(vs.Values) {
				continue
			}
			lit, ok := vs.Values[i].(*ast.FuncLit)
			if !ok {
				continue
			}
			start := fset.Position(lit.Pos()).Offset
			end := fset.Position(lit.End()).Offset
			return string(src[start:end]), true
		}
	}
	return "", false
}
