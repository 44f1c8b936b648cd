package secretvars

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"runtime"
	"testing"
)

// Option structs document their fields in the type comment so the field
// columns stay aligned.
func TestOptionStructsHaveNoFieldComments(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	root := filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", ".."))

	targets := []struct {
		file string
		typ  string
	}{
		{filepath.Join(root, "pkg", "secretvars", "module.go"), "ModuleOptions"},
		{filepath.Join(root, "internal", "di", "container.go"), "Options"},
	}

	for _, target := range targets {
		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, target.file, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", target.file, err)
		}

		found := false
		ast.Inspect(file, func(n ast.Node) bool {
			spec, ok := n.(*ast.TypeSpec)
			if !ok || spec.Name.Name != target.typ {
				return true
			}
			st, ok := spec.Type.(*ast.StructType)
			if !ok {
				return false
			}
			found = true
			for _, field := range st.Fields.List {
				if field.Doc != nil || field.Comment != nil {
					t.Fatalf("%s: field comment inside %s at %s", target.file, target.typ, fset.Position(field.Pos()))
				}
			}
			for _, group := range file.Comments {
				if group.Pos() > st.Fields.Opening && group.End() < st.Fields.Closing {
					t.Fatalf("%s: comment inside %s at %s", target.file, target.typ, fset.Position(group.Pos()))
				}
			}
			return false
		})
		if !found {
			t.Fatalf("%s: type %s not found", target.file, target.typ)
		}
	}
}
