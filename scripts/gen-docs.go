//go:build ignore

// gen-docs renders the run configuration reference from the apis/v1 types.
// It walks the struct graph reachable from CheckConfig and writes one
// Markdown table per struct to docs/configuration.md.
package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"golang.org/x/tools/go/packages"
)

const rootStruct = "CheckConfig"

type field struct {
	YAMLKey     string
	Type        string
	Ref         string
	Required    bool
	Template    bool
	Enum        []string
	Description string
	Default     string
}

type typeInfo struct {
	name       string
	doc        string
	structType *ast.StructType
}

func main() {
	root, err := findProjectRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding project root: %v\n", err)
		os.Exit(1)
	}

	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedFiles | packages.NeedName,
		Dir:  root,
	}

	pkgs, err := packages.Load(cfg, "./apis/v1")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading package: %v\n", err)
		os.Exit(1)
	}
	if len(pkgs) == 0 {
		fmt.Fprintf(os.Stderr, "No packages found\n")
		os.Exit(1)
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			for _, e := range pkg.Errors {
				fmt.Fprintf(os.Stderr, "Package error: %v\n", e)
			}
			os.Exit(1)
		}
	}

	typeSpecs := make(map[string]*typeInfo)
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			collectTypeSpecs(file, typeSpecs)
		}
	}

	var sb strings.Builder
	sb.WriteString("# Run configuration reference\n\n")
	sb.WriteString("<!-- Generated by scripts/gen-docs.go. DO NOT EDIT. -->\n")

	// Breadth-first from the root so sections follow the YAML nesting.
	queue := []string{rootStruct}
	seen := map[string]bool{rootStruct: true}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		info, ok := typeSpecs[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "Warning: struct %s not found\n", name)
			continue
		}

		fields := extractFields(info, typeSpecs)
		writeSection(&sb, info, fields)

		for _, f := range fields {
			if f.Ref != "" && !seen[f.Ref] {
				seen[f.Ref] = true
				queue = append(queue, f.Ref)
			}
		}
	}

	outputPath := filepath.Join(root, "docs", "configuration.md")
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outputPath, []byte(sb.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outputPath)
}

func collectTypeSpecs(file *ast.File, typeSpecs map[string]*typeInfo) {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}

			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				continue
			}

			var doc string
			if genDecl.Doc != nil && len(genDecl.Specs) == 1 {
				doc = cleanDocComment(genDecl.Doc.Text())
			} else if typeSpec.Doc != nil {
				doc = cleanDocComment(typeSpec.Doc.Text())
			}

			typeSpecs[typeSpec.Name.Name] = &typeInfo{
				name:       typeSpec.Name.Name,
				doc:        doc,
				structType: structType,
			}
		}
	}
}

func extractFields(info *typeInfo, typeSpecs map[string]*typeInfo) []field {
	var fields []field

	for _, astField := range info.structType.Fields.List {
		if len(astField.Names) == 0 || !ast.IsExported(astField.Names[0].Name) {
			continue
		}

		var f field
		if astField.Tag != nil {
			tag := reflect.StructTag(strings.Trim(astField.Tag.Value, "`"))
			f.YAMLKey = strings.Split(tag.Get("yaml"), ",")[0]
			f.Required, f.Enum = parseValidateTag(tag)
			_, f.Template = tag.Lookup("template")
		}
		if f.YAMLKey == "" || f.YAMLKey == "-" {
			continue
		}

		f.Type = typeName(astField.Type)
		if ident := baseIdent(astField.Type); ident != "" {
			if _, ok := typeSpecs[ident]; ok {
				f.Ref = ident
			}
		}

		f.Description, f.Default = parseFieldDoc(astField)
		fields = append(fields, f)
	}

	return fields
}

func writeSection(sb *strings.Builder, info *typeInfo, fields []field) {
	fmt.Fprintf(sb, "\n## %s\n\n", info.name)
	if info.doc != "" {
		fmt.Fprintf(sb, "%s\n\n", strings.ReplaceAll(info.doc, "\n", " "))
	}
	if len(fields) == 0 {
		sb.WriteString("No options.\n")
		return
	}

	sb.WriteString("| Key | Type | Required | Default | Description |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, f := range fields {
		typ := "`" + f.Type + "`"
		if f.Ref != "" {
			typ = fmt.Sprintf("[%s](#%s)", f.Type, strings.ToLower(f.Ref))
		}

		desc := strings.ReplaceAll(f.Description, "\n", " ")
		if len(f.Enum) > 0 {
			desc = strings.TrimSpace(desc + " One of: `" + strings.Join(f.Enum, "`, `") + "`.")
		}
		if f.Template {
			desc = strings.TrimSpace(desc + " Supports `${VAR}` templates.")
		}

		required := ""
		if f.Required {
			required = "yes"
		}
		def := ""
		if f.Default != "" {
			def = "`" + f.Default + "`"
		}

		fmt.Fprintf(sb, "| `%s` | %s | %s | %s | %s |\n", f.YAMLKey, typ, required, def, strings.ReplaceAll(desc, "|", "\\|"))
	}
}

func parseValidateTag(tag reflect.StructTag) (required bool, enum []string) {
	for _, part := range strings.Split(tag.Get("validate"), ",") {
		switch {
		case part == "required":
			required = true
		case strings.HasPrefix(part, "oneof="):
			enum = strings.Split(strings.TrimPrefix(part, "oneof="), " ")
		}
	}
	return required, enum
}

func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return typeName(t.X)
	case *ast.ArrayType:
		return "[]" + typeName(t.Elt)
	case *ast.MapType:
		return fmt.Sprintf("map[%s]%s", typeName(t.Key), typeName(t.Value))
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name
		}
		return t.Sel.Name
	case *ast.InterfaceType:
		return "any"
	default:
		return "unknown"
	}
}

// baseIdent unwraps pointers to the named type, if any.
func baseIdent(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return baseIdent(t.X)
	default:
		return ""
	}
}

// Matches "(default: ".dcm")", "(default: none)" and similar.
var defaultRegex = regexp.MustCompile(`\(default: ([^)]+)\)`)

func parseFieldDoc(f *ast.Field) (description, defaultVal string) {
	var docText string
	if f.Doc != nil {
		docText = f.Doc.Text()
	} else if f.Comment != nil {
		docText = f.Comment.Text()
	}
	if docText == "" {
		return "", ""
	}

	description = cleanDocComment(docText)
	if matches := defaultRegex.FindStringSubmatch(strings.ReplaceAll(docText, "\n", " ")); len(matches) > 1 {
		defaultVal = strings.Trim(strings.TrimSpace(matches[1]), `"`)
	}

	return description, defaultVal
}

func cleanDocComment(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
