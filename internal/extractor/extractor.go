package extractor

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"methodorder/internal/method"

	sitter "github.com/smacker/go-tree-sitter"
)

var generatedHeader = regexp.MustCompile(`(?m)^// Code generated .* DO NOT EDIT\.$`)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "go":
		langExt = &GoExtractor{}
	case "java":
		langExt = &JavaExtractor{}
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

func (e *Extractor) Language() string { return e.langName }

// Handles reports whether the file name belongs to this extractor's language.
func (e *Extractor) Handles(name string) bool {
	for _, ext := range e.langExtractor.Extensions() {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ExtractFromFile reads and extracts a single source file.
func (e *Extractor) ExtractFromFile(filepath string) (*FileUnits, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return e.ExtractSource(filepath, sourceCode)
}

// ExtractSource parses source code and extracts its types and methods in
// source order, qualified by the declared package name.
func (e *Extractor) ExtractSource(filepath string, sourceCode []byte) (*FileUnits, error) {
	return e.ExtractSourceAs(filepath, "", sourceCode)
}

// ExtractSourceAs is ExtractSource with types qualified by importPath instead
// of the declared package name. External test packages ("x_test") get a
// "_test" suffix so they stay apart from the package under test.
func (e *Extractor) ExtractSourceAs(filepath, importPath string, sourceCode []byte) (*FileUnits, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	out := &FileUnits{
		Path:      filepath,
		Language:  e.langName,
		Package:   qualifier(importPath, e.langExtractor.PackageName(root, sourceCode)),
		Generated: generatedHeader.Match(sourceCode),
	}

	query, err := sitter.NewQuery([]byte(e.langExtractor.GetQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, root)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			captureName := query.CaptureNameForId(c.Index)
			unit := e.langExtractor.ExtractUnit(captureName, c.Node, sourceCode, filepath, out.Package)
			if unit == nil {
				continue
			}
			unit.Package = out.Package
			unit.Language = e.langName
			if unit.Method != nil {
				e.finishMethod(unit, out.Generated)
			}
			out.Units = append(out.Units, unit)
		}
	}

	return out, nil
}

func (e *Extractor) finishMethod(unit *CodeUnit, generated bool) {
	md := unit.Method
	md.Synthetic = generated || strings.Contains(unit.Name, "$")
	md.Signature = method.FormatSignature(md.Result, Qualify(unit.Package, unit.Owner), unit.Name, md.ParameterTypes())
}

func qualifier(importPath, declared string) string {
	switch {
	case importPath == "":
		return declared
	case strings.HasSuffix(declared, "_test"):
		return importPath + "_test"
	default:
		return importPath
	}
}

// Qualify joins a package and a type name.
func Qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
