package extractor

import sitter "github.com/smacker/go-tree-sitter"

const (
	UnitType   = "type"
	UnitMethod = "method"
)

// CodeUnit is one extracted type or method declaration.
type CodeUnit struct {
	ID          string         `json:"id"`
	Filepath    string         `json:"filepath"`
	Package     string         `json:"package"`
	Language    string         `json:"language"`
	StartLine   int            `json:"start_line"`
	EndLine     int            `json:"end_line"`
	UnitType    string         `json:"unit_type"` // "type" or "method"
	Name        string         `json:"name"`
	Owner       string         `json:"owner,omitempty"` // declaring type of a method
	Description string         `json:"description"`
	Type        *TypeDetails   `json:"type,omitempty"`
	Method      *MethodDetails `json:"method,omitempty"`
}

// TypeDetails describes a declared type.
type TypeDetails struct {
	Kind      string   `json:"kind"`                // e.g. "struct", "class", "interface"
	Parents   []string `json:"parents,omitempty"`   // embedded or extended types, as written
	Directive string   `json:"directive,omitempty"` // requested ordering strategy, if any
}

// MethodDetails describes a declared method.
type MethodDetails struct {
	Receiver   string  `json:"receiver,omitempty"`
	Parameters []Param `json:"parameters"`
	Result     string  `json:"result,omitempty"`
	Signature  string  `json:"signature"`
	Synthetic  bool    `json:"synthetic,omitempty"`
}

// Param is a single method parameter.
type Param struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// ParameterTypes returns the parameter types in declaration order.
func (m *MethodDetails) ParameterTypes() []string {
	types := make([]string, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		types = append(types, p.Type)
	}
	return types
}

// FileUnits is the result of extracting one source file. Units are in
// source order.
type FileUnits struct {
	Path      string      `json:"path"`
	Language  string      `json:"language"`
	Package   string      `json:"package"`
	Generated bool        `json:"generated,omitempty"`
	Hash      string      `json:"hash,omitempty"` // content fingerprint, set by the crawler
	Units     []*CodeUnit `json:"units"`
}

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	Extensions() []string
	PackageName(root *sitter.Node, sourceCode []byte) string
	ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) *CodeUnit
}
