package catalog

import "methodorder/internal/extractor"

// Type is a declared type together with the methods declared directly on it.
type Type struct {
	Qualified string
	Name      string
	Package   string
	Language  string
	Filepath  string
	StartLine int
	EndLine   int
	Kind      string
	Directive string
	Parents   []string // as written in source
	Methods   []*Method

	resolvedParents []string
}

// ResolvedParents returns the qualified names of the parents found in the catalog.
func (t *Type) ResolvedParents() []string {
	return append([]string(nil), t.resolvedParents...)
}

// Method adapts an extracted method unit to method.Raw.
type Method struct {
	unit          *extractor.CodeUnit
	declaringType string
}

func (m *Method) Name() string          { return m.unit.Name }
func (m *Method) DeclaringType() string { return m.declaringType }
func (m *Method) Synthetic() bool       { return m.unit.Method.Synthetic }
func (m *Method) String() string        { return m.unit.Method.Signature }
func (m *Method) Filepath() string      { return m.unit.Filepath }
func (m *Method) StartLine() int        { return m.unit.StartLine }
func (m *Method) EndLine() int          { return m.unit.EndLine }

// ShadowsByName implements method.NameShadower: a Go method hides promoted
// methods of the same name.
func (m *Method) ShadowsByName() bool { return m.unit.Language == "go" }

func (m *Method) ParameterTypes() []string {
	return m.unit.Method.ParameterTypes()
}
