package extractor

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// DirectivePrefix marks a doc comment line that requests an ordering strategy,
// e.g. "//methodorder:name_ascending".
const DirectivePrefix = "methodorder:"

// GoExtractor implements LanguageExtractor for Go. A type's parents are its
// embedded fields.
type GoExtractor struct{}

func (g *GoExtractor) GetLanguage() *sitter.Language {
	return golang.GetLanguage()
}

func (g *GoExtractor) GetQuery() string {
	return `
		(type_spec) @type
		(method_declaration) @method
	`
}

func (g *GoExtractor) Extensions() []string {
	return []string{".go"}
}

func (g *GoExtractor) PackageName(root *sitter.Node, sourceCode []byte) string {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "package_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if id := child.NamedChild(j); id.Type() == "package_identifier" {
				return id.Content(sourceCode)
			}
		}
	}
	return ""
}

func (g *GoExtractor) ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) *CodeUnit {
	switch captureName {
	case "type":
		return g.extractTypeUnit(node, sourceCode, filepath)
	case "method":
		return g.extractMethodUnit(node, sourceCode, filepath)
	}
	return nil
}

func (g *GoExtractor) extractTypeUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	parentNode := node.Parent()
	if parentNode == nil || parentNode.Type() != "type_declaration" {
		parentNode = node
	}
	docComment := extractDocComment(parentNode, sourceCode)
	if docComment == "" && parentNode != node {
		docComment = extractDocComment(node, sourceCode)
	}

	details := &TypeDetails{Kind: "type", Directive: directive(docComment)}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		switch typeNode.Type() {
		case "struct_type":
			details.Kind = "struct"
			details.Parents = g.embeddedTypes(typeNode, sourceCode)
		case "interface_type":
			details.Kind = "interface"
		}
	}

	return &CodeUnit{
		ID:          fmt.Sprintf("%s:%s:%d", filepath, name, node.StartPoint().Row+1),
		Filepath:    filepath,
		StartLine:   int(parentNode.StartPoint().Row + 1),
		EndLine:     int(parentNode.EndPoint().Row + 1),
		UnitType:    UnitType,
		Name:        name,
		Description: docComment,
		Type:        details,
	}
}

// embeddedTypes lists the embedded fields of a struct in field order.
func (g *GoExtractor) embeddedTypes(structNode *sitter.Node, sourceCode []byte) []string {
	var fieldList *sitter.Node
	for i := 0; i < int(structNode.ChildCount()); i++ {
		child := structNode.Child(i)
		if child.Type() == "field_declaration_list" {
			fieldList = child
			break
		}
	}
	if fieldList == nil {
		return nil
	}

	var embedded []string
	for i := 0; i < int(fieldList.NamedChildCount()); i++ {
		fieldDecl := fieldList.NamedChild(i)
		if fieldDecl.Type() != "field_declaration" || fieldDecl.ChildByFieldName("name") != nil {
			continue
		}
		typeNode := fieldDecl.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		embedded = append(embedded, baseTypeName(typeNode.Content(sourceCode)))
	}
	return embedded
}

func (g *GoExtractor) extractMethodUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	receiverNode := node.ChildByFieldName("receiver")
	if nameNode == nil || receiverNode == nil {
		return nil
	}
	name := nameNode.Content(sourceCode)

	owner := ""
	for i := 0; i < int(receiverNode.NamedChildCount()); i++ {
		p := receiverNode.NamedChild(i)
		if tn := p.ChildByFieldName("type"); tn != nil {
			owner = baseTypeName(tn.Content(sourceCode))
			break
		}
	}
	if owner == "" {
		return nil
	}

	details := &MethodDetails{
		Receiver:   receiverNode.Content(sourceCode),
		Parameters: []Param{},
	}
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		details.Parameters = g.extractParams(paramsNode, sourceCode)
	}
	if resultNode := node.ChildByFieldName("result"); resultNode != nil {
		details.Result = g.extractResult(resultNode, sourceCode)
	}

	return &CodeUnit{
		ID:          fmt.Sprintf("%s:%s.%s:%d", filepath, owner, name, node.StartPoint().Row+1),
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		UnitType:    UnitMethod,
		Name:        name,
		Owner:       owner,
		Description: extractDocComment(node, sourceCode),
		Method:      details,
	}
}

func (g *GoExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []Param {
	params := []Param{}
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		pNode := paramsNode.NamedChild(i)
		var pType string
		switch pNode.Type() {
		case "parameter_declaration":
			if tn := pNode.ChildByFieldName("type"); tn != nil {
				pType = compact(tn.Content(sourceCode))
			}
		case "variadic_parameter_declaration":
			if tn := pNode.ChildByFieldName("type"); tn != nil {
				pType = "..." + compact(tn.Content(sourceCode))
			}
		default:
			continue
		}

		var names []string
		for j := 0; j < int(pNode.NamedChildCount()); j++ {
			if child := pNode.NamedChild(j); child.Type() == "identifier" {
				names = append(names, child.Content(sourceCode))
			}
		}
		if len(names) == 0 {
			params = append(params, Param{Type: pType})
			continue
		}
		for _, n := range names {
			params = append(params, Param{Name: n, Type: pType})
		}
	}
	return params
}

// extractResult renders a result list canonically: "T" or "(T1,T2)".
func (g *GoExtractor) extractResult(resultNode *sitter.Node, sourceCode []byte) string {
	if resultNode.Type() != "parameter_list" {
		return compact(resultNode.Content(sourceCode))
	}
	types := make([]string, 0)
	for _, p := range g.extractParams(resultNode, sourceCode) {
		types = append(types, p.Type)
	}
	if len(types) == 1 {
		return types[0]
	}
	return "(" + strings.Join(types, ",") + ")"
}

// baseTypeName strips pointer markers and type arguments: "*List[T]" becomes "List".
func baseTypeName(t string) string {
	t = strings.TrimSpace(t)
	t = strings.TrimLeft(t, "*")
	if i := strings.IndexAny(t, "[<"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func directive(doc string) string {
	for _, line := range strings.Split(doc, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), DirectivePrefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func extractDocComment(node *sitter.Node, sourceCode []byte) string {
	var commentLines []string
	currentNode := node
	for {
		prevSibling := currentNode.PrevSibling()
		if prevSibling == nil || (currentNode.StartPoint().Row-prevSibling.EndPoint().Row > 1) {
			break
		}
		if prevSibling.Type() != "comment" && prevSibling.Type() != "line_comment" && prevSibling.Type() != "block_comment" {
			break
		}
		commentLines = append([]string{prevSibling.Content(sourceCode)}, commentLines...)
		currentNode = prevSibling
	}
	return cleanDocComment(strings.Join(commentLines, "\n"))
}

func cleanDocComment(rawComment string) string {
	if rawComment == "" {
		return ""
	}
	lines := strings.Split(rawComment, "\n")
	var cleaned []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/**")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		l = strings.TrimPrefix(strings.TrimSpace(l), "* ")
		cleaned = append(cleaned, strings.TrimSpace(l))
	}
	return strings.Join(cleaned, "\n")
}
