package extractor

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// orderAnnotation is the class annotation that selects a method order.
const orderAnnotation = "FixMethodOrder"

// JavaExtractor implements LanguageExtractor for Java. Nested types are named
// "Outer.Inner"; a class's parent is its superclass.
type JavaExtractor struct{}

func (j *JavaExtractor) GetLanguage() *sitter.Language {
	return java.GetLanguage()
}

func (j *JavaExtractor) GetQuery() string {
	return `
		(class_declaration) @type
		(interface_declaration) @type
		(enum_declaration) @type
		(method_declaration) @method
	`
}

func (j *JavaExtractor) Extensions() []string {
	return []string{".java"}
}

func (j *JavaExtractor) PackageName(root *sitter.Node, sourceCode []byte) string {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "package_declaration" {
			continue
		}
		for k := 0; k < int(child.NamedChildCount()); k++ {
			n := child.NamedChild(k)
			if n.Type() == "scoped_identifier" || n.Type() == "identifier" {
				return n.Content(sourceCode)
			}
		}
	}
	return ""
}

func (j *JavaExtractor) ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, packageName string) *CodeUnit {
	switch captureName {
	case "type":
		return j.extractTypeUnit(node, sourceCode, filepath)
	case "method":
		return j.extractMethodUnit(node, sourceCode, filepath)
	}
	return nil
}

func (j *JavaExtractor) extractTypeUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	outer, ok := j.enclosingTypes(node, sourceCode)
	if !ok {
		return nil
	}
	name := joinNested(outer, nameNode.Content(sourceCode))

	details := &TypeDetails{Kind: strings.TrimSuffix(node.Type(), "_declaration")}
	if super := node.ChildByFieldName("superclass"); super != nil {
		for i := 0; i < int(super.NamedChildCount()); i++ {
			details.Parents = append(details.Parents, baseTypeName(super.NamedChild(i).Content(sourceCode)))
		}
	}
	details.Directive = j.orderDirective(node, sourceCode)

	return &CodeUnit{
		ID:          fmt.Sprintf("%s:%s:%d", filepath, name, node.StartPoint().Row+1),
		Filepath:    filepath,
		StartLine:   int(node.StartPoint().Row + 1),
		EndLine:     int(node.EndPoint().Row + 1),
		UnitType:    UnitType,
		Name:        name,
		Description: extractDocComment(node, sourceCode),
		Type:        details,
	}
}

// orderDirective returns the argument of @FixMethodOrder, if present.
func (j *JavaExtractor) orderDirective(node *sitter.Node, sourceCode []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		mods := node.NamedChild(i)
		if mods.Type() != "modifiers" {
			continue
		}
		for k := 0; k < int(mods.NamedChildCount()); k++ {
			ann := mods.NamedChild(k)
			if ann.Type() != "annotation" {
				continue
			}
			annName := ann.ChildByFieldName("name")
			if annName == nil || baseQualifiedName(annName.Content(sourceCode)) != orderAnnotation {
				continue
			}
			if args := ann.ChildByFieldName("arguments"); args != nil {
				raw := strings.TrimSpace(args.Content(sourceCode))
				raw = strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
				if _, v, found := strings.Cut(raw, "="); found {
					raw = v
				}
				return strings.TrimSpace(raw)
			}
		}
	}
	return ""
}

func (j *JavaExtractor) extractMethodUnit(node *sitter.Node, sourceCode []byte, filepath string) *CodeUnit {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	outer, ok := j.enclosingTypes(node, sourceCode)
	if !ok || len(outer) == 0 {
		return nil
	}
	owner := strings.Join(outer, ".")
	name := nameNode.Content(sourceCode)

	details := &MethodDetails{Parameters: []Param{}}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		details.Result = compact(typeNode.Content(sourceCode))
	}
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		details.Parameters = j.extractParams(paramsNode, sourceCode)
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

func (j *JavaExtractor) extractParams(paramsNode *sitter.Node, sourceCode []byte) []Param {
	params := []Param{}
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		p := paramsNode.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			param := Param{}
			if tn := p.ChildByFieldName("type"); tn != nil {
				param.Type = compact(tn.Content(sourceCode))
			}
			if nn := p.ChildByFieldName("name"); nn != nil {
				param.Name = nn.Content(sourceCode)
			}
			if dims := p.ChildByFieldName("dimensions"); dims != nil {
				param.Type += strings.Join(strings.Fields(dims.Content(sourceCode)), "")
			}
			params = append(params, param)
		case "spread_parameter":
			param := Param{}
			for k := 0; k < int(p.NamedChildCount()); k++ {
				c := p.NamedChild(k)
				switch {
				case c.Type() == "modifiers":
				case c.Type() == "variable_declarator":
					if nn := c.ChildByFieldName("name"); nn != nil {
						param.Name = nn.Content(sourceCode)
					}
				case param.Type == "":
					param.Type = compact(c.Content(sourceCode)) + "..."
				}
			}
			params = append(params, param)
		}
	}
	return params
}

// enclosingTypes returns the names of the named types enclosing node,
// outermost first. ok is false inside anonymous class bodies.
func (j *JavaExtractor) enclosingTypes(node *sitter.Node, sourceCode []byte) ([]string, bool) {
	var names []string
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			if n := p.ChildByFieldName("name"); n != nil {
				names = append([]string{n.Content(sourceCode)}, names...)
			}
		case "object_creation_expression":
			return nil, false
		}
	}
	return names, true
}

func joinNested(outer []string, name string) string {
	if len(outer) == 0 {
		return name
	}
	return strings.Join(outer, ".") + "." + name
}

func baseQualifiedName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
