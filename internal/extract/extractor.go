// Package extract lists the module-level declarations of Python source files.
package extract

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	python "github.com/smacker/go-tree-sitter/python"

	"pycrawl/internal/types"
)

const (
	functionNodeType    = "function_definition"
	classNodeType       = "class_definition"
	decoratedNodeType   = "decorated_definition"
	errorNodeType       = "ERROR"
	nameFieldName       = "name"
	definitionFieldName = "definition"

	// parseErrorFormat reports the file identity and position of a syntax error.
	parseErrorFormat = "%s: syntax error at line %d, column %d"
	// errorNoTreeFormat is used when the parser produces no syntax tree at all.
	errorNoTreeFormat = "parsing %s: no syntax tree produced"
)

// ParseError reports that a source file could not be parsed as valid Python.
// Line and Column are one-based.
type ParseError struct {
	Path   string
	Line   uint32
	Column uint32
}

// Error implements the error interface.
func (parseError *ParseError) Error() string {
	return fmt.Sprintf(parseErrorFormat, parseError.Path, parseError.Line, parseError.Column)
}

// Extractor parses Python sources and lists their top-level declarations.
type Extractor struct {
	parser *sitter.Parser
}

// NewExtractor constructs an Extractor backed by the tree-sitter Python grammar.
func NewExtractor() *Extractor {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Extractor{parser: parser}
}

// Extract returns the module-level function and class declarations of source,
// in source order. Declarations nested inside another function or class are
// not returned, and nested bodies are not descended into. filePath only
// identifies the file in parse failures; no file system access happens here.
func (extractor *Extractor) Extract(filePath string, source []byte) ([]types.DeclarationEntry, error) {
	tree := extractor.parser.Parse(nil, source)
	if tree == nil {
		return nil, fmt.Errorf(errorNoTreeFormat, filePath)
	}
	rootNode := tree.RootNode()
	if rootNode.HasError() {
		errorLine, errorColumn := firstErrorPosition(rootNode)
		return nil, &ParseError{Path: filePath, Line: errorLine + 1, Column: errorColumn + 1}
	}

	var declarations []types.DeclarationEntry
	for childIndex := 0; childIndex < int(rootNode.NamedChildCount()); childIndex++ {
		statementNode := rootNode.NamedChild(childIndex)
		declarationNode := statementNode
		if statementNode.Type() == decoratedNodeType {
			declarationNode = statementNode.ChildByFieldName(definitionFieldName)
			if declarationNode == nil {
				continue
			}
		}
		declarationKind, isDeclaration := declarationKindOf(declarationNode.Type())
		if !isDeclaration {
			continue
		}
		nameNode := declarationNode.ChildByFieldName(nameFieldName)
		if nameNode == nil {
			continue
		}
		declarations = append(declarations, types.DeclarationEntry{
			Kind: declarationKind,
			Name: string(source[nameNode.StartByte():nameNode.EndByte()]),
		})
	}
	return declarations, nil
}

// declarationKindOf maps a tree-sitter node type to a declaration kind.
func declarationKindOf(nodeType string) (types.DeclarationKind, bool) {
	switch nodeType {
	case functionNodeType:
		return types.DeclarationKindFunction, true
	case classNodeType:
		return types.DeclarationKindClass, true
	default:
		return "", false
	}
}

// firstErrorPosition locates the zero-based position of the first error node
// beneath node. The search follows the leftmost subtree that carries an error.
func firstErrorPosition(node *sitter.Node) (uint32, uint32) {
	if node.Type() == errorNodeType || node.IsMissing() {
		startPoint := node.StartPoint()
		return startPoint.Row, startPoint.Column
	}
	for childIndex := 0; childIndex < int(node.ChildCount()); childIndex++ {
		childNode := node.Child(childIndex)
		if childNode == nil || !childNode.HasError() {
			continue
		}
		return firstErrorPosition(childNode)
	}
	startPoint := node.StartPoint()
	return startPoint.Row, startPoint.Column
}
