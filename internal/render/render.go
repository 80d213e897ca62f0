// Package render turns a crawl tree into the commented map document.
package render

import (
	"fmt"
	"strings"

	"pycrawl/internal/types"
)

const (
	commentPrefix = "# "
	commentBlank  = "#"

	headerTitleLine     = "Program Map:"
	headerContextFormat = "This section outlines the directory and file structure of %s,"
	headerPurposeLine   = "providing a brief explanation for each component."

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix   = "/"
	declarationFormat = "-> %s: %s"
	lineTerminator    = "\n"
)

// Render produces the commented map document for tree. Every line begins
// with the Python line-comment marker so the artifact can be embedded in a
// source file verbatim. Output is a pure function of its inputs: rendering
// the same tree twice yields byte-identical documents.
func Render(tree *types.DirectoryNode, titleContext string) string {
	var documentBuilder strings.Builder
	writeHeader(&documentBuilder, titleContext)
	writeLine(&documentBuilder, treeLastConnector+tree.Name+directorySuffix)
	renderChildren(&documentBuilder, tree, treeLastPadding)
	return documentBuilder.String()
}

// writeHeader emits the title block followed by a blank commented line.
func writeHeader(documentBuilder *strings.Builder, titleContext string) {
	writeLine(documentBuilder, headerTitleLine)
	writeLine(documentBuilder, fmt.Sprintf(headerContextFormat, titleContext))
	writeLine(documentBuilder, headerPurposeLine)
	documentBuilder.WriteString(commentBlank + lineTerminator)
}

// renderChildren emits the subdirectories of directoryNode before its files.
// prefix carries the accumulated continuation padding of all ancestors.
func renderChildren(documentBuilder *strings.Builder, directoryNode *types.DirectoryNode, prefix string) {
	childCount := len(directoryNode.Subdirectories) + len(directoryNode.Files)
	childIndex := 0

	for _, subdirectoryNode := range directoryNode.Subdirectories {
		childIndex++
		connector, childPrefix := childConnector(prefix, childIndex == childCount)
		writeLine(documentBuilder, connector+subdirectoryNode.Name+directorySuffix)
		renderChildren(documentBuilder, subdirectoryNode, childPrefix)
	}

	for _, fileNode := range directoryNode.Files {
		childIndex++
		connector, childPrefix := childConnector(prefix, childIndex == childCount)
		writeLine(documentBuilder, connector+fileNode.Name)
		for _, declaration := range fileNode.Declarations {
			writeLine(documentBuilder, childPrefix+fmt.Sprintf(declarationFormat, declaration.Kind, declaration.Name))
		}
	}
}

// childConnector returns the connector line prefix for a child at the current
// depth and the continuation prefix for the child's own descendants.
func childConnector(prefix string, isLast bool) (string, string) {
	if isLast {
		return prefix + treeLastConnector, prefix + treeLastPadding
	}
	return prefix + treeBranchConnector, prefix + treeBranchPadding
}

func writeLine(documentBuilder *strings.Builder, content string) {
	documentBuilder.WriteString(commentPrefix + content + lineTerminator)
}
