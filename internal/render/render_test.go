package render_test

import (
	"strings"
	"testing"

	"pycrawl/internal/render"
	"pycrawl/internal/types"
)

func demoTree() *types.DirectoryNode {
	return &types.DirectoryNode{
		Name: "proj",
		Path: "/src/proj",
		Subdirectories: []*types.DirectoryNode{
			{
				Name: "pkg",
				Path: "/src/proj/pkg",
				Files: []*types.FileNode{
					{
						Name: "a.py",
						Path: "/src/proj/pkg/a.py",
						Declarations: []types.DeclarationEntry{
							{Kind: types.DeclarationKindFunction, Name: "f"},
							{Kind: types.DeclarationKindClass, Name: "C"},
						},
					},
				},
			},
		},
		Files: []*types.FileNode{
			{Name: "top.py", Path: "/src/proj/top.py"},
		},
	}
}

func TestRenderProducesCommentedTree(t *testing.T) {
	expected := strings.Join([]string{
		"# Program Map:",
		"# This section outlines the directory and file structure of Demo,",
		"# providing a brief explanation for each component.",
		"#",
		"# └── proj/",
		"#     ├── pkg/",
		"#     │   └── a.py",
		"#     │       -> Function: f",
		"#     │       -> Class: C",
		"#     └── top.py",
		"",
	}, "\n")

	document := render.Render(demoTree(), "Demo")
	if document != expected {
		t.Fatalf("unexpected document:\n%s\n--- expected ---\n%s", document, expected)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	tree := demoTree()
	first := render.Render(tree, "Demo")
	second := render.Render(tree, "Demo")
	if first != second {
		t.Fatalf("render output differs between calls")
	}
}

func TestRenderEmptyRoot(t *testing.T) {
	tree := &types.DirectoryNode{Name: "empty", Path: "/src/empty"}

	document := render.Render(tree, "Empty Project")
	lines := strings.Split(strings.TrimRight(document, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header plus root line only, got %d lines:\n%s", len(lines), document)
	}
	if lines[len(lines)-1] != "# └── empty/" {
		t.Fatalf("unexpected root line: %q", lines[len(lines)-1])
	}
}

func TestRenderEveryLineIsCommented(t *testing.T) {
	document := render.Render(demoTree(), "Demo")
	for _, line := range strings.Split(strings.TrimRight(document, "\n"), "\n") {
		if !strings.HasPrefix(line, "#") {
			t.Fatalf("uncommented line in document: %q", line)
		}
	}
}
