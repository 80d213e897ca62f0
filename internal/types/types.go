// Package types defines the shared data structures assembled by a crawl.
package types

// DeclarationKind identifies the kind of a module-level declaration.
type DeclarationKind string

const (
	// DeclarationKindFunction marks a module-level function definition.
	DeclarationKindFunction DeclarationKind = "Function"
	// DeclarationKindClass marks a module-level class definition.
	DeclarationKindClass DeclarationKind = "Class"
)

// DeclarationEntry records one module-level declaration of a source file.
// Entries are immutable once extracted and keep their source order.
type DeclarationEntry struct {
	Kind DeclarationKind `json:"kind"`
	Name string          `json:"name"`
}

// FileNode represents one eligible source file discovered by the walk.
type FileNode struct {
	Name         string             `json:"name"`
	Path         string             `json:"path"`
	Declarations []DeclarationEntry `json:"declarations,omitempty"`
	ParseFailed  bool               `json:"parseFailed,omitempty"`
}

// DirectoryNode represents one directory discovered by the walk.
// Subdirectories and Files are each sorted by name; subdirectories render
// before files.
type DirectoryNode struct {
	Name           string           `json:"name"`
	Path           string           `json:"path"`
	Subdirectories []*DirectoryNode `json:"subdirectories,omitempty"`
	Files          []*FileNode      `json:"files,omitempty"`
}
