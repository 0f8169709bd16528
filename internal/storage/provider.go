// Package storage defines the document-tree file-system abstraction.
package storage

// Provider is the interface for document-tree file operations. All paths are
// slash-separated and relative to the tree root.
type Provider interface {
	// Root returns the absolute OS path of the tree root.
	Root() string
	// Exists reports whether a file or directory exists at path.
	Exists(path string) bool
	// Dirs returns the names of the direct subdirectories of the root.
	Dirs() ([]string, error)
	// List returns every .md file under dir in lexical order.
	List(dir string) ([]string, error)
	// Read returns the full text of the file at path. Text that is not
	// valid UTF-8 is an error.
	Read(path string) (string, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content string) error
}

// Exister is the narrow existence query the path resolver depends on.
type Exister interface {
	Exists(path string) bool
}

var (
	_ Provider = (*FS)(nil)
	_ Exister  = (*FS)(nil)
)
