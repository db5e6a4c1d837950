package port

// FileWalker lists the response files below a root directory.
type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

// FileInfo describes one response file. Rel is relative to the walk root
// and uses forward slashes.
type FileInfo struct {
	Path    string
	Rel     string
	ModTime int64
	Size    int64
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
