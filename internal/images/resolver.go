package images

import (
	"os"
	"path/filepath"
	"strings"
)

// Extension is the only image extension looked up.
const Extension = ".jpg"

// Resolver maps bird names to image files under a fixed directory.
type Resolver struct {
	dir string
}

// NewResolver creates a resolver rooted at dir. The directory does not need to exist.
func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir}
}

// Dir returns the image directory.
func (r *Resolver) Dir() string {
	return r.dir
}

// Resolve returns the path of <english>.jpg, or false if there is no such regular file.
// Names that would escape the image directory never resolve.
func (r *Resolver) Resolve(english string) (string, bool) {
	if !validName(english) {
		return "", false
	}

	path := filepath.Join(r.dir, english+Extension)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// Exists reports whether an image is available for english.
func (r *Resolver) Exists(english string) bool {
	_, ok := r.Resolve(english)
	return ok
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return true
}
