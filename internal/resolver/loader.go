package resolver

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"

	"github.com/fluxlang/fluxc/internal/config"
)

// DirLoader reads stdlib sources from a directory tree rooted at Root,
// where an import path `a/b` maps to the directory Root/a/b and every
// non-test *.flux file inside it belongs to the package.
type DirLoader struct{ Root string }

func (d DirLoader) Load(path string) (map[string]string, error) {
	dir := filepath.Join(d.Root, filepath.FromSlash(path))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, config.SourceFileExt) {
			continue
		}
		if strings.HasSuffix(name, "_test"+config.SourceFileExt) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out[name] = string(b)
	}
	return out, nil
}

// TxtarLoader backs a whole tree of packages, including a deliberately
// cyclic one, with a single golden archive: each file's archive-relative
// name is "<import path>/<file name>.flux", letting one fixture exercise
// the resolver across several packages and import edges at once.
type TxtarLoader struct {
	files map[string]map[string]string // import path -> file name -> contents
}

func NewTxtarLoader(archive *txtar.Archive) *TxtarLoader {
	l := &TxtarLoader{files: map[string]map[string]string{}}
	for _, f := range archive.Files {
		dir, name := path.Split(f.Name)
		dir = strings.TrimSuffix(dir, "/")
		if l.files[dir] == nil {
			l.files[dir] = map[string]string{}
		}
		l.files[dir][name] = string(f.Data)
	}
	return l
}

func (l *TxtarLoader) Load(importPath string) (map[string]string, error) {
	files, ok := l.files[importPath]
	if !ok {
		return nil, os.ErrNotExist
	}
	return files, nil
}
