// Package contacts provides the embedded example scripts and an overlay
// filesystem that checks local disk first, falling back to embedded.
package contacts

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed examples/*.yaml
var rawExamples embed.FS

// Examples is the embedded scripts filesystem with the "examples/" prefix stripped.
var Examples = mustSub(rawExamples, "examples")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(filepath.Join(o.localDir, filepath.FromSlash(name)))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}

// ScriptSource resolves a script argument to a filesystem and a name within it.
// A bare file name is looked up in the working directory, then among the
// embedded examples; ".yaml" is appended when no extension is given. A path
// with a directory component is read from disk only.
func ScriptSource(arg string) (fs.FS, string) {
	arg = filepath.Clean(arg)
	if filepath.Ext(arg) == "" {
		arg += ".yaml"
	}
	dir, base := filepath.Split(arg)
	if dir == "" {
		return OverlayFS(".", Examples), base
	}
	return os.DirFS(dir), base
}
