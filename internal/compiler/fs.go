package compiler

import (
	"io/fs"
	"strings"
	"time"

	"github.com/microsoft/typescript-go/shim/bundled"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/microsoft/typescript-go/shim/vfs/cachedvfs"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
)

// CreateDefaultFS creates a filesystem using the OS filesystem with bundled libs.
func CreateDefaultFS() vfs.FS {
	return bundled.WrapFS(cachedvfs.From(osvfs.FS()))
}

// CreateDefaultHost creates a compiler host rooted at cwd.
func CreateDefaultHost(cwd string, fs vfs.FS) shimcompiler.CompilerHost {
	return shimcompiler.NewCompilerHost(cwd, fs, bundled.LibPath(), nil, nil)
}

// OverlayFS serves in-memory files on top of a base filesystem. Overlay
// files shadow files of the same path on disk and are read-only.
type OverlayFS struct {
	base  vfs.FS
	files map[string]string
}

var _ vfs.FS = (*OverlayFS)(nil)

// NewOverlayFS layers files (keyed by normalized absolute path) over base.
func NewOverlayFS(base vfs.FS, files map[string]string) *OverlayFS {
	return &OverlayFS{base: base, files: files}
}

func (o *OverlayFS) UseCaseSensitiveFileNames() bool {
	return o.base.UseCaseSensitiveFileNames()
}

func (o *OverlayFS) FileExists(path string) bool {
	if _, ok := o.files[path]; ok {
		return true
	}
	return o.base.FileExists(path)
}

func (o *OverlayFS) ReadFile(path string) (contents string, ok bool) {
	if src, ok := o.files[path]; ok {
		return src, true
	}
	return o.base.ReadFile(path)
}

func (o *OverlayFS) DirectoryExists(path string) bool {
	prefix := dirPrefix(path)
	for p := range o.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return o.base.DirectoryExists(path)
}

func (o *OverlayFS) GetAccessibleEntries(path string) vfs.Entries {
	result := o.base.GetAccessibleEntries(path)
	prefix := dirPrefix(path)
	for p := range o.files {
		rest, found := strings.CutPrefix(p, prefix)
		if !found {
			continue
		}
		if dir, _, nested := strings.Cut(rest, "/"); nested {
			result.Directories = append(result.Directories, dir)
		} else {
			result.Files = append(result.Files, rest)
		}
	}
	return result
}

func (o *OverlayFS) Stat(path string) vfs.FileInfo {
	if src, ok := o.files[path]; ok {
		return &overlayFileInfo{name: path, size: int64(len(src))}
	}
	return o.base.Stat(path)
}

func (o *OverlayFS) WalkDir(root string, walkFn vfs.WalkDirFunc) error {
	return o.base.WalkDir(root, walkFn)
}

func (o *OverlayFS) Realpath(path string) string {
	if _, ok := o.files[path]; ok {
		return path
	}
	return o.base.Realpath(path)
}

func (o *OverlayFS) WriteFile(path string, data string, writeByteOrderMark bool) error {
	if _, ok := o.files[path]; ok {
		return fs.ErrPermission
	}
	return o.base.WriteFile(path, data, writeByteOrderMark)
}

func (o *OverlayFS) Remove(path string) error {
	if _, ok := o.files[path]; ok {
		return fs.ErrPermission
	}
	return o.base.Remove(path)
}

func (o *OverlayFS) Chtimes(path string, aTime time.Time, mTime time.Time) error {
	if _, ok := o.files[path]; ok {
		return fs.ErrPermission
	}
	return o.base.Chtimes(path, aTime, mTime)
}

func dirPrefix(path string) string {
	p := tspath.NormalizePath(path)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

type overlayFileInfo struct {
	name string
	size int64
}

var (
	_ fs.FileInfo = (*overlayFileInfo)(nil)
	_ fs.DirEntry = (*overlayFileInfo)(nil)
)

func (fi *overlayFileInfo) IsDir() bool                { return false }
func (fi *overlayFileInfo) ModTime() time.Time         { return time.Time{} }
func (fi *overlayFileInfo) Mode() fs.FileMode          { return 0o444 }
func (fi *overlayFileInfo) Name() string               { return fi.name }
func (fi *overlayFileInfo) Size() int64                { return fi.size }
func (fi *overlayFileInfo) Sys() any                   { return nil }
func (fi *overlayFileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi *overlayFileInfo) Type() fs.FileMode          { return 0 }
