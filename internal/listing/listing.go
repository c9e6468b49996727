// Package listing reads single directory levels and classifies their entries.
package listing

import (
	"os"
	"path/filepath"
	"slices"

	"imgview/internal/errors"
	"imgview/internal/natsort"

	"github.com/gobwas/glob"
)

// Extensions lists the displayable file extensions. Matching is case-sensitive.
var Extensions = []string{".jpg", ".jpeg", ".png", ".jxl", ".gif", ".webp", ".bmp", ".avif", ".txt", ".layer"}

// Lister lists directories, hiding names that match any ignore pattern.
type Lister struct {
	ignore []glob.Glob
}

// New compiles the ignore patterns and returns a Lister.
func New(ignore ...string) (*Lister, error) {
	l := &Lister{}
	for _, pattern := range ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewConfigError("invalid ignore pattern", pattern, errors.InvalidConfig, err)
		}
		l.ignore = append(l.ignore, g)
	}
	return l, nil
}

func (l *Lister) ignored(name string) bool {
	for _, g := range l.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// List returns the sorted names of dir's immediate entries.
func (l *Lister) List(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fileError(dir, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("not a directory", dir, errors.NotADirectory, nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fileError(dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if l.ignored(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	natsort.Sort(names)
	return names, nil
}

// Displayables returns the sorted names of regular files in dir that have a
// displayable extension.
func (l *Lister) Displayables(dir string) ([]string, error) {
	return l.filter(dir, IsDisplayable)
}

// Directories returns the sorted names of dir's sub-directories.
func (l *Lister) Directories(dir string) ([]string, error) {
	return l.filter(dir, IsDirectory)
}

func (l *Lister) filter(dir string, keep func(string) bool) ([]string, error) {
	names, err := l.List(dir)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(names, func(name string) bool {
		return !keep(filepath.Join(dir, name))
	}), nil
}

func fileError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.NewFileError("file not found", path, errors.FileNotFound, err)
	case os.IsPermission(err):
		return errors.NewFileError("file access denied", path, errors.FileAccessDenied, err)
	default:
		return errors.NewFileError("cannot read directory", path, errors.InvalidPath, err)
	}
}

// IsDisplayable reports whether path is a regular file, after following
// symlinks, with a displayable extension.
func IsDisplayable(path string) bool {
	if !slices.Contains(Extensions, filepath.Ext(path)) {
		return false
	}
	return IsRegularFile(path)
}

// IsText reports whether path names a text displayable.
func IsText(path string) bool {
	return filepath.Ext(path) == ".txt"
}

// IsComposite reports whether path names a layer script.
func IsComposite(path string) bool {
	return filepath.Ext(path) == ".layer"
}

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDirectory reports whether path is a directory, after following symlinks.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsRegularFile reports whether path is a regular file, after following symlinks.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
