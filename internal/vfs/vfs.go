// Package vfs implements the in-memory virtual filesystem: a single
// rooted tree of directories and files with exclusive parent-to-child
// ownership. Directories keep their children in insertion order. All
// operations take absolute or relative path strings and normalize them
// through vpath, so callers never hold node references; paths are
// derived, never stored on nodes.
//
// The tree is owned by exactly one session and is not safe for
// concurrent use; the session model is strictly turn-based.
package vfs

import (
	"errors"
	"fmt"
	"time"

	"shellquest/internal/vpath"
)

type kind int

const (
	kindDirectory kind = iota
	kindFile
)

// node is one entry in the tree. Children are reachable only through
// their parent, which keeps moves and copies provably cycle-free.
type node struct {
	name     string
	kind     kind
	data     []byte
	modTime  time.Time
	children []*node
	index    map[string]*node
}

func newDir(name string, now time.Time) *node {
	return &node{name: name, kind: kindDirectory, modTime: now, index: make(map[string]*node)}
}

func newFile(name, content string, now time.Time) *node {
	return &node{name: name, kind: kindFile, data: []byte(content), modTime: now}
}

func (n *node) addChild(c *node) {
	n.children = append(n.children, c)
	n.index[c.name] = c
}

func (n *node) removeChild(name string) {
	for i, c := range n.children {
		if c.name == name {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	delete(n.index, name)
}

// clone deep-copies the subtree under a new name with fresh timestamps.
func (n *node) clone(name string, now time.Time) *node {
	c := &node{name: name, kind: n.kind, modTime: now}
	if n.kind == kindFile {
		c.data = append([]byte(nil), n.data...)
		return c
	}
	c.index = make(map[string]*node)
	for _, child := range n.children {
		c.addChild(child.clone(child.name, now))
	}
	return c
}

func (n *node) entry() Entry {
	e := Entry{Name: n.name, IsDir: n.kind == kindDirectory, ModTime: n.modTime}
	if e.IsDir {
		e.Size = len(n.children)
	} else {
		e.Size = len(n.data)
	}
	return e
}

// Entry describes one tree entry without exposing the node itself.
// Size is the payload length in bytes for files and the child count
// for directories.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int
	ModTime time.Time
}

// FS is the virtual filesystem. Now supplies modification timestamps
// and may be replaced for deterministic tests.
type FS struct {
	root *node
	Now  func() time.Time
}

// New returns an empty filesystem containing only the root directory.
func New() *FS {
	fs := &FS{Now: time.Now}
	fs.root = newDir("/", fs.Now())
	return fs
}

// find walks a normalized absolute path to its node.
func (fs *FS) find(path string) (*node, error) {
	cur := fs.root
	for _, seg := range vpath.Split(path) {
		if cur.kind != kindDirectory {
			return nil, fmt.Errorf("%s: %w", path, ErrNotADirectory)
		}
		next, ok := cur.index[seg]
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrNoSuchEntry)
		}
		cur = next
	}
	return cur, nil
}

// findParent returns the parent directory node of a normalized path
// and the final path segment.
func (fs *FS) findParent(path string) (*node, string, error) {
	if path == vpath.Root {
		return nil, "", fmt.Errorf("%s: %w", path, ErrInvalidArgument)
	}
	dir := vpath.Dir(path)
	parent, err := fs.find(dir)
	if err != nil {
		return nil, "", err
	}
	if parent.kind != kindDirectory {
		return nil, "", fmt.Errorf("%s: %w", dir, ErrNotADirectory)
	}
	return parent, vpath.Base(path), nil
}

// Stat returns metadata for the entry at path.
func (fs *FS) Stat(path string) (Entry, error) {
	n, err := fs.find(vpath.Normalize(path))
	if err != nil {
		return Entry{}, err
	}
	return n.entry(), nil
}

// Exists reports whether path names an entry.
func (fs *FS) Exists(path string) bool {
	_, err := fs.find(vpath.Normalize(path))
	return err == nil
}

// IsDir reports whether path names a directory.
func (fs *FS) IsDir(path string) bool {
	n, err := fs.find(vpath.Normalize(path))
	return err == nil && n.kind == kindDirectory
}

// List returns the child names of the directory at path in insertion
// order.
func (fs *FS) List(path string) ([]string, error) {
	norm := vpath.Normalize(path)
	n, err := fs.find(norm)
	if err != nil {
		return nil, err
	}
	if n.kind != kindDirectory {
		return nil, fmt.Errorf("%s: %w", norm, ErrNotADirectory)
	}
	names := make([]string, 0, len(n.children))
	for _, c := range n.children {
		names = append(names, c.name)
	}
	return names, nil
}

// CreateDirectory creates a directory at path. With parents set it
// also creates missing ancestors and succeeds when the target already
// exists; without it a missing parent is an error, as is an existing
// target.
func (fs *FS) CreateDirectory(path string, parents bool) error {
	norm := vpath.Normalize(path)
	if parents {
		cur := fs.root
		for _, seg := range vpath.Split(norm) {
			next, ok := cur.index[seg]
			if !ok {
				next = newDir(seg, fs.Now())
				cur.addChild(next)
			} else if next.kind != kindDirectory {
				return fmt.Errorf("%s: %w", norm, ErrNotADirectory)
			}
			cur = next
		}
		return nil
	}
	if norm == vpath.Root {
		return fmt.Errorf("%s: %w", norm, ErrAlreadyExists)
	}
	parent, base, err := fs.findParent(norm)
	if err != nil {
		return err
	}
	if _, ok := parent.index[base]; ok {
		return fmt.Errorf("%s: %w", norm, ErrAlreadyExists)
	}
	parent.addChild(newDir(base, fs.Now()))
	return nil
}

// CreateFile creates a new file at path. An existing entry of either
// kind is an error; the parent directory must already exist.
func (fs *FS) CreateFile(path, content string) error {
	norm := vpath.Normalize(path)
	parent, base, err := fs.findParent(norm)
	if err != nil {
		return err
	}
	if existing, ok := parent.index[base]; ok {
		if existing.kind == kindDirectory {
			return fmt.Errorf("%s: %w", norm, ErrIsADirectory)
		}
		return fmt.Errorf("%s: %w", norm, ErrAlreadyExists)
	}
	parent.addChild(newFile(base, content, fs.Now()))
	return nil
}

// WriteFile replaces the content of the file at path, creating it if
// absent. Writing over a directory is an error.
func (fs *FS) WriteFile(path, content string) error {
	norm := vpath.Normalize(path)
	parent, base, err := fs.findParent(norm)
	if err != nil {
		return err
	}
	if existing, ok := parent.index[base]; ok {
		if existing.kind == kindDirectory {
			return fmt.Errorf("%s: %w", norm, ErrIsADirectory)
		}
		existing.data = []byte(content)
		existing.modTime = fs.Now()
		return nil
	}
	parent.addChild(newFile(base, content, fs.Now()))
	return nil
}

// ReadFile returns the content of the file at path.
func (fs *FS) ReadFile(path string) (string, error) {
	norm := vpath.Normalize(path)
	n, err := fs.find(norm)
	if err != nil {
		return "", err
	}
	if n.kind == kindDirectory {
		return "", fmt.Errorf("%s: %w", norm, ErrIsADirectory)
	}
	return string(n.data), nil
}

// Touch creates an empty file at path or, if a file already exists,
// refreshes its modification time. Touching a directory is a quiet
// success.
func (fs *FS) Touch(path string) error {
	norm := vpath.Normalize(path)
	if n, err := fs.find(norm); err == nil {
		if n.kind == kindFile {
			n.modTime = fs.Now()
		}
		return nil
	}
	parent, base, err := fs.findParent(norm)
	if err != nil {
		return err
	}
	if _, ok := parent.index[base]; !ok {
		parent.addChild(newFile(base, "", fs.Now()))
	}
	return nil
}

// Remove deletes the entry at path. A non-empty directory requires
// recursive. With force a missing entry is a silent success; other
// failures are still reported.
func (fs *FS) Remove(path string, recursive, force bool) error {
	norm := vpath.Normalize(path)
	if norm == vpath.Root {
		return fmt.Errorf("%s: %w", norm, ErrInvalidArgument)
	}
	parent, base, err := fs.findParent(norm)
	if err != nil {
		if force && errors.Is(err, ErrNoSuchEntry) {
			return nil
		}
		return err
	}
	n, ok := parent.index[base]
	if !ok {
		if force {
			return nil
		}
		return fmt.Errorf("%s: %w", norm, ErrNoSuchEntry)
	}
	if n.kind == kindDirectory && !recursive && len(n.children) > 0 {
		return fmt.Errorf("%s: %w", norm, ErrDirectoryNotEmpty)
	}
	parent.removeChild(base)
	return nil
}

// Copy clones src to dst. Copying a directory requires recursive. A
// directory destination receives the clone inside itself under the
// source's base name; an existing file destination is overwritten,
// an existing directory conflict is an error. Clones get fresh
// timestamps.
func (fs *FS) Copy(src, dst string, recursive bool) error {
	s := vpath.Normalize(src)
	sn, err := fs.find(s)
	if err != nil {
		return err
	}
	if sn.kind == kindDirectory && !recursive {
		return fmt.Errorf("%s: %w", s, ErrIsADirectory)
	}
	target := vpath.Normalize(dst)
	if dn, err := fs.find(target); err == nil && dn.kind == kindDirectory {
		target = vpath.Join(target, vpath.Base(s))
	}
	if target == s {
		return fmt.Errorf("%s: %w", target, ErrInvalidArgument)
	}
	if sn.kind == kindDirectory && vpath.Within(s, target) {
		return fmt.Errorf("%s: %w", target, ErrInvalidArgument)
	}
	parent, base, err := fs.findParent(target)
	if err != nil {
		return err
	}
	if existing, ok := parent.index[base]; ok {
		if existing.kind == kindDirectory || sn.kind == kindDirectory {
			return fmt.Errorf("%s: %w", target, ErrAlreadyExists)
		}
		parent.removeChild(base)
	}
	parent.addChild(sn.clone(base, fs.Now()))
	return nil
}

// Move relocates src to dst, keeping timestamps. A directory
// destination receives the source inside itself under its base name.
// An existing file destination is overwritten by a file source; any
// directory conflict is an error.
func (fs *FS) Move(src, dst string) error {
	s := vpath.Normalize(src)
	if s == vpath.Root {
		return fmt.Errorf("%s: %w", s, ErrInvalidArgument)
	}
	sn, err := fs.find(s)
	if err != nil {
		return err
	}
	target := vpath.Normalize(dst)
	if dn, err := fs.find(target); err == nil && dn.kind == kindDirectory {
		target = vpath.Join(target, vpath.Base(s))
	}
	if target == s {
		return fmt.Errorf("%s: %w", target, ErrInvalidArgument)
	}
	if sn.kind == kindDirectory && vpath.Within(s, target) {
		return fmt.Errorf("%s: %w", target, ErrInvalidArgument)
	}
	parent, base, err := fs.findParent(target)
	if err != nil {
		return err
	}
	if existing, ok := parent.index[base]; ok {
		if existing.kind == kindDirectory || sn.kind == kindDirectory {
			return fmt.Errorf("%s: %w", target, ErrAlreadyExists)
		}
		parent.removeChild(base)
	}
	srcParent, srcBase, err := fs.findParent(s)
	if err != nil {
		return err
	}
	srcParent.removeChild(srcBase)
	sn.name = base
	parent.addChild(sn)
	return nil
}

// Walk visits path and every descendant depth-first in insertion
// order. fn receives each entry's absolute path and metadata; a
// non-nil return aborts the walk. fn must not modify the tree.
func (fs *FS) Walk(path string, fn func(p string, e Entry) error) error {
	norm := vpath.Normalize(path)
	n, err := fs.find(norm)
	if err != nil {
		return err
	}
	return walk(norm, n, fn)
}

func walk(p string, n *node, fn func(p string, e Entry) error) error {
	if err := fn(p, n.entry()); err != nil {
		return err
	}
	if n.kind != kindDirectory {
		return nil
	}
	for _, c := range n.children {
		if err := walk(vpath.Join(p, c.name), c, fn); err != nil {
			return err
		}
	}
	return nil
}
