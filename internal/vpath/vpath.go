// Package vpath implements the pure path algebra for the virtual
// filesystem. Paths are plain strings; nothing here touches the tree,
// so every rule is testable in isolation.
//
// Canonical form: absolute, `/`-rooted, no `.` or empty segments, no
// trailing slash except the root itself. `..` pops the previous
// segment and is a no-op at the root.
package vpath

import "strings"

// Root is the absolute path of the filesystem root.
const Root = "/"

// IsAbs reports whether path starts at the root.
func IsAbs(path string) bool {
	return strings.HasPrefix(path, Root)
}

// Normalize converts path into canonical absolute form. A relative
// input is treated as rooted at `/`.
func Normalize(path string) string {
	var stack []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			// collapsed
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}
	if len(stack) == 0 {
		return Root
	}
	return Root + strings.Join(stack, "/")
}

// Resolve returns the absolute path named by input when the working
// directory is cwd. Absolute input ignores cwd entirely.
func Resolve(cwd, input string) string {
	if IsAbs(input) {
		return Normalize(input)
	}
	return Normalize(cwd + "/" + input)
}

// Join normalizes the concatenation of elem.
func Join(elem ...string) string {
	return Normalize(strings.Join(elem, "/"))
}

// Split returns the segments of path in canonical form. The root has
// no segments.
func Split(path string) []string {
	norm := Normalize(path)
	if norm == Root {
		return nil
	}
	return strings.Split(norm[1:], "/")
}

// Base returns the last segment of path, or "/" for the root.
func Base(path string) string {
	segs := Split(path)
	if len(segs) == 0 {
		return Root
	}
	return segs[len(segs)-1]
}

// Dir returns the parent of path. The root is its own parent.
func Dir(path string) string {
	segs := Split(path)
	if len(segs) <= 1 {
		return Root
	}
	return Root + strings.Join(segs[:len(segs)-1], "/")
}

// Within reports whether path is target itself or a descendant of it.
// Both arguments are normalized first.
func Within(target, path string) bool {
	t, p := Normalize(target), Normalize(path)
	if t == Root {
		return true
	}
	return p == t || strings.HasPrefix(p, t+"/")
}
