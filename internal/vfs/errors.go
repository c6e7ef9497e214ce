package vfs

import "errors"

// Filesystem operation errors. The text of each sentinel doubles as the
// classic errno message a shell prints, so handlers can surface them
// directly after the failing operand.
var (
	// ErrNoSuchEntry is returned when a path names nothing.
	ErrNoSuchEntry = errors.New("no such file or directory")

	// ErrNotADirectory is returned when a file appears where a
	// directory is required.
	ErrNotADirectory = errors.New("not a directory")

	// ErrIsADirectory is returned when a directory appears where a
	// file is required.
	ErrIsADirectory = errors.New("is a directory")

	// ErrDirectoryNotEmpty is returned when removing a non-empty
	// directory without recursion.
	ErrDirectoryNotEmpty = errors.New("directory not empty")

	// ErrAlreadyExists is returned when creating over an existing
	// entry without overwrite semantics.
	ErrAlreadyExists = errors.New("file exists")

	// ErrInvalidArgument is returned for structurally impossible
	// requests, such as moving a directory into its own subtree or
	// removing the root.
	ErrInvalidArgument = errors.New("invalid argument")
)
