package apperr

import "errors"

var (
	ErrOutsideRoot     = errors.New("path escapes document root")
	ErrNotDirectory    = errors.New("not a directory")
	ErrNoReference     = errors.New("reference subtree not found")
	ErrChangesPending  = errors.New("documents need rewriting")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
)
