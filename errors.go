package tables

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is returned when a column name is not part of a table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMissingSegment indicates that an accessor segment matched nothing on
	// the current value.
	ErrMissingSegment = errors.New("segment not found")

	// ErrAltersData indicates that resolving an accessor would have invoked a
	// callable that declares itself as altering data.
	ErrAltersData = errors.New("refusing to call a callable that alters data")

	// ErrNotConcreteField indicates that an accessor does not end on a field
	// declared by a model schema.
	ErrNotConcreteField = errors.New("not a concrete field")

	// ErrPageNotAnInteger is matched by page errors raised for page numbers
	// that cannot be parsed.
	ErrPageNotAnInteger = errors.New("page number is not an integer")

	// ErrEmptyPage is matched by page errors raised for page numbers outside
	// the valid range.
	ErrEmptyPage = errors.New("page contains no results")
)

// ConfigError is raised while defining or instantiating a table whose
// declaration is inconsistent.
type ConfigError struct {
	Table  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	name := e.Table
	if name == "" {
		name = "table"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", name, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ResolveError describes the segment at which an accessor stopped resolving.
type ResolveError struct {
	Path    string
	Segment string
	Err     error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("cannot resolve %q at segment %q: %v", e.Path, e.Segment, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// PageError is returned by the paginator for invalid page requests. Use
// errors.Is with ErrEmptyPage or ErrPageNotAnInteger to tell them apart.
type PageError struct {
	Page   any
	Reason string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("invalid page %v: %s", e.Page, e.Reason)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

func configErrorf(table string, err error, format string, args ...any) *ConfigError {
	return &ConfigError{Table: table, Reason: fmt.Sprintf(format, args...), Err: err}
}
