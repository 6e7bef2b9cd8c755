package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// Infrastructure errors are wrapped into these where the caller needs to branch on them.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUndefinedKey indicates an entry data key was read but never set.
	ErrUndefinedKey = errors.New("undefined key")

	// ErrLogic indicates a call sequence that violates a lifecycle invariant,
	// e.g. processing a list twice without force.
	ErrLogic = errors.New("logic error")

	// ErrInfiniteLoop indicates a processor returned its own input for further processing.
	ErrInfiniteLoop = fmt.Errorf("%w: infinite processing loop", ErrLogic)

	// ErrUnexpectedValue indicates a processor returned a result that does not
	// match the action it claimed.
	ErrUnexpectedValue = errors.New("unexpected value")

	// Entry Errors.

	// ErrEntryCreationFailed indicates an entry could not be built from its data.
	ErrEntryCreationFailed = errors.New("entry creation failed")

	// ErrURLEntryCreationFailed indicates a URL processor failed on a URL.
	ErrURLEntryCreationFailed = errors.New("url entry creation failed")

	// ErrEntryResolveFailed indicates enrichment of an entry failed.
	ErrEntryResolveFailed = errors.New("entry resolve failed")

	// Definition Errors.

	// ErrInvalidDefinition indicates a list definition failed validation.
	ErrInvalidDefinition = errors.New("invalid list definition")

	// ErrDuplicateCategory indicates the same label appears twice in a category tree.
	ErrDuplicateCategory = errors.New("duplicate category in tree")

	// Build Errors.

	// ErrInvalidBuild indicates a build directory has no usable manifest.
	ErrInvalidBuild = errors.New("invalid build")

	// ErrBuildLocked indicates another run holds the build lock.
	ErrBuildLocked = errors.New("build is locked by another run")
)

// URLEntryCreationError carries the processor and URL that failed.
type URLEntryCreationError struct {
	Processor string
	URL       string
	Err       error
}

func (e *URLEntryCreationError) Error() string {
	return fmt.Sprintf("url processor %s failed on %s: %v", e.Processor, e.URL, e.Err)
}

func (e *URLEntryCreationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrURLEntryCreationFailed.
func (e *URLEntryCreationError) Is(target error) bool {
	return target == ErrURLEntryCreationFailed
}

// EntryResolveError carries the entry that could not be resolved.
type EntryResolveError struct {
	EntryID string
	Err     error
}

func (e *EntryResolveError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.EntryID, e.Err)
}

func (e *EntryResolveError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEntryResolveFailed.
func (e *EntryResolveError) Is(target error) bool {
	return target == ErrEntryResolveFailed
}

// StorageError wraps an I/O failure with the logical path it concerned.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
