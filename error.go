package ar

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingGlobalHeader indicates that the archive file is invalid because its global
	// header is missing (i.e., because the file is shorter than 8 bytes).
	ErrMissingGlobalHeader = errors.New("ar: missing global header")

	// ErrInvalidGlobalHeader indicates that the archive file is invalid because its global
	// header is malformed (i.e., not the string "!<arch>\n").
	ErrInvalidGlobalHeader = errors.New("ar: invalid global header")

	// ErrBuilderClosed indicates an append to a Builder or GnuBuilder after Close.
	ErrBuilderClosed = errors.New("ar: append to closed builder")

	// ErrNotSeekable indicates a seek on an Entry whose underlying reader does not
	// implement io.Seeker.
	ErrNotSeekable = errors.New("ar: underlying reader is not seekable")

	// ErrEntryReleased indicates a seek on an Entry that has already been closed,
	// either explicitly or by a subsequent call to Archive.Next.
	ErrEntryReleased = errors.New("ar: entry has been released")
)

// ErrRecord indicates a malformed 60-byte member record: a bad terminator, a
// malformed numeric field, or a record cut short by the end of the stream. It is
// fatal to the archive being read.
type ErrRecord struct {
	Offset int64
	Err    error
}

func (e *ErrRecord) Error() string {
	return fmt.Sprintf("ar: invalid member record at offset %d: %s", e.Offset, e.Err)
}

func (e *ErrRecord) Unwrap() error {
	return e.Err
}

// ErrStringTable indicates a problem with the string table in archives that use the GNU
// variant of the file format.
type ErrStringTable struct {
	Err error
}

func (e *ErrStringTable) Error() string {
	return fmt.Sprintf("ar: string table: %s", e.Err)
}

func (e *ErrStringTable) Unwrap() error {
	return e.Err
}

// ErrSymbolTable indicates a problem with the symbol table member of an archive.
type ErrSymbolTable struct {
	Err error
}

func (e *ErrSymbolTable) Error() string {
	return fmt.Sprintf("ar: symbol table: %s", e.Err)
}

func (e *ErrSymbolTable) Unwrap() error {
	return e.Err
}

// ErrFileName indicates a problem with the file name in one of the archive's file headers.
type ErrFileName struct {
	Name string
	Err  error
}

func (e *ErrFileName) Error() string {
	return fmt.Sprintf("ar: archive member '%s': %s", e.Name, e.Err)
}

func (e *ErrFileName) Unwrap() error {
	return e.Err
}

// ErrSizeMismatch indicates that a member's declared size does not match the number of
// bytes actually transferred, on either the read side (truncated payload) or the write
// side (data source shorter or longer than Header.Size).
type ErrSizeMismatch struct {
	Name     string
	Declared int64
	Actual   int64
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("ar: archive member '%s': declared size %d, transferred %d", e.Name, e.Declared, e.Actual)
}

// ErrSeekRange indicates a seek target outside an entry's bounds. The entry's
// position is left unchanged.
type ErrSeekRange struct {
	Target int64
	Length int64
}

func (e *ErrSeekRange) Error() string {
	return fmt.Sprintf("ar: seek to %d outside entry of length %d", e.Target, e.Length)
}

// ErrUnknownIdentifier indicates a header passed to GnuBuilder.Append whose name was
// not in the list of identifiers given to NewGnuBuilder. The GNU string table layout is
// fixed when the builder is constructed, so no new long name can be accommodated later.
type ErrUnknownIdentifier struct {
	Name string
}

func (e *ErrUnknownIdentifier) Error() string {
	return fmt.Sprintf("ar: identifier '%s' was not in the list of identifiers passed to NewGnuBuilder", e.Name)
}
