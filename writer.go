/*
Copyright (c) 2017 Matthew D. Steele <mdsteele@alum.mit.edu>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package ar

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Builder writes archives in the common or BSD variant.
//
// Names that fit in the 16-byte header field and contain no space are
// written literally, which is the common variant; longer names and names
// containing a space are stored BSD-style at the front of the member's data
// section.
//
// Example:
//
//	builder := NewBuilder(f)
//	hdr := &Header{Name: "hello.txt", Size: int64(len(body))}
//	if err := builder.Append(hdr, strings.NewReader(body)); err != nil {
//	    return err
//	}
type Builder struct {
	// w is the underlying io.Writer to which the archive file is written.
	w io.Writer

	// started is true once the global archive header has been written; it must
	// be the first write operation on the underlying io.Writer.
	started bool

	// closed is true if Close has been called on this Builder.
	closed bool
}

// NewBuilder creates a new Builder that writes an ar archive to w.
func NewBuilder(w io.Writer) *Builder {
	return &Builder{w: w}
}

// Append adds a new member to the archive: the 60-byte record for hdr,
// followed by exactly hdr.Size bytes copied from data, followed by one '\n'
// pad byte if the payload length was odd. If data yields a number of bytes
// different from hdr.Size, Append fails with ErrSizeMismatch; the archive is
// corrupt past this member and should be discarded.
func (b *Builder) Append(hdr *Header, data io.Reader) error {
	if b.closed {
		return ErrBuilderClosed
	}
	if hdr.Name == "" {
		return &ErrFileName{Name: hdr.Name, Err: errors.New("empty file name")}
	}
	if err := b.start(); err != nil {
		return err
	}
	nameField := hdr.Name
	var inline []byte
	if len(hdr.Name) > 16 || strings.Contains(hdr.Name, " ") {
		// BSD long form: the name is stored at the front of the data section,
		// NUL padded to a multiple of four bytes.
		padded := (len(hdr.Name) + 3) &^ 3
		inline = make([]byte, padded)
		copy(inline, hdr.Name)
		nameField = "#1/" + strconv.Itoa(padded)
	}
	return appendMember(b.w, hdr, nameField, inline, data)
}

func (b *Builder) start() error {
	if b.started {
		return nil
	}
	b.started = true
	if _, err := io.WriteString(b.w, GLOBAL_HEADER); err != nil {
		return fmt.Errorf("ar: write global header: %w", err)
	}
	return nil
}

// Close finishes the archive, ensuring a valid global header has been
// written even if the archive contains no members. It does not close the
// underlying io.Writer.
func (b *Builder) Close() error {
	if b.closed {
		return errors.New("ar: builder closed twice")
	}
	if err := b.start(); err != nil {
		return err
	}
	b.closed = true
	return nil
}

// GnuBuilder writes archives in the GNU variant. Because long names live in
// a string table member written before any data member, the full, closed set
// of identifiers that will ever be appended must be supplied up front;
// Append rejects any name outside that set.
type GnuBuilder struct {
	w       io.Writer
	started bool
	closed  bool

	// identifiers is the universe of names this builder accepts.
	identifiers map[string]bool

	// table is the precomputed string table payload, and offsets maps each
	// long name to its byte offset within it.
	table   []byte
	offsets map[string]int
}

// NewGnuBuilder creates a GnuBuilder that writes an ar archive to w,
// precomputing the string table from every identifier longer than 15 bytes.
func NewGnuBuilder(w io.Writer, identifiers []string) *GnuBuilder {
	gb := &GnuBuilder{
		w:           w,
		identifiers: make(map[string]bool, len(identifiers)),
		offsets:     map[string]int{},
	}
	for _, id := range identifiers {
		gb.identifiers[id] = true
		if len(id) > 15 {
			if _, present := gb.offsets[id]; present {
				continue
			}
			gb.offsets[id] = len(gb.table)
			gb.table = append(gb.table, id...)
			gb.table = append(gb.table, '/', '\n')
		}
	}
	return gb
}

// Append adds a new member to the archive, following the same record, size
// check and padding protocol as Builder.Append. The first call writes the
// global header and, if any identifier was long, the "//" string table
// member.
func (gb *GnuBuilder) Append(hdr *Header, data io.Reader) error {
	if gb.closed {
		return ErrBuilderClosed
	}
	if hdr.Name == "" {
		return &ErrFileName{Name: hdr.Name, Err: errors.New("empty file name")}
	}
	if !gb.identifiers[hdr.Name] {
		return &ErrUnknownIdentifier{Name: hdr.Name}
	}
	if err := gb.start(); err != nil {
		return err
	}
	var nameField string
	if offset, present := gb.offsets[hdr.Name]; present {
		nameField = "/" + strconv.Itoa(offset)
	} else {
		nameField = hdr.Name + "/"
	}
	return appendMember(gb.w, hdr, nameField, nil, data)
}

func (gb *GnuBuilder) start() error {
	if gb.started {
		return nil
	}
	gb.started = true
	if _, err := io.WriteString(gb.w, GLOBAL_HEADER); err != nil {
		return fmt.Errorf("ar: write global header: %w", err)
	}
	if len(gb.table) == 0 {
		return nil
	}
	// The string table record carries no metadata; its numeric fields are
	// left blank.
	rec := make([]byte, HEADER_BYTE_SIZE)
	s := slicer(rec)
	putString(s.next(16), "//")
	putString(s.next(12), "")
	putString(s.next(6), "")
	putString(s.next(6), "")
	putString(s.next(8), "")
	putNumeric(s.next(10), int64(len(gb.table)))
	putString(s.next(2), HEADER_TERMINATOR)
	if _, err := gb.w.Write(rec); err != nil {
		return fmt.Errorf("ar: write string table record: %w", err)
	}
	if _, err := gb.w.Write(gb.table); err != nil {
		return fmt.Errorf("ar: write string table: %w", err)
	}
	if len(gb.table)%2 == 1 {
		if _, err := gb.w.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("ar: write padding: %w", err)
		}
	}
	return nil
}

// Close finishes the archive, ensuring a valid global header (and string
// table, if any) has been written even if the archive contains no members.
// It does not close the underlying io.Writer.
func (gb *GnuBuilder) Close() error {
	if gb.closed {
		return errors.New("ar: builder closed twice")
	}
	if err := gb.start(); err != nil {
		return err
	}
	gb.closed = true
	return nil
}

// appendMember writes one member: the encoded record, the optional BSD
// inline name, the payload, and the parity pad. The size field declares the
// inline name plus the payload; parity is taken over the same total.
func appendMember(w io.Writer, hdr *Header, nameField string, inline []byte, data io.Reader) error {
	declared := hdr.Size + int64(len(inline))
	rec := make([]byte, HEADER_BYTE_SIZE)
	s := slicer(rec)
	putString(s.next(16), nameField)
	var mtime int64
	if !hdr.ModTime.IsZero() {
		mtime = hdr.ModTime.Unix()
	}
	putNumeric(s.next(12), mtime)
	putNumeric(s.next(6), int64(hdr.Uid))
	putNumeric(s.next(6), int64(hdr.Gid))
	putOctal(s.next(8), hdr.Mode)
	putNumeric(s.next(10), declared)
	putString(s.next(2), HEADER_TERMINATOR)
	if _, err := w.Write(rec); err != nil {
		return fmt.Errorf("ar: write member record: %w", err)
	}
	if len(inline) > 0 {
		if _, err := w.Write(inline); err != nil {
			return fmt.Errorf("ar: write member name: %w", err)
		}
	}
	n, err := io.Copy(w, data)
	if err != nil {
		return fmt.Errorf("ar: write member data: %w", err)
	}
	if n != hdr.Size {
		return &ErrSizeMismatch{Name: hdr.Name, Declared: hdr.Size, Actual: n}
	}
	if declared%2 == 1 {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("ar: write padding: %w", err)
		}
	}
	return nil
}
