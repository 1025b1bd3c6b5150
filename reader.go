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
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Archive provides streaming read access to an ar archive.
//
// Example:
//
//	archive := NewArchive(f)
//	for {
//	    entry, err := archive.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    io.Copy(&buf, entry)
//	}
type Archive struct {
	// r is the underlying archive file.
	r io.Reader

	// variant is the variant of the ar file format used by the archive. It is
	// pinned by the first member's identifier shape.
	variant Variant

	// offset is the absolute byte position of the underlying reader, used to
	// cross-check positions reported by Entry seeks.
	offset int64

	// started is true once the global archive header has been validated.
	started bool

	// stringTable is the archive's string table, the data section of the special
	// "//" member in the GNU variant of the archive format, which stores the
	// names of members that are too long to fit in a name header field.
	stringTable []byte

	// symRaw is the raw payload of the archive's symbol table member, kept so
	// the Symbols sequence can be re-derived without re-reading the stream.
	symRaw     []byte
	symVariant Variant
	symbols    *Symbols

	// cur is the live Entry, drained before the next member is read.
	cur *Entry

	// pending is a member already scanned past by Symbols but not yet
	// returned by Next.
	pending *member
}

// member carries a resolved header together with the payload bookkeeping the
// Entry needs: the true payload length (BSD inline names already consumed)
// and the parity pad after it.
type member struct {
	header Header
	length int64
	pad    int64
}

// NewArchive creates an Archive reading from r. The global archive header is
// validated lazily, on the first call to Next or Symbols.
func NewArchive(r io.Reader) *Archive {
	return &Archive{r: r, variant: Common}
}

// Variant reports the format variant detected so far. Before any member has
// been read, and for empty archives, it reports Common.
func (a *Archive) Variant() Variant {
	return a.variant
}

func (a *Archive) init() error {
	if a.started {
		return nil
	}
	if s, ok := a.r.(io.Seeker); ok {
		if pos, err := s.Seek(0, io.SeekCurrent); err == nil {
			a.offset = pos
		}
	}
	buf := make([]byte, len(GLOBAL_HEADER))
	if _, err := io.ReadFull(a.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrMissingGlobalHeader
		}
		return fmt.Errorf("ar: read global header: %w", err)
	}
	if string(buf) != GLOBAL_HEADER {
		return ErrInvalidGlobalHeader
	}
	a.offset += int64(len(GLOBAL_HEADER))
	a.started = true
	return nil
}

// Next returns the next member of the archive as an Entry, first draining
// whatever remains unread of the previous Entry. It returns io.EOF when no
// members are left. Special members (the GNU string table and the GNU/BSD
// symbol tables) are consumed internally and never returned.
func (a *Archive) Next() (*Entry, error) {
	if err := a.init(); err != nil {
		return nil, err
	}
	if prev := a.cur; prev != nil {
		a.cur = nil
		if err := prev.Close(); err != nil {
			return nil, err
		}
		if err := a.discardPad(prev.pad); err != nil {
			return nil, err
		}
	}
	m, err := a.readMember()
	if err != nil {
		return nil, err
	}
	a.cur = &Entry{a: a, header: m.header, length: m.length, pad: m.pad}
	return a.cur, nil
}

// Symbols returns the archive's symbol table, or nil if the archive does not
// carry one. The symbol table is a leading special member, so calling
// Symbols before Next only scans over special members; the first
// data-bearing member is kept for the following call to Next.
func (a *Archive) Symbols() (*Symbols, error) {
	if err := a.init(); err != nil {
		return nil, err
	}
	if a.symRaw == nil && a.cur == nil && a.pending == nil {
		m, err := a.readMember()
		switch {
		case errors.Is(err, io.EOF):
			// Empty archive.
		case err != nil:
			return nil, err
		default:
			a.pending = m
		}
	}
	if a.symRaw == nil {
		return nil, nil
	}
	if a.symbols == nil {
		symbols, err := parseSymbols(a.symRaw, a.symVariant)
		if err != nil {
			return nil, err
		}
		a.symbols = symbols
	}
	return a.symbols, nil
}

// readMember reads member records until it finds a data-bearing one,
// consuming special members along the way.
func (a *Archive) readMember() (*member, error) {
	if m := a.pending; m != nil {
		a.pending = nil
		return m, nil
	}
	rec := make([]byte, HEADER_BYTE_SIZE)
	for {
		recOffset := a.offset
		if _, err := io.ReadFull(a.r, rec); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, &ErrRecord{Offset: recOffset, Err: errors.New("truncated member record")}
			}
			return nil, fmt.Errorf("ar: read member record: %w", err)
		}
		a.offset += HEADER_BYTE_SIZE
		hdr, err := decodeHeader(rec, recOffset)
		if err != nil {
			return nil, err
		}
		switch hdr.Name {
		// The special name "//" indicates that the data section contains the
		// string table. Cache it so long names can be resolved later; it is
		// invisible to the caller.
		case "//":
			a.variant = GNU
			if a.stringTable != nil {
				return nil, &ErrStringTable{Err: errors.New("archive contains multiple string tables")}
			}
			data, err := a.readSpecial(hdr.Size)
			if err != nil {
				return nil, &ErrStringTable{Err: err}
			}
			a.stringTable = data
			continue
		// The special name "/" indicates a GNU symbol table. Cache its raw
		// payload; it is parsed on demand by Symbols.
		case "/":
			a.variant = GNU
			if err := a.cacheSymbols(hdr.Size, GNU); err != nil {
				return nil, err
			}
			continue
		// "__.SYMDEF" is the BSD equivalent.
		case "__.SYMDEF", "__.SYMDEF SORTED":
			a.variant = BSD
			if err := a.cacheSymbols(hdr.Size, BSD); err != nil {
				return nil, err
			}
			continue
		}
		return a.resolveMember(hdr)
	}
}

// resolveMember applies the variant-specific name encoding to a decoded
// header, producing the true member name and payload length.
func (a *Archive) resolveMember(hdr *Header) (*member, error) {
	m := &member{length: hdr.Size, pad: hdr.Size % 2}
	name := hdr.Name
	switch {
	// A name of "#1/" followed by an integer indicates a BSD long name that
	// is prepended to the member's data section. The integer is the length
	// of the prepended data.
	case strings.HasPrefix(name, "#1/"):
		if a.variant == GNU {
			return nil, &ErrFileName{Name: name, Err: errors.New("BSD long name in GNU archive")}
		}
		a.variant = BSD
		n, err := strconv.Atoi(name[3:])
		if err != nil || n < 0 || int64(n) > hdr.Size {
			return nil, &ErrFileName{Name: name, Err: errors.New("invalid long file name length")}
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(a.r, b); err != nil {
			return nil, &ErrFileName{Name: name, Err: err}
		}
		a.offset += int64(n)
		// Some implementations (e.g. llvm-ar) append trailing nulls to the
		// prepended name, which should be stripped.
		hdr.Name = string(bytes.TrimRight(b, "\x00"))
		hdr.Size -= int64(n)
		m.length = hdr.Size
	// A name of "/" followed by an integer is a GNU long name stored in the
	// string table; the integer is its byte offset there.
	case name[0] == '/':
		a.variant = GNU
		resolved, err := a.lookupStringTable(name)
		if err != nil {
			return nil, err
		}
		hdr.Name = resolved
	// GNU ar appends "/" to short names, regardless of where they are stored.
	case name[len(name)-1] == '/':
		a.variant = GNU
		hdr.Name = strings.TrimRight(name, "/")
	default:
		if a.variant == GNU {
			return nil, &ErrFileName{Name: name, Err: errors.New("file name is missing trailing '/'")}
		}
	}
	if hdr.Name == "" {
		return nil, &ErrFileName{Name: name, Err: errors.New("empty file name")}
	}
	m.header = *hdr
	return m, nil
}

func (a *Archive) lookupStringTable(name string) (string, error) {
	if a.stringTable == nil {
		return "", &ErrFileName{Name: name, Err: errors.New("missing string table")}
	}
	start, err := strconv.Atoi(name[1:])
	if err != nil || start < 0 || start > len(a.stringTable) {
		return "", &ErrFileName{Name: name, Err: errors.New("invalid string table offset")}
	}
	entry := a.stringTable[start:]
	end := bytes.IndexByte(entry, '\n')
	if end == -1 {
		return "", &ErrStringTable{Err: errors.New("missing trailing newline")}
	}
	return strings.TrimSuffix(string(entry[:end]), "/"), nil
}

// readSpecial consumes the payload of a special member plus its parity pad.
func (a *Archive) readSpecial(size int64) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(a.r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	a.offset += size
	if err := a.discardPad(size % 2); err != nil {
		return nil, err
	}
	return data, nil
}

func (a *Archive) cacheSymbols(size int64, variant Variant) error {
	if a.symRaw != nil {
		return &ErrSymbolTable{Err: errors.New("archive contains multiple symbol tables")}
	}
	data, err := a.readSpecial(size)
	if err != nil {
		return &ErrSymbolTable{Err: err}
	}
	a.symRaw = data
	a.symVariant = variant
	return nil
}

// discard reads and throws away n bytes from the underlying reader. It
// reports how many bytes were actually skipped.
func (a *Archive) discard(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	skipped, err := io.CopyN(io.Discard, a.r, n)
	a.offset += skipped
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return skipped, err
}

// discardPad skips the parity pad byte after an odd-sized payload. A pad
// missing at the very end of the stream is tolerated.
func (a *Archive) discardPad(pad int64) error {
	if pad == 0 {
		return nil
	}
	if _, err := a.discard(pad); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	return nil
}
