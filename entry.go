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
)

// Entry is a bounded streaming view over a single archive member's payload.
// It borrows the Archive's underlying reader for its lifetime, so at most
// one Entry is usable at a time: Archive.Next closes the previous Entry
// before producing the next one.
//
// Entry implements io.Reader, and io.Seeker as well when the archive's
// underlying reader does.
type Entry struct {
	a        *Archive
	header   Header
	length   int64
	position int64
	pad      int64
	closed   bool
}

// Header returns the header for this archive entry. For BSD long names the
// Size field reports the true payload length, with the inline name prefix
// already subtracted.
func (e *Entry) Header() *Header {
	return &e.header
}

// Read reads payload data from the entry. It never returns more than the
// unread remainder of the member and returns io.EOF exactly at the end.
func (e *Entry) Read(b []byte) (int, error) {
	if e.closed || e.position >= e.length {
		return 0, io.EOF
	}
	if max := e.length - e.position; int64(len(b)) > max {
		b = b[:max]
	}
	n, err := e.a.r.Read(b)
	e.position += int64(n)
	e.a.offset += int64(n)
	if errors.Is(err, io.EOF) && e.position < e.length {
		err = &ErrSizeMismatch{Name: e.header.Name, Declared: e.length, Actual: e.position}
	}
	return n, err
}

// Seek sets the read position within the entry. It is only available when
// the archive's underlying reader implements io.Seeker. Targets outside
// [0, length] fail with ErrSeekRange without moving the position.
func (e *Entry) Seek(offset int64, whence int) (int64, error) {
	if e.closed {
		return 0, ErrEntryReleased
	}
	s, ok := e.a.r.(io.Seeker)
	if !ok {
		return 0, ErrNotSeekable
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = e.position + offset
	case io.SeekEnd:
		target = e.length + offset
	default:
		return 0, fmt.Errorf("ar: invalid seek whence %d", whence)
	}
	if target < 0 || target > e.length {
		return 0, &ErrSeekRange{Target: target, Length: e.length}
	}
	delta := target - e.position
	got, err := s.Seek(delta, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	if want := e.a.offset + delta; got != want {
		return 0, fmt.Errorf("ar: underlying reader reported position %d after seek, want %d", got, want)
	}
	e.a.offset += delta
	e.position = target
	return target, nil
}

// Close drains whatever remains of the member payload so that the archive's
// cursor lands exactly on the next member record, regardless of how much of
// the entry was consumed. It is called implicitly by the next call to
// Archive.Next and is safe to call more than once. A closed Entry reads
// io.EOF and refuses to seek.
func (e *Entry) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	remaining := e.length - e.position
	e.position = e.length
	if remaining <= 0 {
		return nil
	}
	n, err := e.a.discard(remaining)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return &ErrSizeMismatch{Name: e.header.Name, Declared: e.length, Actual: e.length - remaining + n}
		}
		return err
	}
	return nil
}
