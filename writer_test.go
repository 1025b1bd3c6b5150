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
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commonArchive = "!<arch>\n" +
	"foo.txt         1487552916  501   20    100644  7         `\n" +
	"foobar\n\n" +
	"baz.txt         0           0     0     0       4         `\n" +
	"baz\n"

const bsdLongArchive = "!<arch>\n" +
	"#1/32           1487552916  501   20    100644  39        `\n" +
	"this_is_a_very_long_filename.txtfoobar\n\n" +
	"#1/44           0           0     0     0       48        `\n" +
	"and_this_is_another_very_long_filename.txt\x00\x00baz\n"

const bsdSpaceArchive = "!<arch>\n" +
	"#1/8            0           0     0     0       12        `\n" +
	"foo bar\x00baz\n"

const gnuShortArchive = "!<arch>\n" +
	"foo.txt/        1487552916  501   20    100644  7         `\n" +
	"foobar\n\n" +
	"baz.txt/        0           0     0     0       4         `\n" +
	"baz\n"

const gnuLongArchive = "!<arch>\n" +
	"//                                              78        `\n" +
	"this_is_a_very_long_filename.txt/\n" +
	"and_this_is_another_very_long_filename.txt/\n" +
	"/0              1487552916  501   20    100644  7         `\n" +
	"foobar\n\n" +
	"/34             0           0     0     0       4         `\n" +
	"baz\n"

func fooHeader() *Header {
	return &Header{
		Name:    "foo.txt",
		ModTime: time.Unix(1487552916, 0),
		Uid:     501,
		Gid:     20,
		Mode:    0100644,
		Size:    7,
	}
}

func TestGlobalHeaderWrite(t *testing.T) {
	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	err := builder.Close()
	require.NoError(t, err)
	assert.Equal(t, []byte("!<arch>\n"), buf.Bytes())
}

func TestBuildCommonArchive(t *testing.T) {
	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	err := builder.Append(fooHeader(), strings.NewReader("foobar\n"))
	require.NoError(t, err)
	err = builder.Append(&Header{Name: "baz.txt", Size: 4}, strings.NewReader("baz\n"))
	require.NoError(t, err)
	assert.Equal(t, commonArchive, buf.String())
}

func TestBuildBSDArchiveWithLongFilenames(t *testing.T) {
	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	hdr1 := fooHeader()
	hdr1.Name = "this_is_a_very_long_filename.txt"
	err := builder.Append(hdr1, strings.NewReader("foobar\n"))
	require.NoError(t, err)
	hdr2 := &Header{Name: "and_this_is_another_very_long_filename.txt", Size: 4}
	err = builder.Append(hdr2, strings.NewReader("baz\n"))
	require.NoError(t, err)
	assert.Equal(t, bsdLongArchive, buf.String())
}

func TestBuildBSDArchiveWithSpaceInFilename(t *testing.T) {
	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	err := builder.Append(&Header{Name: "foo bar", Size: 4}, strings.NewReader("baz\n"))
	require.NoError(t, err)
	assert.Equal(t, bsdSpaceArchive, buf.String())
}

func TestBuildGnuArchive(t *testing.T) {
	var buf bytes.Buffer
	builder := NewGnuBuilder(&buf, []string{"baz.txt", "foo.txt"})
	err := builder.Append(fooHeader(), strings.NewReader("foobar\n"))
	require.NoError(t, err)
	err = builder.Append(&Header{Name: "baz.txt", Size: 4}, strings.NewReader("baz\n"))
	require.NoError(t, err)
	assert.Equal(t, gnuShortArchive, buf.String())
}

func TestBuildGnuArchiveWithLongFilenames(t *testing.T) {
	var buf bytes.Buffer
	builder := NewGnuBuilder(&buf, []string{
		"this_is_a_very_long_filename.txt",
		"and_this_is_another_very_long_filename.txt",
	})
	hdr1 := fooHeader()
	hdr1.Name = "this_is_a_very_long_filename.txt"
	err := builder.Append(hdr1, strings.NewReader("foobar\n"))
	require.NoError(t, err)
	hdr2 := &Header{Name: "and_this_is_another_very_long_filename.txt", Size: 4}
	err = builder.Append(hdr2, strings.NewReader("baz\n"))
	require.NoError(t, err)
	assert.Equal(t, gnuLongArchive, buf.String())
}

func TestBuildGnuArchiveWithSpaceInFilename(t *testing.T) {
	var buf bytes.Buffer
	builder := NewGnuBuilder(&buf, []string{"foo bar"})
	err := builder.Append(&Header{Name: "foo bar", Size: 4}, strings.NewReader("baz\n"))
	require.NoError(t, err)
	expected := "!<arch>\n" +
		"foo bar/        0           0     0     0       4         `\n" +
		"baz\n"
	assert.Equal(t, expected, buf.String())
}

func TestGnuArchiveWithUnknownIdentifier(t *testing.T) {
	var buf bytes.Buffer
	builder := NewGnuBuilder(&buf, []string{"foo"})
	err := builder.Append(&Header{Name: "bar", Size: 4}, strings.NewReader("baz\n"))
	var unknown *ErrUnknownIdentifier
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "bar", unknown.Name)
	assert.Zero(t, buf.Len(), "nothing must be written for a rejected identifier")
}

func TestSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	err := builder.Append(&Header{Name: "short.txt", Size: 7}, strings.NewReader("foo"))
	var mismatch *ErrSizeMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(7), mismatch.Declared)
	assert.Equal(t, int64(3), mismatch.Actual)

	builder = NewBuilder(&buf)
	err = builder.Append(&Header{Name: "long.txt", Size: 3}, strings.NewReader("foobar\n"))
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(3), mismatch.Declared)
	assert.Equal(t, int64(7), mismatch.Actual)
}

func TestParityPadding(t *testing.T) {
	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	err := builder.Append(&Header{Name: "odd.txt", Size: 7}, strings.NewReader("foobar\n"))
	require.NoError(t, err)
	assert.Equal(t, 8+60+7+1, buf.Len(), "odd payload gets exactly one pad byte")
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])

	err = builder.Append(&Header{Name: "even.txt", Size: 4}, strings.NewReader("baz\n"))
	require.NoError(t, err)
	assert.Equal(t, 8+60+7+1+60+4, buf.Len(), "even payload gets no pad byte")
}

func TestAppendAfterClose(t *testing.T) {
	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	require.NoError(t, builder.Close())
	err := builder.Append(&Header{Name: "foo.txt", Size: 4}, strings.NewReader("baz\n"))
	assert.ErrorIs(t, err, ErrBuilderClosed)
	assert.Error(t, builder.Close(), "closing twice is an error")
}

func TestAppendEmptyName(t *testing.T) {
	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	err := builder.Append(&Header{Size: 4}, strings.NewReader("baz\n"))
	var bad *ErrFileName
	assert.ErrorAs(t, err, &bad)
}

func TestAppendPath(t *testing.T) {
	dir := t.TempDir()
	body := "Hello world!\n"
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	require.NoError(t, builder.AppendPath(path))

	archive := NewArchive(bytes.NewReader(buf.Bytes()))
	entry, err := archive.Next()
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", entry.Header().Name)
	assert.Equal(t, int64(len(body)), entry.Header().Size)
	data, err := io.ReadAll(entry)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

func TestAppendFile(t *testing.T) {
	dir := t.TempDir()
	body := "file body\n"
	path := filepath.Join(dir, "source.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	builder := NewBuilder(&buf)
	require.NoError(t, builder.AppendFile("renamed.txt", f))

	archive := NewArchive(bytes.NewReader(buf.Bytes()))
	entry, err := archive.Next()
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", entry.Header().Name)
	data, err := io.ReadAll(entry)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}
