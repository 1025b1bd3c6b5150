package ar

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Header represents a single member header in an ar archive. Some fields
// may not be populated.
type Header struct {
	Name    string    // Name of file.
	ModTime time.Time // Modification time.
	Uid     int       // User id of owner.
	Gid     int       // Group id of owner.
	Mode    int64     // Permission and mode bits.
	Size    int64     // Length in bytes.
}

// FileInfoHeader creates a partially populated Header from info. Owner and
// group ids are not exposed portably by os.FileInfo; AppendPath fills them
// in on unix systems.
func FileInfoHeader(info os.FileInfo) *Header {
	return &Header{
		Name:    info.Name(),
		ModTime: info.ModTime(),
		Mode:    int64(info.Mode().Perm()),
		Size:    info.Size(),
	}
}

func putString(b []byte, str string) {
	s := str
	for len(s) < len(b) {
		s = s + " "
	}
	copy(b, s)
}

func putNumeric(b []byte, x int64) {
	putString(b, strconv.FormatInt(x, 10))
}

func putOctal(b []byte, x int64) {
	putString(b, strconv.FormatInt(x, 8))
}

func trimField(b []byte) string {
	return string(bytes.TrimRight(b, " \x00"))
}

func parseDec(b []byte) (int64, error) {
	s := trimField(b)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseOct(b []byte) (int64, error) {
	s := trimField(b)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 8, 64)
}

// decodeHeader decodes one 60-byte member record starting at the given
// archive offset. Numeric fields left blank (as in the GNU string table
// record) decode as zero. The member name is returned exactly as stored,
// minus trailing padding; variant encodings are resolved by the Archive.
func decodeHeader(buf []byte, offset int64) (*Header, error) {
	s := slicer(buf)
	name := trimField(s.next(16))
	mtime, err := parseDec(s.next(12))
	if err != nil {
		return nil, recordErr(offset, "mtime", err)
	}
	uid, err := parseDec(s.next(6))
	if err != nil {
		return nil, recordErr(offset, "uid", err)
	}
	gid, err := parseDec(s.next(6))
	if err != nil {
		return nil, recordErr(offset, "gid", err)
	}
	mode, err := parseOct(s.next(8))
	if err != nil {
		return nil, recordErr(offset, "mode", err)
	}
	size, err := parseDec(s.next(10))
	if err != nil {
		return nil, recordErr(offset, "size", err)
	}
	if term := string(s.next(2)); term != HEADER_TERMINATOR {
		return nil, &ErrRecord{Offset: offset, Err: fmt.Errorf("bad record terminator %q", term)}
	}
	if name == "" {
		return nil, &ErrRecord{Offset: offset, Err: errors.New("empty member name")}
	}
	if size < 0 {
		return nil, &ErrRecord{Offset: offset, Err: fmt.Errorf("negative member size %d", size)}
	}
	return &Header{
		Name:    name,
		ModTime: time.Unix(mtime, 0),
		Uid:     int(uid),
		Gid:     int(gid),
		Mode:    mode,
		Size:    size,
	}, nil
}

func recordErr(offset int64, field string, err error) error {
	return &ErrRecord{Offset: offset, Err: fmt.Errorf("malformed %s field: %w", field, err)}
}
