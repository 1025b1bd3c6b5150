//go:build unix

package ar

import "golang.org/x/sys/unix"

// statPath fills in the owner and group ids and the full unix mode bits,
// which os.FileInfo does not expose portably. Failures are ignored; the
// header keeps the values FileInfoHeader derived.
func statPath(path string, header *Header) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return
	}
	header.Uid = int(st.Uid)
	header.Gid = int(st.Gid)
	header.Mode = int64(st.Mode)
}
