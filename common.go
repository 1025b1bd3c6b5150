package ar

const (
	// HEADER_BYTE_SIZE is the fixed length of a member record.
	HEADER_BYTE_SIZE = 60

	// GLOBAL_HEADER is the magic string that starts every archive.
	GLOBAL_HEADER = "!<arch>\n"

	// HEADER_TERMINATOR is the two-byte sequence that closes every member record.
	HEADER_TERMINATOR = "`\n"
)

// Variant identifies one of the identifier-encoding conventions used by ar
// implementations. All variants share the same 60-byte record layout and
// differ only in how member names are encoded and which special members
// they use.
type Variant int

const (
	// Common represents the baseline variant of the ar file format, used for
	// Debian package files among other things. It only supports member names
	// up to 16 bytes that contain no spaces.
	Common Variant = iota

	// BSD represents the variant of the ar file format used by BSD ar
	// (including Mac OS X), which stores long member names inline at the
	// front of the member's data section.
	BSD

	// GNU represents the variant of the ar file format used by GNU ar, which
	// stores long member names in a string table member written before any
	// data member.
	GNU
)

func (v Variant) String() string {
	switch v {
	case BSD:
		return "BSD"
	case GNU:
		return "GNU"
	default:
		return "common"
	}
}

type slicer []byte

func (sp *slicer) next(n int) (b []byte) {
	s := *sp
	b, *sp = s[0:n], s[n:]
	return
}
