// Package ar implements access to read and write Unix ar archives.
//
// The package provides a streaming interface: members are produced one at a
// time and no full member payload is ever held in memory. Reading supports
// the common, BSD and GNU variants of the format; the GNU string table and
// the GNU/BSD symbol tables are consumed transparently and never surface as
// entries. Writing supports the common and BSD variants through Builder and
// the GNU variant through GnuBuilder.
//
// References:
//
//	https://en.wikipedia.org/wiki/Ar_(Unix)
//	https://mebsd.com/man/ar/5
package ar
