package ar

import (
	"os"
	"path/filepath"
)

// AppendPath adds the file at path to the archive under its base name,
// carrying over the file's metadata.
func (b *Builder) AppendPath(path string) error {
	hdr, f, err := statOpen(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Append(hdr, f)
}

// AppendFile adds the contents of f to the archive under name.
func (b *Builder) AppendFile(name string, f *os.File) error {
	hdr, err := fileHeader(name, f)
	if err != nil {
		return err
	}
	return b.Append(hdr, f)
}

// AppendPath adds the file at path to the archive under its base name,
// carrying over the file's metadata. The base name must have been in the
// identifier list given to NewGnuBuilder.
func (gb *GnuBuilder) AppendPath(path string) error {
	hdr, f, err := statOpen(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gb.Append(hdr, f)
}

// AppendFile adds the contents of f to the archive under name.
func (gb *GnuBuilder) AppendFile(name string, f *os.File) error {
	hdr, err := fileHeader(name, f)
	if err != nil {
		return err
	}
	return gb.Append(hdr, f)
}

func statOpen(path string) (*Header, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	hdr, err := fileHeader(filepath.Base(path), f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	statPath(path, hdr)
	return hdr, f, nil
}

func fileHeader(name string, f *os.File) (*Header, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	hdr := FileInfoHeader(info)
	hdr.Name = name
	return hdr, nil
}
