package ar

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Symbol is a single entry of an archive's symbol table: an exported symbol
// name and the byte offset of the member record that defines it.
type Symbol struct {
	Name   string
	Offset uint64
}

// Symbols is the read-only symbol table of an archive, parsed once from the
// symbol table special member while it is skipped over.
type Symbols struct {
	symbols []Symbol
}

// Len returns the number of symbols in the table.
func (s *Symbols) Len() int {
	return len(s.symbols)
}

// At returns the i-th symbol, in the order the table stores them.
func (s *Symbols) At(i int) Symbol {
	return s.symbols[i]
}

// Lookup returns the member offset recorded for name.
func (s *Symbols) Lookup(name string) (uint64, bool) {
	for _, sym := range s.symbols {
		if sym.Name == name {
			return sym.Offset, true
		}
	}
	return 0, false
}

func parseSymbols(data []byte, variant Variant) (*Symbols, error) {
	if variant == GNU {
		return parseGNUSymbols(data)
	}
	return parseBSDSymbols(data)
}

// parseGNUSymbols parses the payload of the GNU "/" member: a big-endian
// uint32 symbol count, that many big-endian uint32 member offsets, then the
// NUL-terminated symbol names in the same order.
func parseGNUSymbols(data []byte) (*Symbols, error) {
	if len(data) < 4 {
		return nil, &ErrSymbolTable{Err: errors.New("truncated symbol count")}
	}
	count := int64(binary.BigEndian.Uint32(data))
	if int64(len(data)) < 4+4*count {
		return nil, &ErrSymbolTable{Err: errors.New("truncated offset table")}
	}
	names := data[4+4*count:]
	symbols := make([]Symbol, 0, count)
	for i := int64(0); i < count; i++ {
		offset := binary.BigEndian.Uint32(data[4+4*i:])
		end := bytes.IndexByte(names, 0)
		if end == -1 {
			return nil, &ErrSymbolTable{Err: fmt.Errorf("missing name for symbol %d", i)}
		}
		symbols = append(symbols, Symbol{Name: string(names[:end]), Offset: uint64(offset)})
		names = names[end+1:]
	}
	return &Symbols{symbols: symbols}, nil
}

// parseBSDSymbols parses the payload of the BSD "__.SYMDEF" member: a
// little-endian uint32 byte length of the ranlib array, pairs of uint32
// (string table offset, member offset), then a uint32 string table length
// followed by the NUL-terminated names themselves.
func parseBSDSymbols(data []byte) (*Symbols, error) {
	le := binary.LittleEndian
	if len(data) < 4 {
		return nil, &ErrSymbolTable{Err: errors.New("truncated ranlib length")}
	}
	ranlibLen := int64(le.Uint32(data))
	if ranlibLen%8 != 0 || int64(len(data)) < 4+ranlibLen+4 {
		return nil, &ErrSymbolTable{Err: errors.New("truncated ranlib array")}
	}
	strOff := 4 + ranlibLen
	strLen := int64(le.Uint32(data[strOff:]))
	if int64(len(data)) < strOff+4+strLen {
		return nil, &ErrSymbolTable{Err: errors.New("truncated string table")}
	}
	strs := data[strOff+4 : strOff+4+strLen]
	count := ranlibLen / 8
	symbols := make([]Symbol, 0, count)
	for i := int64(0); i < count; i++ {
		nameOff := int64(le.Uint32(data[4+8*i:]))
		memberOff := le.Uint32(data[4+8*i+4:])
		if nameOff > int64(len(strs)) {
			return nil, &ErrSymbolTable{Err: fmt.Errorf("name offset %d outside string table", nameOff)}
		}
		end := bytes.IndexByte(strs[nameOff:], 0)
		if end == -1 {
			return nil, &ErrSymbolTable{Err: fmt.Errorf("unterminated name for symbol %d", i)}
		}
		symbols = append(symbols, Symbol{Name: string(strs[nameOff : nameOff+int64(end)]), Offset: uint64(memberOff)})
	}
	return &Symbols{symbols: symbols}, nil
}
