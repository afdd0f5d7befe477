package magwi

import (
	"debug/elf"
	"errors"
	"fmt"
	"strings"

	"github.com/ZenLiuCN/fn"
)

type (
	//Hook is one descriptor discovered in an object file, markers carry the
	//symbol value, replacement hooks carry the section payload.
	Hook struct {
		Descriptor
		Name    string //symbol or section name as found
		Value   uint64 //symbol value, markers only
		Payload []byte //section contents, replace only
	}
	//Region is the loader text region bounds exported by the boundary symbols.
	Region struct {
		Start uint64
		End   uint64
	}
	//Report is everything a scan discovers in one object file.
	Report struct {
		Hooks  []Hook
		Loader *Region
	}
)

// Size of the loader payload.
func (r Region) Size() uint64 {
	return r.End - r.Start
}

// FromSymbol lowers a symbol-table entry into a discovered hook. Names outside
// the grammar yield nil without error, a prefixed but malformed name is an
// error because nothing else may sit in the prefix namespace.
func FromSymbol(name string, value uint64) (*Hook, error) {
	if !strings.HasPrefix(name, SymbolPrefix) {
		return nil, nil
	}
	d, err := ParseSymbol(name)
	if err != nil {
		return nil, err
	}
	return &Hook{Descriptor: d, Name: name, Value: value}, nil
}

// FromSection lowers a section-table entry into a discovered hook, same
// skip-or-fail contract as FromSymbol.
func FromSection(name string, payload []byte) (*Hook, error) {
	if !strings.HasPrefix(name, SectionPrefix) {
		return nil, nil
	}
	d, err := ParseSection(name)
	if err != nil {
		return nil, err
	}
	return &Hook{Descriptor: d, Name: name, Payload: payload}, nil
}

// Scan collects every hook descriptor materialized in an ELF object or
// executable, plus the loader region when both boundary symbols are present.
func Scan(file string) (r *Report, err error) {
	var f *elf.File
	if f, err = elf.Open(file); err != nil {
		return
	}
	defer fn.IgnoreClose(f)
	r = new(Report)

	var syms []elf.Symbol
	if syms, err = f.Symbols(); err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("scan %s: %w", file, err)
	}
	var start, end *uint64
	for _, s := range syms {
		switch s.Name {
		case LoaderStartSymbol:
			v := s.Value
			start = &v
		case LoaderEndSymbol:
			v := s.Value
			end = &v
		}
		var h *Hook
		if h, err = FromSymbol(s.Name, s.Value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", file, err)
		} else if h != nil {
			r.Hooks = append(r.Hooks, *h)
		}
	}
	if start != nil && end != nil {
		r.Loader = &Region{Start: *start, End: *end}
	}

	for _, sec := range f.Sections {
		if !strings.HasPrefix(sec.Name, SectionPrefix) {
			continue
		}
		var data []byte
		if data, err = sec.Data(); err != nil {
			return nil, fmt.Errorf("scan %s: %w", file, err)
		}
		var h *Hook
		if h, err = FromSection(sec.Name, data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", file, err)
		}
		r.Hooks = append(r.Hooks, *h)
	}
	return r, nil
}
