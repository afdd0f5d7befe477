package magwi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// SymbolPrefix heads every marker symbol the compiled-language backend materializes.
	SymbolPrefix = "__mw_hook_"
	// SectionPrefix heads every payload section name.
	SectionPrefix = ".__mw_hook_"
	// Delimiter separates the descriptor fields inside a token, the argument
	// and origin tokens must never contain it.
	Delimiter = "$"
	// Version is the symbol version suffix carrying the token through the
	// object file, it has no linking meaning here.
	Version = "@0"
)

type (
	//Descriptor is one declared hook point. The 5-tuple serializes into the
	//token that names its symbol or section, unique across the whole link as
	//long as origin tokens are unique per translation unit.
	Descriptor struct {
		Kind    Kind
		Arg     string //target address expression or symbolic reference
		File    string //symbol-safe origin token of the translation unit
		Line    int
		Counter int
	}
	//Info is a descriptor with the argument resolved to a concrete address.
	Info struct {
		Descriptor
		Addr uint32
	}
	//Location is the source position a hook was declared at.
	Location struct {
		Path string
		Line int
	}
)

var (
	// ErrInvalidPrefix occurs when a name is not part of the hook grammar at all.
	ErrInvalidPrefix = errors.New("invalid prefix")
	// ErrMissingKind occurs on an empty token.
	ErrMissingKind = errors.New("missing kind")
	// ErrMissingArgument occurs when a token ends before the argument field.
	ErrMissingArgument = errors.New("missing argument")
	// ErrMissingFile occurs when a token ends before the origin file field.
	ErrMissingFile = errors.New("missing file")
	// ErrMissingLine occurs when a token ends before the line field.
	ErrMissingLine = errors.New("missing line")
	// ErrMissingCounter occurs when a token ends before the counter field.
	ErrMissingCounter = errors.New("missing counter")
	// ErrInvalidLine occurs when the line field is not a decimal number.
	ErrInvalidLine = errors.New("invalid line")
	// ErrInvalidCounter occurs when the counter field is not a decimal number.
	ErrInvalidCounter = errors.New("invalid counter")
)

func (d Descriptor) body() string {
	return d.Kind.String() +
		Delimiter + d.Arg +
		Delimiter + d.File +
		Delimiter + strconv.Itoa(d.Line) +
		Delimiter + strconv.Itoa(d.Counter)
}

// Label renders the unversioned symbol name, the form the assembler backend
// defines as a public label.
func (d Descriptor) Label() string {
	return SymbolPrefix + d.body()
}

// Symbol renders the versioned symbol name the compiled-language backend
// attaches through a symver attribute.
func (d Descriptor) Symbol() string {
	return d.Label() + Version
}

// Section renders the section name carrying a replacement payload.
func (d Descriptor) Section() string {
	return SectionPrefix + d.body()
}

// Location reports the declaring source position. The origin token decodes
// back to the original path when it is a valid encoding, otherwise it stands
// in verbatim.
func (d Descriptor) Location() (l Location) {
	l.Path = d.File
	if p, err := DecodePath(d.File); err == nil {
		l.Path = p
	}
	l.Line = d.Line
	return
}

func (l Location) String() string {
	return l.Path + ":" + strconv.Itoa(l.Line)
}

// Resolve parses the argument as an address, lowering the descriptor into an Info.
func (d Descriptor) Resolve() (i Info, err error) {
	i.Descriptor = d
	i.Addr, err = ParseAddress(d.Arg)
	return
}

func parseBody(s string) (d Descriptor, err error) {
	if s == "" {
		err = ErrMissingKind
		return
	}
	fields := strings.Split(s, Delimiter)
	for i, sentinel := range []error{
		ErrMissingKind, ErrMissingArgument, ErrMissingFile, ErrMissingLine, ErrMissingCounter,
	} {
		if len(fields) <= i {
			err = sentinel
			return
		}
	}
	if d.Kind, err = ParseKind(fields[0]); err != nil {
		return
	}
	d.Arg = fields[1]
	d.File = fields[2]
	var v uint64
	if v, err = strconv.ParseUint(fields[3], 10, 32); err != nil {
		err = fmt.Errorf("%w: %q", ErrInvalidLine, fields[3])
		return
	}
	d.Line = int(v)
	if v, err = strconv.ParseUint(fields[4], 10, 32); err != nil {
		err = fmt.Errorf("%w: %q", ErrInvalidCounter, fields[4])
		return
	}
	d.Counter = int(v)
	return
}

// ParseSymbol parses a marker symbol name back into its descriptor. A version
// suffix after the last @ is ignored, both the assembler label form and the
// symver form parse identically.
func ParseSymbol(name string) (d Descriptor, err error) {
	if !strings.HasPrefix(name, SymbolPrefix) {
		err = fmt.Errorf("%w: %q", ErrInvalidPrefix, name)
		return
	}
	body := name[len(SymbolPrefix):]
	if at := strings.LastIndexByte(body, '@'); at >= 0 {
		body = body[:at]
	}
	return parseBody(body)
}

// ParseSection parses a payload section name back into its descriptor.
func ParseSection(name string) (d Descriptor, err error) {
	if !strings.HasPrefix(name, SectionPrefix) {
		err = fmt.Errorf("%w: %q", ErrInvalidPrefix, name)
		return
	}
	return parseBody(name[len(SectionPrefix):])
}
