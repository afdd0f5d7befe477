package magwi

import (
	"errors"
	"fmt"
	"io"
)

const (
	// LoaderSection holds the injected loader payload text.
	LoaderSection = ".mw_loader_text"
	// LoaderStartSymbol marks the start of the loader text region.
	LoaderStartSymbol = "__mw_text_start"
	// LoaderEndSymbol marks the end of the loader text region, the downstream
	// tool sizes the payload from the two boundary symbols.
	LoaderEndSymbol = "__mw_text_end"
)

type (
	//Backend renders registered hook declarations into one of the two emission
	//contexts. Both backends embed the identical token for equal descriptors,
	//they differ only in the retention mechanism: a public label in assembler
	//streams, a used-attributed symver or section in compiled-language code.
	Backend interface {
		Name() string
		Marker(w io.Writer, d Descriptor) error       //address-free position marker
		SectionEnter(w io.Writer, d Descriptor) error //open a replacement payload
		SectionExit(w io.Writer) error                //close a replacement payload
		LoaderCode(w io.Writer) error                 //tag following code as loader payload
		internal()
	}
	asmBackend struct{}
	cBackend   struct{}
)

var (
	// Asm is the assembler-stream backend.
	Asm Backend = asmBackend{}
	// C is the compiled-language backend.
	C Backend = cBackend{}
)

// ErrUnknownContext occurs when a context name is neither asm nor c.
var ErrUnknownContext = errors.New("unknown context")

// ParseBackend selects a backend by context name.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "asm", "s":
		return Asm, nil
	case "c", "cpp", "c++":
		return C, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownContext, name)
}

func (asmBackend) Name() string { return "asm" }
func (asmBackend) internal()    {}

func (asmBackend) Marker(w io.Writer, d Descriptor) (err error) {
	l := d.Label()
	_, err = fmt.Fprintf(w, ".global %s\n%s:\n", l, l)
	return
}

func (asmBackend) SectionEnter(w io.Writer, d Descriptor) (err error) {
	_, err = fmt.Fprintf(w, ".pushsection %s\n", d.Section())
	return
}

func (asmBackend) SectionExit(w io.Writer) (err error) {
	_, err = io.WriteString(w, ".popsection\n")
	return
}

func (asmBackend) LoaderCode(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, ".section %s\n", LoaderSection)
	return
}

func (cBackend) Name() string { return "c" }
func (cBackend) internal()    {}

// Marker emits a used symver attribute on an anchor definition, the linker
// keeps the otherwise-unreferenced anchor and the version string carries the
// token. Symptr markers anchor on a pointer slot instead of a function.
func (cBackend) Marker(w io.Writer, d Descriptor) (err error) {
	if _, err = fmt.Fprintf(w, "__attribute__((used, __symver__(\"%s\")))\n", d.Symbol()); err != nil {
		return
	}
	if d.Kind.Class == ClassSymptr {
		_, err = fmt.Fprintf(w, "void *__mw_anchor_%s_%d;\n", d.File, d.Counter)
		return
	}
	_, err = fmt.Fprintf(w, "void __mw_anchor_%s_%d(void) {}\n", d.File, d.Counter)
	return
}

// SectionEnter emits the used section attribute, the payload definition it
// applies to follows in the stream. The compiled-language context has no end
// marker, SectionExit emits nothing.
func (cBackend) SectionEnter(w io.Writer, d Descriptor) (err error) {
	_, err = fmt.Fprintf(w, "__attribute__((used, section(\"%s\")))\n", d.Section())
	return
}

func (cBackend) SectionExit(io.Writer) error { return nil }

func (cBackend) LoaderCode(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, "__attribute__((section(\"%s\"), optimize(\"Os\")))\n", LoaderSection)
	return
}
