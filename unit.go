package magwi

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

type (
	//Unit collects the hook declarations of one translation unit, this interface can not be implement outside this package.
	//
	//Use Steps:
	//
	//	1. NewUnit with the unit's origin token and emission context.
	//	2. Seek to the source line being lowered, then declare hooks at it.
	//	3. Render to emit the collected declarations through the backend.
	//
	//Note:
	//
	//	1. Each declaration takes a fresh counter value, so several hooks on one
	//	   line never collide.
	//	2. Units are independent, uniqueness across a link needs no coordination
	//	   beyond distinct origin tokens.
	Unit interface {
		File() string                         //origin token of the unit
		Context() Backend                     //emission backend
		Seek(line int)                        //move the line cursor
		Declare(k Kind, address string) error //register one hook of any kind
		Hooks() []Descriptor                  //registered descriptors in declaration order
		Render(w io.Writer) error             //lower the registered declarations through the backend

		B(address string) error
		Beq(address string) error
		Bne(address string) error
		Bcs(address string) error
		Bcc(address string) error
		Bmi(address string) error
		Bpl(address string) error
		Bvs(address string) error
		Bvc(address string) error
		Bhi(address string) error
		Bls(address string) error
		Bge(address string) error
		Blt(address string) error
		Bgt(address string) error
		Ble(address string) error

		Bl(address string) error
		Bleq(address string) error
		Blne(address string) error
		Blcs(address string) error
		Blcc(address string) error
		Blmi(address string) error
		Blpl(address string) error
		Blvs(address string) error
		Blvc(address string) error
		Blhi(address string) error
		Blls(address string) error
		Blge(address string) error
		Bllt(address string) error
		Blgt(address string) error
		Blle(address string) error

		Pre(address string) error
		Post(address string) error
		Symptr(address string) error

		Replace(address string) error //open a replacement payload section
		ReplaceEnd() error            //close the open replacement payload
		Raw(text string)              //append verbatim payload text
		LoaderCode()                  //tag the following payload as loader text

		internal()
	}
	unit struct {
		file    string
		backend Backend
		line    int
		counter int
		open    bool
		entries []entry
		hooks   []Descriptor
	}
	entry struct {
		op   op
		desc Descriptor
		raw  string
	}
	op uint8
)

const (
	opMarker op = iota
	opSection
	opSectionEnd
	opRaw
	opLoader
)

var (
	// ErrBadArgument occurs when a hook argument contains the field delimiter.
	ErrBadArgument = errors.New("argument contains delimiter")
	// ErrOpenReplace occurs when a unit renders with an unterminated replace section.
	ErrOpenReplace = errors.New("unterminated replace section")
	// ErrNestedReplace occurs when a replace section opens inside another.
	ErrNestedReplace = errors.New("nested replace section")
	// ErrNoReplace occurs when a replace end has no matching open.
	ErrNoReplace = errors.New("no open replace section")
)

// NewUnit create a unit for one translation unit. The origin token is checked
// the same way the preflight guard checks it, a unit with a bad token never
// exists.
func NewUnit(file string, backend Backend) (Unit, error) {
	if err := CheckOrigin(file); err != nil {
		return nil, err
	}
	u := new(unit)
	u.file = file
	u.backend = backend
	return u, nil
}

func (u *unit) internal()        {}
func (u *unit) File() string     { return u.file }
func (u *unit) Context() Backend { return u.backend }
func (u *unit) Seek(line int)    { u.line = line }

func (u *unit) declare(o op, k Kind, address string) (err error) {
	if strings.Contains(address, Delimiter) {
		return fmt.Errorf("%w: %q", ErrBadArgument, address)
	}
	d := Descriptor{Kind: k, Arg: address, File: u.file, Line: u.line, Counter: u.counter}
	u.counter++
	u.hooks = append(u.hooks, d)
	u.entries = append(u.entries, entry{op: o, desc: d})
	return
}

func (u *unit) Declare(k Kind, address string) error {
	if k.Class == ClassReplace {
		return u.Replace(address)
	}
	return u.declare(opMarker, k, address)
}

func (u *unit) Hooks() []Descriptor {
	return u.hooks
}

func (u *unit) Replace(address string) (err error) {
	if u.open {
		return ErrNestedReplace
	}
	if err = u.declare(opSection, KindReplace, address); err != nil {
		return
	}
	u.open = true
	return
}

func (u *unit) ReplaceEnd() error {
	if !u.open {
		return ErrNoReplace
	}
	u.entries = append(u.entries, entry{op: opSectionEnd})
	u.open = false
	return nil
}

func (u *unit) Raw(text string) {
	u.entries = append(u.entries, entry{op: opRaw, raw: text})
}

func (u *unit) LoaderCode() {
	u.entries = append(u.entries, entry{op: opLoader})
}

func (u *unit) Render(w io.Writer) (err error) {
	if u.open {
		return ErrOpenReplace
	}
	for _, e := range u.entries {
		switch e.op {
		case opMarker:
			err = u.backend.Marker(w, e.desc)
		case opSection:
			err = u.backend.SectionEnter(w, e.desc)
		case opSectionEnd:
			err = u.backend.SectionExit(w)
		case opRaw:
			_, err = fmt.Fprintln(w, e.raw)
		case opLoader:
			err = u.backend.LoaderCode(w)
		}
		if err != nil {
			return
		}
	}
	return
}

func (u *unit) B(address string) error {
	return u.declare(opMarker, BranchKind(CondAL, false), address)
}
func (u *unit) Beq(address string) error {
	return u.declare(opMarker, BranchKind(CondEQ, false), address)
}
func (u *unit) Bne(address string) error {
	return u.declare(opMarker, BranchKind(CondNE, false), address)
}
func (u *unit) Bcs(address string) error {
	return u.declare(opMarker, BranchKind(CondCS, false), address)
}
func (u *unit) Bcc(address string) error {
	return u.declare(opMarker, BranchKind(CondCC, false), address)
}
func (u *unit) Bmi(address string) error {
	return u.declare(opMarker, BranchKind(CondMI, false), address)
}
func (u *unit) Bpl(address string) error {
	return u.declare(opMarker, BranchKind(CondPL, false), address)
}
func (u *unit) Bvs(address string) error {
	return u.declare(opMarker, BranchKind(CondVS, false), address)
}
func (u *unit) Bvc(address string) error {
	return u.declare(opMarker, BranchKind(CondVC, false), address)
}
func (u *unit) Bhi(address string) error {
	return u.declare(opMarker, BranchKind(CondHI, false), address)
}
func (u *unit) Bls(address string) error {
	return u.declare(opMarker, BranchKind(CondLS, false), address)
}
func (u *unit) Bge(address string) error {
	return u.declare(opMarker, BranchKind(CondGE, false), address)
}
func (u *unit) Blt(address string) error {
	return u.declare(opMarker, BranchKind(CondLT, false), address)
}
func (u *unit) Bgt(address string) error {
	return u.declare(opMarker, BranchKind(CondGT, false), address)
}
func (u *unit) Ble(address string) error {
	return u.declare(opMarker, BranchKind(CondLE, false), address)
}

func (u *unit) Bl(address string) error {
	return u.declare(opMarker, BranchKind(CondAL, true), address)
}
func (u *unit) Bleq(address string) error {
	return u.declare(opMarker, BranchKind(CondEQ, true), address)
}
func (u *unit) Blne(address string) error {
	return u.declare(opMarker, BranchKind(CondNE, true), address)
}
func (u *unit) Blcs(address string) error {
	return u.declare(opMarker, BranchKind(CondCS, true), address)
}
func (u *unit) Blcc(address string) error {
	return u.declare(opMarker, BranchKind(CondCC, true), address)
}
func (u *unit) Blmi(address string) error {
	return u.declare(opMarker, BranchKind(CondMI, true), address)
}
func (u *unit) Blpl(address string) error {
	return u.declare(opMarker, BranchKind(CondPL, true), address)
}
func (u *unit) Blvs(address string) error {
	return u.declare(opMarker, BranchKind(CondVS, true), address)
}
func (u *unit) Blvc(address string) error {
	return u.declare(opMarker, BranchKind(CondVC, true), address)
}
func (u *unit) Blhi(address string) error {
	return u.declare(opMarker, BranchKind(CondHI, true), address)
}
func (u *unit) Blls(address string) error {
	return u.declare(opMarker, BranchKind(CondLS, true), address)
}
func (u *unit) Blge(address string) error {
	return u.declare(opMarker, BranchKind(CondGE, true), address)
}
func (u *unit) Bllt(address string) error {
	return u.declare(opMarker, BranchKind(CondLT, true), address)
}
func (u *unit) Blgt(address string) error {
	return u.declare(opMarker, BranchKind(CondGT, true), address)
}
func (u *unit) Blle(address string) error {
	return u.declare(opMarker, BranchKind(CondLE, true), address)
}

func (u *unit) Pre(address string) error    { return u.declare(opMarker, KindPre, address) }
func (u *unit) Post(address string) error   { return u.declare(opMarker, KindPost, address) }
func (u *unit) Symptr(address string) error { return u.declare(opMarker, KindSymptr, address) }
