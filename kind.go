package magwi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type (
	//Condition is an ARM condition code suffix carried by conditional hook kinds.
	Condition uint8
	//Class groups hook kinds by what the downstream patch tool does at the hook site.
	Class uint8
	//Kind tags one hook declaration. Branch kinds additionally carry the
	//condition code and the link bit, the mnemonic encodes all three.
	Kind struct {
		Class Class
		Cond  Condition //branch kinds only
		Link  bool      //branch kinds only
	}
)

const (
	CondEQ Condition = 0x0
	CondNE Condition = 0x1
	CondCS Condition = 0x2
	CondCC Condition = 0x3
	CondMI Condition = 0x4
	CondPL Condition = 0x5
	CondVS Condition = 0x6
	CondVC Condition = 0x7
	CondHI Condition = 0x8
	CondLS Condition = 0x9
	CondGE Condition = 0xA
	CondLT Condition = 0xB
	CondGT Condition = 0xC
	CondLE Condition = 0xD
	CondAL Condition = 0xE
	CondNV Condition = 0xF
)

const (
	//ClassBranch marks the patch site with a branch to be synthesized toward the hook.
	ClassBranch Class = iota
	//ClassPre injects code immediately before the target without replacing it.
	ClassPre
	//ClassPost injects code immediately after the target without replacing it.
	ClassPost
	//ClassSymptr declares a data slot to be filled with the resolved address of the argument.
	ClassSymptr
	//ClassReplace carries a payload section replacing the instructions at the argument.
	ClassReplace
)

var (
	// ErrInvalidKind occurs when a kind mnemonic is not part of the hook grammar.
	ErrInvalidKind = errors.New("invalid kind")
	// ErrInvalidCondition occurs when a branch mnemonic carries an unknown condition suffix.
	ErrInvalidCondition = errors.New("invalid instruction condition")
	// ErrInvalidAddress occurs when an address token is neither hex nor decimal.
	ErrInvalidAddress = errors.New("invalid address")
)

var (
	KindPre     = Kind{Class: ClassPre}
	KindPost    = Kind{Class: ClassPost}
	KindSymptr  = Kind{Class: ClassSymptr}
	KindReplace = Kind{Class: ClassReplace}
)

// BranchKind builds the branch hook kind for a condition and link bit.
func BranchKind(cond Condition, link bool) Kind {
	return Kind{Class: ClassBranch, Cond: cond, Link: link}
}

var condNames = [16]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "nv",
}

func (c Condition) String() string {
	return condNames[c&0xF]
}

// ParseCondition resolves a condition mnemonic. The aliases hs and lo map to
// cs and cc, the empty suffix means always.
func ParseCondition(s string) (c Condition, err error) {
	switch strings.ToLower(s) {
	case "":
		return CondAL, nil
	case "hs":
		return CondCS, nil
	case "lo":
		return CondCC, nil
	}
	s = strings.ToLower(s)
	for i, n := range condNames {
		if n == s {
			return Condition(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCondition, s)
}

// String renders the kind as its grammar mnemonic, the unconditional branch
// suffix is empty so the plain kinds come out as b and bl.
func (k Kind) String() string {
	switch k.Class {
	case ClassPre:
		return "pre"
	case ClassPost:
		return "post"
	case ClassSymptr:
		return "symptr"
	case ClassReplace:
		return "replace"
	}
	s := "b"
	if k.Link {
		s = "bl"
	}
	if k.Cond != CondAL {
		s += k.Cond.String()
	}
	return s
}

// ParseKind resolves a kind mnemonic, case-insensitive. Branch mnemonics are
// recognized by shape: b or b<cc> without link, bl or bl<cc> with link.
func ParseKind(s string) (k Kind, err error) {
	lower := strings.ToLower(s)
	switch lower {
	case "pre":
		return KindPre, nil
	case "post":
		return KindPost, nil
	case "symptr":
		return KindSymptr, nil
	case "replace":
		return KindReplace, nil
	}
	l := len(lower)
	var cond Condition
	switch {
	case (l == 1 || l == 3) && lower[0] == 'b':
		if cond, err = ParseCondition(lower[1:]); err != nil {
			return
		}
		return BranchKind(cond, false), nil
	case (l == 2 || l == 4) && strings.HasPrefix(lower, "bl"):
		if cond, err = ParseCondition(lower[2:]); err != nil {
			return
		}
		return BranchKind(cond, true), nil
	}
	return k, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// ParseAddress resolves an address token, 0x or 0X prefixed hex otherwise
// decimal, into a 32 bit value.
func ParseAddress(s string) (uint32, error) {
	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return uint32(v), nil
}
