package magwi

import (
	"errors"
	"testing"
)

var combatBl = Descriptor{
	Kind:    BranchKind(CondAL, true),
	Arg:     "0x08001234",
	File:    "combat_c",
	Line:    50,
	Counter: 0,
}

func TestSynthesize(t *testing.T) {
	if s := combatBl.Symbol(); s != "__mw_hook_bl$0x08001234$combat_c$50$0@0" {
		t.Fatalf("symbol = %q", s)
	}
	if l := combatBl.Label(); l != "__mw_hook_bl$0x08001234$combat_c$50$0" {
		t.Fatalf("label = %q", l)
	}
	d := combatBl
	d.Kind = KindReplace
	d.Counter = 1
	if s := d.Section(); s != ".__mw_hook_replace$0x08001234$combat_c$50$1" {
		t.Fatalf("section = %q", s)
	}
}

func TestLocation(t *testing.T) {
	if l := combatBl.Location(); l.Path != "combat_c" || l.Line != 50 {
		t.Fatalf("location = %+v", l)
	}
	if s := combatBl.Location().String(); s != "combat_c:50" {
		t.Fatalf("location = %q", s)
	}
	d := combatBl
	d.File = EncodePath("src/combat.c")
	if l := d.Location(); l.Path != "src/combat.c" || l.Line != 50 {
		t.Fatalf("decoded location = %+v", l)
	}
}

func TestSynthesizeDeterminism(t *testing.T) {
	if combatBl.Symbol() != combatBl.Symbol() {
		t.Fatal("symbol not deterministic")
	}
	if combatBl.Section() != combatBl.Section() {
		t.Fatal("section not deterministic")
	}
}

func TestParseSymbol(t *testing.T) {
	for _, name := range []string{
		"__mw_hook_bl$0x08001234$combat_c$50$0@0", // symver form
		"__mw_hook_bl$0x08001234$combat_c$50$0",   // assembler label form
	} {
		d, err := ParseSymbol(name)
		if err != nil {
			t.Fatalf("ParseSymbol(%q): %v", name, err)
		}
		if d != combatBl {
			t.Fatalf("ParseSymbol(%q) = %+v, want %+v", name, d, combatBl)
		}
	}

	if _, err := ParseSymbol("xyz"); !errors.Is(err, ErrInvalidPrefix) {
		t.Fatalf("bad prefix = %v", err)
	}
	for name, want := range map[string]error{
		"__mw_hook_":                        ErrMissingKind,
		"__mw_hook_b":                       ErrMissingArgument,
		"__mw_hook_b$0x1234":                ErrMissingFile,
		"__mw_hook_b$0x1234$combat_c":       ErrMissingLine,
		"__mw_hook_b$0x1234$combat_c$10":    ErrMissingCounter,
		"__mw_hook_b$0x1234$combat_c$x$0":   ErrInvalidLine,
		"__mw_hook_b$0x1234$combat_c$10$x":  ErrInvalidCounter,
		"__mw_hook_xyz$0x1234$combat_c$1$0": ErrInvalidKind,
	} {
		if _, err := ParseSymbol(name); !errors.Is(err, want) {
			t.Fatalf("ParseSymbol(%q) = %v, want %v", name, err, want)
		}
	}
}

func TestParseSection(t *testing.T) {
	d, err := ParseSection(".__mw_hook_replace$0x0800F000$combat_c$72$3")
	if err != nil {
		t.Fatal(err)
	}
	want := Descriptor{Kind: KindReplace, Arg: "0x0800F000", File: "combat_c", Line: 72, Counter: 3}
	if d != want {
		t.Fatalf("got %+v, want %+v", d, want)
	}
	if _, err = ParseSection("__mw_hook_b$0$f$1$0"); !errors.Is(err, ErrInvalidPrefix) {
		t.Fatalf("symbol name accepted as section: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	// every kind survives symbol and section round trips unchanged
	for i, k := range append(markerKinds(), KindReplace) {
		d := Descriptor{Kind: k, Arg: "0x0203FC00", File: EncodePath("src/combat.c"), Line: 9 + i, Counter: i}
		if got, err := ParseSymbol(d.Symbol()); err != nil || got != d {
			t.Fatalf("symbol round trip %+v: %v %+v", d, err, got)
		}
		if got, err := ParseSection(d.Section()); err != nil || got != d {
			t.Fatalf("section round trip %+v: %v %+v", d, err, got)
		}
	}
}

func TestResolve(t *testing.T) {
	i, err := combatBl.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if i.Addr != 0x08001234 {
		t.Fatalf("addr = %#x", i.Addr)
	}
	d := combatBl
	d.Arg = "main"
	if _, err = d.Resolve(); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("symbolic argument resolved: %v", err)
	}
}

func BenchmarkSymbol(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = combatBl.Symbol()
	}
}

func BenchmarkParseSymbol(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseSymbol("__mw_hook_bl$0x08001234$combat_c$50$0@0")
	}
}
