package magwi

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseBackend(t *testing.T) {
	for name, want := range map[string]Backend{
		"asm": Asm, "s": Asm, "c": C, "cpp": C, "c++": C,
	} {
		got, err := ParseBackend(name)
		if err != nil || got != want {
			t.Fatalf("ParseBackend(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseBackend("rust"); !errors.Is(err, ErrUnknownContext) {
		t.Fatalf("unknown context = %v", err)
	}
}

func TestContextFidelity(t *testing.T) {
	// the same logical hook encodes the identical token in both contexts
	a, c := new(bytes.Buffer), new(bytes.Buffer)
	if err := Asm.Marker(a, combatBl); err != nil {
		t.Fatal(err)
	}
	if err := C.Marker(c, combatBl); err != nil {
		t.Fatal(err)
	}
	token := combatBl.Label()
	if !strings.Contains(a.String(), token) {
		t.Fatalf("asm marker misses token:\n%s", a.String())
	}
	if !strings.Contains(c.String(), token) {
		t.Fatalf("c marker misses token:\n%s", c.String())
	}

	a.Reset()
	c.Reset()
	d := combatBl
	d.Kind = KindReplace
	if err := Asm.SectionEnter(a, d); err != nil {
		t.Fatal(err)
	}
	if err := C.SectionEnter(c, d); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(a.String(), d.Section()) || !strings.Contains(c.String(), d.Section()) {
		t.Fatalf("section name differs:\n%s\n%s", a.String(), c.String())
	}
}

func TestAsmBackend(t *testing.T) {
	b := new(bytes.Buffer)
	if err := Asm.Marker(b, combatBl); err != nil {
		t.Fatal(err)
	}
	want := ".global __mw_hook_bl$0x08001234$combat_c$50$0\n__mw_hook_bl$0x08001234$combat_c$50$0:\n"
	if b.String() != want {
		t.Fatalf("marker:\n%q\nwant:\n%q", b.String(), want)
	}
	b.Reset()
	if err := Asm.SectionExit(b); err != nil {
		t.Fatal(err)
	}
	if b.String() != ".popsection\n" {
		t.Fatalf("exit = %q", b.String())
	}
	b.Reset()
	if err := Asm.LoaderCode(b); err != nil {
		t.Fatal(err)
	}
	if b.String() != ".section .mw_loader_text\n" {
		t.Fatalf("loader = %q", b.String())
	}
}

func TestCBackend(t *testing.T) {
	b := new(bytes.Buffer)
	if err := C.Marker(b, combatBl); err != nil {
		t.Fatal(err)
	}
	want := "__attribute__((used, __symver__(\"__mw_hook_bl$0x08001234$combat_c$50$0@0\")))\n" +
		"void __mw_anchor_combat_c_0(void) {}\n"
	if b.String() != want {
		t.Fatalf("marker:\n%q\nwant:\n%q", b.String(), want)
	}

	b.Reset()
	d := combatBl
	d.Kind = KindSymptr
	if err := C.Marker(b, d); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "void *__mw_anchor_combat_c_0;") {
		t.Fatalf("symptr anchor is not a data slot:\n%s", b.String())
	}

	b.Reset()
	d.Kind = KindReplace
	if err := C.SectionEnter(b, d); err != nil {
		t.Fatal(err)
	}
	want = "__attribute__((used, section(\".__mw_hook_replace$0x08001234$combat_c$50$0\")))\n"
	if b.String() != want {
		t.Fatalf("section:\n%q\nwant:\n%q", b.String(), want)
	}
	b.Reset()
	if err := C.SectionExit(b); err != nil || b.Len() != 0 {
		t.Fatalf("c section exit emitted %q, %v", b.String(), err)
	}
	b.Reset()
	if err := C.LoaderCode(b); err != nil {
		t.Fatal(err)
	}
	if b.String() != "__attribute__((section(\".mw_loader_text\"), optimize(\"Os\")))\n" {
		t.Fatalf("loader = %q", b.String())
	}
}
