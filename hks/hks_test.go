package hks

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/ZenLiuCN/fn"
)

func readAll(t *testing.T, in string) (es []*Entry) {
	t.Helper()
	r := NewReader(strings.NewReader(in))
	for {
		e, err := r.Next()
		if err != nil {
			t.Fatal(err)
		}
		if e == nil {
			return
		}
		es = append(es, e)
	}
}

func TestReader(t *testing.T) {
	es := readAll(t, `
# leading comment

first:
    kind: bl
    arg: 0x08001234   # trailing comment
    line: 50

second
    enabled: true
`)
	if len(es) != 2 {
		t.Fatalf("entries = %d", len(es))
	}
	if es[0].Title() != "first" || es[0].Line() != 4 {
		t.Fatalf("first = %q at %d", es[0].Title(), es[0].Line())
	}
	if es[1].Title() != "second" || es[1].Line() != 9 {
		t.Fatalf("second = %q at %d", es[1].Title(), es[1].Line())
	}
	if v := fn.Panic1(es[0].Get("kind")); v != "bl" {
		t.Fatalf("kind = %q", v)
	}
	if v := fn.Panic1(es[0].Get("arg")); v != "0x08001234" {
		t.Fatalf("arg = %q", v)
	}
	if !fn.Panic1(es[1].GetBool("enabled")) {
		t.Fatal("enabled = false")
	}
}

func TestReaderErrors(t *testing.T) {
	for in, want := range map[string]error{
		"    indented: first":    ErrInvalidTitle,
		"t:\n    no colon":       ErrInvalidKeyValue,
		"t:\n    : value":        ErrEmptyKey,
		"t:\n    key:":           ErrEmptyValue,
		"t:\n    k: 1\n    k: 2": ErrDuplicateKey,
	} {
		if _, err := NewReader(strings.NewReader(in)).Next(); !errors.Is(err, want) {
			t.Fatalf("input %q = %v, want %v", in, err, want)
		}
	}
}

func TestEntryConsumption(t *testing.T) {
	es := readAll(t, "t:\n    kind: pre\n    arg: 16\n    line: 3")
	e := es[0]
	if e.Done() {
		t.Fatal("done before consumption")
	}
	if !e.Has("kind") {
		t.Fatal("kind missing")
	}
	fn.Panic1(e.Get("kind"))
	if a := fn.Panic1(e.GetAddress("arg")); a != 16 {
		t.Fatalf("arg = %d", a)
	}
	if l := fn.Panic1(e.GetInt("line")); l != 3 {
		t.Fatalf("line = %d", l)
	}
	if !e.Done() || len(e.Remaining()) != 0 {
		t.Fatalf("leftovers: %v", e.Remaining())
	}
	if _, err := e.Get("kind"); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("second get = %v", err)
	}
}

func TestEntryTypedErrors(t *testing.T) {
	es := readAll(t, "t:\n    b: maybe\n    n: x1\n    a: 0x")
	e := es[0]
	if _, err := e.GetBool("b"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("bool = %v", err)
	}
	if _, err := e.GetInt("n"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("int = %v", err)
	}
	if _, err := e.GetAddress("a"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("address = %v", err)
	}
}

func TestReaderFile(t *testing.T) {
	f := fn.Panic1(os.Open("testdata/combat.hks"))
	defer fn.IgnoreClose(f)
	r := NewReader(f)
	var titles, kinds []string
	for {
		e, err := r.Next()
		fn.Panic(err)
		if e == nil {
			break
		}
		titles = append(titles, e.Title())
		kinds = append(kinds, fn.Panic1(e.Get("kind")))
	}
	if strings.Join(titles, ",") != "damage_calc,crit_check,damage_table,old_formula" {
		t.Fatalf("titles = %v", titles)
	}
	if strings.Join(kinds, ",") != "bl,beq,symptr,replace" {
		t.Fatalf("kinds = %v", kinds)
	}
}
