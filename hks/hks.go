// Package hks reads hook-script manifests: an unindented title line opens an
// entry, indented "key: value" lines populate it, '#' starts a comment. The
// format drives out-of-line hook declaration generation.
package hks

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ZenLiuCN/fn"
	"github.com/mwtools/magwi"
)

type (
	//Entry is one titled block of properties. Getters consume keys so a caller
	//can detect unknown leftovers through Done and Remaining.
	Entry struct {
		title string
		line  int
		kv    map[string]string
	}
	//Reader iterates the entries of one manifest.
	Reader struct {
		s         *bufio.Scanner
		line      int
		nextTitle string
		nextLine  int
		pending   bool
	}
)

var (
	// ErrInvalidTitle occurs when a block opens with an indented line.
	ErrInvalidTitle = errors.New("invalid title")
	// ErrInvalidKeyValue occurs when a property line has no colon.
	ErrInvalidKeyValue = errors.New("invalid property syntax")
	// ErrEmptyKey occurs when a property line has nothing before the colon.
	ErrEmptyKey = errors.New("missing property key")
	// ErrEmptyValue occurs when a property line has nothing after the colon.
	ErrEmptyValue = errors.New("missing property value")
	// ErrDuplicateKey occurs when a key repeats inside one entry.
	ErrDuplicateKey = errors.New("duplicate property key")
	// ErrMissingKey occurs when a required key is absent from an entry.
	ErrMissingKey = errors.New("missing key")
	// ErrInvalidValue occurs when a value fails its typed parse.
	ErrInvalidValue = errors.New("invalid value")
)

// NewReader create a reader over one manifest stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{s: bufio.NewScanner(r)}
}

func (r *Reader) scan() (line string, ok bool) {
	ok = r.s.Scan()
	if ok {
		r.line++
		line = r.s.Text()
	}
	return
}

func strip(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimRight(line, " \t")
}

// Next return the following entry, nil at end of input.
func (r *Reader) Next() (e *Entry, err error) {
	if !r.pending {
		for {
			line, ok := r.scan()
			if !ok {
				break
			}
			line = strip(line)
			if line == "" {
				continue
			}
			if line[0] == ' ' || line[0] == '\t' {
				return nil, fmt.Errorf("line %d: %w", r.line, ErrInvalidTitle)
			}
			r.nextTitle, r.nextLine = strings.TrimSuffix(line, ":"), r.line
			r.pending = true
			break
		}
	}
	if !r.pending {
		return nil, r.s.Err()
	}
	e = &Entry{title: r.nextTitle, line: r.nextLine, kv: make(map[string]string)}
	r.pending = false

	for {
		line, ok := r.scan()
		if !ok {
			break
		}
		line = strip(line)
		if line == "" {
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			r.nextTitle, r.nextLine = strings.TrimSuffix(line, ":"), r.line
			r.pending = true
			break
		}
		i := strings.IndexByte(line, ':')
		if i < 0 {
			return nil, fmt.Errorf("line %d: %w", r.line, ErrInvalidKeyValue)
		}
		key := strings.ToLower(strings.TrimSpace(line[:i]))
		value := strings.TrimSpace(line[i+1:])
		if key == "" {
			return nil, fmt.Errorf("line %d: %w", r.line, ErrEmptyKey)
		}
		if value == "" {
			return nil, fmt.Errorf("line %d: %w", r.line, ErrEmptyValue)
		}
		if _, dup := e.kv[key]; dup {
			return nil, fmt.Errorf("line %d: %w %q", r.line, ErrDuplicateKey, key)
		}
		e.kv[key] = value
	}
	return e, r.s.Err()
}

// Title of the entry, without a trailing colon.
func (e *Entry) Title() string { return e.title }

// Line the entry starts at, 1-based.
func (e *Entry) Line() int { return e.line }

// Has report whether a key is still unconsumed.
func (e *Entry) Has(key string) bool {
	_, ok := e.kv[key]
	return ok
}

// Done report whether every key was consumed.
func (e *Entry) Done() bool { return len(e.kv) == 0 }

// Remaining list the unconsumed keys.
func (e *Entry) Remaining() []string {
	ks := fn.MapKeys(e.kv)
	sort.Strings(ks)
	return ks
}

// Get consume a key and return its value.
func (e *Entry) Get(key string) (string, error) {
	v, ok := e.kv[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	delete(e.kv, key)
	return v, nil
}

// GetBool consume a key holding true or false.
func (e *Entry) GetBool(key string) (bool, error) {
	v, err := e.Get(key)
	if err != nil {
		return false, err
	}
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: bool %q", ErrInvalidValue, v)
}

// GetInt consume a key holding a non-negative decimal.
func (e *Entry) GetInt(key string) (int, error) {
	v, err := e.Get(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: int %q", ErrInvalidValue, v)
	}
	return int(n), nil
}

// GetAddress consume a key holding an address in the hook grammar.
func (e *Entry) GetAddress(key string) (uint32, error) {
	v, err := e.Get(key)
	if err != nil {
		return 0, err
	}
	a, err := magwi.ParseAddress(v)
	if err != nil {
		return 0, fmt.Errorf("%w: address %q", ErrInvalidValue, v)
	}
	return a, nil
}
