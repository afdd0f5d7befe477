package magwi

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
)

// MinToolchainMajor is the least compiler major version whose attribute and
// section forms carry the hook tokens.
const MinToolchainMajor = 11

var (
	// ErrToolchainUnsupported occurs when the compiler is older than MinToolchainMajor.
	ErrToolchainUnsupported = errors.New("unsupported toolchain")
	// ErrMissingConfiguration occurs when the origin token is undefined.
	ErrMissingConfiguration = errors.New("origin token not defined")
	// ErrInvalidOrigin occurs when the origin token contains the delimiter, a dot or a path separator.
	ErrInvalidOrigin = errors.New("invalid origin token")
)

// ToolchainVersion probe the compiler with -dumpversion and resolve its
// major and minor version.
func ToolchainVersion(debug bool, cc string) (major, minor int, err error) {
	if _, err = exec.LookPath(cc); err != nil {
		err = fmt.Errorf("missing toolchain %q: %w", cc, err)
		return
	}
	cmd := exec.Command(cc, "-dumpversion")
	if debug {
		log.Printf("execute: %v", cmd.Args)
	}
	var out []byte
	if out, err = cmd.Output(); err != nil {
		var xe *exec.ExitError
		if errors.As(err, &xe) {
			return 0, 0, fmt.Errorf("probe toolchain %q: %w\nerr:%s", cc, err, xe.Stderr)
		}
		return 0, 0, fmt.Errorf("probe toolchain %q: %w", cc, err)
	}
	sa := strings.Split(strings.TrimSpace(string(out)), ".")
	if major, err = strconv.Atoi(sa[0]); err != nil {
		return 0, 0, fmt.Errorf("unexpected version %q from %q", strings.TrimSpace(string(out)), cc)
	}
	if len(sa) > 1 {
		// minor is informational only, some toolchains report the major alone
		minor, _ = strconv.Atoi(sa[1])
	}
	return
}

// CheckOrigin verify the externally supplied origin token: it must be defined
// and must stay identifier-safe so the token grammar survives it.
func CheckOrigin(token string) error {
	if token == "" {
		return ErrMissingConfiguration
	}
	if strings.ContainsAny(token, Delimiter+"./\\") {
		return fmt.Errorf("%w: %q", ErrInvalidOrigin, token)
	}
	return nil
}

// Preflight runs the guard once for a translation unit before any of its
// hooks are processed. Either violation is fatal, there is no degraded mode.
func Preflight(debug bool, cc, origin string) (err error) {
	var major, minor int
	if major, minor, err = ToolchainVersion(debug, cc); err != nil {
		return
	}
	if debug {
		log.Printf("toolchain %s: %d.%d", cc, major, minor)
	}
	if major < MinToolchainMajor {
		return fmt.Errorf("%w: %s is %d.%d, requires >= %d.0", ErrToolchainUnsupported, cc, major, minor, MinToolchainMajor)
	}
	return CheckOrigin(origin)
}
