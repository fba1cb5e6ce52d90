package deps

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/sentra-labs/installer/internal/manifest"
)

var (
	// ErrMissingModule is returned when a required module cannot be
	// imported at all.
	ErrMissingModule = errors.New("required module is not installed")

	// ErrVersionTooOld is returned when an installed module does not meet
	// the advisory's version floor.
	ErrVersionTooOld = errors.New("installed module version is too old")
)

// ProbeFunc resolves an importable module name to its installed version
// string. It returns ErrMissingModule (possibly wrapped) when the module
// cannot be imported, and an empty version when the module exposes none.
type ProbeFunc func(importName string) (string, error)

// Checker verifies dependency advisories. The zero value probes the local
// python3 interpreter and talks to stdin/stdout for the confirmation
// fallback.
type Checker struct {
	Probe ProbeFunc
	In    io.Reader
	Out   io.Writer
}

// Check walks all advisories and returns the first unsatisfied one. For a
// version that cannot be verified automatically, the operator is asked to
// confirm it manually.
func (c *Checker) Check(d manifest.Dependencies) error {
	probe := c.Probe
	if probe == nil {
		probe = ProbePython
	}
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	in := c.In
	if in == nil {
		in = os.Stdin
	}

	for _, dep := range d.Pip {
		installed, err := probe(dep.Import)
		if errors.Is(err, ErrMissingModule) {
			fmt.Fprintf(out, "The needed module %q is not installed. You can install it by executing 'pip3 install %s'.\n", dep.Import, dep.Packet)
			return fmt.Errorf("%w: %s", ErrMissingModule, dep.Import)
		}
		if err != nil {
			return fmt.Errorf("probing module %s: %w", dep.Import, err)
		}
		if err := c.checkVersion(dep.Import, installed, dep.Version, in, out); err != nil {
			fmt.Fprintf(out, "Please update your installed version of the pip packet %q.\n", dep.Packet)
			return err
		}
	}

	for _, dep := range d.Other {
		installed, err := probe(dep.Import)
		if errors.Is(err, ErrMissingModule) {
			fmt.Fprintf(out, "The needed module %q is not installed. You need to install it before you can use this instance.\n", dep.Import)
			return fmt.Errorf("%w: %s", ErrMissingModule, dep.Import)
		}
		if err != nil {
			return fmt.Errorf("probing module %s: %w", dep.Import, err)
		}
		if err := c.checkVersion(dep.Import, installed, dep.Version, in, out); err != nil {
			return err
		}
	}

	return nil
}

// checkVersion compares an installed version against the advisory floor.
// Unparseable versions fall back to an interactive confirmation.
func (c *Checker) checkVersion(importName, installed, needed string, in io.Reader, out io.Writer) error {
	if needed == "" {
		return nil
	}

	ok, err := Satisfies(installed, needed)
	if err != nil {
		fmt.Fprintf(out, "Could not automatically verify the installed version of module %q.\n", importName)
		fmt.Fprintf(out, "Installed version: %s\nNeeded version: %s\n", installed, needed)
		fmt.Fprint(out, "Do you have a version installed that satisfies the needed version? (y/n): ")
		if confirm(in) {
			return nil
		}
		return fmt.Errorf("%w: %s (installed %q, needed %s)", ErrVersionTooOld, importName, installed, needed)
	}
	if !ok {
		fmt.Fprintf(out, "The needed version %s of module %q is not satisfied (you have version %s installed).\n", needed, importName, installed)
		return fmt.Errorf("%w: %s (installed %s, needed %s)", ErrVersionTooOld, importName, installed, needed)
	}
	return nil
}

// Satisfies reports whether installed meets the version floor needed.
// Partial versions like "2.20" are tolerated.
func Satisfies(installed, needed string) (bool, error) {
	iv, err := semver.NewVersion(strings.TrimSpace(installed))
	if err != nil {
		return false, fmt.Errorf("parsing installed version %q: %w", installed, err)
	}
	nv, err := semver.NewVersion(strings.TrimSpace(needed))
	if err != nil {
		return false, fmt.Errorf("parsing needed version %q: %w", needed, err)
	}
	return iv.Compare(nv) >= 0, nil
}

// ProbePython asks the local python3 interpreter for a module's version.
func ProbePython(importName string) (string, error) {
	python, err := exec.LookPath("python3")
	if err != nil {
		return "", fmt.Errorf("python3 not found in PATH: %w", err)
	}

	script := fmt.Sprintf("import %s; print(getattr(%s, '__version__', ''))", importName, importName)
	output, err := exec.Command(python, "-c", script).Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingModule, importName)
	}
	return strings.TrimSpace(string(output)), nil
}

// confirm reads a y/n answer, defaulting to no on EOF.
func confirm(in io.Reader) bool {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
	return false
}
