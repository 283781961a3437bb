// errors.go defines the failure taxonomy and per-task diagnostics.

package wikitext

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// Failure kinds. None of these ever reaches the article-level caller: each is
// recorded on the task's Diagnostics and the failing construct degrades to a
// local fallback (empty string or the unexpanded text).
var (
	// ErrRecursionLimit is the parent of the three depth kinds below.
	ErrRecursionLimit = errors.New("recursion limit exceeded")

	// ErrExpansionDepth is raised when Expand is entered at max depth.
	ErrExpansionDepth = fmt.Errorf("expansion depth: %w", ErrRecursionLimit)

	// ErrInvocationDepth is raised when a template invocation is attempted at max depth.
	ErrInvocationDepth = fmt.Errorf("invocation depth: %w", ErrRecursionLimit)

	// ErrParameterDepth is raised when placeholder substitution nests too deeply.
	ErrParameterDepth = fmt.Errorf("parameter depth: %w", ErrRecursionLimit)

	// ErrTemplateLoop is raised when a template is invoked while already on
	// the frame stack. It counts as an invocation depth refusal.
	ErrTemplateLoop = fmt.Errorf("template loop: %w", ErrInvocationDepth)

	// ErrUnqualifiedTitle indicates a template title that is empty after qualification.
	ErrUnqualifiedTitle = errors.New("template title reduces to empty")

	// ErrTemplateNotFound indicates a miss in both the compiled cache and the raw registry.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrExpression indicates that #expr could not evaluate its argument.
	ErrExpression = errors.New("expression evaluation failed")

	// ErrUnbalanced indicates the delimiter matcher hit end of input with an open run.
	ErrUnbalanced = errors.New("unbalanced delimiters")

	// ErrModuleFault indicates that a builtin module function failed or panicked.
	ErrModuleFault = errors.New("builtin module fault")
)

// Fault is one classified, degraded failure.
type Fault struct {
	Kind   error
	Detail string
}

func (f Fault) Error() string {
	if f.Detail == "" {
		return f.Kind.Error()
	}
	return f.Kind.Error() + ": " + f.Detail
}

// Unwrap lets errors.Is match a Fault against its kind.
func (f Fault) Unwrap() error { return f.Kind }

// Diagnostics accumulates per-task counters and faults. It never changes the
// outcome of processing.
type Diagnostics struct {
	ExpansionDepthErrs  int // depth refusals inside Expand
	InvocationDepthErrs int // depth refusals inside template invocation
	ParameterDepthErrs  int // depth refusals during placeholder substitution
	TitleErrs           int // titles that reduced to empty
	Faults              []Fault
}

// maxFaults bounds the fault log; counters keep counting past it.
const maxFaults = 256

// record stores a fault, bumps the matching counter and logs it at debug level.
func (d *Diagnostics) record(kind error, format string, args ...interface{}) {
	switch kind {
	case ErrExpansionDepth:
		d.ExpansionDepthErrs++
	case ErrInvocationDepth, ErrTemplateLoop:
		d.InvocationDepthErrs++
	case ErrParameterDepth:
		d.ParameterDepthErrs++
	case ErrUnqualifiedTitle:
		d.TitleErrs++
	}
	detail := fmt.Sprintf(format, args...)
	if len(d.Faults) < maxFaults {
		d.Faults = append(d.Faults, Fault{Kind: kind, Detail: detail})
	}
	log.Debug("degraded", "kind", kind, "detail", detail)
}

// Count returns the number of recorded faults matching kind (via errors.Is).
func (d *Diagnostics) Count(kind error) int {
	n := 0
	for _, f := range d.Faults {
		if errors.Is(f, kind) {
			n++
		}
	}
	return n
}

// Has reports whether any fault of the given kind was recorded.
func (d *Diagnostics) Has(kind error) bool {
	return d.Count(kind) > 0
}

// RecursionErrs is the total of the three depth counters.
func (d *Diagnostics) RecursionErrs() int {
	return d.ExpansionDepthErrs + d.InvocationDepthErrs + d.ParameterDepthErrs
}

// Merge adds the counters of other into d. Faults are not copied.
func (d *Diagnostics) Merge(other *Diagnostics) {
	d.ExpansionDepthErrs += other.ExpansionDepthErrs
	d.InvocationDepthErrs += other.InvocationDepthErrs
	d.ParameterDepthErrs += other.ParameterDepthErrs
	d.TitleErrs += other.TitleErrs
}
