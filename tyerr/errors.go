package tyerr

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
var enableDebugErrorPrinting = false

const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	Malformed
	Unsatisfiable
	Incomplete
	Runaway
	SourceFailure
	Syntax
)

func (c ErrCode) String() string {
	switch c {
	case Malformed:
		return "malformed type"
	case Unsatisfiable:
		return "unsatisfiable constraint"
	case Incomplete:
		return "inference incomplete"
	case Runaway:
		return "internal runaway"
	case SourceFailure:
		return "declaration source failure"
	case Syntax:
		return "syntax error"
	default:
		return "unclassified"
	}
}

type TypeError interface {
	Error() string
	Code() ErrCode

	withStack([]byte) TypeError
	getStack() []byte
}

// EnableDebugPrinting toggles whether FormatWithCode includes the frame
// where the error was created
func EnableDebugPrinting(enable bool) {
	enableDebugErrorPrinting = enable
}

func FormatWithCode(e TypeError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = strings.TrimSpace(lines[6])
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E TypeError](err E) TypeError {
	return err.withStack(debug.Stack())
}

// CodeOf returns the ErrCode of the first TypeError in err's chain,
// or None if there is none
func CodeOf(err error) ErrCode {
	var typeErr TypeError
	if errors.As(err, &typeErr) {
		return typeErr.Code()
	}
	return None
}

// IsSoft reports whether err only means that an inference found no solution,
// as opposed to a malformed input or an implementation limit being hit.
// Callers choosing among candidates treat soft errors as "does not apply"
func IsSoft(err error) bool {
	code := CodeOf(err)
	return code == Unsatisfiable || code == Incomplete
}

type NewMalformedType struct {
	Type   string
	Detail string
	stack  []byte
}

func (e NewMalformedType) Error() string {
	return fmt.Sprintf("malformed type '%s': %s", e.Type, e.Detail)
}
func (e NewMalformedType) Code() ErrCode    { return Malformed }
func (e NewMalformedType) getStack() []byte { return e.stack }
func (e NewMalformedType) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

type NewUnsatisfiableConstraint struct {
	Constraint string
	// Chain lists the constraints the offending one was reduced from,
	// closest parent first
	Chain []string
	stack []byte
}

func (e NewUnsatisfiableConstraint) Error() string {
	sb := &strings.Builder{}
	sb.WriteString("unsatisfiable: ")
	sb.WriteString(e.Constraint)
	for _, parent := range e.Chain {
		sb.WriteString("\n    from    ")
		sb.WriteString(parent)
	}
	return sb.String()
}
func (e NewUnsatisfiableConstraint) Code() ErrCode    { return Unsatisfiable }
func (e NewUnsatisfiableConstraint) getStack() []byte { return e.stack }
func (e NewUnsatisfiableConstraint) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

type NewInferenceIncomplete struct {
	Unsolved []string
	stack    []byte
}

func (e NewInferenceIncomplete) Error() string {
	if len(e.Unsolved) == 0 {
		return "no solution is found"
	}
	return fmt.Sprintf("unsolved vars: [%s]", strings.Join(e.Unsolved, ", "))
}
func (e NewInferenceIncomplete) Code() ErrCode    { return Incomplete }
func (e NewInferenceIncomplete) getStack() []byte { return e.stack }
func (e NewInferenceIncomplete) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

type NewInternalRunaway struct {
	Steps int
	// Trace holds the constraints that were still pending when the guard tripped
	Trace []string
	stack []byte
}

func (e NewInternalRunaway) Error() string {
	msg := fmt.Sprintf("inference is taking too long, aborted after %d steps", e.Steps)
	if len(e.Trace) == 0 {
		return msg
	}
	return msg + "; pending: " + strings.Join(e.Trace, "; ")
}
func (e NewInternalRunaway) Code() ErrCode    { return Runaway }
func (e NewInternalRunaway) getStack() []byte { return e.stack }
func (e NewInternalRunaway) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

type NewSourceFailure struct {
	Decl  string
	From  error
	stack []byte
}

func (e NewSourceFailure) Error() string {
	return fmt.Sprintf("declaration source failed for '%s': %v", e.Decl, e.From)
}
func (e NewSourceFailure) Unwrap() error    { return e.From }
func (e NewSourceFailure) Code() ErrCode    { return SourceFailure }
func (e NewSourceFailure) getStack() []byte { return e.stack }
func (e NewSourceFailure) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

type NewSyntax struct {
	Input   string
	Offset  int
	Message string
	stack   []byte
}

func (e NewSyntax) Error() string {
	return fmt.Sprintf("at offset %d of '%s': %s", e.Offset, e.Input, e.Message)
}
func (e NewSyntax) Code() ErrCode    { return Syntax }
func (e NewSyntax) getStack() []byte { return e.stack }
func (e NewSyntax) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}
