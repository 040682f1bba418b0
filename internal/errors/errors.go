package errors

import "fmt"

// Error codes for the Latte compiler, grouped the way the pipeline detects
// them. Codes identify error kinds in tests and tooling; the CLI surface
// prints only the message.
//
// Code ranges:
// E0001-E0099: lexical and syntactic errors
// E0100-E0199: declaration errors
// E0200-E0299: resolution errors
// E0300-E0399: typing errors
// E0400-E0499: flow control errors
// E0900-E0999: internal errors
const (
	CodeIllegalCharacter = "E0001"
	CodeParsing          = "E0002"

	CodeDuplicateFunction = "E0100"
	CodeMissingMain       = "E0101"
	CodeInvalidMain       = "E0102"
	CodeDuplicateVariable = "E0103"
	CodeInvalidType       = "E0104"
	CodeInvalidAttribute  = "E0105"
	CodeInvalidOperator   = "E0106"

	CodeUndefinedVariable = "E0200"
	CodeUndefinedFunction = "E0201"
	CodeInvalidCall       = "E0202"

	CodeTypeMismatch = "E0300"

	CodeMissingReturn = "E0400"

	CodeNotImplemented = "E0900"
)

// CompilerError is the single error type raised by every stage. Line is
// 1-based; zero means the error has no useful source location.
type CompilerError struct {
	Code    string
	Message string
	Line    int
}

func (e *CompilerError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}

func newError(code, message string, line int) *CompilerError {
	return &CompilerError{Code: code, Message: message, Line: line}
}

func IllegalCharacter(line int, char string) *CompilerError {
	return newError(CodeIllegalCharacter, fmt.Sprintf("invalid character: %s", char), line)
}

func Parsing(line int) *CompilerError {
	return newError(CodeParsing, "parsing failed", line)
}

func DuplicateFunction(line int, name string) *CompilerError {
	return newError(CodeDuplicateFunction, fmt.Sprintf("duplicate function name: %s", name), line)
}

func MissingMain(line int) *CompilerError {
	return newError(CodeMissingMain, "missing main() function", line)
}

func InvalidMain(line int) *CompilerError {
	return newError(CodeInvalidMain, "invalid main() definition", line)
}

func DuplicateVariable(line int, name string) *CompilerError {
	return newError(CodeDuplicateVariable, fmt.Sprintf("duplicate variable name: %s", name), line)
}

func InvalidType(line int, name string) *CompilerError {
	return newError(CodeInvalidType, fmt.Sprintf("invalid type: %s", name), line)
}

func InvalidAttribute(line int, typeName, attr string) *CompilerError {
	return newError(CodeInvalidAttribute, fmt.Sprintf("invalid attribute: %s.%s", typeName, attr), line)
}

func InvalidOperator(line int, op string) *CompilerError {
	return newError(CodeInvalidOperator, fmt.Sprintf("invalid operator: %s", op), line)
}

func UndefinedVariable(line int, name string) *CompilerError {
	return newError(CodeUndefinedVariable, fmt.Sprintf("undefined variable: %s", name), line)
}

func UndefinedFunction(line int, name string) *CompilerError {
	return newError(CodeUndefinedFunction, fmt.Sprintf("undefined function: %s", name), line)
}

func InvalidCall(line int, name string) *CompilerError {
	return newError(CodeInvalidCall, fmt.Sprintf("invalid call to function: %s", name), line)
}

func TypeMismatch(line int) *CompilerError {
	return newError(CodeTypeMismatch, "type mismatch", line)
}

func MissingReturn(line int) *CompilerError {
	return newError(CodeMissingReturn, "missing return statement", line)
}

func NotImplemented(line int) *CompilerError {
	return newError(CodeNotImplemented, "not implemented", line)
}
