// Package payment gates reservation commits behind settlement validation.
// The current implementation is a stand-in that accepts one configured
// code; swapping in a real settlement integration only requires another
// Validator, the coordinator's contract does not change.
package payment

// Validator decides whether a settlement code authorizes a commit. It is
// a pure predicate with no side effects.
type Validator interface {
	Validate(code string) bool
}

// FixedCode accepts exactly one code, injected from deployment
// configuration (never hardcoded).
type FixedCode struct {
	code string
}

// NewFixedCode returns a Validator accepting only the given code.
func NewFixedCode(code string) *FixedCode {
	return &FixedCode{code: code}
}

// Validate reports whether the supplied code matches the configured one.
// The empty string never validates, even if configuration is empty.
func (v *FixedCode) Validate(code string) bool {
	return code != "" && code == v.code
}
