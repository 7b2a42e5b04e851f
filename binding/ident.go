package binding

import "fmt"

// ValidateName reports whether name can be emitted verbatim as a script
// identifier. The whole name must match [A-Za-z_][A-Za-z0-9_]*; the check is
// byte-wise, so any non-ASCII byte is rejected.
//
// Reserved words such as "if" pass the grammar; the engine rejects them when
// the prologue is parsed.
func ValidateName(name string) error {
	if name == "" {
		return &NameError{Name: name, Reason: "name is empty"}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return &NameError{Name: name, Reason: "name starts with a digit"}
			}
		default:
			return &NameError{Name: name, Reason: fmt.Sprintf("byte %q at offset %d is not allowed", c, i)}
		}
	}
	return nil
}

// IsValidName is the boolean form of ValidateName.
func IsValidName(name string) bool {
	return ValidateName(name) == nil
}
