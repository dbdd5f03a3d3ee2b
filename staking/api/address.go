package api

import (
	"strings"
	"unicode"

	"github.com/cryptogopniks/GopStake/common/accessctl"
)

// Address identifies an account, a contract or a collection.
type Address string

// IsValid performs a basic well-formedness check of the address.
func (a Address) IsValid() bool {
	return a != "" && strings.IndexFunc(string(a), unicode.IsSpace) < 0
}

// String returns the string representation of the address.
func (a Address) String() string {
	return string(a)
}

// Subject returns the access control subject for the address.
func (a Address) Subject() accessctl.Subject {
	return accessctl.Subject(a)
}

// OptionalSubject returns the access control subject for an optional
// address, the unset subject for nil.
func OptionalSubject(a *Address) accessctl.Subject {
	if a == nil {
		return ""
	}
	return a.Subject()
}
