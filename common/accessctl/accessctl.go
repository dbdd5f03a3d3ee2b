// Package accessctl implements role based authorization of callers against
// a configured admin, an optional owner and explicit allow-lists.
package accessctl

import "fmt"

// Subject is an access control subject, the address of a caller.
//
// The empty subject denotes an unset role or allow-list entry and never
// matches a caller.
type Subject string

// IsSet returns true iff the subject is not empty.
func (s Subject) IsSet() bool {
	return s != ""
}

// ModeKind is the kind of an authorization mode.
type ModeKind uint8

const (
	// KindAny allows every caller.
	KindAny ModeKind = iota
	// KindAdmin allows the admin only.
	KindAdmin
	// KindAdminOrOwner allows the admin and the owner.
	KindAdminOrOwner
	// KindSpecified allows the callers on the allow-list.
	KindSpecified
	// KindAdminOrOwnerOrSpecified allows the admin, the owner and the
	// callers on the allow-list.
	KindAdminOrOwnerOrSpecified
	// KindAdminOrSpecified allows the admin and the callers on the
	// allow-list.
	KindAdminOrSpecified
)

// String returns a string representation of a mode kind.
func (k ModeKind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindAdmin:
		return "admin"
	case KindAdminOrOwner:
		return "admin or owner"
	case KindSpecified:
		return "specified"
	case KindAdminOrOwnerOrSpecified:
		return "admin or owner or specified"
	case KindAdminOrSpecified:
		return "admin or specified"
	default:
		return fmt.Sprintf("[unknown mode: %d]", uint8(k))
	}
}

// Mode is an authorization mode.
type Mode struct {
	Kind      ModeKind
	AllowList []Subject
}

// Any is the mode that allows every caller.
func Any() Mode {
	return Mode{Kind: KindAny}
}

// Admin is the mode that allows the admin only.
func Admin() Mode {
	return Mode{Kind: KindAdmin}
}

// AdminOrOwner is the mode that allows the admin and the owner.
func AdminOrOwner() Mode {
	return Mode{Kind: KindAdminOrOwner}
}

// Specified is the mode that allows the listed subjects.
func Specified(allowList ...Subject) Mode {
	return Mode{Kind: KindSpecified, AllowList: allowList}
}

// AdminOrOwnerOrSpecified is the mode that allows the admin, the owner and
// the listed subjects.
func AdminOrOwnerOrSpecified(allowList ...Subject) Mode {
	return Mode{Kind: KindAdminOrOwnerOrSpecified, AllowList: allowList}
}

// AdminOrSpecified is the mode that allows the admin and the listed
// subjects.
func AdminOrSpecified(allowList ...Subject) Mode {
	return Mode{Kind: KindAdminOrSpecified, AllowList: allowList}
}

// Roles are the configured privileged subjects.
type Roles struct {
	// Admin is the ultimate authority.
	Admin Subject
	// Owner is the delegated authority, it may be unset.
	Owner Subject
}

// IsAllowed returns true iff the caller passes the given mode.
func (r Roles) IsAllowed(caller Subject, mode Mode) bool {
	if !caller.IsSet() {
		return false
	}

	isAdmin := r.Admin.IsSet() && caller == r.Admin
	isOwner := r.Owner.IsSet() && caller == r.Owner

	switch mode.Kind {
	case KindAny:
		return true
	case KindAdmin:
		return isAdmin
	case KindAdminOrOwner:
		return isAdmin || isOwner
	case KindSpecified:
		return mode.isListed(caller)
	case KindAdminOrOwnerOrSpecified:
		return isAdmin || isOwner || mode.isListed(caller)
	case KindAdminOrSpecified:
		return isAdmin || mode.isListed(caller)
	default:
		return false
	}
}

func (m Mode) isListed(caller Subject) bool {
	for _, s := range m.AllowList {
		if s.IsSet() && s == caller {
			return true
		}
	}
	return false
}
