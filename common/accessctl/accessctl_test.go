package accessctl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	const (
		admin    Subject = "admin"
		owner    Subject = "owner"
		listed   Subject = "listed"
		stranger Subject = "stranger"
	)

	withOwner := Roles{Admin: admin, Owner: owner}
	noOwner := Roles{Admin: admin}

	for _, tc := range []struct {
		roles   Roles
		caller  Subject
		mode    Mode
		allowed bool
		msg     string
	}{
		{withOwner, stranger, Any(), true, "any allows strangers"},
		{withOwner, "", Any(), false, "empty caller is never allowed"},
		{withOwner, admin, Admin(), true, "admin mode allows admin"},
		{withOwner, owner, Admin(), false, "admin mode rejects owner"},
		{withOwner, owner, AdminOrOwner(), true, "owner is allowed"},
		{noOwner, owner, AdminOrOwner(), false, "unset owner fails the owner branch"},
		{noOwner, admin, AdminOrOwner(), true, "admin allowed without owner"},
		{withOwner, listed, Specified(listed), true, "listed subject"},
		{withOwner, admin, Specified(listed), false, "specified excludes admin"},
		{withOwner, stranger, Specified("", listed), false, "unset entries are ignored"},
		{noOwner, "", Specified(""), false, "unset entry never matches"},
		{withOwner, listed, AdminOrOwnerOrSpecified(listed), true, "listed in combined mode"},
		{withOwner, owner, AdminOrOwnerOrSpecified(), true, "owner in combined mode"},
		{withOwner, stranger, AdminOrOwnerOrSpecified(listed), false, "stranger in combined mode"},
		{withOwner, owner, AdminOrSpecified(listed), false, "owner not part of admin or specified"},
		{withOwner, listed, AdminOrSpecified(listed), true, "listed in admin or specified"},
		{withOwner, admin, Mode{Kind: ModeKind(200)}, false, "unknown mode denies"},
	} {
		require.Equal(t, tc.allowed, tc.roles.IsAllowed(tc.caller, tc.mode), tc.msg)
	}
}
