// Package identity describes who is viewing the earnings and whether they may see them.
package identity

import "github.com/tourbook/service-earnings/internal/common/auth"

// Identity is the authenticated viewer.
type Identity struct {
	UserID string
	Role   auth.Role
}

// Anonymous is the identity before anyone signs in.
var Anonymous = Identity{}

// IsAuthorizedGuide reports whether earnings may be queried for this identity.
func (i Identity) IsAuthorizedGuide() bool {
	return i.UserID != "" && i.Role == auth.RoleGuide
}
