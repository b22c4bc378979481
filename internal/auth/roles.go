package auth

// Roles recognized by the system.
const (
	// RoleUser is the baseline role every account holds. It is added
	// back by every role mutation and can never be revoked.
	RoleUser = "USER"
	// RoleAdmin grants full administrative access, including role
	// management on other accounts.
	RoleAdmin = "ADMIN"
	// RoleModerator grants limited administrative access.
	RoleModerator = "MODERATOR"
)

var knownRoles = map[string]bool{
	RoleUser:      true,
	RoleAdmin:     true,
	RoleModerator: true,
}

// ValidateRoles reports whether every submitted role is a member of the
// known role enumeration. An empty submission is valid (it is a no-op
// for grant and revoke alike).
func ValidateRoles(roles []string) bool {
	for _, role := range roles {
		if !knownRoles[role] {
			return false
		}
	}
	return true
}

// GrantRoles returns the union of current and granted roles, with the
// baseline role re-asserted. Order is preserved: current roles first,
// then newly granted ones; duplicates are dropped.
func GrantRoles(current, granted []string) []string {
	seen := make(map[string]bool, len(current)+len(granted)+1)
	merged := make([]string, 0, len(current)+len(granted)+1)
	for _, role := range current {
		if !seen[role] {
			seen[role] = true
			merged = append(merged, role)
		}
	}
	for _, role := range granted {
		if !seen[role] {
			seen[role] = true
			merged = append(merged, role)
		}
	}
	if !seen[RoleUser] {
		merged = append(merged, RoleUser)
	}
	return merged
}

// RevokeRoles returns current minus revoked. The baseline role is
// re-added if removal would otherwise drop it.
func RevokeRoles(current, revoked []string) []string {
	drop := make(map[string]bool, len(revoked))
	for _, role := range revoked {
		drop[role] = true
	}
	remaining := make([]string, 0, len(current))
	hasBaseline := false
	for _, role := range current {
		if drop[role] {
			continue
		}
		if role == RoleUser {
			hasBaseline = true
		}
		remaining = append(remaining, role)
	}
	if !hasBaseline {
		remaining = append(remaining, RoleUser)
	}
	return remaining
}

// HasAnyRole reports whether the caller's roles intersect the required
// set. An empty required set means the operation is unrestricted.
func HasAnyRole(held, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range held {
			if have == want {
				return true
			}
		}
	}
	return false
}
