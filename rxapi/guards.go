package rxapi

import "slices"

// LoginRoute is where a user without a session is sent.
const LoginRoute = "/login"

// HasRole reports whether user has exactly role. A nil user has no role.
func HasRole(user *AuthProfile, role Role) bool {
	return user != nil && user.Role == role
}

// HasAnyRole reports whether user holds one of allowed.
func HasAnyRole(user *AuthProfile, allowed ...Role) bool {
	return user != nil && slices.Contains(allowed, user.Role)
}

func IsAuthenticated(user *AuthProfile) bool {
	return user != nil
}

// DefaultRouteByRole is the landing page for role.
func DefaultRouteByRole(role Role) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleDoctor:
		return "/doctor/prescriptions"
	case RolePatient:
		return "/patient/prescriptions"
	default:
		return LoginRoute
	}
}

// CanAccessRoute reports whether user may open a view restricted to allowed.
func CanAccessRoute(user *AuthProfile, allowed ...Role) bool {
	return HasAnyRole(user, allowed...)
}
