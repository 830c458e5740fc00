package application

// RequireManager succeeds iff the principal holds the manager role. Booking
// decisions are gated on this predicate before any lookup happens.
func RequireManager(principal Principal) error {
	if principal.Role != RoleManager {
		return ErrUnauthorized
	}
	return nil
}
