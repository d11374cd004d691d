package domain

// CanViewOwnerControls decides whether owner-only affordances are shown for
// an entry. Admins, directors and operational directors see them on every
// entry. Everyone else, project managers included, sees them only on entries
// they own. An entry without an owner is a fresh draft of the current user.
//
// This gates client affordances only. The server authorizes every call.
func CanViewOwnerControls(role Role, entryOwnerID, currentUserID string) bool {
	if role.HasElevatedVisibility() {
		return true
	}
	if entryOwnerID == "" {
		return true
	}
	return currentUserID != "" && entryOwnerID == currentUserID
}
