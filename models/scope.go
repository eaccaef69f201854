package models

// Scope limits reads to the acting principal's branch. Derived once from the
// authenticated user in middleware and threaded explicitly into list queries,
// instead of being re-derived per call site.
type Scope struct {
	BranchID string
	All      bool
}

// ScopeFor derives the scope for a principal. Global admins and users with
// no branch assignment see everything.
func ScopeFor(u *User) Scope {
	if u.IsAdmin || u.BranchID == nil || *u.BranchID == "" {
		return Scope{All: true}
	}
	return Scope{BranchID: *u.BranchID}
}

// Allows reports whether a row with the given branch is visible under this
// scope. Rows with no branch are visible to everyone.
func (s Scope) Allows(branchID *string) bool {
	if s.All {
		return true
	}
	if branchID == nil || *branchID == "" {
		return true
	}
	return *branchID == s.BranchID
}
