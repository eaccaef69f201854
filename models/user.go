package models

import "time"

const UserTable = "inv_users"

// Roles. Branch admins approve selections; clerks pick units and issue;
// everyone else is a requestor.
const (
	RoleRequestor   = "requestor"
	RoleClerk       = "clerk"
	RoleBranchAdmin = "branch_admin"
)

type User struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string  `gorm:"size:120;uniqueIndex;not null" json:"username"`
	DisplayName string  `gorm:"size:200" json:"displayName"`
	Email       string  `gorm:"size:200" json:"email"`
	Role        string  `gorm:"size:20;not null;default:'requestor'" json:"role"`
	BranchID    *string `gorm:"type:uuid;index" json:"branchId,omitempty"`
	IsAdmin     bool    `gorm:"not null;default:false" json:"isAdmin"`

	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	LastLoginIP string     `gorm:"size:64" json:"-"`
	LastLoginUA string     `gorm:"size:300" json:"-"`
	LastSeenAt  *time.Time `json:"lastSeenAt,omitempty"`
	LoginCount  int        `json:"loginCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

// CanReview reports whether the user may run the clerk side of the
// selection workflow.
func (u *User) CanReview() bool {
	return u.IsAdmin || u.Role == RoleClerk || u.Role == RoleBranchAdmin
}

// CanApprove reports whether the user may resolve a pending selection.
func (u *User) CanApprove() bool {
	return u.IsAdmin || u.Role == RoleBranchAdmin
}
