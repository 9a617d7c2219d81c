package domain

import "fmt"

// Role is a user's role in the portal.
type Role string

// Supported roles.
const (
	RoleAdmin          Role = "admin"
	RoleClassPresident Role = "class_president"
	RoleStudent        Role = "student"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClassPresident, RoleStudent:
		return true
	}
	return false
}

// AuthContext identifies the caller of a service operation. It is built by
// the transport layer from a verified token and passed explicitly; services
// never read it from ambient state.
type AuthContext struct {
	UserID      string      `json:"user_id"`
	Username    string      `json:"username"`
	Role        Role        `json:"role"`
	ClassroomID ClassroomID `json:"classroom_id,omitempty"`
}

// IsAdmin reports whether the caller is an administrator.
func (a AuthContext) IsAdmin() bool { return a.Role == RoleAdmin }

// CanAccessClassroom reports whether the caller may act on the classroom.
// Admins may act on any classroom; everyone else only on their own.
func (a AuthContext) CanAccessClassroom(id ClassroomID) bool {
	return a.IsAdmin() || (a.ClassroomID != "" && a.ClassroomID == id)
}

// RequireClassroom returns an AccessError when the caller may not act on id.
func (a AuthContext) RequireClassroom(id ClassroomID) error {
	if a.CanAccessClassroom(id) {
		return nil
	}
	return &AccessError{UserID: a.UserID, Resource: fmt.Sprintf("classroom/%s", id), Err: ErrForbidden}
}

// User is a portal account. PasswordHash is a bcrypt hash and is never
// serialized.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	FullName     string      `json:"full_name"`
	Role         Role        `json:"role"`
	ClassroomID  ClassroomID `json:"classroom_id,omitempty"`
}

// AuthContext returns the caller identity for this user.
func (u User) AuthContext() AuthContext {
	return AuthContext{UserID: u.ID, Username: u.Username, Role: u.Role, ClassroomID: u.ClassroomID}
}

// RequireAuthenticated returns an AccessError unless the caller carries a
// user ID and a known role.
func (a AuthContext) RequireAuthenticated() error {
	if a.UserID == "" || !a.Role.Valid() {
		return &AccessError{UserID: a.UserID, Resource: "session", Err: ErrUnauthenticated}
	}
	return nil
}

// RequireAdmin returns an AccessError unless the caller is an administrator.
func (a AuthContext) RequireAdmin(resource string) error {
	if err := a.RequireAuthenticated(); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return &AccessError{UserID: a.UserID, Resource: resource, Err: ErrForbidden}
	}
	return nil
}
