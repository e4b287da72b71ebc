package domain

import (
	"context"
	"fmt"
	"time"
)

// Capability is a named privilege checked before privileged operations.
type Capability string

const (
	CapManageOptions Capability = "manage_options"
	CapUploadFiles   Capability = "upload_files"
)

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleAuthor        Role = "author"
	RoleSubscriber    Role = "subscriber"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdministrator: {CapManageOptions, CapUploadFiles},
	RoleEditor:        {CapUploadFiles},
	RoleAuthor:        {CapUploadFiles},
	RoleSubscriber:    nil,
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleCapabilities[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is a dashboard account allowed to call the trigger API.
type User struct {
	Name      string
	Role      Role
	CreatedAt time.Time
}

type UserRepository interface {
	UpsertUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, name string) (*User, error)
}

// Principal is an authenticated caller.
type Principal struct {
	Name string
	Role Role
}

// Can reports whether the principal's role grants capability c.
func (p *Principal) Can(c Capability) bool {
	if p == nil {
		return false
	}
	for _, granted := range roleCapabilities[p.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

// Authorizer resolves a caller-supplied token to a principal.
type Authorizer interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}
