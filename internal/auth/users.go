package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Role is the coarse permission level of a user
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSupervisor Role = "supervisor"
	RoleOperator   Role = "operator"
	RoleViewer     Role = "viewer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSupervisor, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// User is an authenticated principal
type User struct {
	ID       string
	Username string
	Role     Role
}

// Credential seeds one user of the directory
type Credential struct {
	Username string
	Password string
	Role     Role
}

// DemoCredentials are the built-in accounts, one per role
var DemoCredentials = []Credential{
	{Username: "admin", Password: "admin123", Role: RoleAdmin},
	{Username: "manager", Password: "manager123", Role: RoleManager},
	{Username: "supervisor", Password: "supervisor123", Role: RoleSupervisor},
	{Username: "operator", Password: "operator123", Role: RoleOperator},
	{Username: "viewer", Password: "viewer123", Role: RoleViewer},
}

type account struct {
	user User
	hash []byte
}

// UserDirectory authenticates users against bcrypt password hashes
type UserDirectory struct {
	mu       sync.RWMutex
	accounts map[string]account
}

// NewUserDirectory hashes the given credentials with bcrypt at cost
func NewUserDirectory(cost int, credentials ...Credential) (*UserDirectory, error) {
	d := &UserDirectory{accounts: make(map[string]account, len(credentials))}
	for _, c := range credentials {
		if !c.Role.IsValid() {
			return nil, fmt.Errorf("user %s: unknown role %q", c.Username, c.Role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", c.Username, err)
		}
		d.accounts[c.Username] = account{
			user: User{ID: "user-" + c.Username, Username: c.Username, Role: c.Role},
			hash: hash,
		}
	}
	return d, nil
}

// Authenticate returns the user when the password matches
func (d *UserDirectory) Authenticate(username, password string) (User, error) {
	d.mu.RLock()
	acc, ok := d.accounts[username]
	d.mu.RUnlock()
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}
