package auth

import (
	"fmt"
	"strings"
)

// Identity is the caller resolved from request credentials. Name is a stable
// identifier for audit records; Roles gates access to protected routes.
type Identity struct {
	Name  string
	Roles []string
}

func (i Identity) HasRole(role string) bool {
	for _, candidate := range i.Roles {
		if candidate == role {
			return true
		}
	}
	return false
}

type Validator interface {
	Validate(apiKey string) (Identity, bool)
}

// StaticAPIKeyValidator resolves identities from a fixed key set, configured
// as "key:name:role|role" entries.
type StaticAPIKeyValidator struct {
	identities map[string]Identity
}

func NewStaticAPIKeyValidator(entries []string) (*StaticAPIKeyValidator, error) {
	identities := make(map[string]Identity, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("auth: invalid static key entry %q", entry)
		}
		key := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])
		if key == "" || name == "" {
			return nil, fmt.Errorf("auth: invalid static key entry %q", entry)
		}
		var roles []string
		for _, role := range strings.Split(parts[2], "|") {
			role = strings.TrimSpace(role)
			if role != "" {
				roles = append(roles, role)
			}
		}
		if len(roles) == 0 {
			return nil, fmt.Errorf("auth: static key entry %q has no roles", entry)
		}
		if _, exists := identities[key]; exists {
			return nil, fmt.Errorf("auth: duplicate static key for %q", name)
		}
		identities[key] = Identity{Name: name, Roles: roles}
	}
	return &StaticAPIKeyValidator{identities: identities}, nil
}

func (v *StaticAPIKeyValidator) Validate(apiKey string) (Identity, bool) {
	identity, ok := v.identities[apiKey]
	return identity, ok
}
