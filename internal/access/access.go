// Package access decides whether a principal may perform an action on a
// resource. Resources without a registered policy are denied.
package access

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/kwsearch/internal/domain"
)

// Actions checked by the service.
const (
	ActionSearch = "search"
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Anonymous is the principal used when authentication is disabled.
var Anonymous = Principal{Name: "anonymous"}

// Principal is the identity behind a request.
type Principal struct {
	Name  string
	Roles []string
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// String returns the principal name.
func (p Principal) String() string { return p.Name }

// Policy decides access for one resource type.
type Policy interface {
	ActionAllowed(action string, requestor Principal) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(action string, requestor Principal) bool

// ActionAllowed calls f.
func (f PolicyFunc) ActionAllowed(action string, requestor Principal) bool {
	return f(action, requestor)
}

// RolePolicy maps an action to the roles allowed to perform it. The role
// "*" admits any principal.
type RolePolicy map[string][]string

// ActionAllowed reports whether requestor holds a role listed for action.
func (p RolePolicy) ActionAllowed(action string, requestor Principal) bool {
	for _, role := range p[strings.ToLower(action)] {
		if role == "*" || requestor.HasRole(role) {
			return true
		}
	}
	return false
}

// Registry maps resource types to policies. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// Register sets the policy for resource, replacing any previous one.
func (r *Registry) Register(resource string, p Policy) error {
	if resource == "" {
		return domain.Misconfigured("access policy resource is required")
	}
	if p == nil {
		return domain.Misconfigured("access policy for %q is nil", resource)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[resource] = p
	return nil
}

// Resources returns the resources with a registered policy, sorted.
func (r *Registry) Resources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.policies))
	for k := range r.policies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ActionAllowed reports whether requestor may perform action on resource.
func (r *Registry) ActionAllowed(action string, requestor Principal, resource string) bool {
	r.mu.RLock()
	p, ok := r.policies[resource]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return p.ActionAllowed(action, requestor)
}

// RequireActionAllowed returns an error wrapping domain.ErrForbidden when
// ActionAllowed is false.
func (r *Registry) RequireActionAllowed(action string, requestor Principal, resource string) error {
	if r.ActionAllowed(action, requestor, resource) {
		return nil
	}
	return domain.NewTransgression(requestor.Name, action, resource)
}

// FromRoles builds a registry of RolePolicy values from a
// resource -> action -> roles table, as loaded from configuration.
func FromRoles(table map[string]map[string][]string) (*Registry, error) {
	reg := NewRegistry()
	for resource, actions := range table {
		p := make(RolePolicy, len(actions))
		for action, roles := range actions {
			p[strings.ToLower(action)] = roles
		}
		if err := reg.Register(resource, p); err != nil {
			return nil, fmt.Errorf("access policy %q: %w", resource, err)
		}
	}
	return reg, nil
}
