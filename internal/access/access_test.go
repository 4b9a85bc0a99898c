package access

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/kwsearch/internal/domain"
)

var (
	admin  = Principal{Name: "root", Roles: []string{"admin", "reader"}}
	reader = Principal{Name: "alice", Roles: []string{"reader"}}
	nobody = Principal{Name: "mallory"}
)

func TestRolePolicy(t *testing.T) {
	p := RolePolicy{
		"search": {"reader"},
		"delete": {"admin"},
		"read":   {"*"},
	}
	tests := []struct {
		action string
		who    Principal
		want   bool
	}{
		{"search", reader, true},
		{"SEARCH", reader, true},
		{"search", nobody, false},
		{"delete", reader, false},
		{"delete", admin, true},
		{"read", nobody, true},
		{"update", admin, false},
	}
	for _, tt := range tests {
		if got := p.ActionAllowed(tt.action, tt.who); got != tt.want {
			t.Errorf("ActionAllowed(%s, %s) = %v, want %v", tt.action, tt.who, got, tt.want)
		}
	}
}

func TestRegistry_DefaultDeny(t *testing.T) {
	r := NewRegistry()
	if r.ActionAllowed(ActionSearch, admin, "user") {
		t.Error("unregistered resource should be denied")
	}

	err := r.RequireActionAllowed(ActionSearch, admin, "user")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	var te *domain.TransgressionError
	if !errors.As(err, &te) {
		t.Fatalf("err = %T, want *TransgressionError", err)
	}
	if te.Requestor != "root" || te.Action != ActionSearch || te.Resource != "user" {
		t.Errorf("transgression = %+v", te)
	}
	if !strings.Contains(err.Error(), `"root" is not allowed to perform "search" on "user"`) {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("user", RolePolicy{ActionSearch: {"reader"}}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.RequireActionAllowed(ActionSearch, reader, "user"); err != nil {
		t.Errorf("reader search: %v", err)
	}
	if r.ActionAllowed(ActionSearch, nobody, "user") {
		t.Error("principal without role allowed")
	}

	allowAll := PolicyFunc(func(string, Principal) bool { return true })
	if err := r.Register("user", allowAll); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !r.ActionAllowed(ActionDelete, nobody, "user") {
		t.Error("replacement policy not used")
	}

	if err := r.Register("", allowAll); !errors.Is(err, domain.ErrMisconfigured) {
		t.Errorf("empty resource err = %v", err)
	}
	if err := r.Register("x", nil); !errors.Is(err, domain.ErrMisconfigured) {
		t.Errorf("nil policy err = %v", err)
	}
}

func TestFromRoles(t *testing.T) {
	r, err := FromRoles(map[string]map[string][]string{
		"user":         {"Search": {"reader"}},
		"saved_search": {"read": {"*"}, "create": {"reader"}},
	})
	if err != nil {
		t.Fatalf("FromRoles: %v", err)
	}
	if got := r.Resources(); len(got) != 2 || got[0] != "saved_search" || got[1] != "user" {
		t.Errorf("Resources() = %v", got)
	}
	if !r.ActionAllowed(ActionSearch, reader, "user") {
		t.Error("configured action names are case-insensitive")
	}
	if r.ActionAllowed(ActionCreate, nobody, "saved_search") {
		t.Error("create should need the reader role")
	}
	if !r.ActionAllowed(ActionRead, nobody, "saved_search") {
		t.Error("wildcard role should admit anyone")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register("user", RolePolicy{ActionSearch: {"reader"}})
		}()
		go func() {
			defer wg.Done()
			_ = r.ActionAllowed(ActionSearch, reader, "user")
		}()
	}
	wg.Wait()
	if !r.ActionAllowed(ActionSearch, reader, "user") {
		t.Error("policy lost")
	}
}
