package savedsearch

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Valid(t *testing.T) {
	s, err := New("id-1", "alice", " Does ", "username:doe", "created_at desc", 20, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "Does" {
		t.Errorf("Name() = %q, want trimmed", s.Name())
	}
	if s.Container() != "alice" || s.Owner() != "alice" {
		t.Errorf("Container() = %q, Owner() = %q", s.Container(), s.Owner())
	}
	if s.Position() != 0 {
		t.Errorf("Position() = %d, want 0", s.Position())
	}
	moved := s.WithPosition(3)
	if moved.Position() != 3 || s.Position() != 0 {
		t.Error("WithPosition should return a modified copy")
	}
}

func TestNew_EmptyQueryAllowed(t *testing.T) {
	if _, err := New("id-1", "alice", "everyone", "", "", 0, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		build   func() error
		wantErr string
	}{
		{"no id", func() error {
			_, err := New("", "alice", "n", "", "", 0, time.Now())
			return err
		}, "ID is required"},
		{"no owner", func() error {
			_, err := New("id", "", "n", "", "", 0, time.Now())
			return err
		}, "owner is required"},
		{"no name", func() error {
			_, err := New("id", "alice", "  ", "", "", 0, time.Now())
			return err
		}, "name is required"},
		{"long name", func() error {
			_, err := New("id", "alice", strings.Repeat("é", MaxNameLength+1), "", "", 0, time.Now())
			return err
		}, "name too long"},
		{"long query", func() error {
			_, err := New("id", "alice", "n", strings.Repeat("q", MaxQueryLength+1), "", 0, time.Now())
			return err
		}, "query too long"},
		{"negative per_page", func() error {
			_, err := New("id", "alice", "n", "", "", -1, time.Now())
			return err
		}, "per_page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
