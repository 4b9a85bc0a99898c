package reorder

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/kailas-cloud/kwsearch/internal/domain"
)

// --- Mocks ---

type item struct {
	id        string
	position  int
	container string
}

func (i item) ID() string        { return i.id }
func (i item) Position() int     { return i.position }
func (i item) Container() string { return i.container }

type mockStore struct {
	items       []item
	peersErr    error
	renumberErr error
	renumbered  int
}

func (m *mockStore) Peers(_ context.Context, container string) ([]item, error) {
	if m.peersErr != nil {
		return nil, m.peersErr
	}
	var out []item
	for _, it := range m.items {
		if it.container == container {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].position < out[b].position })
	return out, nil
}

func (m *mockStore) Renumber(_ context.Context, container string, ids []string) error {
	if m.renumberErr != nil {
		return m.renumberErr
	}
	m.renumbered++
	for pos, id := range ids {
		for i := range m.items {
			if m.items[i].id == id && m.items[i].container == container {
				m.items[i].position = pos
			}
		}
	}
	return nil
}

func (m *mockStore) order(container string) []string {
	peers, _ := m.Peers(context.Background(), container)
	out := make([]string, len(peers))
	for i, p := range peers {
		out[i] = p.id
	}
	return out
}

func newStore() *mockStore {
	return &mockStore{items: []item{
		{"a", 0, "alice"},
		{"b", 1, "alice"},
		{"c", 2, "alice"},
		{"d", 3, "alice"},
		{"x", 0, "bob"},
	}}
}

// --- Tests ---

func TestNext(t *testing.T) {
	svc := New[item](newStore())
	ctx := context.Background()

	if n, err := svc.Next(ctx, "alice"); err != nil || n != 4 {
		t.Errorf("Next(alice) = %d, %v; want 4", n, err)
	}
	if n, err := svc.Next(ctx, "carol"); err != nil || n != 0 {
		t.Errorf("Next(carol) = %d, %v; want 0", n, err)
	}
}

func TestNext_Gap(t *testing.T) {
	store := &mockStore{items: []item{{"a", 0, "alice"}, {"b", 7, "alice"}}}
	if n, _ := New[item](store).Next(context.Background(), "alice"); n != 8 {
		t.Errorf("Next = %d, want 8", n)
	}
}

func TestSort(t *testing.T) {
	store := newStore()
	svc := New[item](store)

	got, err := svc.Sort(context.Background(), "alice", []string{"c", "a"})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := []string{"c", "a", "b", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sort = %v, want %v", got, want)
	}
	if o := store.order("alice"); !reflect.DeepEqual(o, want) {
		t.Errorf("stored order = %v, want %v", o, want)
	}
	if o := store.order("bob"); !reflect.DeepEqual(o, []string{"x"}) {
		t.Errorf("other container changed: %v", o)
	}
}

func TestSort_Errors(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr error
	}{
		{"empty", nil, domain.ErrInvalidRequest},
		{"unknown", []string{"a", "zzz"}, domain.ErrNotFound},
		{"other container", []string{"x"}, domain.ErrNotFound},
		{"duplicate", []string{"a", "a"}, domain.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			_, err := New[item](store).Sort(context.Background(), "alice", tt.ids)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if store.renumbered != 0 {
				t.Error("store renumbered on error")
			}
		})
	}
}

func TestSort_StoreError(t *testing.T) {
	boom := errors.New("boom")
	store := newStore()
	store.renumberErr = boom
	if _, err := New[item](store).Sort(context.Background(), "alice", []string{"b"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}

	store = newStore()
	store.peersErr = boom
	if _, err := New[item](store).Next(context.Background(), "alice"); !errors.Is(err, boom) {
		t.Errorf("Next err = %v, want boom", err)
	}
}

func TestCompact(t *testing.T) {
	store := &mockStore{items: []item{
		{"a", 0, "alice"},
		{"c", 2, "alice"},
		{"d", 5, "alice"},
	}}
	svc := New[item](store)

	if err := svc.Compact(context.Background(), "alice"); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	for i, it := range store.items {
		if it.position != i {
			t.Errorf("%s position = %d, want %d", it.id, it.position, i)
		}
	}

	if err := svc.Compact(context.Background(), "alice"); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	if store.renumbered != 1 {
		t.Errorf("renumbered %d times, want 1 (already dense)", store.renumbered)
	}
}
