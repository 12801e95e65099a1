package plugin

import (
	"errors"
	"testing"

	apperrors "github.com/skillsenselab/hostagent/errors"
)

type fakePlugin struct {
	name string
}

func (p *fakePlugin) Name() string { return p.name }

func factoryFor(name string) Factory[*fakePlugin] {
	return func() (*fakePlugin, error) { return &fakePlugin{name: name}, nil }
}

func TestLoadRegistersInOrder(t *testing.T) {
	r := NewRegistry[*fakePlugin]("test")
	err := r.Load([]Factory[*fakePlugin]{factoryFor("a"), factoryFor("b"), factoryFor("c")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	names := r.Names()
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestDuplicateKeepsFirst(t *testing.T) {
	first := &fakePlugin{name: "svc"}
	second := &fakePlugin{name: "svc"}

	r := NewRegistry[*fakePlugin]("test")
	if err := r.Load([]Factory[*fakePlugin]{
		func() (*fakePlugin, error) { return first, nil },
		func() (*fakePlugin, error) { return second, nil },
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	got, ok := r.Get("svc")
	if !ok {
		t.Fatal("Get(svc) missing")
	}
	if got != first {
		t.Error("expected the first registration to win")
	}
}

func TestFactoryErrorIsolated(t *testing.T) {
	r := NewRegistry[*fakePlugin]("test")
	if err := r.Load([]Factory[*fakePlugin]{
		factoryFor("ok1"),
		func() (*fakePlugin, error) { return nil, errors.New("boom") },
		factoryFor("ok2"),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if _, ok := r.Get("ok2"); !ok {
		t.Error("plugin after the failing factory should still load")
	}
}

func TestFactoryPanicIsolated(t *testing.T) {
	r := NewRegistry[*fakePlugin]("test")
	if err := r.Load([]Factory[*fakePlugin]{
		func() (*fakePlugin, error) { panic("bad init") },
		factoryFor("survivor"),
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, ok := r.Get("survivor"); !ok {
		t.Error("panicking factory must not abort the rest")
	}
}

func TestInstantiatePanicYieldsInternalError(t *testing.T) {
	_, err := instantiate[*fakePlugin](func() (*fakePlugin, error) { panic("bad init") })
	if err == nil {
		t.Fatal("expected error from panicking factory")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeInternal) {
		t.Errorf("panic should surface as an internal error, got %v", err)
	}
}

func TestLoadOnlyOnce(t *testing.T) {
	r := NewRegistry[*fakePlugin]("test")
	if err := r.Load(nil); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if err := r.Load(nil); err == nil {
		t.Error("second Load should fail")
	}
}

func TestFactorySetOrder(t *testing.T) {
	var set FactorySet[*fakePlugin]
	set.Register(factoryFor("x"))
	set.Register(factoryFor("y"))

	r := NewRegistry[*fakePlugin]("test")
	if err := r.Load(set.Factories()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "x" || names[1] != "y" {
		t.Errorf("Names() = %v, want [x y]", names)
	}
}
