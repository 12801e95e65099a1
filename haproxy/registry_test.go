package haproxy

import (
	"testing"

	"github.com/skillsenselab/hostagent/errors"
)

func testRegistry(names ...string) *Registry {
	clients := make([]*Client, len(names))
	for i, name := range names {
		clients[i] = NewClientWithTransport(name, &stubTransport{})
	}
	return NewRegistryWithClients(clients...)
}

func TestResolveNamed(t *testing.T) {
	r := testRegistry("edge", "stats")

	c, err := r.Resolve("stats")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c.Name() != "stats" {
		t.Errorf("resolved %q, want stats", c.Name())
	}

	_, err = r.Resolve("missing")
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown name: error = %v, want NOT_FOUND", err)
	}
}

func TestResolveEmptyPrefersDefault(t *testing.T) {
	r := testRegistry("edge", DefaultInstanceName)

	c, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c.Name() != DefaultInstanceName {
		t.Errorf("resolved %q, want default", c.Name())
	}
}

func TestResolveEmptySoleInstance(t *testing.T) {
	r := testRegistry("edge")

	c, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if c.Name() != "edge" {
		t.Errorf("resolved %q, want edge", c.Name())
	}
}

func TestResolveEmptyAmbiguous(t *testing.T) {
	r := testRegistry("edge", "stats")

	_, err := r.Resolve("")
	if !errors.HasCode(err, errors.ErrCodeValidation) {
		t.Errorf("ambiguous resolve: error = %v, want VALIDATION_ERROR", err)
	}
}

func TestResolveEmptyNoInstances(t *testing.T) {
	r := testRegistry()

	_, err := r.Resolve("")
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		t.Errorf("empty registry: error = %v, want NOT_FOUND", err)
	}
}

func TestNewRegistryExcludesUnreachable(t *testing.T) {
	// Neither socket exists, so both instances fail validation and the
	// registry comes up empty rather than erroring.
	r := NewRegistry(Config{Instances: "a=/nonexistent/a.sock,b=/nonexistent/b.sock"})
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
	if names := r.Names(); len(names) != 0 {
		t.Errorf("Names = %v, want empty", names)
	}
}
