package factory

import (
	"errors"
	"testing"
)

type sample struct {
	Name string
	A    int
}

type sampleConf struct {
	Name string  `json:"name"`
	A    int     `json:"a"`
	B    float64 `json:"b"`
}

func newSampleRegistry(t *testing.T) *Registry[*sample] {
	t.Helper()
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{Name: c.Name, A: c.A}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := newSampleRegistry(t)
	inst, err := reg.Create(ModuleConfig{Type: "s", Name: "first", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 || inst.Name != "first" {
		t.Fatalf("unexpected instance %+v", inst)
	}
}

func TestRegistry_ExplicitNameWins(t *testing.T) {
	reg := newSampleRegistry(t)
	inst, err := reg.Create(ModuleConfig{Type: "s", Name: "outer", Conf: map[string]any{"name": "inner"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.Name != "inner" {
		t.Fatalf("expected inner got %s", inst.Name)
	}
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("expected duplicate error got %v", err)
	}
	if err := reg.Register("z", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected unknown type error got %v", err)
	}
	if got := reg.Types(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("unexpected types %v", got)
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"a": 1, "typo": 2}, &c); err == nil {
		t.Fatal("expected unused key error")
	}
}

func TestDecode_WeakTypes(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"a": "4", "b": 2}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.A != 4 || c.B != 2 {
		t.Fatalf("unexpected %+v", c)
	}
}
