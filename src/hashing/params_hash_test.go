package hashing

import (
	"regexp"
	"testing"
)

func TestHashIsStableAcrossInsertionOrder(t *testing.T) {
	a := Params{}
	a["run_id"] = "0d9e8c1a-3f7b-4f2e-a8f1-111111111111"
	a["scenario_id"] = "adverse"
	a["horizon_months"] = 60
	a["engine_version"] = EngineVersion

	b := Params{}
	b["engine_version"] = EngineVersion
	b["horizon_months"] = 60
	b["scenario_id"] = "adverse"
	b["run_id"] = "0d9e8c1a-3f7b-4f2e-a8f1-111111111111"

	if Hash(a) != Hash(b) {
		t.Fatalf("hash not invariant to key insertion order: %s != %s", Hash(a), Hash(b))
	}
}

func TestHashIsLowercase64Hex(t *testing.T) {
	h := Hash(Params{"run_id": "x", "horizon_months": 12})

	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(h) {
		t.Fatalf("expected 64 lowercase hex chars, got %q", h)
	}
}

func TestHashDistinguishesInputs(t *testing.T) {
	base := Params{"run_id": "r1", "scenario_id": "baseline", "horizon_months": 60}
	variants := []Params{
		{"run_id": "r2", "scenario_id": "baseline", "horizon_months": 60},
		{"run_id": "r1", "scenario_id": "adverse", "horizon_months": 60},
		{"run_id": "r1", "scenario_id": "baseline", "horizon_months": 12},
	}

	seen := map[string]bool{Hash(base): true}
	for _, v := range variants {
		h := Hash(v)
		if seen[h] {
			t.Fatalf("distinct params %v collided", v)
		}
		seen[h] = true
	}
}

func TestHashHandlesNestedMaps(t *testing.T) {
	a := Params{"config": map[string]interface{}{"alpha": 2.0, "beta": 5.0}}
	b := Params{"config": map[string]interface{}{"beta": 5.0, "alpha": 2.0}}

	if Hash(a) != Hash(b) {
		t.Fatal("nested map key order changed the hash")
	}
}

func TestHashIsRepeatable(t *testing.T) {
	p := Params{"run_id": "r1", "horizon_months": 60}
	first := Hash(p)
	for i := 0; i < 10; i++ {
		if Hash(p) != first {
			t.Fatal("hash changed across invocations with identical input")
		}
	}
}
