package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	args := []any{"ABCL", 42, true}
	kwargs := map[string]any{"limit": 100, "offset": 0}

	k1, err := DeriveKey("market.eod", args, kwargs)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	k2, err := DeriveKey("market.eod", args, kwargs)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if k1 != k2 {
		t.Errorf("Keys differ for identical input: %s vs %s", k1, k2)
	}
	if !strings.HasPrefix(k1, "gw:market.eod:") {
		t.Errorf("Key missing operation prefix: %s", k1)
	}
}

func TestDeriveKey_KwargOrderIndependent(t *testing.T) {
	// Maps built in different insertion order must hash identically.
	a := map[string]any{}
	a["limit"] = 100
	a["offset"] = 50
	a["symbols"] = "ABCL"

	b := map[string]any{}
	b["symbols"] = "ABCL"
	b["offset"] = 50
	b["limit"] = 100

	k1, err := DeriveKey("market.eod", nil, a)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	k2, err := DeriveKey("market.eod", nil, b)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if k1 != k2 {
		t.Errorf("Kwarg order affected key: %s vs %s", k1, k2)
	}
}

func TestDeriveKey_DistinctRequests(t *testing.T) {
	tests := []struct {
		name   string
		opA    string
		argsA  []any
		opB    string
		argsB  []any
	}{
		{
			name:  "different symbols",
			opA:   "market.eod", argsA: []any{"ABCL"},
			opB:   "market.eod", argsB: []any{"MRNA"},
		},
		{
			name:  "different operations same args",
			opA:   "market.eod", argsA: []any{"ABCL"},
			opB:   "market.dividends", argsB: []any{"ABCL"},
		},
		{
			name:  "argument boundary ambiguity",
			opA:   "news.search", argsA: []any{"ab", "c"},
			opB:   "news.search", argsB: []any{"a", "bc"},
		},
		{
			name:  "type distinction",
			opA:   "op", argsA: []any{"1"},
			opB:   "op", argsB: []any{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k1, err := DeriveKey(tt.opA, tt.argsA, nil)
			if err != nil {
				t.Fatalf("DeriveKey failed: %v", err)
			}
			k2, err := DeriveKey(tt.opB, tt.argsB, nil)
			if err != nil {
				t.Fatalf("DeriveKey failed: %v", err)
			}
			if k1 == k2 {
				t.Errorf("Distinct requests collided: %s", k1)
			}
		})
	}
}

func TestDeriveKey_TimeNormalization(t *testing.T) {
	utc := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	est := utc.In(time.FixedZone("EST", -5*3600))

	k1, err := DeriveKey("market.eod", []any{utc}, nil)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	k2, err := DeriveKey("market.eod", []any{est}, nil)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}

	if k1 != k2 {
		t.Errorf("Same instant in different zones produced different keys")
	}
}

func TestDeriveKey_NestedValues(t *testing.T) {
	k1, err := DeriveKey("op", []any{[]string{"a", "b"}, map[string]any{"x": 1}}, nil)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	k2, err := DeriveKey("op", []any{[]string{"b", "a"}, map[string]any{"x": 1}}, nil)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	if k1 == k2 {
		t.Error("Slice element order should affect the key")
	}
}

func TestDeriveKey_Unserializable(t *testing.T) {
	_, err := DeriveKey("op", []any{make(chan int)}, nil)
	if !errors.Is(err, ErrUnserializable) {
		t.Errorf("Expected ErrUnserializable, got %v", err)
	}

	_, err = DeriveKey("op", nil, map[string]any{"fn": func() {}})
	if !errors.Is(err, ErrUnserializable) {
		t.Errorf("Expected ErrUnserializable for func kwarg, got %v", err)
	}

	_, err = DeriveKey("", []any{"x"}, nil)
	if !errors.Is(err, ErrUnserializable) {
		t.Errorf("Expected ErrUnserializable for empty operation, got %v", err)
	}
}
