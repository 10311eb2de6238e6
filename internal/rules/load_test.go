// internal/rules/load_test.go
package rules

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhollis/mailkeeper/internal/types"
)

func TestLoad_Valid(t *testing.T) {
	doc := `{
		"predicate": "ANY",
		"rules": [
			{"field": "subject", "predicate": "contains", "value": "test"},
			{"field": "is_read", "predicate": "equals", "value": "false"}
		],
		"actions": ["mark_read", "move:Archive"]
	}`

	ruleset, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if ruleset.Predicate != types.PredicateAny {
		t.Errorf("Predicate = %q, want ANY", ruleset.Predicate)
	}
	if len(ruleset.Rules) != 2 {
		t.Errorf("len(Rules) = %d, want 2", len(ruleset.Rules))
	}
	if ruleset.Rules[0].Field != "subject" || ruleset.Rules[0].Predicate != "contains" || ruleset.Rules[0].Value != "test" {
		t.Errorf("Rules[0] = %+v, want subject/contains/test", ruleset.Rules[0])
	}
	if len(ruleset.Actions) != 2 || ruleset.Actions[1] != "move:Archive" {
		t.Errorf("Actions = %v, want [mark_read move:Archive]", ruleset.Actions)
	}
}

func TestLoad_DefaultPredicateAll(t *testing.T) {
	doc := `{"rules": [], "actions": []}`

	ruleset, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if ruleset.Predicate != types.PredicateAll {
		t.Errorf("Predicate = %q, want default ALL", ruleset.Predicate)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid json", `{not json`},
		{"top-level array", `[{"field": "subject"}]`},
		{"top-level string", `"rules"`},
		{"missing rules key", `{"actions": []}`},
		{"missing actions key", `{"rules": []}`},
		{"rules not an array", `{"rules": {"field": "subject"}, "actions": []}`},
		{"actions not an array", `{"rules": [], "actions": "mark_read"}`},
		{"predicate not a string", `{"predicate": 7, "rules": [], "actions": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			if !errors.Is(err, types.ErrMalformedRuleset) {
				t.Errorf("Load() error = %v, want wrapped ErrMalformedRuleset", err)
			}
		})
	}
}

func TestLoad_DoesNotValidateConditions(t *testing.T) {
	// Shape validation only; condition enumeration checks happen in the
	// orchestration pre-validation pass.
	doc := `{"rules": [{"field": "bogus", "predicate": "nope", "value": ""}], "actions": []}`

	ruleset, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if len(ruleset.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(ruleset.Rules))
	}
	if err := Validate(ruleset.Rules[0]); !errors.Is(err, types.ErrInvalidCondition) {
		t.Errorf("Validate() on loaded bogus rule = %v, want ErrInvalidCondition", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	doc := `{"predicate": "ALL", "rules": [{"field": "sender", "predicate": "contains", "value": "billing"}], "actions": ["mark_read"]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	ruleset, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v, want nil", err)
	}
	if len(ruleset.Rules) != 1 || ruleset.Rules[0].Field != "sender" {
		t.Errorf("LoadFile() rules = %+v", ruleset.Rules)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, types.ErrMalformedRuleset) {
		t.Errorf("LoadFile(missing) error = %v, want wrapped ErrMalformedRuleset", err)
	}
}
