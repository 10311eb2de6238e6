// internal/rules/load.go
package rules

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dhollis/mailkeeper/internal/types"
)

/*
 * Ruleset document loading.
 *
 * Parses the JSON rule document and validates its shape: top-level object
 * with "rules" and "actions" keys, optional "predicate" defaulting to ALL.
 * Individual conditions are NOT validated here; the orchestration step runs
 * Validate over every condition before evaluation begins.
 *
 * The two-stage decode (map of RawMessage, then per-key unmarshal) exists to
 * distinguish an absent key from an empty array, which a single struct
 * decode cannot do.
 */

// Load parses a ruleset document from r. All returned errors wrap
// types.ErrMalformedRuleset.
func Load(r io.Reader) (types.Ruleset, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return types.Ruleset{}, fmt.Errorf("%w: document must be a JSON object: %v", types.ErrMalformedRuleset, err)
	}

	rulesRaw, ok := raw["rules"]
	if !ok {
		return types.Ruleset{}, fmt.Errorf("%w: missing %q array", types.ErrMalformedRuleset, "rules")
	}
	actionsRaw, ok := raw["actions"]
	if !ok {
		return types.Ruleset{}, fmt.Errorf("%w: missing %q array", types.ErrMalformedRuleset, "actions")
	}

	ruleset := types.Ruleset{Predicate: types.PredicateAll}

	if predicateRaw, ok := raw["predicate"]; ok {
		var predicate string
		if err := json.Unmarshal(predicateRaw, &predicate); err != nil {
			return types.Ruleset{}, fmt.Errorf("%w: %q must be a string: %v", types.ErrMalformedRuleset, "predicate", err)
		}
		ruleset.Predicate = types.PredicateType(predicate)
	}

	if err := json.Unmarshal(rulesRaw, &ruleset.Rules); err != nil {
		return types.Ruleset{}, fmt.Errorf("%w: %q must be an array of conditions: %v", types.ErrMalformedRuleset, "rules", err)
	}
	if err := json.Unmarshal(actionsRaw, &ruleset.Actions); err != nil {
		return types.Ruleset{}, fmt.Errorf("%w: %q must be an array of strings: %v", types.ErrMalformedRuleset, "actions", err)
	}

	return ruleset, nil
}

// LoadFile loads a ruleset document from disk.
func LoadFile(path string) (types.Ruleset, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Ruleset{}, fmt.Errorf("%w: %v", types.ErrMalformedRuleset, err)
	}
	defer f.Close()

	return Load(f)
}
