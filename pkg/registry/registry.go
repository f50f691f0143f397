// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

// LoadRegistry reads and parses the activity registry file. The registry
// is the source of truth for which worker task types exist and what
// variables they exchange; the scaffolding tools under cmd/tools read it.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Find returns the activity with the given ID, or nil. The returned
// pointer aliases the registry's slice, so edits through it persist.
func (r *ActivityRegistry) Find(id string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i]
		}
	}
	return nil
}
