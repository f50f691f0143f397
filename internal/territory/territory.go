// internal/territory/territory.go
package territory

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"territory-workers/internal/geo"
)

// Kind discriminates the territory variants. The set is closed: anything else
// fails validation at load time.
type Kind string

const (
	KindRadius    Kind = "radius"
	KindPolygon   Kind = "polygon"
	KindMultiArea Kind = "multiArea"
)

// Territory is a representative's coverage definition. Exactly one of the
// variant fields is populated, selected by Kind. Instances are validated once
// when loaded from storage; matching assumes a valid value.
type Territory struct {
	Kind     Kind           `json:"kind"`
	Center   *geo.GeoPoint  `json:"center,omitempty"`
	RadiusKm float64        `json:"radiusKm,omitempty"`
	Vertices []geo.GeoPoint `json:"vertices,omitempty"`
	Areas    []Area         `json:"areas,omitempty"`
}

// Area is one circle of a multi-area territory. Declaration order is
// significant: the first containing area wins a match.
type Area struct {
	Center   geo.GeoPoint `json:"center"`
	RadiusKm float64      `json:"radiusKm"`
	Label    string       `json:"label,omitempty"`
}

const territorySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["kind"],
  "properties": {
    "kind": {"enum": ["radius", "polygon", "multiArea"]},
    "center": {"$ref": "#/definitions/point"},
    "radiusKm": {"type": "number", "exclusiveMinimum": 0},
    "vertices": {"type": "array", "items": {"$ref": "#/definitions/point"}},
    "areas": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["center", "radiusKm"],
        "properties": {
          "center": {"$ref": "#/definitions/point"},
          "radiusKm": {"type": "number", "exclusiveMinimum": 0},
          "label": {"type": "string"}
        }
      }
    }
  },
  "definitions": {
    "point": {
      "type": "object",
      "required": ["latitude", "longitude"],
      "properties": {
        "latitude": {"type": "number", "minimum": -90, "maximum": 90},
        "longitude": {"type": "number", "minimum": -180, "maximum": 180}
      }
    }
  }
}`

var territorySchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(territorySchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("territory schema: %v", err))
	}
	territorySchema = schema
}

// Parse decodes and fully validates a territory definition. A non-nil error
// means the definition must be treated as misconfigured, never silently
// matched against.
func Parse(data []byte) (*Territory, error) {
	result, err := territorySchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("territory schema validation: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("invalid territory definition: %v", errs)
	}

	var t Territory
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode territory: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate enforces the structural rules the JSON schema cannot express:
// variant-specific required fields and coordinate ranges.
func (t *Territory) Validate() error {
	switch t.Kind {
	case KindRadius:
		if t.Center == nil {
			return fmt.Errorf("radius territory requires a center")
		}
		if !t.Center.Valid() {
			return fmt.Errorf("radius territory center out of range")
		}
		if t.RadiusKm <= 0 {
			return fmt.Errorf("radius territory requires radiusKm > 0")
		}
	case KindPolygon:
		if len(t.Vertices) < 3 {
			return fmt.Errorf("polygon territory requires at least 3 vertices, got %d", len(t.Vertices))
		}
		for i, v := range t.Vertices {
			if !v.Valid() {
				return fmt.Errorf("polygon vertex %d out of range", i)
			}
		}
	case KindMultiArea:
		if len(t.Areas) == 0 {
			return fmt.Errorf("multi-area territory requires at least one area")
		}
		for i, a := range t.Areas {
			if !a.Center.Valid() {
				return fmt.Errorf("area %d center out of range", i)
			}
			if a.RadiusKm <= 0 {
				return fmt.Errorf("area %d requires radiusKm > 0", i)
			}
		}
	default:
		return fmt.Errorf("unknown territory kind %q", t.Kind)
	}
	return nil
}
