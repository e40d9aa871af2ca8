// Package config reads a static pipeline graph descriptor — elements,
// their pad templates, and the links between them — from YAML, the
// idiomatic Go stand-in for spec.md §6's "GST_PLUGIN_PATH/XML-registry
// style external configuration" now that this core has no plugin loader
// or DSL compiler of its own (see DESIGN.md's dropped-dependency entry for
// goa's own DSL/codegen stack). Caps templates are written using spec.md
// §6's own textual grammar ("name, key=(type)value, ...") rather than a
// second, redundant structured format; per-element free-form properties
// may optionally be validated against a JSON Schema, grounded on
// registry/service.go's validatePayloadJSONAgainstSchema.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/flowgraph/core/caps"
)

// PadSpec describes one pad template on an element.
type PadSpec struct {
	Name      string `yaml:"name"`
	Direction string `yaml:"direction"` // "src" or "sink"
	Presence  string `yaml:"presence"`  // "always" (default), "sometimes", "request"
	Caps      string `yaml:"caps"`      // spec.md §6 textual grammar, or "ANY"/"EMPTY"
}

// ElementSpec describes one element instance in the graph.
type ElementSpec struct {
	Name       string         `yaml:"name"`
	Factory    string         `yaml:"factory"`
	Pads       []PadSpec      `yaml:"pads"`
	Properties map[string]any `yaml:"properties"`
}

// LinkSpec connects "element.pad" to "element.pad".
type LinkSpec struct {
	Src  string `yaml:"src"`
	Sink string `yaml:"sink"`
}

// Graph is a fully parsed, not-yet-instantiated pipeline description: the
// application still resolves each ElementSpec.Factory through its own
// (out-of-scope) plugin registry and performs the actual pad.Link calls.
type Graph struct {
	Name     string        `yaml:"name"`
	Elements []ElementSpec `yaml:"elements"`
	Links    []LinkSpec    `yaml:"links"`
	Schemas  map[string]json.RawMessage
}

// document is the raw YAML shape. Schemas are authored as JSON text
// embedded in a YAML string scalar (json.RawMessage has no YAML
// unmarshaler of its own), then converted to json.RawMessage below.
type document struct {
	Name     string            `yaml:"name"`
	Elements []ElementSpec     `yaml:"elements"`
	Links    []LinkSpec        `yaml:"links"`
	Schemas  map[string]string `yaml:"schemas"`
}

// Load reads and parses a pipeline graph descriptor from path.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a pipeline graph descriptor from raw YAML bytes.
func Parse(data []byte) (*Graph, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	g := &Graph{Name: doc.Name, Elements: doc.Elements, Links: doc.Links}
	if len(doc.Schemas) > 0 {
		g.Schemas = make(map[string]json.RawMessage, len(doc.Schemas))
		for name, text := range doc.Schemas {
			g.Schemas[name] = json.RawMessage(text)
		}
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) validate() error {
	seen := make(map[string]bool, len(g.Elements))
	for _, e := range g.Elements {
		if e.Name == "" {
			return fmt.Errorf("config: element with empty name")
		}
		if seen[e.Name] {
			return fmt.Errorf("config: duplicate element name %q", e.Name)
		}
		seen[e.Name] = true
		for _, p := range e.Pads {
			if _, err := caps.Parse(p.Caps); err != nil {
				return fmt.Errorf("config: element %q pad %q: %w", e.Name, p.Name, err)
			}
		}
		if schema, ok := g.Schemas[e.Name]; ok && len(e.Properties) > 0 {
			if err := validateProperties(e.Properties, schema); err != nil {
				return fmt.Errorf("config: element %q properties: %w", e.Name, err)
			}
		}
	}
	for _, l := range g.Links {
		if _, _, err := splitPadRef(l.Src); err != nil {
			return fmt.Errorf("config: link src %q: %w", l.Src, err)
		}
		if _, _, err := splitPadRef(l.Sink); err != nil {
			return fmt.Errorf("config: link sink %q: %w", l.Sink, err)
		}
	}
	return nil
}

// PadCaps parses and returns p's caps template, or an error if malformed
// (Load/Parse already validated this; callers that built a PadSpec by
// hand should call this directly).
func (p PadSpec) PadCaps() (*caps.Caps, error) { return caps.Parse(p.Caps) }

func splitPadRef(ref string) (element, pad string, err error) {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return ref[:i], ref[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("expected \"element.pad\", got %q", ref)
}

// SrcElement, SrcPad, SinkElement and SinkPad split a LinkSpec endpoint "element.pad" into its
// two components.
func (l LinkSpec) SrcElement() string  { e, _, _ := splitPadRef(l.Src); return e }
func (l LinkSpec) SrcPad() string      { _, p, _ := splitPadRef(l.Src); return p }
func (l LinkSpec) SinkElement() string { e, _, _ := splitPadRef(l.Sink); return e }
func (l LinkSpec) SinkPad() string     { _, p, _ := splitPadRef(l.Sink); return p }

// validateProperties validates props (re-marshaled to JSON) against
// schemaBytes using jsonschema/v6, mirroring registry/service.go's
// validatePayloadJSONAgainstSchema.
func validateProperties(props map[string]any, schemaBytes json.RawMessage) error {
	payloadJSON, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("marshal properties: %w", err)
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		return fmt.Errorf("unmarshal schema: %w", err)
	}
	var payloadDoc any
	if err := json.Unmarshal(payloadJSON, &payloadDoc); err != nil {
		return fmt.Errorf("unmarshal properties: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return schema.Validate(payloadDoc)
}
