package conceptgraph

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/studyloop/internal/ids"
)

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

const catalogSchemaURL = "schema://concept-catalog.json"

var (
	catalogSchemaOnce sync.Once
	catalogSchema     *jsonschema.Schema
	catalogSchemaErr  error
)

type catalogFile struct {
	Concepts []catalogConcept `yaml:"concepts"`
}

type catalogConcept struct {
	ID         string   `yaml:"id"`
	Domain     string   `yaml:"domain"`
	Name       string   `yaml:"name"`
	Slug       string   `yaml:"slug"`
	Kind       string   `yaml:"kind"`
	Difficulty int      `yaml:"difficulty"`
	Importance int      `yaml:"importance"`
	Requires   []string `yaml:"requires"`
}

// LoadCatalog reads a YAML concept catalog and returns its nodes in file
// order. The document is checked against the catalog schema; graph-level
// integrity (cycles, dangling references) is left to Validate.
func LoadCatalog(r io.Reader) ([]ConceptNode, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if err := validateCatalogDoc(doc); err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	nodes := make([]ConceptNode, 0, len(file.Concepts))
	for _, c := range file.Concepts {
		n := ConceptNode{
			ID:         ids.ConceptID(c.ID),
			DomainID:   ids.DomainID(c.Domain),
			Name:       c.Name,
			Slug:       c.Slug,
			Kind:       ConceptKind(c.Kind),
			Difficulty: c.Difficulty,
			Importance: c.Importance,
		}
		if n.Slug == "" {
			n.Slug = SlugFor(n.ID, n.Name)
		}
		if n.Kind == "" {
			n.Kind = KindDefinition
		}
		for _, p := range c.Requires {
			n.Prerequisites = append(n.Prerequisites, ids.ConceptID(p))
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Slugify derives a lower-case, hyphen separated slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SlugFor derives the slug of a concept from its name, falling back to its
// id when the name yields nothing (for example a name without Latin letters
// or digits).
func SlugFor(id ids.ConceptID, name string) string {
	if slug := Slugify(name); slug != "" {
		return slug
	}
	if slug := Slugify(string(id)); slug != "" {
		return slug
	}
	return strings.ToLower(strings.TrimSpace(string(id)))
}

func validateCatalogDoc(doc any) error {
	schema, err := compiledCatalogSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so YAML scalars take the shapes the validator expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalize catalog: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("normalize catalog: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

func compiledCatalogSchema() (*jsonschema.Schema, error) {
	catalogSchemaOnce.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(catalogSchemaJSON))
		if err != nil {
			catalogSchemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(catalogSchemaURL, def); err != nil {
			catalogSchemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		catalogSchema, catalogSchemaErr = c.Compile(catalogSchemaURL)
	})
	return catalogSchema, catalogSchemaErr
}
