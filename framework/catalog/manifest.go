package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-autowire/framework/container"
)

// Manifest is a YAML document carrying the metadata Go reflection cannot
// recover from a constructor (parameter names, union types, defaults,
// nullability) plus an optional list of bindings.
//
//	types:
//	  - name: Greeting
//	    params:
//	      - name: hello
//	        types: [HelloPort]
//	      - name: suffix
//	        default: "!"
//	bindings:
//	  - id: HelloPort
//	    concrete: HelloImpl
//	    shared: true
//	  - id: Greeting
//	    arguments:
//	      $suffix: "?!"
type Manifest struct {
	Types    []TypeSpec    `yaml:"types"`
	Bindings []BindingSpec `yaml:"bindings"`
}

// TypeSpec describes the constructor parameters of a registered type.
type TypeSpec struct {
	Name   string      `yaml:"name"`
	Params []ParamSpec `yaml:"params"`
}

// ParamSpec describes one parameter. HasDefault is set when the document has
// a default key, including an explicit null.
type ParamSpec struct {
	Name       string
	Types      []string
	Nullable   bool
	HasDefault bool
	Default    any
}

func (p *ParamSpec) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name     string   `yaml:"name"`
		Types    []string `yaml:"types"`
		Nullable bool     `yaml:"nullable"`
		Default  any      `yaml:"default"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = ParamSpec{Name: raw.Name, Types: raw.Types, Nullable: raw.Nullable, Default: raw.Default}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "default" {
			p.HasDefault = true
		}
	}
	return nil
}

// BindingSpec registers one entry. An empty Concrete registers ID under its
// own identifier.
type BindingSpec struct {
	ID        string         `yaml:"id"`
	Concrete  string         `yaml:"concrete"`
	Shared    bool           `yaml:"shared"`
	Arguments map[string]any `yaml:"arguments"`
}

// LoadManifest decodes a manifest. Unknown keys are rejected.
func LoadManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("catalog: decode manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifestFile reads a manifest from path.
func LoadManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open manifest: %w", err)
	}
	defer f.Close()
	return LoadManifest(f)
}

func (m *Manifest) validate() error {
	var errs []error
	for i, t := range m.Types {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("types[%d]: missing name", i))
		}
		for j, p := range t.Params {
			if strings.TrimSpace(p.Name) == "" {
				errs = append(errs, fmt.Errorf("types[%d].params[%d]: missing name", i, j))
			}
		}
	}
	for i, b := range m.Bindings {
		if strings.TrimSpace(b.ID) == "" {
			errs = append(errs, fmt.Errorf("bindings[%d]: missing id", i))
		}
		for k := range b.Arguments {
			if strings.TrimPrefix(k, "$") == "" {
				errs = append(errs, fmt.Errorf("bindings[%d]: invalid argument key %q", i, k))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("catalog: invalid manifest: %w", errors.Join(errs...))
	}
	return nil
}

// Apply replaces the parameter descriptors of every listed type. The types
// must already be registered with their constructors.
func (m *Manifest) Apply(c *Catalog) error {
	var errs []error
	for _, t := range m.Types {
		params := make([]container.Param, len(t.Params))
		for i, p := range t.Params {
			params[i] = container.Param{
				Name:       p.Name,
				Types:      p.Types,
				Nullable:   p.Nullable,
				HasDefault: p.HasDefault,
				Default:    p.Default,
			}
		}
		if err := c.SetParams(t.Name, params); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Register adds every listed binding to ct, in document order.
func (m *Manifest) Register(ct *container.Container) error {
	for _, b := range m.Bindings {
		var opts []container.EntryOption
		if b.Shared {
			opts = append(opts, container.Shared())
		}

		var (
			e   *container.Entry
			err error
		)
		if b.Concrete == "" || b.Concrete == b.ID {
			e, err = ct.Add(b.ID, opts...)
		} else {
			e, err = ct.Bind(b.ID, b.Concrete, opts...)
		}
		if err != nil {
			return err
		}
		if len(b.Arguments) > 0 {
			e.AddArguments(b.Arguments)
		}
	}
	return nil
}
