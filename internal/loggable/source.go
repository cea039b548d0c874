package loggable

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Source provides the declarations that apply to a method.
type Source interface {
	Lookup(m *Method) (method, component Declared)
}

// Static returns the declarations attached in code to the method and its
// component.
type Static struct{}

// Lookup implements Source.
func (Static) Lookup(m *Method) (Declared, Declared) {
	return m.declared, m.component.declared
}

// Overlay layers file declarations over another source. Values set in the
// file win, per level, over the values of the base source.
type Overlay struct {
	Base Source
	File *File
}

// Lookup implements Source.
func (o Overlay) Lookup(m *Method) (Declared, Declared) {
	method, component := o.Base.Lookup(m)
	if o.File == nil {
		return method, component
	}
	fc, ok := o.File.component(m.component)
	if !ok {
		return method, component
	}
	component = fc.declared.Over(component)
	if fm, ok := fc.methods[m.name]; ok {
		method = fm.Over(method)
	}
	return method, component
}

// File holds declarations read from a YAML or TOML file:
//
//	components:
//	  ContractService:
//	    debug: true
//	    methods:
//	      FindContract:
//	        showArgValues: true
//	        signature: long
//
// Components are matched by simple or qualified name.
type File struct {
	components map[string]fileComponent
}

type fileComponent struct {
	declared Declared
	methods  map[string]Declared
}

func (f *File) component(c *Component) (fileComponent, bool) {
	if fc, ok := f.components[c.QualifiedName()]; ok {
		return fc, true
	}
	fc, ok := f.components[c.Name()]
	return fc, ok
}

// Components returns the names of the components declared in the file.
func (f *File) Components() []string {
	names := make([]string, 0, len(f.components))
	for name := range f.components {
		names = append(names, name)
	}
	return names
}

type rawAttributes struct {
	Service       string `yaml:"service" toml:"service"`
	Perf          *bool  `yaml:"perf" toml:"perf"`
	Debug         *bool  `yaml:"debug" toml:"debug"`
	ShowArgValues *bool  `yaml:"showArgValues" toml:"showArgValues"`
	Signature     string `yaml:"signature" toml:"signature"`
}

type rawComponent struct {
	Service       string                   `yaml:"service" toml:"service"`
	Perf          *bool                    `yaml:"perf" toml:"perf"`
	Debug         *bool                    `yaml:"debug" toml:"debug"`
	ShowArgValues *bool                    `yaml:"showArgValues" toml:"showArgValues"`
	Signature     string                   `yaml:"signature" toml:"signature"`
	Methods       map[string]rawAttributes `yaml:"methods" toml:"methods"`
}

type rawFile struct {
	Components map[string]rawComponent `yaml:"components" toml:"components"`
}

// LoadFile reads declarations from path. The format is chosen by
// extension: .toml for TOML, anything else is parsed as YAML.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declarations: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return ParseFile(data, format)
}

// ParseFile parses declarations in the given format ("yaml" or "toml").
func ParseFile(data []byte, format string) (*File, error) {
	var raw rawFile
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML declarations: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse TOML declarations: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported declaration format %q", format)
	}

	f := &File{components: make(map[string]fileComponent, len(raw.Components))}
	for name, rc := range raw.Components {
		declared, err := rawAttributes{
			Service:       rc.Service,
			Perf:          rc.Perf,
			Debug:         rc.Debug,
			ShowArgValues: rc.ShowArgValues,
			Signature:     rc.Signature,
		}.declared()
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		fc := fileComponent{declared: declared, methods: make(map[string]Declared, len(rc.Methods))}
		for mname, rm := range rc.Methods {
			md, err := rm.declared()
			if err != nil {
				return nil, fmt.Errorf("method %s.%s: %w", name, mname, err)
			}
			fc.methods[mname] = md
		}
		f.components[name] = fc
	}
	return f, nil
}

func (r rawAttributes) declared() (Declared, error) {
	style, err := ParseSignatureStyle(r.Signature)
	if err != nil {
		return Declared{}, err
	}
	return Declared{
		Service:       r.Service,
		Perf:          toggle(r.Perf),
		Debug:         toggle(r.Debug),
		ShowArgValues: toggle(r.ShowArgValues),
		Signature:     style,
	}, nil
}

func toggle(b *bool) Toggle {
	if b == nil {
		return Unset
	}
	return Of(*b)
}
