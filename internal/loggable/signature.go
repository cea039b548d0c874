package loggable

import (
	"context"
	"reflect"
	"strings"
)

// Component identifies an instrumented type and carries its declaration.
type Component struct {
	name     string
	pkg      string
	declared Declared
}

// NewComponent describes the type of v. Pointers are dereferenced, so
// NewComponent(s) and NewComponent(*s) are the same component.
func NewComponent(v any, declared Declared) *Component {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return NamedComponent("", "unknown", declared)
	}
	return NamedComponent(t.PkgPath(), t.Name(), declared)
}

// NamedComponent describes a component by package path and name.
func NamedComponent(pkg, name string, declared Declared) *Component {
	return &Component{name: name, pkg: pkg, declared: declared}
}

// Name returns the simple component name. It also names the component's
// log sink.
func (c *Component) Name() string {
	return c.name
}

// QualifiedName returns the package-qualified component name.
func (c *Component) QualifiedName() string {
	if c.pkg == "" {
		return c.name
	}
	return c.pkg + "." + c.name
}

// Declared returns the component-level declaration.
func (c *Component) Declared() Declared {
	return c.declared
}

// Method describes one instrumented method of c.
func (c *Component) Method(name string, declared Declared) *Method {
	return &Method{component: c, name: name, declared: declared}
}

// Method identifies an instrumented call site.
type Method struct {
	component *Component
	name      string
	params    []string
	declared  Declared
}

// Component returns the owning component.
func (m *Method) Component() *Component {
	return m.component
}

// Name returns the method name.
func (m *Method) Name() string {
	return m.name
}

// Declared returns the method-level declaration.
func (m *Method) Declared() Declared {
	return m.declared
}

// Params returns the rendered parameter types.
func (m *Method) Params() []string {
	return m.params
}

// WithParams returns a copy of m with the given parameter type names.
func (m *Method) WithParams(params ...string) *Method {
	cp := *m
	cp.params = params
	return &cp
}

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// bind returns a copy of m whose parameters are read from the function
// type fn. A leading context.Context is not listed.
func (m *Method) bind(fn any) *Method {
	if m.params != nil {
		return m
	}
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return m
	}
	params := make([]string, 0, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if i == 0 && in == contextType {
			continue
		}
		params = append(params, in.String())
	}
	return m.WithParams(params...)
}

// Signature renders m in the given style:
//   - short: Method
//   - normal: Component.Method
//   - long: path/to/pkg.Component.Method(type1, type2)
func (m *Method) Signature(style SignatureStyle) string {
	switch style {
	case SignatureShort:
		return m.name
	case SignatureLong:
		var sb strings.Builder
		sb.WriteString(m.component.QualifiedName())
		sb.WriteByte('.')
		sb.WriteString(m.name)
		sb.WriteByte('(')
		sb.WriteString(strings.Join(m.params, ", "))
		sb.WriteByte(')')
		return sb.String()
	default:
		return m.component.name + "." + m.name
	}
}
