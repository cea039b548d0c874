package loggable

import (
	"fmt"
	"strings"
)

// Toggle is a boolean declaration that can be left unset.
type Toggle int8

const (
	Unset Toggle = iota
	On
	Off
)

// Of converts b to a set Toggle.
func Of(b bool) Toggle {
	if b {
		return On
	}
	return Off
}

// or returns the toggle's value, or def when unset.
func (t Toggle) or(def bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return def
	}
}

// SignatureStyle selects how intercepted methods are named in log lines.
type SignatureStyle int8

const (
	SignatureUnset SignatureStyle = iota
	SignatureShort
	SignatureNormal
	SignatureLong
)

// String returns the string representation of the style.
func (s SignatureStyle) String() string {
	switch s {
	case SignatureShort:
		return "short"
	case SignatureNormal:
		return "normal"
	case SignatureLong:
		return "long"
	default:
		return "unset"
	}
}

// ParseSignatureStyle parses "short", "normal" or "long". The empty string
// yields SignatureUnset.
func ParseSignatureStyle(s string) (SignatureStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SignatureUnset, nil
	case "short":
		return SignatureShort, nil
	case "normal":
		return SignatureNormal, nil
	case "long":
		return SignatureLong, nil
	default:
		return SignatureUnset, fmt.Errorf("unknown signature style %q", s)
	}
}

// Declared is the instrumentation declared on a component or a method.
// Zero values mean "not declared".
type Declared struct {
	Service       string
	Perf          Toggle
	Debug         Toggle
	ShowArgValues Toggle
	Signature     SignatureStyle
}

// Over returns d with every unset field taken from base.
func (d Declared) Over(base Declared) Declared {
	if d.Service == "" {
		d.Service = base.Service
	}
	if d.Perf == Unset {
		d.Perf = base.Perf
	}
	if d.Debug == Unset {
		d.Debug = base.Debug
	}
	if d.ShowArgValues == Unset {
		d.ShowArgValues = base.ShowArgValues
	}
	if d.Signature == SignatureUnset {
		d.Signature = base.Signature
	}
	return d
}

// Attributes is the effective instrumentation of one call.
type Attributes struct {
	Service            string
	PerformanceEnabled bool
	DebugEnabled       bool
	ShowArgValues      bool
	Signature          SignatureStyle
}

// Defaults returns the attributes of a call with nothing declared.
func Defaults() Attributes {
	return Attributes{
		Service:            "",
		PerformanceEnabled: true,
		DebugEnabled:       false,
		ShowArgValues:      false,
		Signature:          SignatureNormal,
	}
}

// Resolve merges method and component declarations. For every attribute
// the method value wins over the component value, which wins over the
// default.
func Resolve(method, component Declared) Attributes {
	eff := method.Over(component)
	def := Defaults()

	attrs := Attributes{
		Service:            eff.Service,
		PerformanceEnabled: eff.Perf.or(def.PerformanceEnabled),
		DebugEnabled:       eff.Debug.or(def.DebugEnabled),
		ShowArgValues:      eff.ShowArgValues.or(def.ShowArgValues),
		Signature:          eff.Signature,
	}
	if attrs.Signature == SignatureUnset {
		attrs.Signature = def.Signature
	}
	return attrs
}
