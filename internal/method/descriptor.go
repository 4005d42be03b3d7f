package method

import "strings"

// Raw is a method handle as reported by a discovery source.
type Raw interface {
	Name() string
	DeclaringType() string
	ParameterTypes() []string
	Synthetic() bool
	String() string
}

// NameShadower is implemented by handles from languages where a declared
// method hides every inherited method of the same name, whatever its
// parameters. Go methods promoted through embedding behave this way.
type NameShadower interface {
	ShadowsByName() bool
}

// Descriptor is an immutable view of one declared method.
type Descriptor struct {
	name          string
	declaringType string
	params        []string
	signature     string
	synthetic     bool
	byName        bool
}

// New builds a Descriptor. An empty signature is replaced by the canonical form.
func New(name, declaringType string, params []string, signature string, synthetic bool) Descriptor {
	if signature == "" {
		signature = FormatSignature("", declaringType, name, params)
	}
	return Descriptor{
		name:          name,
		declaringType: declaringType,
		params:        append([]string(nil), params...),
		signature:     signature,
		synthetic:     synthetic,
	}
}

// FromRaw wraps a raw handle. It never fails for a well-formed handle.
func FromRaw(r Raw) Descriptor {
	d := New(r.Name(), r.DeclaringType(), r.ParameterTypes(), r.String(), r.Synthetic())
	if ns, ok := r.(NameShadower); ok {
		d.byName = ns.ShadowsByName()
	}
	return d
}

func (d Descriptor) Name() string          { return d.name }
func (d Descriptor) DeclaringType() string { return d.declaringType }
func (d Descriptor) Signature() string     { return d.signature }
func (d Descriptor) Synthetic() bool       { return d.synthetic }
func (d Descriptor) String() string        { return d.signature }
func (d Descriptor) ShadowsByName() bool   { return d.byName }

// ParameterTypes returns a copy of the parameter type list.
func (d Descriptor) ParameterTypes() []string {
	return append([]string(nil), d.params...)
}

// OverrideKey identifies the method independently of where it is declared.
// Two methods with the same key in an inheritance chain override each other.
// Name-shadowing methods are keyed by name alone.
func (d Descriptor) OverrideKey() string {
	if d.byName {
		return d.name
	}
	return d.name + "(" + strings.Join(d.params, ",") + ")"
}

// Equal reports structural equality.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.name != o.name || d.declaringType != o.declaringType ||
		d.signature != o.signature || d.synthetic != o.synthetic || d.byName != o.byName ||
		len(d.params) != len(o.params) {
		return false
	}
	for i := range d.params {
		if d.params[i] != o.params[i] {
			return false
		}
	}
	return true
}

// FormatSignature renders "<result> <declaringType>.<name>(<p1>,<p2>)".
// The result prefix is omitted when result is empty.
func FormatSignature(result, declaringType, name string, params []string) string {
	var b strings.Builder
	if result != "" {
		b.WriteString(result)
		b.WriteByte(' ')
	}
	if declaringType != "" {
		b.WriteString(declaringType)
		b.WriteByte('.')
	}
	b.WriteString(name)
	b.WriteByte('(')
	b.WriteString(strings.Join(params, ","))
	b.WriteByte(')')
	return b.String()
}
