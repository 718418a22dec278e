// Package types defines the semantic kinds an option's declared type is
// classified into, and their display strings.
package types

import (
	"encoding/json"
	"strings"
)

// Kind tags the variant held by a Type.
type Kind int

// Type kinds.
const (
	Unknown Kind = iota
	Bool
	Int
	Float
	Str
	Path
	Enum
	Attrs
	List
	Set
	Option
	Either
)

// Display names for the simple kinds.
const (
	BoolName  = "boolean"
	IntName   = "integer"
	FloatName = "float"
	StrName   = "string"
	PathName  = "path"
	EnumName  = "enum"
	AttrsName = "attribute set"
	ListName  = "list"
	SetName   = "set"

	// EitherName is shown for an either type with no recorded alternatives.
	EitherName = "either"
)

var simpleNames = map[Kind]string{
	Bool:  BoolName,
	Int:   IntName,
	Float: FloatName,
	Str:   StrName,
	Path:  PathName,
	Attrs: AttrsName,
	List:  ListName,
	Set:   SetName,
}

// Type is a classified option type. Only the fields relevant to Kind are
// populated: Values for Enum, Inner for Option, Alternatives for Either and
// Raw for Unknown.
type Type struct {
	Kind         Kind
	Values       []string
	Inner        *Type
	Alternatives []Type
	Raw          string
}

// Simple returns a payload-free Type of the given kind.
func Simple(k Kind) Type { return Type{Kind: k} }

// Raw returns an Unknown type carrying the unrecognized source text.
func Raw(text string) Type { return Type{Kind: Unknown, Raw: text} }

// String returns the fixed display form used by every renderer.
func (t Type) String() string {
	if name, ok := simpleNames[t.Kind]; ok {
		return name
	}
	switch t.Kind {
	case Enum:
		if len(t.Values) == 0 {
			return EnumName
		}
		return EnumName + ": [" + strings.Join(t.Values, ", ") + "]"
	case Option:
		inner := ""
		if t.Inner != nil {
			inner = t.Inner.String()
		}
		return "optional " + inner
	case Either:
		if len(t.Alternatives) == 0 {
			return EitherName
		}
		alts := make([]string, len(t.Alternatives))
		for i, a := range t.Alternatives {
			alts[i] = a.String()
		}
		return EitherName + ": [" + strings.Join(alts, ", ") + "]"
	}
	return t.Raw
}

// MarshalJSON serializes a Type as its display string.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// IsDeclared reports whether the option declared a type at all. Options
// without a type clause classify as Unknown("any").
func (t Type) IsDeclared() bool {
	return !(t.Kind == Unknown && t.Raw == "any")
}
