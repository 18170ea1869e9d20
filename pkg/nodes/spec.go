package nodes

// AttributeKind tells which value an Attribute carries.
type AttributeKind int

const (
	AttributeString AttributeKind = iota
	AttributeInt
)

// Attribute is one named configuration value in a Spec.
type Attribute struct {
	Name   string
	Kind   AttributeKind
	String string
	Int    int64
}

// StringAttribute creates a string attribute.
func StringAttribute(name, value string) Attribute {
	return Attribute{Name: name, Kind: AttributeString, String: value}
}

// IntAttribute creates an integer attribute.
func IntAttribute(name string, value int64) Attribute {
	return Attribute{Name: name, Kind: AttributeInt, Int: value}
}

// Value returns the attribute payload as a string or int64.
func (a Attribute) Value() any {
	if a.Kind == AttributeInt {
		return a.Int
	}
	return a.String
}

// Spec is a snapshot of a node used for persistence.
type Spec struct {
	ID         int64
	Type       string
	Attributes []Attribute
}

// Attribute looks up an attribute by name.
func (s Spec) Attribute(name string) (Attribute, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// FieldKind is the editor widget a field needs.
type FieldKind int

const (
	FieldString FieldKind = iota
)

// Field is one editable configuration value exposed to a front end.
type Field struct {
	Label string
	Name  string
	Kind  FieldKind
}

// UI lists the editable fields of a node. Most nodes have none.
type UI struct {
	Fields []Field
}

// Empty reports whether there is nothing to edit.
func (u UI) Empty() bool { return len(u.Fields) == 0 }
