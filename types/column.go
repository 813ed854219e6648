package types

// Column pairs a declared column name with its on-disk attribute. Order
// within a slice of Column is significant: it is the declared order rows
// marshal and unmarshal against.
type Column struct {
	Name      string
	Attribute ColumnAttribute
}

// Schema is an ordered column list, the shape HeapRelation and the
// catalog both marshal rows against.
type Schema []Column

// Names returns the declared column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// Lookup returns the Column with the given name, if declared.
func (s Schema) Lookup(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
