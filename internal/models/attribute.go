package models

// AttributeKind separates the two attribute namespaces: identifiers describe
// entities (locations), measures describe time-series points (sensor readings
// and model outputs). The same name may exist once per kind.
type AttributeKind string

const (
	KindIdentifier AttributeKind = "identifier"
	KindMeasure    AttributeKind = "measure"
)

func (k AttributeKind) Valid() bool {
	return k == KindIdentifier || k == KindMeasure
}

// Attribute is a named, typed, unit-bearing field definition. Attributes are
// immutable once a schema references them.
type Attribute struct {
	Base
	Kind     AttributeKind `gorm:"index:idx_attributes_kind_name,unique" json:"-"`
	Name     string        `gorm:"index:idx_attributes_kind_name,unique" json:"name" example:"temperature"`
	Units    string        `json:"units" example:"degrees Celsius"`
	Datatype Datatype      `json:"datatype" example:"float"`
}

// AddAttribute is the request body for defining a new attribute.
type AddAttribute struct {
	Name     string   `json:"name" example:"temperature"`
	Units    string   `json:"units" example:"degrees Celsius"`
	Datatype Datatype `json:"datatype" example:"float"`
}
