package models

import (
	"github.com/google/uuid"
)

// Schema binds an ordered set of attributes into an entity class: a location
// schema binds identifiers, a sensor type binds measures. The schema's
// identity as an entity class is the attribute set; the name is a separate,
// globally unique label. Several names may alias the same attribute set.
type Schema struct {
	Base
	Kind        AttributeKind `json:"-"`
	Name        string        `gorm:"uniqueIndex" json:"name" example:"latlong"`
	Description string        `json:"description" example:"Latitude and longitude in degrees"`

	Attributes []*SchemaAttribute `json:"-"`
}

// SchemaAttribute is one schema-to-attribute binding. Row creation order
// preserves the order in which the schema listed its attributes.
type SchemaAttribute struct {
	ID          uint64    `gorm:"primarykey" json:"-"`
	SchemaID    uuid.UUID `gorm:"type:uuid" json:"-"`
	AttributeID uuid.UUID `gorm:"type:uuid" json:"-"`
}

// SchemaDetails is a schema with its attribute definitions resolved, as
// returned by the API.
type SchemaDetails struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name" example:"latlong"`
	Description string      `json:"description"`
	Attributes  []Attribute `json:"identifiers"`
}

// AddSchema is the request body for defining a new schema. Each attribute
// entry either names an existing attribute or defines it inline.
type AddSchema struct {
	Name        string         `json:"name" example:"latlong"`
	Description string         `json:"description"`
	Identifiers []AddAttribute `json:"identifiers"`
}

// AddSensorType mirrors AddSchema for the sensor namespace.
type AddSensorType struct {
	Name        string         `json:"name" example:"weather_station"`
	Description string         `json:"description"`
	Measures    []AddAttribute `json:"measures"`
}
