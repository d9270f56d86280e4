package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Entity is one instance of a schema: a location described by one value per
// schema attribute. ValueHash is a canonical digest of the full value tuple;
// the unique (schema_id, value_hash) index is what rejects duplicate entities
// under concurrent creation, rather than a check-then-act in application code.
type Entity struct {
	Base
	SchemaID  uuid.UUID `gorm:"type:uuid;index:idx_entities_schema_hash,unique" json:"-"`
	ValueHash string    `gorm:"index:idx_entities_schema_hash,unique" json:"-"`

	Schema *Schema `json:"-"`
}

// The four typed value tables. One row per (entity, attribute), living in the
// table that matches the attribute's declared datatype.

type EntityStringValue struct {
	ID          uint64    `gorm:"primarykey"`
	EntityID    uuid.UUID `gorm:"type:uuid"`
	AttributeID uuid.UUID `gorm:"type:uuid"`
	Value       string
}

type EntityIntegerValue struct {
	ID          uint64    `gorm:"primarykey"`
	EntityID    uuid.UUID `gorm:"type:uuid"`
	AttributeID uuid.UUID `gorm:"type:uuid"`
	Value       int64
}

type EntityFloatValue struct {
	ID          uint64    `gorm:"primarykey"`
	EntityID    uuid.UUID `gorm:"type:uuid"`
	AttributeID uuid.UUID `gorm:"type:uuid"`
	Value       float64
}

type EntityBooleanValue struct {
	ID          uint64    `gorm:"primarykey"`
	EntityID    uuid.UUID `gorm:"type:uuid"`
	AttributeID uuid.UUID `gorm:"type:uuid"`
	Value       bool
}

// EntityRecord is an entity with its attribute values reconstructed, as
// returned by the API. It marshals flat: {"id": ..., "schema_name": ...,
// "<attribute>": <value>, ...}.
type EntityRecord struct {
	ID         uuid.UUID
	SchemaName string
	Values     map[string]Value
}

func (e EntityRecord) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(e.Values)+2)
	flat["id"] = e.ID
	flat["schema_name"] = e.SchemaName
	for name, value := range e.Values {
		flat[name] = value.Interface()
	}
	return json.Marshal(flat)
}

// AddEntityInline is the request body for creating an entity while defining
// its attributes and schema in one call. Values line up with identifiers by
// position.
type AddEntityInline struct {
	Identifiers []AddAttribute    `json:"identifiers"`
	Values      []json.RawMessage `json:"values"`
}
