package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/twincore-io/twincore/internal/database"
	"github.com/twincore-io/twincore/internal/models"
	"gorm.io/gorm"
)

// valueHash digests the full value tuple in a canonical form, independent of
// the order the caller supplied the values in. The unique (schema_id,
// value_hash) index then makes duplicate tuples a database-level conflict.
func valueHash(values map[string]models.Value) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(values[name].Canonical())
		sb.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// coerceValues checks the raw values against the schema's attributes: the key
// set must match exactly and each value must coerce to its attribute's
// declared datatype.
func coerceValues(attributes []models.Attribute, raw map[string]interface{}) (map[string]models.Value, error) {
	if len(raw) != len(attributes) {
		return nil, NewValidationError("", fmt.Sprintf("expected %d values, got %d", len(attributes), len(raw)))
	}
	values := make(map[string]models.Value, len(attributes))
	for _, attribute := range attributes {
		rawValue, ok := raw[attribute.Name]
		if !ok {
			return nil, NewValidationError(attribute.Name, "value missing")
		}
		value, err := models.CoerceValue(rawValue, attribute.Datatype)
		if err != nil {
			return nil, NewValidationError(attribute.Name, err.Error())
		}
		values[attribute.Name] = value
	}
	return values, nil
}

// CreateEntity inserts one entity of the named schema with the given values.
// The caller supplies the transaction; the entity row and its typed value rows
// commit or roll back together. A duplicate value tuple surfaces as a conflict
// via the hash index, even under concurrent creation.
func CreateEntity(tx *gorm.DB, schemaName string, raw map[string]interface{}) (*models.EntityRecord, error) {
	schema, err := getSchemaRow(tx, models.KindIdentifier, schemaName)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, NewValidationError("schema_name", fmt.Sprintf("unknown schema %q", schemaName))
		}
		return nil, err
	}
	attributes, err := schemaAttributes(tx, schema.ID)
	if err != nil {
		return nil, err
	}
	values, err := coerceValues(attributes, raw)
	if err != nil {
		return nil, err
	}

	entity := models.Entity{
		SchemaID:  schema.ID,
		ValueHash: valueHash(values),
	}
	if res := tx.Create(&entity); res.Error != nil {
		if database.IsDuplicateError(res.Error) {
			return nil, NewConflictError("location", "")
		}
		return nil, res.Error
	}

	for _, attribute := range attributes {
		value := values[attribute.Name]
		var row interface{}
		switch value.Datatype() {
		case models.DatatypeString:
			row = &models.EntityStringValue{EntityID: entity.ID, AttributeID: attribute.ID, Value: value.StringVal()}
		case models.DatatypeInteger:
			row = &models.EntityIntegerValue{EntityID: entity.ID, AttributeID: attribute.ID, Value: value.IntegerVal()}
		case models.DatatypeFloat:
			row = &models.EntityFloatValue{EntityID: entity.ID, AttributeID: attribute.ID, Value: value.FloatVal()}
		case models.DatatypeBoolean:
			row = &models.EntityBooleanValue{EntityID: entity.ID, AttributeID: attribute.ID, Value: value.BooleanVal()}
		}
		if res := tx.Create(row); res.Error != nil {
			return nil, res.Error
		}
	}

	return &models.EntityRecord{
		ID:         entity.ID,
		SchemaName: schema.Name,
		Values:     values,
	}, nil
}

// CreateEntityInline creates an entity while declaring its attributes and
// schema in one shot: attributes are registered if missing, the schema is
// resolved by attribute set (created if absent), and the positional values
// are matched to the attribute list.
func CreateEntityInline(tx *gorm.DB, identifiers []models.AddAttribute, rawValues []json.RawMessage) (*models.EntityRecord, error) {
	if len(rawValues) != len(identifiers) {
		return nil, NewValidationError("values",
			fmt.Sprintf("got %d identifiers but %d values", len(identifiers), len(rawValues)))
	}
	attributes, err := ensureAttributes(tx, models.KindIdentifier, identifiers)
	if err != nil {
		return nil, err
	}
	schema, err := ResolveSchemaByAttributes(tx, models.KindIdentifier, attributes)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]interface{}, len(attributes))
	for i, attribute := range attributes {
		var value interface{}
		if err := json.Unmarshal(rawValues[i], &value); err != nil {
			return nil, NewValidationError(attribute.Name, "value is not valid json")
		}
		raw[attribute.Name] = value
	}
	return CreateEntity(tx, schema.Name, raw)
}

// resolveEntityByValues finds the entity of a schema carrying exactly the
// given value tuple, via the hash column.
func resolveEntityByValues(tx *gorm.DB, schema *models.Schema, raw map[string]interface{}) (*models.Entity, error) {
	attributes, err := schemaAttributes(tx, schema.ID)
	if err != nil {
		return nil, err
	}
	values, err := coerceValues(attributes, raw)
	if err != nil {
		return nil, err
	}
	var entity models.Entity
	res := tx.Where("schema_id = ? AND value_hash = ?", schema.ID, valueHash(values)).First(&entity)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("location", "")
		}
		return nil, res.Error
	}
	return &entity, nil
}

// loadEntityValues reconstructs an entity's full attribute map by reading the
// value table matching each attribute's datatype.
func loadEntityValues(tx *gorm.DB, entityID uuid.UUID, attributes []models.Attribute) (map[string]models.Value, error) {
	values := make(map[string]models.Value, len(attributes))
	for _, attribute := range attributes {
		switch attribute.Datatype {
		case models.DatatypeString:
			var row models.EntityStringValue
			if res := tx.Where("entity_id = ? AND attribute_id = ?", entityID, attribute.ID).First(&row); res.Error != nil {
				return nil, res.Error
			}
			values[attribute.Name] = models.StringValue(row.Value)
		case models.DatatypeInteger:
			var row models.EntityIntegerValue
			if res := tx.Where("entity_id = ? AND attribute_id = ?", entityID, attribute.ID).First(&row); res.Error != nil {
				return nil, res.Error
			}
			values[attribute.Name] = models.IntegerValue(row.Value)
		case models.DatatypeFloat:
			var row models.EntityFloatValue
			if res := tx.Where("entity_id = ? AND attribute_id = ?", entityID, attribute.ID).First(&row); res.Error != nil {
				return nil, res.Error
			}
			values[attribute.Name] = models.FloatValue(row.Value)
		case models.DatatypeBoolean:
			var row models.EntityBooleanValue
			if res := tx.Where("entity_id = ? AND attribute_id = ?", entityID, attribute.ID).First(&row); res.Error != nil {
				return nil, res.Error
			}
			values[attribute.Name] = models.BooleanValue(row.Value)
		}
	}
	return values, nil
}

func loadEntityRecord(tx *gorm.DB, entity *models.Entity, schemaName string) (*models.EntityRecord, error) {
	attributes, err := schemaAttributes(tx, entity.SchemaID)
	if err != nil {
		return nil, err
	}
	values, err := loadEntityValues(tx, entity.ID, attributes)
	if err != nil {
		return nil, err
	}
	return &models.EntityRecord{
		ID:         entity.ID,
		SchemaName: schemaName,
		Values:     values,
	}, nil
}

// DeleteEntity removes the entity carrying exactly the given value tuple,
// together with its value rows and any readings keyed by its id. An entity
// still named by a sensor's installation history cannot be deleted; the
// history rows belong to the sensor and must outlive nothing they point at.
func DeleteEntity(tx *gorm.DB, schemaName string, raw map[string]interface{}) error {
	schema, err := getSchemaRow(tx, models.KindIdentifier, schemaName)
	if err != nil {
		return err
	}
	entity, err := resolveEntityByValues(tx, schema, raw)
	if err != nil {
		return err
	}

	var installations int64
	if res := tx.Model(&models.SensorLocation{}).Where("entity_id = ?", entity.ID).Count(&installations); res.Error != nil {
		return res.Error
	}
	if installations > 0 {
		return NewInvalidStateError(fmt.Sprintf("location is referenced by %d sensor installation(s)", installations))
	}

	if err := deleteEntityValues(tx, entity.ID); err != nil {
		return err
	}
	if err := deleteReadingsFor(tx, entity.ID); err != nil {
		return err
	}
	return tx.Delete(&models.Entity{}, "id = ?", entity.ID).Error
}

func deleteEntityValues(tx *gorm.DB, entityID uuid.UUID) error {
	for _, table := range []interface{}{
		&models.EntityStringValue{},
		&models.EntityIntegerValue{},
		&models.EntityFloatValue{},
		&models.EntityBooleanValue{},
	} {
		if res := tx.Where("entity_id = ?", entityID).Delete(table); res.Error != nil {
			return res.Error
		}
	}
	return nil
}
