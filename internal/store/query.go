package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/twincore-io/twincore/internal/models"
	"gorm.io/gorm"
)

// FindEntities returns the schema's entities matching every given constraint,
// in creation order, full value maps reconstructed. Constraints name a subset
// of the schema's attributes; each one is answered by the typed value table
// matching the attribute's datatype and the resulting id sets are
// intersected. A limit of zero means no limit.
func FindEntities(tx *gorm.DB, schemaName string, constraints map[string]interface{}, limit int) ([]models.EntityRecord, error) {
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

	byName := make(map[string]models.Attribute, len(attributes))
	for _, attribute := range attributes {
		byName[attribute.Name] = attribute
	}

	var entities []models.Entity
	if res := tx.Where("schema_id = ?", schema.ID).Order("created_at").Find(&entities); res.Error != nil {
		return nil, res.Error
	}

	for name, rawValue := range constraints {
		attribute, ok := byName[name]
		if !ok {
			return nil, NewValidationError(name, fmt.Sprintf("schema %q has no such attribute", schemaName))
		}
		value, err := models.CoerceValue(rawValue, attribute.Datatype)
		if err != nil {
			return nil, NewValidationError(name, err.Error())
		}
		matching, err := entityIDsWithValue(tx, attribute, value)
		if err != nil {
			return nil, err
		}
		entities = intersect(entities, matching)
	}

	if limit > 0 && len(entities) > limit {
		entities = entities[:limit]
	}

	records := make([]models.EntityRecord, 0, len(entities))
	for i := range entities {
		values, err := loadEntityValues(tx, entities[i].ID, attributes)
		if err != nil {
			return nil, err
		}
		records = append(records, models.EntityRecord{
			ID:         entities[i].ID,
			SchemaName: schema.Name,
			Values:     values,
		})
	}
	return records, nil
}

func entityIDsWithValue(tx *gorm.DB, attribute models.Attribute, value models.Value) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	var res *gorm.DB
	switch attribute.Datatype {
	case models.DatatypeString:
		res = tx.Model(&models.EntityStringValue{}).
			Where("attribute_id = ? AND value = ?", attribute.ID, value.StringVal()).
			Pluck("entity_id", &ids)
	case models.DatatypeInteger:
		res = tx.Model(&models.EntityIntegerValue{}).
			Where("attribute_id = ? AND value = ?", attribute.ID, value.IntegerVal()).
			Pluck("entity_id", &ids)
	case models.DatatypeFloat:
		res = tx.Model(&models.EntityFloatValue{}).
			Where("attribute_id = ? AND value = ?", attribute.ID, value.FloatVal()).
			Pluck("entity_id", &ids)
	case models.DatatypeBoolean:
		res = tx.Model(&models.EntityBooleanValue{}).
			Where("attribute_id = ? AND value = ?", attribute.ID, value.BooleanVal()).
			Pluck("entity_id", &ids)
	}
	if res.Error != nil {
		return nil, res.Error
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func intersect(entities []models.Entity, ids map[uuid.UUID]struct{}) []models.Entity {
	kept := entities[:0]
	for _, entity := range entities {
		if _, ok := ids[entity.ID]; ok {
			kept = append(kept, entity)
		}
	}
	return kept
}
