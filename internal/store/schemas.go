package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/twincore-io/twincore/internal/database"
	"github.com/twincore-io/twincore/internal/models"
	"gorm.io/gorm"
)

// CreateSchema binds the named attributes into a new schema. Every attribute
// must already exist in the kind's namespace. Schema names are globally
// unique, even across kinds, but two names may bind the same attribute set.
func CreateSchema(tx *gorm.DB, kind models.AttributeKind, name, description string, attributeNames []string) (*models.SchemaDetails, error) {
	if name == "" {
		return nil, NewValidationError("name", "name cannot be empty")
	}
	if len(attributeNames) == 0 {
		return nil, NewValidationError("identifiers", "a schema needs at least one attribute")
	}

	attributes := make([]models.Attribute, 0, len(attributeNames))
	for _, attrName := range attributeNames {
		attribute, err := GetAttribute(tx, kind, attrName)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return nil, NewValidationError(attrName, fmt.Sprintf("no %s with that name", kind))
			}
			return nil, err
		}
		attributes = append(attributes, *attribute)
	}

	return createSchemaRows(tx, kind, name, description, attributes)
}

// CreateSchemaInline binds attribute definitions into a new schema,
// registering on the fly any definition that carries a datatype. A name-only
// definition must match an existing attribute.
func CreateSchemaInline(tx *gorm.DB, kind models.AttributeKind, name, description string, defs []models.AddAttribute) (*models.SchemaDetails, error) {
	if name == "" {
		return nil, NewValidationError("name", "name cannot be empty")
	}
	if len(defs) == 0 {
		return nil, NewValidationError("identifiers", "a schema needs at least one attribute")
	}
	attributes, err := ensureAttributes(tx, kind, defs)
	if err != nil {
		return nil, err
	}
	return createSchemaRows(tx, kind, name, description, attributes)
}

func createSchemaRows(tx *gorm.DB, kind models.AttributeKind, name, description string, attributes []models.Attribute) (*models.SchemaDetails, error) {
	schema := models.Schema{
		Kind:        kind,
		Name:        name,
		Description: description,
	}
	if res := tx.Create(&schema); res.Error != nil {
		if database.IsDuplicateError(res.Error) {
			return nil, NewConflictError("schema", name)
		}
		return nil, res.Error
	}
	for _, attribute := range attributes {
		binding := models.SchemaAttribute{
			SchemaID:    schema.ID,
			AttributeID: attribute.ID,
		}
		if res := tx.Create(&binding); res.Error != nil {
			return nil, res.Error
		}
	}
	return &models.SchemaDetails{
		ID:          schema.ID,
		Name:        schema.Name,
		Description: schema.Description,
		Attributes:  attributes,
	}, nil
}

// ResolveSchemaByAttributes finds the schema whose attribute set equals the
// given one, ignoring order. When no schema matches, one is created named by
// joining the attribute names with "-" in the order supplied.
func ResolveSchemaByAttributes(tx *gorm.DB, kind models.AttributeKind, attributes []models.Attribute) (*models.SchemaDetails, error) {
	if len(attributes) == 0 {
		return nil, NewValidationError("identifiers", "a schema needs at least one attribute")
	}

	wanted := make(map[uuid.UUID]struct{}, len(attributes))
	names := make([]string, 0, len(attributes))
	for _, attribute := range attributes {
		wanted[attribute.ID] = struct{}{}
		names = append(names, attribute.Name)
	}

	var schemas []models.Schema
	if res := tx.Preload("Attributes").Where("kind = ?", kind).Find(&schemas); res.Error != nil {
		return nil, res.Error
	}
	for _, schema := range schemas {
		if len(schema.Attributes) != len(wanted) {
			continue
		}
		matched := true
		for _, binding := range schema.Attributes {
			if _, ok := wanted[binding.AttributeID]; !ok {
				matched = false
				break
			}
		}
		if matched {
			return schemaDetails(tx, &schema)
		}
	}

	return createSchemaRows(tx, kind, strings.Join(names, "-"), "", attributes)
}

func getSchemaRow(tx *gorm.DB, kind models.AttributeKind, name string) (*models.Schema, error) {
	var schema models.Schema
	res := tx.Where("kind = ? AND name = ?", kind, name).First(&schema)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("schema", name)
		}
		return nil, res.Error
	}
	return &schema, nil
}

// schemaAttributes returns the schema's attribute definitions in binding
// order.
func schemaAttributes(tx *gorm.DB, schemaID uuid.UUID) ([]models.Attribute, error) {
	var bindings []models.SchemaAttribute
	if res := tx.Where("schema_id = ?", schemaID).Order("id").Find(&bindings); res.Error != nil {
		return nil, res.Error
	}
	attributes := make([]models.Attribute, 0, len(bindings))
	for _, binding := range bindings {
		var attribute models.Attribute
		if res := tx.First(&attribute, "id = ?", binding.AttributeID); res.Error != nil {
			return nil, res.Error
		}
		attributes = append(attributes, attribute)
	}
	return attributes, nil
}

func schemaDetails(tx *gorm.DB, schema *models.Schema) (*models.SchemaDetails, error) {
	attributes, err := schemaAttributes(tx, schema.ID)
	if err != nil {
		return nil, err
	}
	return &models.SchemaDetails{
		ID:          schema.ID,
		Name:        schema.Name,
		Description: schema.Description,
		Attributes:  attributes,
	}, nil
}

// GetSchema returns a schema with its attribute definitions resolved.
func GetSchema(tx *gorm.DB, kind models.AttributeKind, name string) (*models.SchemaDetails, error) {
	schema, err := getSchemaRow(tx, kind, name)
	if err != nil {
		return nil, err
	}
	return schemaDetails(tx, schema)
}

// ListSchemas returns the kind's schemas in creation order, attributes
// resolved.
func ListSchemas(tx *gorm.DB, kind models.AttributeKind) ([]models.SchemaDetails, error) {
	var schemas []models.Schema
	if res := tx.Where("kind = ?", kind).Order("created_at").Find(&schemas); res.Error != nil {
		return nil, res.Error
	}
	details := make([]models.SchemaDetails, 0, len(schemas))
	for i := range schemas {
		d, err := schemaDetails(tx, &schemas[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// DeleteSchema removes a schema and its attribute bindings, refusing while
// entities or sensors still reference it.
func DeleteSchema(tx *gorm.DB, kind models.AttributeKind, name string) error {
	schema, err := getSchemaRow(tx, kind, name)
	if err != nil {
		return err
	}

	var entities int64
	if res := tx.Model(&models.Entity{}).Where("schema_id = ?", schema.ID).Count(&entities); res.Error != nil {
		return res.Error
	}
	if entities > 0 {
		return NewInvalidStateError(fmt.Sprintf("schema %q still has %d entities", name, entities))
	}
	var sensors int64
	if res := tx.Model(&models.Sensor{}).Where("schema_id = ?", schema.ID).Count(&sensors); res.Error != nil {
		return res.Error
	}
	if sensors > 0 {
		return NewInvalidStateError(fmt.Sprintf("schema %q still has %d sensors", name, sensors))
	}

	if res := tx.Where("schema_id = ?", schema.ID).Delete(&models.SchemaAttribute{}); res.Error != nil {
		return res.Error
	}
	return tx.Delete(&models.Schema{}, "id = ?", schema.ID).Error
}
