package store

import (
	"errors"
	"fmt"

	"github.com/twincore-io/twincore/internal/database"
	"github.com/twincore-io/twincore/internal/models"
	"gorm.io/gorm"
)

// CreateAttribute registers a new attribute in the given kind's namespace.
// The (kind, name) pair is unique; the database index is what rejects a
// duplicate, so concurrent creations race safely.
func CreateAttribute(tx *gorm.DB, kind models.AttributeKind, add models.AddAttribute) (*models.Attribute, error) {
	if !kind.Valid() {
		return nil, NewValidationError("kind", fmt.Sprintf("unrecognised attribute kind %q", kind))
	}
	if add.Name == "" {
		return nil, NewValidationError("name", "name cannot be empty")
	}
	if !add.Datatype.Valid() {
		return nil, NewValidationError("datatype", fmt.Sprintf("unrecognised datatype %q", add.Datatype))
	}

	attribute := models.Attribute{
		Kind:     kind,
		Name:     add.Name,
		Units:    add.Units,
		Datatype: add.Datatype,
	}
	if res := tx.Create(&attribute); res.Error != nil {
		if database.IsDuplicateError(res.Error) {
			return nil, NewConflictError(string(kind), add.Name)
		}
		return nil, res.Error
	}
	return &attribute, nil
}

// GetAttribute looks up one attribute by kind and name.
func GetAttribute(tx *gorm.DB, kind models.AttributeKind, name string) (*models.Attribute, error) {
	var attribute models.Attribute
	res := tx.Where("kind = ? AND name = ?", kind, name).First(&attribute)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(string(kind), name)
		}
		return nil, res.Error
	}
	return &attribute, nil
}

// ListAttributes returns the kind's attributes in creation order.
func ListAttributes(tx *gorm.DB, kind models.AttributeKind) ([]models.Attribute, error) {
	attributes := make([]models.Attribute, 0)
	res := tx.Where("kind = ?", kind).Order("created_at").Find(&attributes)
	if res.Error != nil {
		return nil, res.Error
	}
	return attributes, nil
}

// DeleteAttribute removes an attribute, refusing while any schema still binds
// it or any stored reading references it. Model run outputs key readings by
// measure without a schema binding, so the bindings count alone is not enough.
func DeleteAttribute(tx *gorm.DB, kind models.AttributeKind, name string) error {
	attribute, err := GetAttribute(tx, kind, name)
	if err != nil {
		return err
	}

	var bindings int64
	if res := tx.Model(&models.SchemaAttribute{}).Where("attribute_id = ?", attribute.ID).Count(&bindings); res.Error != nil {
		return res.Error
	}
	if bindings > 0 {
		return NewInvalidStateError(fmt.Sprintf("%s %q is bound by %d schema(s)", kind, name, bindings))
	}

	var points int64
	for _, table := range []interface{}{
		&models.StringReading{},
		&models.IntegerReading{},
		&models.FloatReading{},
		&models.BooleanReading{},
	} {
		var rows int64
		if res := tx.Model(table).Where("measure_id = ?", attribute.ID).Count(&rows); res.Error != nil {
			return res.Error
		}
		points += rows
	}
	if points > 0 {
		return NewInvalidStateError(fmt.Sprintf("%s %q has %d stored reading(s)", kind, name, points))
	}

	return tx.Delete(&models.Attribute{}, "id = ?", attribute.ID).Error
}

// ensureAttributes resolves each definition to an existing attribute or
// creates it, preserving the order given. A definition without a datatype can
// only bind an existing attribute; one with a datatype that disagrees with the
// existing declaration is a validation failure, not a silent redefinition.
func ensureAttributes(tx *gorm.DB, kind models.AttributeKind, defs []models.AddAttribute) ([]models.Attribute, error) {
	attributes := make([]models.Attribute, 0, len(defs))
	for _, def := range defs {
		existing, err := GetAttribute(tx, kind, def.Name)
		if err == nil {
			if def.Datatype != "" && existing.Datatype != def.Datatype {
				return nil, NewValidationError(def.Name,
					fmt.Sprintf("attribute already declared with datatype %q", existing.Datatype))
			}
			attributes = append(attributes, *existing)
			continue
		}
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		if def.Datatype == "" {
			return nil, NewValidationError(def.Name, fmt.Sprintf("no %s with that name", kind))
		}
		created, err := CreateAttribute(tx, kind, def)
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, *created)
	}
	return attributes, nil
}
