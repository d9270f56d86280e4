package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twincore-io/twincore/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertReadings stores a batch of (timestamp, value) points for one owner and
// measure. Values and timestamps line up by position and must be equal-length.
// A point whose (entity, measure, timestamp) key is already present is
// silently skipped, so replayed batches are idempotent.
func InsertReadings(tx *gorm.DB, entityID uuid.UUID, measure *models.Attribute, values []interface{}, timestamps []time.Time) error {
	if len(values) != len(timestamps) {
		return NewValidationError("timestamps",
			fmt.Sprintf("got %d readings but %d timestamps", len(values), len(timestamps)))
	}
	if len(values) == 0 {
		return nil
	}

	coerced := make([]models.Value, len(values))
	for i, raw := range values {
		value, err := models.CoerceValue(raw, measure.Datatype)
		if err != nil {
			return NewValidationError("readings", fmt.Sprintf("reading %d: %s", i, err.Error()))
		}
		coerced[i] = value
	}

	ignoreDuplicates := clause.OnConflict{DoNothing: true}
	switch measure.Datatype {
	case models.DatatypeString:
		rows := make([]models.StringReading, len(coerced))
		for i, value := range coerced {
			rows[i] = models.StringReading{EntityID: entityID, MeasureID: measure.ID, Timestamp: timestamps[i], Value: value.StringVal()}
		}
		return tx.Clauses(ignoreDuplicates).Create(&rows).Error
	case models.DatatypeInteger:
		rows := make([]models.IntegerReading, len(coerced))
		for i, value := range coerced {
			rows[i] = models.IntegerReading{EntityID: entityID, MeasureID: measure.ID, Timestamp: timestamps[i], Value: value.IntegerVal()}
		}
		return tx.Clauses(ignoreDuplicates).Create(&rows).Error
	case models.DatatypeFloat:
		rows := make([]models.FloatReading, len(coerced))
		for i, value := range coerced {
			rows[i] = models.FloatReading{EntityID: entityID, MeasureID: measure.ID, Timestamp: timestamps[i], Value: value.FloatVal()}
		}
		return tx.Clauses(ignoreDuplicates).Create(&rows).Error
	case models.DatatypeBoolean:
		rows := make([]models.BooleanReading, len(coerced))
		for i, value := range coerced {
			rows[i] = models.BooleanReading{EntityID: entityID, MeasureID: measure.ID, Timestamp: timestamps[i], Value: value.BooleanVal()}
		}
		return tx.Clauses(ignoreDuplicates).Create(&rows).Error
	}
	return NewValidationError("measure_name", fmt.Sprintf("unrecognised datatype %q", measure.Datatype))
}

// QueryReadings returns the owner's points for one measure with timestamps in
// the inclusive [from, to] range, ordered by timestamp. No matching rows is an
// empty slice, not an error.
func QueryReadings(tx *gorm.DB, entityID uuid.UUID, measure *models.Attribute, from, to time.Time) ([]models.Reading, error) {
	return readingsFor(tx, entityID, measure, &from, &to)
}

func readingsFor(tx *gorm.DB, entityID uuid.UUID, measure *models.Attribute, from, to *time.Time) ([]models.Reading, error) {
	query := tx.Where("entity_id = ? AND measure_id = ?", entityID, measure.ID).Order("timestamp")
	if from != nil {
		query = query.Where("timestamp >= ?", *from)
	}
	if to != nil {
		query = query.Where("timestamp <= ?", *to)
	}

	readings := make([]models.Reading, 0)
	switch measure.Datatype {
	case models.DatatypeString:
		var rows []models.StringReading
		if res := query.Find(&rows); res.Error != nil {
			return nil, res.Error
		}
		for _, row := range rows {
			readings = append(readings, models.Reading{Timestamp: row.Timestamp, Value: row.Value})
		}
	case models.DatatypeInteger:
		var rows []models.IntegerReading
		if res := query.Find(&rows); res.Error != nil {
			return nil, res.Error
		}
		for _, row := range rows {
			readings = append(readings, models.Reading{Timestamp: row.Timestamp, Value: row.Value})
		}
	case models.DatatypeFloat:
		var rows []models.FloatReading
		if res := query.Find(&rows); res.Error != nil {
			return nil, res.Error
		}
		for _, row := range rows {
			readings = append(readings, models.Reading{Timestamp: row.Timestamp, Value: row.Value})
		}
	case models.DatatypeBoolean:
		var rows []models.BooleanReading
		if res := query.Find(&rows); res.Error != nil {
			return nil, res.Error
		}
		for _, row := range rows {
			readings = append(readings, models.Reading{Timestamp: row.Timestamp, Value: row.Value})
		}
	}
	return readings, nil
}

// deleteReadingsFor drops every reading keyed by the owner, across all four
// typed tables. Runs inside the owner's delete transaction.
func deleteReadingsFor(tx *gorm.DB, entityID uuid.UUID) error {
	for _, table := range []interface{}{
		&models.StringReading{},
		&models.IntegerReading{},
		&models.FloatReading{},
		&models.BooleanReading{},
	} {
		if res := tx.Where("entity_id = ?", entityID).Delete(table); res.Error != nil {
			return res.Error
		}
	}
	return nil
}
