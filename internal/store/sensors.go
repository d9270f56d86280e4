package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/twincore-io/twincore/internal/database"
	"github.com/twincore-io/twincore/internal/models"
	"gorm.io/gorm"
)

// CreateSensor registers a sensor of the named sensor type. The caller-chosen
// unique identifier is the dedup key; a second registration under the same
// identifier is a conflict.
func CreateSensor(tx *gorm.DB, add models.AddSensor) (*models.Sensor, error) {
	if add.UniqueIdentifier == "" {
		return nil, NewValidationError("unique_identifier", "unique_identifier cannot be empty")
	}
	sensorType, err := getSchemaRow(tx, models.KindMeasure, add.SensorType)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, NewValidationError("sensor_type", fmt.Sprintf("unknown sensor type %q", add.SensorType))
		}
		return nil, err
	}

	sensor := models.Sensor{
		SchemaID:         sensorType.ID,
		UniqueIdentifier: add.UniqueIdentifier,
		Name:             add.Name,
		Notes:            add.Notes,
	}
	if res := tx.Create(&sensor); res.Error != nil {
		if database.IsDuplicateError(res.Error) {
			return nil, NewConflictError("sensor", add.UniqueIdentifier)
		}
		return nil, res.Error
	}
	sensor.SensorTypeName = sensorType.Name
	return &sensor, nil
}

// GetSensor looks up a sensor by its unique identifier.
func GetSensor(tx *gorm.DB, uniqueIdentifier string) (*models.Sensor, error) {
	var sensor models.Sensor
	res := tx.Preload("Schema").Where("unique_identifier = ?", uniqueIdentifier).First(&sensor)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("sensor", uniqueIdentifier)
		}
		return nil, res.Error
	}
	if sensor.Schema != nil {
		sensor.SensorTypeName = sensor.Schema.Name
	}
	return &sensor, nil
}

// ListSensors returns sensors in creation order, optionally restricted to one
// sensor type.
func ListSensors(tx *gorm.DB, typeName string) ([]models.Sensor, error) {
	query := tx.Preload("Schema").Order("created_at")
	if typeName != "" {
		sensorType, err := getSchemaRow(tx, models.KindMeasure, typeName)
		if err != nil {
			return nil, err
		}
		query = query.Where("schema_id = ?", sensorType.ID)
	}
	sensors := make([]models.Sensor, 0)
	if res := query.Find(&sensors); res.Error != nil {
		return nil, res.Error
	}
	for i := range sensors {
		if sensors[i].Schema != nil {
			sensors[i].SensorTypeName = sensors[i].Schema.Name
		}
	}
	return sensors, nil
}

// DeleteSensor removes a sensor together with its readings and location
// history.
func DeleteSensor(tx *gorm.DB, uniqueIdentifier string) error {
	sensor, err := GetSensor(tx, uniqueIdentifier)
	if err != nil {
		return err
	}
	if err := deleteReadingsFor(tx, sensor.ID); err != nil {
		return err
	}
	if res := tx.Where("sensor_id = ?", sensor.ID).Delete(&models.SensorLocation{}); res.Error != nil {
		return res.Error
	}
	return tx.Delete(&models.Sensor{}, "id = ?", sensor.ID).Error
}

// sensorMeasure resolves a measure by name and checks that the sensor's type
// actually binds it.
func sensorMeasure(tx *gorm.DB, sensor *models.Sensor, measureName string) (*models.Attribute, error) {
	measure, err := GetAttribute(tx, models.KindMeasure, measureName)
	if err != nil {
		return nil, err
	}
	var bound int64
	res := tx.Model(&models.SchemaAttribute{}).
		Where("schema_id = ? AND attribute_id = ?", sensor.SchemaID, measure.ID).
		Count(&bound)
	if res.Error != nil {
		return nil, res.Error
	}
	if bound == 0 {
		return nil, NewNotFoundError("measure", measureName)
	}
	return measure, nil
}

// InsertSensorReadings stores a batch of readings for one sensor and measure.
func InsertSensorReadings(tx *gorm.DB, uniqueIdentifier, measureName string, values []interface{}, timestamps []time.Time) error {
	sensor, err := GetSensor(tx, uniqueIdentifier)
	if err != nil {
		return err
	}
	measure, err := sensorMeasure(tx, sensor, measureName)
	if err != nil {
		return err
	}
	return InsertReadings(tx, sensor.ID, measure, values, timestamps)
}

// QuerySensorReadings returns one sensor's points for a measure in the
// inclusive [from, to] range.
func QuerySensorReadings(tx *gorm.DB, uniqueIdentifier, measureName string, from, to time.Time) ([]models.Reading, error) {
	sensor, err := GetSensor(tx, uniqueIdentifier)
	if err != nil {
		return nil, err
	}
	measure, err := sensorMeasure(tx, sensor, measureName)
	if err != nil {
		return nil, err
	}
	return QueryReadings(tx, sensor.ID, measure, from, to)
}

// AssignSensorLocation records that the sensor has been at the location
// described by the coordinates since installedAt. The location must already
// exist; one installation per (sensor, time).
func AssignSensorLocation(tx *gorm.DB, uniqueIdentifier, schemaName string, coordinates map[string]interface{}, installedAt time.Time) error {
	sensor, err := GetSensor(tx, uniqueIdentifier)
	if err != nil {
		return err
	}
	schema, err := getSchemaRow(tx, models.KindIdentifier, schemaName)
	if err != nil {
		return err
	}
	entity, err := resolveEntityByValues(tx, schema, coordinates)
	if err != nil {
		return err
	}

	location := models.SensorLocation{
		SensorID:         sensor.ID,
		EntityID:         entity.ID,
		InstallationTime: installedAt,
	}
	if res := tx.Create(&location); res.Error != nil {
		if database.IsDuplicateError(res.Error) {
			return NewConflictError("sensor location", installedAt.Format(time.RFC3339))
		}
		return res.Error
	}
	return nil
}

// ListSensorLocations returns the sensor's installation history newest-first,
// coordinates resolved.
func ListSensorLocations(tx *gorm.DB, uniqueIdentifier string) ([]models.SensorLocationRecord, error) {
	sensor, err := GetSensor(tx, uniqueIdentifier)
	if err != nil {
		return nil, err
	}
	var locations []models.SensorLocation
	res := tx.Where("sensor_id = ?", sensor.ID).Order("installation_time desc").Find(&locations)
	if res.Error != nil {
		return nil, res.Error
	}

	records := make([]models.SensorLocationRecord, 0, len(locations))
	for _, location := range locations {
		var entity models.Entity
		if res := tx.First(&entity, "id = ?", location.EntityID); res.Error != nil {
			return nil, res.Error
		}
		var schema models.Schema
		if res := tx.First(&schema, "id = ?", entity.SchemaID); res.Error != nil {
			return nil, res.Error
		}
		record, err := loadEntityRecord(tx, &entity, schema.Name)
		if err != nil {
			return nil, err
		}
		records = append(records, models.SensorLocationRecord{
			Location:         *record,
			InstallationTime: location.InstallationTime,
		})
	}
	return records, nil
}
