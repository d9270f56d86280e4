package models

import (
	"time"

	"github.com/google/uuid"
)

// Sensor is a device reporting time-series readings for the measures bound by
// its sensor type. Unlike locations, sensors are deduplicated by their
// caller-supplied unique identifier, not by a value tuple.
type Sensor struct {
	Base
	SchemaID         uuid.UUID `gorm:"type:uuid" json:"-"`
	UniqueIdentifier string    `gorm:"uniqueIndex" json:"unique_identifier" example:"TRH-042"`
	Name             string    `json:"name" example:"Roof temperature sensor"`
	Notes            string    `json:"notes"`

	Schema         *Schema `json:"-"`
	SensorTypeName string  `gorm:"-" json:"sensor_type"`
}

// AddSensor is the request body for registering a sensor.
type AddSensor struct {
	SensorType       string `json:"sensor_type" example:"weather_station"`
	UniqueIdentifier string `json:"unique_identifier" example:"TRH-042"`
	Name             string `json:"name"`
	Notes            string `json:"notes"`
}

// SensorLocation records that a sensor has been at a location from an
// installation time onward, open-ended until a more recent assignment exists.
type SensorLocation struct {
	ID               uint64    `gorm:"primarykey" json:"-"`
	SensorID         uuid.UUID `gorm:"type:uuid" json:"-"`
	EntityID         uuid.UUID `gorm:"type:uuid" json:"location_id"`
	InstallationTime time.Time `json:"installation_datetime"`
}

// SensorLocationRecord is one history entry with the location's coordinates
// resolved.
type SensorLocationRecord struct {
	Location         EntityRecord `json:"location"`
	InstallationTime time.Time    `json:"installation_datetime"`
}

// AddSensorLocation is the request body for recording a sensor installation.
type AddSensorLocation struct {
	SchemaName           string                 `json:"schema_name" example:"latlong"`
	Coordinates          map[string]interface{} `json:"coordinates"`
	InstallationDatetime string                 `json:"installation_datetime" example:"2024-01-01T00:00:00"`
}
