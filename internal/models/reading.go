package models

import (
	"time"

	"github.com/google/uuid"
)

// The four typed reading tables. EntityID is the owning sensor or model run;
// readings are deleted together with their owner inside the same transaction,
// so the column carries no foreign key.

type StringReading struct {
	ID        uint64    `gorm:"primarykey"`
	EntityID  uuid.UUID `gorm:"type:uuid"`
	MeasureID uuid.UUID `gorm:"type:uuid"`
	Timestamp time.Time
	Value     string
}

type IntegerReading struct {
	ID        uint64    `gorm:"primarykey"`
	EntityID  uuid.UUID `gorm:"type:uuid"`
	MeasureID uuid.UUID `gorm:"type:uuid"`
	Timestamp time.Time
	Value     int64
}

type FloatReading struct {
	ID        uint64    `gorm:"primarykey"`
	EntityID  uuid.UUID `gorm:"type:uuid"`
	MeasureID uuid.UUID `gorm:"type:uuid"`
	Timestamp time.Time
	Value     float64
}

type BooleanReading struct {
	ID        uint64    `gorm:"primarykey"`
	EntityID  uuid.UUID `gorm:"type:uuid"`
	MeasureID uuid.UUID `gorm:"type:uuid"`
	Timestamp time.Time
	Value     bool
}

// Reading is one (timestamp, value) point as returned by the API.
type Reading struct {
	Timestamp time.Time   `json:"timestamp"`
	Value     interface{} `json:"value"`
}

// AddReadings is the request body for inserting a batch of sensor readings.
// Readings and timestamps are equal-length arrays matched one-to-one.
type AddReadings struct {
	MeasureName      string        `json:"measure_name" example:"temperature"`
	UniqueIdentifier string        `json:"unique_identifier" example:"TRH-042"`
	Readings         []interface{} `json:"readings"`
	Timestamps       []string      `json:"timestamps"`
}
