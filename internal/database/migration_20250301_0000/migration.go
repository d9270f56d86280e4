package migration_20250301_0000

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	. "github.com/twincore-io/twincore/internal/database/migrations"
)

type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`
}

type Attribute struct {
	Base
	Kind     string `gorm:"index:idx_attributes_kind_name,unique"`
	Name     string `gorm:"index:idx_attributes_kind_name,unique"`
	Units    string
	Datatype string
}

type Schema struct {
	Base
	Kind        string
	Name        string `gorm:"uniqueIndex:idx_schemas_name"`
	Description string
}

type SchemaAttribute struct {
	ID          uint64    `gorm:"primary_key"`
	SchemaID    uuid.UUID `gorm:"index:idx_schema_attributes_key,unique"`
	AttributeID uuid.UUID `gorm:"index:idx_schema_attributes_key,unique"`
}

type Entity struct {
	Base
	SchemaID  uuid.UUID `gorm:"index:idx_entities_schema_hash,unique"`
	ValueHash string    `gorm:"index:idx_entities_schema_hash,unique"`
}

type EntityStringValue struct {
	ID          uint64    `gorm:"primary_key"`
	EntityID    uuid.UUID `gorm:"index:idx_entity_string_values_key,unique"`
	AttributeID uuid.UUID `gorm:"index:idx_entity_string_values_key,unique"`
	Value       string
}

type EntityIntegerValue struct {
	ID          uint64    `gorm:"primary_key"`
	EntityID    uuid.UUID `gorm:"index:idx_entity_integer_values_key,unique"`
	AttributeID uuid.UUID `gorm:"index:idx_entity_integer_values_key,unique"`
	Value       int64
}

type EntityFloatValue struct {
	ID          uint64    `gorm:"primary_key"`
	EntityID    uuid.UUID `gorm:"index:idx_entity_float_values_key,unique"`
	AttributeID uuid.UUID `gorm:"index:idx_entity_float_values_key,unique"`
	Value       float64
}

type EntityBooleanValue struct {
	ID          uint64    `gorm:"primary_key"`
	EntityID    uuid.UUID `gorm:"index:idx_entity_boolean_values_key,unique"`
	AttributeID uuid.UUID `gorm:"index:idx_entity_boolean_values_key,unique"`
	Value       bool
}

type Sensor struct {
	Base
	SchemaID         uuid.UUID
	UniqueIdentifier string `gorm:"uniqueIndex:idx_sensors_uid"`
	Name             string
	Notes            string
}

type SensorLocation struct {
	ID               uint64    `gorm:"primary_key"`
	SensorID         uuid.UUID `gorm:"index:idx_sensor_locations_key,unique"`
	EntityID         uuid.UUID
	InstallationTime time.Time `gorm:"index:idx_sensor_locations_key,unique"`
}

type StringReading struct {
	ID        uint64    `gorm:"primary_key"`
	EntityID  uuid.UUID `gorm:"index:idx_string_readings_key,unique"`
	MeasureID uuid.UUID `gorm:"index:idx_string_readings_key,unique"`
	Timestamp time.Time `gorm:"index:idx_string_readings_key,unique"`
	Value     string
}

type IntegerReading struct {
	ID        uint64    `gorm:"primary_key"`
	EntityID  uuid.UUID `gorm:"index:idx_integer_readings_key,unique"`
	MeasureID uuid.UUID `gorm:"index:idx_integer_readings_key,unique"`
	Timestamp time.Time `gorm:"index:idx_integer_readings_key,unique"`
	Value     int64
}

type FloatReading struct {
	ID        uint64    `gorm:"primary_key"`
	EntityID  uuid.UUID `gorm:"index:idx_float_readings_key,unique"`
	MeasureID uuid.UUID `gorm:"index:idx_float_readings_key,unique"`
	Timestamp time.Time `gorm:"index:idx_float_readings_key,unique"`
	Value     float64
}

type BooleanReading struct {
	ID        uint64    `gorm:"primary_key"`
	EntityID  uuid.UUID `gorm:"index:idx_boolean_readings_key,unique"`
	MeasureID uuid.UUID `gorm:"index:idx_boolean_readings_key,unique"`
	Timestamp time.Time `gorm:"index:idx_boolean_readings_key,unique"`
	Value     bool
}

type MLModel struct {
	Base
	Name string `gorm:"uniqueIndex:idx_ml_models_name"`
}

func (MLModel) TableName() string {
	return "ml_models"
}

type ModelScenario struct {
	Base
	ModelID     uuid.UUID `gorm:"index:idx_model_scenarios_key,unique"`
	Description string    `gorm:"index:idx_model_scenarios_key,unique"`
}

type ModelRun struct {
	Base
	ModelID         uuid.UUID
	ScenarioID      *uuid.UUID
	SensorID        *uuid.UUID
	SensorMeasureID *uuid.UUID
}

func Migrate() *gormigrate.Migration {
	migrationId := "20250301-0000"
	return CreateMigrationFromActions(migrationId,
		CreateTableAction(&Attribute{}),
		CreateTableAction(&Schema{}),
		CreateTableAction(&SchemaAttribute{}),
		CreateTableAction(&Entity{}),
		CreateTableAction(&EntityStringValue{}),
		CreateTableAction(&EntityIntegerValue{}),
		CreateTableAction(&EntityFloatValue{}),
		CreateTableAction(&EntityBooleanValue{}),
		CreateTableAction(&Sensor{}),
		CreateTableAction(&SensorLocation{}),
		CreateTableAction(&StringReading{}),
		CreateTableAction(&IntegerReading{}),
		CreateTableAction(&FloatReading{}),
		CreateTableAction(&BooleanReading{}),
		CreateTableAction(&MLModel{}),
		CreateTableAction(&ModelScenario{}),
		CreateTableAction(&ModelRun{}),
	)
}
