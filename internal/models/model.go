package models

import (
	"time"

	"github.com/google/uuid"
)

// MLModel is a predictive model registered with the twin. The table is named
// ml_models to avoid colliding with the SQL keyword-adjacent "models".
type MLModel struct {
	Base
	Name string `gorm:"uniqueIndex" json:"name" example:"arima"`
}

func (MLModel) TableName() string {
	return "ml_models"
}

// ModelScenario is one way of running a model, described free-form. The
// (model, description) pair is unique.
type ModelScenario struct {
	Base
	ModelID     uuid.UUID `gorm:"type:uuid;index:idx_model_scenarios_key,unique" json:"model_id"`
	Description string    `gorm:"index:idx_model_scenarios_key,unique" json:"description" example:"business as usual"`
}

// ModelRun is a single execution of a model under a scenario. Its outputs are
// readings keyed by the run's id, exactly like sensor readings are keyed by
// the sensor's. SensorID and SensorMeasureID optionally name an observed
// series the run's output should be compared against.
type ModelRun struct {
	Base
	ModelID         uuid.UUID  `gorm:"type:uuid" json:"model_id"`
	ScenarioID      *uuid.UUID `gorm:"type:uuid" json:"scenario_id,omitempty"`
	SensorID        *uuid.UUID `gorm:"type:uuid" json:"sensor_id,omitempty"`
	SensorMeasureID *uuid.UUID `gorm:"type:uuid" json:"sensor_measure_id,omitempty"`

	TimeCreated time.Time `gorm:"-" json:"time_created"`
}

// AddModel is the request body for registering a model.
type AddModel struct {
	Name string `json:"name" example:"arima"`
}

// AddModelScenario is the request body for registering a scenario.
type AddModelScenario struct {
	ModelName   string `json:"model_name" example:"arima"`
	Description string `json:"description" example:"business as usual"`
}

// ModelRunOutput is one output series of a model run.
type ModelRunOutput struct {
	MeasureName string        `json:"measure_name" example:"temperature_forecast"`
	Values      []interface{} `json:"values"`
	Timestamps  []string      `json:"timestamps"`
}

// AddModelRun is the request body for recording a model run and its outputs.
type AddModelRun struct {
	ModelName           string           `json:"model_name" example:"arima"`
	ScenarioDescription string           `json:"scenario_description,omitempty"`
	CreateScenario      bool             `json:"create_scenario,omitempty"`
	SensorUID           string           `json:"sensor_unique_id,omitempty"`
	SensorMeasure       string           `json:"sensor_measure,omitempty"`
	Measures            []ModelRunOutput `json:"measures_and_values"`
}

// ModelRunDetails describes a run in list responses.
type ModelRunDetails struct {
	ID                  uuid.UUID `json:"id"`
	ModelName           string    `json:"model_name"`
	ScenarioDescription string    `json:"scenario_description,omitempty"`
	TimeCreated         time.Time `json:"time_created"`
}
