package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twincore-io/twincore/internal/database"
	"github.com/twincore-io/twincore/internal/models"
	"gorm.io/gorm"
)

// CreateModel registers a predictive model by name.
func CreateModel(tx *gorm.DB, name string) (*models.MLModel, error) {
	if name == "" {
		return nil, NewValidationError("name", "name cannot be empty")
	}
	model := models.MLModel{Name: name}
	if res := tx.Create(&model); res.Error != nil {
		if database.IsDuplicateError(res.Error) {
			return nil, NewConflictError("model", name)
		}
		return nil, res.Error
	}
	return &model, nil
}

func getModel(tx *gorm.DB, name string) (*models.MLModel, error) {
	var model models.MLModel
	res := tx.Where("name = ?", name).First(&model)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("model", name)
		}
		return nil, res.Error
	}
	return &model, nil
}

// ListModels returns all models in creation order.
func ListModels(tx *gorm.DB) ([]models.MLModel, error) {
	list := make([]models.MLModel, 0)
	if res := tx.Order("created_at").Find(&list); res.Error != nil {
		return nil, res.Error
	}
	return list, nil
}

// DeleteModel removes a model and its scenarios, refusing while runs exist.
func DeleteModel(tx *gorm.DB, name string) error {
	model, err := getModel(tx, name)
	if err != nil {
		return err
	}
	var runs int64
	if res := tx.Model(&models.ModelRun{}).Where("model_id = ?", model.ID).Count(&runs); res.Error != nil {
		return res.Error
	}
	if runs > 0 {
		return NewInvalidStateError(fmt.Sprintf("model %q still has %d runs", name, runs))
	}
	if res := tx.Where("model_id = ?", model.ID).Delete(&models.ModelScenario{}); res.Error != nil {
		return res.Error
	}
	return tx.Delete(&models.MLModel{}, "id = ?", model.ID).Error
}

// CreateModelScenario registers one way of running a model. The
// (model, description) pair is unique.
func CreateModelScenario(tx *gorm.DB, modelName, description string) (*models.ModelScenario, error) {
	if description == "" {
		return nil, NewValidationError("description", "description cannot be empty")
	}
	model, err := getModel(tx, modelName)
	if err != nil {
		return nil, err
	}
	scenario := models.ModelScenario{
		ModelID:     model.ID,
		Description: description,
	}
	if res := tx.Create(&scenario); res.Error != nil {
		if database.IsDuplicateError(res.Error) {
			return nil, NewConflictError("scenario", description)
		}
		return nil, res.Error
	}
	return &scenario, nil
}

func getModelScenario(tx *gorm.DB, modelID uuid.UUID, description string) (*models.ModelScenario, error) {
	var scenario models.ModelScenario
	res := tx.Where("model_id = ? AND description = ?", modelID, description).First(&scenario)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("scenario", description)
		}
		return nil, res.Error
	}
	return &scenario, nil
}

// ListModelScenarios returns scenarios in creation order, optionally for one
// model.
func ListModelScenarios(tx *gorm.DB, modelName string) ([]models.ModelScenario, error) {
	query := tx.Order("created_at")
	if modelName != "" {
		model, err := getModel(tx, modelName)
		if err != nil {
			return nil, err
		}
		query = query.Where("model_id = ?", model.ID)
	}
	scenarios := make([]models.ModelScenario, 0)
	if res := query.Find(&scenarios); res.Error != nil {
		return nil, res.Error
	}
	return scenarios, nil
}

// DeleteModelScenario removes a scenario, refusing while runs reference it.
func DeleteModelScenario(tx *gorm.DB, modelName, description string) error {
	model, err := getModel(tx, modelName)
	if err != nil {
		return err
	}
	scenario, err := getModelScenario(tx, model.ID, description)
	if err != nil {
		return err
	}
	var runs int64
	if res := tx.Model(&models.ModelRun{}).Where("scenario_id = ?", scenario.ID).Count(&runs); res.Error != nil {
		return res.Error
	}
	if runs > 0 {
		return NewInvalidStateError(fmt.Sprintf("scenario %q still has %d runs", description, runs))
	}
	return tx.Delete(&models.ModelScenario{}, "id = ?", scenario.ID).Error
}

// ModelRunOutput is one output series of a run, timestamps already parsed.
type ModelRunOutput struct {
	MeasureName string
	Values      []interface{}
	Timestamps  []time.Time
}

// CreateModelRun records one execution of a model and stores its output
// series, keyed by the run's id exactly like sensor readings are keyed by the
// sensor's. A scenario description is resolved against existing scenarios, or
// created on the fly when createScenario is set. The optional sensor
// references name an observed series to compare the run against.
func CreateModelRun(tx *gorm.DB, modelName, scenarioDescription string, createScenario bool,
	sensorUID, sensorMeasureName string, outputs []ModelRunOutput) (*models.ModelRun, error) {

	model, err := getModel(tx, modelName)
	if err != nil {
		return nil, err
	}

	run := models.ModelRun{ModelID: model.ID}

	if scenarioDescription != "" {
		scenario, err := getModelScenario(tx, model.ID, scenarioDescription)
		var notFound *NotFoundError
		if errors.As(err, &notFound) && createScenario {
			scenario, err = CreateModelScenario(tx, modelName, scenarioDescription)
		}
		if err != nil {
			return nil, err
		}
		run.ScenarioID = &scenario.ID
	}

	if sensorUID != "" {
		sensor, err := GetSensor(tx, sensorUID)
		if err != nil {
			return nil, err
		}
		run.SensorID = &sensor.ID
		if sensorMeasureName != "" {
			measure, err := sensorMeasure(tx, sensor, sensorMeasureName)
			if err != nil {
				return nil, err
			}
			run.SensorMeasureID = &measure.ID
		}
	}

	if res := tx.Create(&run); res.Error != nil {
		return nil, res.Error
	}

	for _, output := range outputs {
		measure, err := GetAttribute(tx, models.KindMeasure, output.MeasureName)
		if err != nil {
			return nil, err
		}
		if err := InsertReadings(tx, run.ID, measure, output.Values, output.Timestamps); err != nil {
			return nil, err
		}
	}

	run.TimeCreated = run.CreatedAt
	return &run, nil
}

// ListModelRuns returns a model's runs in creation order, optionally within an
// inclusive [from, to] window.
func ListModelRuns(tx *gorm.DB, modelName string, from, to *time.Time) ([]models.ModelRunDetails, error) {
	model, err := getModel(tx, modelName)
	if err != nil {
		return nil, err
	}
	query := tx.Where("model_id = ?", model.ID).Order("created_at")
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}
	var runs []models.ModelRun
	if res := query.Find(&runs); res.Error != nil {
		return nil, res.Error
	}

	details := make([]models.ModelRunDetails, 0, len(runs))
	for _, run := range runs {
		detail := models.ModelRunDetails{
			ID:          run.ID,
			ModelName:   model.Name,
			TimeCreated: run.CreatedAt,
		}
		if run.ScenarioID != nil {
			var scenario models.ModelScenario
			if res := tx.First(&scenario, "id = ?", *run.ScenarioID); res.Error != nil {
				return nil, res.Error
			}
			detail.ScenarioDescription = scenario.Description
		}
		details = append(details, detail)
	}
	return details, nil
}

// GetModelRunOutput returns a run's output series grouped by measure name.
func GetModelRunOutput(tx *gorm.DB, runID uuid.UUID) (map[string][]models.Reading, error) {
	var run models.ModelRun
	res := tx.First(&run, "id = ?", runID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("model run", runID.String())
		}
		return nil, res.Error
	}

	measureIDs := make(map[uuid.UUID]struct{})
	for _, table := range []interface{}{
		&models.StringReading{},
		&models.IntegerReading{},
		&models.FloatReading{},
		&models.BooleanReading{},
	} {
		var ids []uuid.UUID
		if res := tx.Model(table).Where("entity_id = ?", run.ID).Distinct().Pluck("measure_id", &ids); res.Error != nil {
			return nil, res.Error
		}
		for _, id := range ids {
			measureIDs[id] = struct{}{}
		}
	}

	output := make(map[string][]models.Reading, len(measureIDs))
	for measureID := range measureIDs {
		var measure models.Attribute
		if res := tx.First(&measure, "id = ?", measureID); res.Error != nil {
			return nil, res.Error
		}
		readings, err := readingsFor(tx, run.ID, &measure, nil, nil)
		if err != nil {
			return nil, err
		}
		output[measure.Name] = readings
	}
	return output, nil
}
