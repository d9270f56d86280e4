package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/twincore-io/twincore/internal/models"
	"github.com/twincore-io/twincore/internal/store"
	"gorm.io/gorm"
)

// CreateModel registers a predictive model
// @Summary      Create a model
// @Id           CreateModel
// @Tags         Models
// @Accept       json
// @Produce      json
// @Param        Model  body  models.AddModel  true  "Add Model"
// @Success      201  {object}  models.MLModel
// @Failure      400  {object}  models.ValidationError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/models [post]
func (api *API) CreateModel(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateModel")
	defer span.End()

	var request models.AddModel
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}

	var model *models.MLModel
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		model, err = store.CreateModel(tx, request.Name)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model)
}

// ListModels lists models
// @Summary      List models
// @Id           ListModels
// @Tags         Models
// @Produce      json
// @Success      200  {object}  []models.MLModel
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/models [get]
func (api *API) ListModels(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListModels")
	defer span.End()

	list := make([]models.MLModel, 0)
	db := api.db.WithContext(ctx)
	res := db.Scopes(FilterAndPaginate(&models.MLModel{}, c, "created_at")).Find(&list)
	if res.Error != nil {
		api.sendInternalServerError(c, res.Error)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteModel deletes a model
// @Summary      Delete a model
// @Description  Removes a model and its scenarios once no runs remain
// @Id           DeleteModel
// @Tags         Models
// @Produce      json
// @Param        name  path  string  true  "Model name"
// @Success      200
// @Failure      400  {object}  models.InvalidStateError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/models/{name} [delete]
func (api *API) DeleteModel(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeleteModel")
	defer span.End()

	err := api.transaction(ctx, func(tx *gorm.DB) error {
		return store.DeleteModel(tx, c.Param("name"))
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// CreateModelScenario registers a model scenario
// @Summary      Create a model scenario
// @Id           CreateModelScenario
// @Tags         Models
// @Accept       json
// @Produce      json
// @Param        Scenario  body  models.AddModelScenario  true  "Add Scenario"
// @Success      201  {object}  models.ModelScenario
// @Failure      400  {object}  models.ValidationError
// @Failure      404  {object}  models.NotFoundError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/model-scenarios [post]
func (api *API) CreateModelScenario(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateModelScenario")
	defer span.End()

	var request models.AddModelScenario
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}

	var scenario *models.ModelScenario
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		scenario, err = store.CreateModelScenario(tx, request.ModelName, request.Description)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, scenario)
}

// ListModelScenarios lists model scenarios
// @Summary      List model scenarios
// @Id           ListModelScenarios
// @Tags         Models
// @Produce      json
// @Param        model_name  query  string  false  "Model name"
// @Success      200  {object}  []models.ModelScenario
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/model-scenarios [get]
func (api *API) ListModelScenarios(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListModelScenarios")
	defer span.End()

	var scenarios []models.ModelScenario
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		scenarios, err = store.ListModelScenarios(tx, c.Query("model_name"))
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenarios)
}

// CreateModelRun records a model run and its outputs
// @Summary      Create a model run
// @Description  Records one execution of a model and stores its output series keyed by the run id
// @Id           CreateModelRun
// @Tags         Models
// @Accept       json
// @Produce      json
// @Param        Run  body  models.AddModelRun  true  "Add Model Run"
// @Success      201  {object}  models.ModelRun
// @Failure      400  {object}  models.ValidationError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/model-runs [post]
func (api *API) CreateModelRun(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateModelRun")
	defer span.End()

	var request models.AddModelRun
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}

	outputs := make([]store.ModelRunOutput, 0, len(request.Measures))
	for _, measure := range request.Measures {
		if len(measure.Values) != len(measure.Timestamps) {
			c.JSON(http.StatusBadRequest, models.NewFieldValidationError("measures_and_values",
				"values and timestamps must be equal-length"))
			return
		}
		timestamps, err := parseTimestamps(measure.Timestamps)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewFieldValidationError("measures_and_values",
				"timestamp is not ISO-8601"))
			return
		}
		outputs = append(outputs, store.ModelRunOutput{
			MeasureName: measure.MeasureName,
			Values:      measure.Values,
			Timestamps:  timestamps,
		})
	}

	var run *models.ModelRun
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		run, err = store.CreateModelRun(tx, request.ModelName, request.ScenarioDescription,
			request.CreateScenario, request.SensorUID, request.SensorMeasure, outputs)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

// ListModelRuns lists a model's runs
// @Summary      List model runs
// @Id           ListModelRuns
// @Tags         Models
// @Produce      json
// @Param        model_name  query  string  true   "Model name"
// @Param        dt_from     query  string  false  "Window start, ISO-8601"
// @Param        dt_to       query  string  false  "Window end, ISO-8601"
// @Success      200  {object}  []models.ModelRunDetails
// @Failure      400  {object}  models.ValidationError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/model-runs [get]
func (api *API) ListModelRuns(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListModelRuns")
	defer span.End()

	modelName := c.Query("model_name")
	if modelName == "" {
		c.JSON(http.StatusBadRequest, models.NewFieldNotPresentError("model_name"))
		return
	}
	var from, to *time.Time
	if value := c.Query("dt_from"); value != "" {
		t, err := parseTimestamp(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewFieldValidationError("dt_from", "timestamp is not ISO-8601"))
			return
		}
		from = &t
	}
	if value := c.Query("dt_to"); value != "" {
		t, err := parseTimestamp(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewFieldValidationError("dt_to", "timestamp is not ISO-8601"))
			return
		}
		to = &t
	}

	var details []models.ModelRunDetails
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		details, err = store.ListModelRuns(tx, modelName, from, to)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetModelRunOutput returns a run's output series
// @Summary      Get model run output
// @Id           GetModelRunOutput
// @Tags         Models
// @Produce      json
// @Param        id  path  string  true  "Model run id"
// @Success      200  {object}  map[string][]models.Reading
// @Failure      400  {object}  models.ValidationError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/model-runs/{id} [get]
func (api *API) GetModelRunOutput(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetModelRunOutput")
	defer span.End()

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var output map[string][]models.Reading
	err = api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		output, err = store.GetModelRunOutput(tx, runID)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, output)
}
