package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/twincore-io/twincore/internal/models"
	"github.com/twincore-io/twincore/internal/store"
	"gorm.io/gorm"
)

// CreateSensor registers a new sensor
// @Summary      Create a sensor
// @Description  Registers a sensor of an existing sensor type under a caller-chosen unique identifier
// @Id           CreateSensor
// @Tags         Sensors
// @Accept       json
// @Produce      json
// @Param        Sensor  body  models.AddSensor  true  "Add Sensor"
// @Success      201  {object}  models.Sensor
// @Failure      400  {object}  models.ValidationError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensors [post]
func (api *API) CreateSensor(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateSensor")
	defer span.End()

	var request models.AddSensor
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}

	var sensor *models.Sensor
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		sensor, err = store.CreateSensor(tx, request)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sensor)
}

// ListSensors lists sensors
// @Summary      List sensors
// @Description  Lists sensors, optionally restricted to one sensor type
// @Id           ListSensors
// @Tags         Sensors
// @Produce      json
// @Param        type  query  string  false  "Sensor type name"
// @Success      200  {object}  []models.Sensor
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensors [get]
func (api *API) ListSensors(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListSensors")
	defer span.End()

	var sensors []models.Sensor
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		sensors, err = store.ListSensors(tx, c.Query("type"))
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sensors)
}

// GetSensor gets a sensor by unique identifier
// @Summary      Get a sensor
// @Id           GetSensor
// @Tags         Sensors
// @Produce      json
// @Param        unique_identifier  path  string  true  "Sensor unique identifier"
// @Success      200  {object}  models.Sensor
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensors/{unique_identifier} [get]
func (api *API) GetSensor(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetSensor")
	defer span.End()

	var sensor *models.Sensor
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		sensor, err = store.GetSensor(tx, c.Param("unique_identifier"))
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sensor)
}

// DeleteSensor deletes a sensor
// @Summary      Delete a sensor
// @Description  Removes a sensor together with its readings and location history
// @Id           DeleteSensor
// @Tags         Sensors
// @Produce      json
// @Param        unique_identifier  path  string  true  "Sensor unique identifier"
// @Success      200
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensors/{unique_identifier} [delete]
func (api *API) DeleteSensor(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeleteSensor")
	defer span.End()

	err := api.transaction(ctx, func(tx *gorm.DB) error {
		return store.DeleteSensor(tx, c.Param("unique_identifier"))
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// AssignSensorLocation records a sensor installation
// @Summary      Assign a sensor location
// @Description  Records that the sensor has been at the location described by the coordinates since the installation time (now when omitted)
// @Id           AssignSensorLocation
// @Tags         Sensors
// @Accept       json
// @Produce      json
// @Param        unique_identifier  path  string  true  "Sensor unique identifier"
// @Param        Location  body  models.AddSensorLocation  true  "Add Sensor Location"
// @Success      201
// @Failure      400  {object}  models.ValidationError
// @Failure      404  {object}  models.NotFoundError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensors/{unique_identifier}/locations [post]
func (api *API) AssignSensorLocation(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "AssignSensorLocation")
	defer span.End()

	var request models.AddSensorLocation
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}

	installedAt := time.Now().UTC()
	if request.InstallationDatetime != "" {
		var err error
		installedAt, err = parseTimestamp(request.InstallationDatetime)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewFieldValidationError("installation_datetime", "timestamp is not ISO-8601"))
			return
		}
	}

	err := api.transaction(ctx, func(tx *gorm.DB) error {
		return store.AssignSensorLocation(tx, c.Param("unique_identifier"),
			request.SchemaName, request.Coordinates, installedAt)
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// ListSensorLocations lists a sensor's installation history
// @Summary      List sensor locations
// @Description  Returns the sensor's installation history newest-first, coordinates resolved
// @Id           ListSensorLocations
// @Tags         Sensors
// @Produce      json
// @Param        unique_identifier  path  string  true  "Sensor unique identifier"
// @Success      200  {object}  []models.SensorLocationRecord
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensors/{unique_identifier}/locations [get]
func (api *API) ListSensorLocations(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListSensorLocations")
	defer span.End()

	var records []models.SensorLocationRecord
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		records, err = store.ListSensorLocations(tx, c.Param("unique_identifier"))
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
