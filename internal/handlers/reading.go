package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twincore-io/twincore/internal/models"
	"github.com/twincore-io/twincore/internal/store"
	"gorm.io/gorm"
)

// InsertReadings stores a batch of sensor readings
// @Summary      Insert readings
// @Description  Stores a batch of (timestamp, value) points for one sensor and measure; points whose key is already present are silently skipped
// @Id           InsertReadings
// @Tags         Readings
// @Accept       json
// @Produce      json
// @Param        Readings  body  models.AddReadings  true  "Add Readings"
// @Success      201
// @Failure      400  {object}  models.ValidationError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/readings [post]
func (api *API) InsertReadings(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "InsertReadings")
	defer span.End()

	var request models.AddReadings
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if len(request.Readings) != len(request.Timestamps) {
		c.JSON(http.StatusBadRequest, models.NewFieldValidationError("timestamps",
			"readings and timestamps must be equal-length"))
		return
	}
	timestamps, err := parseTimestamps(request.Timestamps)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewFieldValidationError("timestamps", "timestamp is not ISO-8601"))
		return
	}

	err = api.transaction(ctx, func(tx *gorm.DB) error {
		return store.InsertSensorReadings(tx, request.UniqueIdentifier,
			request.MeasureName, request.Readings, timestamps)
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// QueryReadings returns readings in a time window
// @Summary      Query readings
// @Description  Returns one sensor's points for a measure with timestamps in the inclusive [dt_from, dt_to] range, ordered by timestamp
// @Id           QueryReadings
// @Tags         Readings
// @Produce      json
// @Param        measure_name       query  string  true  "Measure name"
// @Param        unique_identifier  query  string  true  "Sensor unique identifier"
// @Param        dt_from            query  string  true  "Range start, ISO-8601"
// @Param        dt_to              query  string  true  "Range end, ISO-8601"
// @Success      200  {object}  []models.Reading
// @Failure      400  {object}  models.ValidationError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/readings [get]
func (api *API) QueryReadings(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "QueryReadings")
	defer span.End()

	measureName := c.Query("measure_name")
	uniqueIdentifier := c.Query("unique_identifier")
	if measureName == "" {
		c.JSON(http.StatusBadRequest, models.NewFieldNotPresentError("measure_name"))
		return
	}
	if uniqueIdentifier == "" {
		c.JSON(http.StatusBadRequest, models.NewFieldNotPresentError("unique_identifier"))
		return
	}
	from, err := parseTimestamp(c.Query("dt_from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewFieldValidationError("dt_from", "timestamp is not ISO-8601"))
		return
	}
	to, err := parseTimestamp(c.Query("dt_to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewFieldValidationError("dt_to", "timestamp is not ISO-8601"))
		return
	}

	var readings []models.Reading
	err = api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		readings, err = store.QuerySensorReadings(tx, uniqueIdentifier, measureName, from, to)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, readings)
}
