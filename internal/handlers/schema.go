package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twincore-io/twincore/internal/models"
	"github.com/twincore-io/twincore/internal/store"
	"gorm.io/gorm"
)

func (api *API) createSchema(c *gin.Context, spanName string, kind models.AttributeKind,
	name, description string, defs []models.AddAttribute) {

	ctx, span := tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	var details *models.SchemaDetails
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		details, err = store.CreateSchemaInline(tx, kind, name, description, defs)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, details)
}

func (api *API) listSchemas(c *gin.Context, spanName string, kind models.AttributeKind) {
	ctx, span := tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	var details []models.SchemaDetails
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		details, err = store.ListSchemas(tx, kind)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (api *API) getSchema(c *gin.Context, spanName string, kind models.AttributeKind) {
	ctx, span := tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("name"))
		return
	}

	var details *models.SchemaDetails
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		details, err = store.GetSchema(tx, kind, name)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (api *API) deleteSchema(c *gin.Context, spanName string, kind models.AttributeKind) {
	ctx, span := tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("name"))
		return
	}

	err := api.transaction(ctx, func(tx *gorm.DB) error {
		return store.DeleteSchema(tx, kind, name)
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// CreateLocationSchema creates a new location schema
// @Summary      Create a location schema
// @Description  Binds identifiers into a named location schema, registering inline definitions
// @Id           CreateLocationSchema
// @Tags         LocationSchemas
// @Accept       json
// @Produce      json
// @Param        Schema  body  models.AddSchema  true  "Add Schema"
// @Success      201  {object}  models.SchemaDetails
// @Failure      400  {object}  models.ValidationError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/location-schemas [post]
func (api *API) CreateLocationSchema(c *gin.Context) {
	var request models.AddSchema
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	api.createSchema(c, "CreateLocationSchema", models.KindIdentifier, request.Name, request.Description, request.Identifiers)
}

// ListLocationSchemas lists location schemas
// @Summary      List location schemas
// @Id           ListLocationSchemas
// @Tags         LocationSchemas
// @Produce      json
// @Success      200  {object}  []models.SchemaDetails
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/location-schemas [get]
func (api *API) ListLocationSchemas(c *gin.Context) {
	api.listSchemas(c, "ListLocationSchemas", models.KindIdentifier)
}

// GetLocationSchema gets a location schema by name
// @Summary      Get a location schema
// @Id           GetLocationSchema
// @Tags         LocationSchemas
// @Produce      json
// @Param        name  path  string  true  "Schema name"
// @Success      200  {object}  models.SchemaDetails
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/location-schemas/{name} [get]
func (api *API) GetLocationSchema(c *gin.Context) {
	api.getSchema(c, "GetLocationSchema", models.KindIdentifier)
}

// DeleteLocationSchema deletes a location schema
// @Summary      Delete a location schema
// @Description  Removes a schema with no remaining locations
// @Id           DeleteLocationSchema
// @Tags         LocationSchemas
// @Produce      json
// @Param        name  path  string  true  "Schema name"
// @Success      200
// @Failure      400  {object}  models.InvalidStateError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/location-schemas/{name} [delete]
func (api *API) DeleteLocationSchema(c *gin.Context) {
	api.deleteSchema(c, "DeleteLocationSchema", models.KindIdentifier)
}

// CreateSensorType creates a new sensor type
// @Summary      Create a sensor type
// @Description  Binds measures into a named sensor type, registering inline definitions
// @Id           CreateSensorType
// @Tags         SensorTypes
// @Accept       json
// @Produce      json
// @Param        SensorType  body  models.AddSensorType  true  "Add Sensor Type"
// @Success      201  {object}  models.SchemaDetails
// @Failure      400  {object}  models.ValidationError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensor-types [post]
func (api *API) CreateSensorType(c *gin.Context) {
	var request models.AddSensorType
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	api.createSchema(c, "CreateSensorType", models.KindMeasure, request.Name, request.Description, request.Measures)
}

// ListSensorTypes lists sensor types
// @Summary      List sensor types
// @Id           ListSensorTypes
// @Tags         SensorTypes
// @Produce      json
// @Success      200  {object}  []models.SchemaDetails
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensor-types [get]
func (api *API) ListSensorTypes(c *gin.Context) {
	api.listSchemas(c, "ListSensorTypes", models.KindMeasure)
}

// GetSensorType gets a sensor type by name
// @Summary      Get a sensor type
// @Id           GetSensorType
// @Tags         SensorTypes
// @Produce      json
// @Param        name  path  string  true  "Sensor type name"
// @Success      200  {object}  models.SchemaDetails
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensor-types/{name} [get]
func (api *API) GetSensorType(c *gin.Context) {
	api.getSchema(c, "GetSensorType", models.KindMeasure)
}

// DeleteSensorType deletes a sensor type
// @Summary      Delete a sensor type
// @Description  Removes a sensor type with no remaining sensors
// @Id           DeleteSensorType
// @Tags         SensorTypes
// @Produce      json
// @Param        name  path  string  true  "Sensor type name"
// @Success      200
// @Failure      400  {object}  models.InvalidStateError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/sensor-types/{name} [delete]
func (api *API) DeleteSensorType(c *gin.Context) {
	api.deleteSchema(c, "DeleteSensorType", models.KindMeasure)
}
