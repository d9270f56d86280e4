package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twincore-io/twincore/internal/models"
	"github.com/twincore-io/twincore/internal/store"
	"gorm.io/gorm"
)

// locationBody is the free-form location payload: schema_name plus one key per
// schema attribute.
func locationBody(c *gin.Context) (string, map[string]interface{}, bool) {
	raw := map[string]interface{}{}
	if err := c.BindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return "", nil, false
	}
	schemaName, ok := raw["schema_name"].(string)
	if !ok || schemaName == "" {
		c.JSON(http.StatusBadRequest, models.NewFieldNotPresentError("schema_name"))
		return "", nil, false
	}
	delete(raw, "schema_name")
	return schemaName, raw, true
}

// CreateLocation creates a new location
// @Summary      Create a location
// @Description  Creates a location for an existing schema ({"schema_name": ..., "<attr>": <value>, ...}) or declares attributes and schema inline ({"identifiers": [...], "values": [...]})
// @Id           CreateLocation
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.EntityRecord
// @Failure      400  {object}  models.ValidationError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/locations [post]
func (api *API) CreateLocation(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateLocation")
	defer span.End()

	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}

	var record *models.EntityRecord
	if _, inline := probe["identifiers"]; inline {
		var request models.AddEntityInline
		if err := json.Unmarshal(data, &request); err != nil {
			c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
			return
		}
		err = api.transaction(ctx, func(tx *gorm.DB) error {
			var err error
			record, err = store.CreateEntityInline(tx, request.Identifiers, request.Values)
			return err
		})
	} else {
		raw := map[string]interface{}{}
		if err := json.Unmarshal(data, &raw); err != nil {
			c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
			return
		}
		schemaName, ok := raw["schema_name"].(string)
		if !ok || schemaName == "" {
			c.JSON(http.StatusBadRequest, models.NewFieldNotPresentError("schema_name"))
			return
		}
		delete(raw, "schema_name")
		err = api.transaction(ctx, func(tx *gorm.DB) error {
			var err error
			record, err = store.CreateEntity(tx, schemaName, raw)
			return err
		})
	}
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListLocations lists locations matching a filter
// @Summary      List locations
// @Description  Returns the schema's locations matching every given attribute constraint; constraints may come as a JSON body or as query parameters
// @Id           ListLocations
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Success      200  {object}  []models.EntityRecord
// @Failure      400  {object}  models.ValidationError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/locations [get]
func (api *API) ListLocations(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListLocations")
	defer span.End()

	schemaName, constraints, ok := api.locationFilter(c)
	if !ok {
		return
	}

	var records []models.EntityRecord
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		records, err = store.FindEntities(tx, schemaName, constraints, 0)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (api *API) locationFilter(c *gin.Context) (string, map[string]interface{}, bool) {
	if c.Request.ContentLength > 0 {
		return locationBody(c)
	}

	constraints := map[string]interface{}{}
	schemaName := ""
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "schema_name" {
			schemaName = values[0]
			continue
		}
		// query values arrive as strings; take JSON literals where they
		// parse so numeric and boolean constraints keep their type
		var value interface{}
		if err := json.Unmarshal([]byte(values[0]), &value); err != nil {
			value = values[0]
		}
		constraints[key] = value
	}
	if schemaName == "" {
		c.JSON(http.StatusBadRequest, models.NewFieldNotPresentError("schema_name"))
		return "", nil, false
	}
	return schemaName, constraints, true
}

// DeleteLocation deletes a location by its exact value tuple
// @Summary      Delete a location
// @Id           DeleteLocation
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400  {object}  models.ValidationError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/locations [delete]
func (api *API) DeleteLocation(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeleteLocation")
	defer span.End()

	schemaName, values, ok := locationBody(c)
	if !ok {
		return
	}

	err := api.transaction(ctx, func(tx *gorm.DB) error {
		return store.DeleteEntity(tx, schemaName, values)
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
