package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twincore-io/twincore/internal/models"
	"github.com/twincore-io/twincore/internal/store"
	"gorm.io/gorm"
)

func (api *API) createAttribute(c *gin.Context, spanName string, kind models.AttributeKind) {
	ctx, span := tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	var request models.AddAttribute
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}

	var attribute *models.Attribute
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		attribute, err = store.CreateAttribute(tx, kind, request)
		return err
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attribute)
}

func (api *API) listAttributes(c *gin.Context, spanName string, kind models.AttributeKind) {
	ctx, span := tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	attributes := make([]models.Attribute, 0)
	db := api.db.WithContext(ctx)
	res := db.Where("kind = ?", kind).
		Scopes(FilterAndPaginate(&models.Attribute{}, c, "created_at")).
		Find(&attributes)
	if res.Error != nil {
		api.sendInternalServerError(c, res.Error)
		return
	}
	c.JSON(http.StatusOK, attributes)
}

func (api *API) deleteAttribute(c *gin.Context, spanName string, kind models.AttributeKind) {
	ctx, span := tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("name"))
		return
	}

	err := api.transaction(ctx, func(tx *gorm.DB) error {
		return store.DeleteAttribute(tx, kind, name)
	})
	if err != nil {
		api.sendStoreError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// CreateIdentifier creates a new location identifier
// @Summary      Create an identifier
// @Description  Declares a named, typed attribute in the identifier namespace
// @Id           CreateIdentifier
// @Tags         Identifiers
// @Accept       json
// @Produce      json
// @Param        Identifier  body  models.AddAttribute  true  "Add Identifier"
// @Success      201  {object}  models.Attribute
// @Failure      400  {object}  models.ValidationError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/identifiers [post]
func (api *API) CreateIdentifier(c *gin.Context) {
	api.createAttribute(c, "CreateIdentifier", models.KindIdentifier)
}

// ListIdentifiers lists location identifiers
// @Summary      List identifiers
// @Id           ListIdentifiers
// @Tags         Identifiers
// @Produce      json
// @Success      200  {object}  []models.Attribute
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/identifiers [get]
func (api *API) ListIdentifiers(c *gin.Context) {
	api.listAttributes(c, "ListIdentifiers", models.KindIdentifier)
}

// DeleteIdentifier deletes a location identifier
// @Summary      Delete an identifier
// @Description  Removes an identifier that no schema binds
// @Id           DeleteIdentifier
// @Tags         Identifiers
// @Produce      json
// @Param        name  path  string  true  "Identifier name"
// @Success      200
// @Failure      400  {object}  models.InvalidStateError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/identifiers/{name} [delete]
func (api *API) DeleteIdentifier(c *gin.Context) {
	api.deleteAttribute(c, "DeleteIdentifier", models.KindIdentifier)
}

// CreateMeasure creates a new sensor measure
// @Summary      Create a measure
// @Description  Declares a named, typed attribute in the measure namespace
// @Id           CreateMeasure
// @Tags         Measures
// @Accept       json
// @Produce      json
// @Param        Measure  body  models.AddAttribute  true  "Add Measure"
// @Success      201  {object}  models.Attribute
// @Failure      400  {object}  models.ValidationError
// @Failure      409  {object}  models.ConflictsError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/measures [post]
func (api *API) CreateMeasure(c *gin.Context) {
	api.createAttribute(c, "CreateMeasure", models.KindMeasure)
}

// ListMeasures lists sensor measures
// @Summary      List measures
// @Id           ListMeasures
// @Tags         Measures
// @Produce      json
// @Success      200  {object}  []models.Attribute
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/measures [get]
func (api *API) ListMeasures(c *gin.Context) {
	api.listAttributes(c, "ListMeasures", models.KindMeasure)
}

// DeleteMeasure deletes a sensor measure
// @Summary      Delete a measure
// @Id           DeleteMeasure
// @Tags         Measures
// @Produce      json
// @Param        name  path  string  true  "Measure name"
// @Success      200
// @Failure      400  {object}  models.InvalidStateError
// @Failure      404  {object}  models.NotFoundError
// @Failure      500  {object}  models.InternalServerError "Internal Server Error"
// @Router       /api/measures/{name} [delete]
func (api *API) DeleteMeasure(c *gin.Context) {
	api.deleteAttribute(c, "DeleteMeasure", models.KindMeasure)
}
