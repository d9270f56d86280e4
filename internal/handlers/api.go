package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/twincore-io/twincore/internal/database"
	"github.com/twincore-io/twincore/internal/models"
	"github.com/twincore-io/twincore/internal/store"
	"github.com/twincore-io/twincore/internal/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tracer trace.Tracer

func init() {
	tracer = otel.Tracer("github.com/twincore-io/twincore/internal/handlers")
}

type API struct {
	logger      *zap.SugaredLogger
	db          *gorm.DB
	transaction database.TransactionFunc
	dialect     database.Dialect
}

func NewAPI(
	parent context.Context,
	logger *zap.SugaredLogger,
	db *gorm.DB,
) (*API, error) {

	_, span := tracer.Start(parent, "NewAPI")
	defer span.End()

	transactionFunc, dialect, err := database.GetTransactionFunc(db)
	if err != nil {
		return nil, err
	}

	return &API{
		logger:      logger,
		db:          db,
		transaction: transactionFunc,
		dialect:     dialect,
	}, nil
}

func (api *API) Logger(ctx context.Context) *zap.SugaredLogger {
	return util.WithTrace(ctx, api.logger)
}

func (api *API) sendInternalServerError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	api.Logger(ctx).Errorw("internal server error", "error", err)

	result := models.InternalServerError{
		BaseError: models.BaseError{
			Error: "internal server error",
		},
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.HasTraceID() {
		result.TraceId = sc.TraceID().String()
	}
	c.JSON(http.StatusInternalServerError, result)
}

// sendStoreError translates the store's typed errors into the HTTP statuses
// and body shapes of the API. Anything unrecognised is a 500.
func (api *API) sendStoreError(c *gin.Context, err error) {
	var validation *store.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, models.NewFieldValidationError(validation.Field, validation.Reason))
		return
	}
	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, models.NewNotFoundError(notFound.Resource))
		return
	}
	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, models.NewConflictsError(conflict.Name))
		return
	}
	var invalidState *store.InvalidStateError
	if errors.As(err, &invalidState) {
		c.JSON(http.StatusBadRequest, models.NewInvalidStateError(invalidState.Reason))
		return
	}
	api.sendInternalServerError(c, err)
}

const timestampLayout = "2006-01-02T15:04:05"

// parseTimestamp accepts ISO-8601 timestamps with or without a zone offset.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(timestampLayout, value)
}

func parseTimestamps(values []string) ([]time.Time, error) {
	parsed := make([]time.Time, len(values))
	for i, value := range values {
		t, err := parseTimestamp(value)
		if err != nil {
			return nil, err
		}
		parsed[i] = t
	}
	return parsed, nil
}
