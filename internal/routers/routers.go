package routers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/twincore-io/twincore/internal/handlers"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const name = "github.com/twincore-io/twincore/internal/routers"

type APIRouterOptions struct {
	Logger         *zap.SugaredLogger
	Api            *handlers.API
	AllowedOrigins []string
}

func NewAPIRouter(ctx context.Context, o APIRouterOptions) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	loggerMiddleware := ginzap.GinzapWithConfig(o.Logger.Desugar(), &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Context: func(c *gin.Context) []zapcore.Field {
			return []zapcore.Field{
				zap.String("traceID", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
			}
		},
	})

	r.Use(otelgin.Middleware(name, otelgin.WithPropagators(
		propagation.TraceContext{},
	)))
	r.Use(ginzap.RecoveryWithZap(o.Logger.Desugar(), true))

	if len(o.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = o.AllowedOrigins
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
		r.Use(cors.New(corsConfig))
	}

	newPrometheus().Use(r)

	apiGroup := r.Group("/api", loggerMiddleware)
	{
		api := o.Api

		// Attributes
		apiGroup.POST("/identifiers", api.CreateIdentifier)
		apiGroup.GET("/identifiers", api.ListIdentifiers)
		apiGroup.DELETE("/identifiers/:name", api.DeleteIdentifier)
		apiGroup.POST("/measures", api.CreateMeasure)
		apiGroup.GET("/measures", api.ListMeasures)
		apiGroup.DELETE("/measures/:name", api.DeleteMeasure)

		// Location schemas
		apiGroup.POST("/location-schemas", api.CreateLocationSchema)
		apiGroup.GET("/location-schemas", api.ListLocationSchemas)
		apiGroup.GET("/location-schemas/:name", api.GetLocationSchema)
		apiGroup.DELETE("/location-schemas/:name", api.DeleteLocationSchema)

		// Locations
		apiGroup.POST("/locations", api.CreateLocation)
		apiGroup.GET("/locations", api.ListLocations)
		apiGroup.DELETE("/locations", api.DeleteLocation)

		// Sensor types
		apiGroup.POST("/sensor-types", api.CreateSensorType)
		apiGroup.GET("/sensor-types", api.ListSensorTypes)
		apiGroup.GET("/sensor-types/:name", api.GetSensorType)
		apiGroup.DELETE("/sensor-types/:name", api.DeleteSensorType)

		// Sensors
		apiGroup.POST("/sensors", api.CreateSensor)
		apiGroup.GET("/sensors", api.ListSensors)
		apiGroup.GET("/sensors/:unique_identifier", api.GetSensor)
		apiGroup.DELETE("/sensors/:unique_identifier", api.DeleteSensor)
		apiGroup.POST("/sensors/:unique_identifier/locations", api.AssignSensorLocation)
		apiGroup.GET("/sensors/:unique_identifier/locations", api.ListSensorLocations)

		// Readings
		apiGroup.POST("/readings", api.InsertReadings)
		apiGroup.GET("/readings", api.QueryReadings)

		// Models
		apiGroup.POST("/models", api.CreateModel)
		apiGroup.GET("/models", api.ListModels)
		apiGroup.DELETE("/models/:name", api.DeleteModel)
		apiGroup.POST("/model-scenarios", api.CreateModelScenario)
		apiGroup.GET("/model-scenarios", api.ListModelScenarios)
		apiGroup.POST("/model-runs", api.CreateModelRun)
		apiGroup.GET("/model-runs", api.ListModelRuns)
		apiGroup.GET("/model-runs/:id", api.GetModelRunOutput)
	}

	// Don't log the health/readiness checks.
	r.GET("/ready", o.Api.Ready)
	r.GET("/live", o.Api.Live)

	return r, nil
}

func newPrometheus() *ginprometheus.Prometheus {
	p := ginprometheus.NewPrometheus("apiserver")
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		url := c.Request.URL.Path
		for _, p := range c.Params {
			if p.Key == "name" || p.Key == "unique_identifier" || p.Key == "id" {
				url = strings.Replace(url, p.Value, ":"+p.Key, 1)
				break
			}
		}
		return url
	}
	return p
}
