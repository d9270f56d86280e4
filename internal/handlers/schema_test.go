package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/twincore-io/twincore/internal/models"
)

func (suite *HandlerTestSuite) TestLocationSchemaLifecycle() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createLatlongSchema()

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/:name", "/latlong",
			suite.api.GetLocationSchema, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var details models.SchemaDetails
		require.NoError(json.Unmarshal(body, &details))
		assert.Equal("latlong", details.Name)
		require.Len(details.Attributes, 2)
		assert.Equal("latitude", details.Attributes[0].Name)
		assert.Equal("longitude", details.Attributes[1].Name)
	}

	{
		// a second name may bind the same identifiers
		body, err := json.Marshal(models.AddSchema{
			Name: "coordinates",
			Identifiers: []models.AddAttribute{
				{Name: "latitude"}, {Name: "longitude"},
			},
		})
		require.NoError(err)
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateLocationSchema, bytes.NewBuffer(body),
		)
		require.NoError(err)
		assert.Equal(http.StatusCreated, res.Code)
	}

	{
		// but a schema name is unique
		body, err := json.Marshal(models.AddSchema{
			Name:        "latlong",
			Identifiers: []models.AddAttribute{{Name: "latitude"}},
		})
		require.NoError(err)
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateLocationSchema, bytes.NewBuffer(body),
		)
		require.NoError(err)
		assert.Equal(http.StatusConflict, res.Code)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/", "/",
			suite.api.ListLocationSchemas, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var schemas []models.SchemaDetails
		require.NoError(json.Unmarshal(body, &schemas))
		assert.Len(schemas, 2)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodDelete,
			"/:name", "/coordinates",
			suite.api.DeleteLocationSchema, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusOK, res.Code)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/:name", "/coordinates",
			suite.api.GetLocationSchema, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusNotFound, res.Code)
	}
}

func (suite *HandlerTestSuite) TestCreateLocationSchemaInlineIdentifiers() {
	assert := suite.Assert()
	require := suite.Require()

	// identifiers defined in the payload itself, nothing pre-registered
	payload := `{
		"name": "latlong",
		"description": "Latitude and longitude in degrees",
		"identifiers": [
			{"name": "latitude", "units": "degrees", "datatype": "float"},
			{"name": "longitude", "units": "degrees", "datatype": "float"}
		]
	}`
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateLocationSchema, bytes.NewBufferString(payload),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code, "HTTP error: %s", string(body))

	var details models.SchemaDetails
	require.NoError(json.Unmarshal(body, &details))
	require.Len(details.Attributes, 2)
	assert.Equal("latitude", details.Attributes[0].Name)
	assert.Equal(models.DatatypeFloat, details.Attributes[0].Datatype)

	{
		// the inline identifiers are now registered
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/", "/",
			suite.api.ListIdentifiers, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var identifiers []models.Attribute
		require.NoError(json.Unmarshal(body, &identifiers))
		assert.Len(identifiers, 2)
	}

	{
		// redefining latitude with another datatype is rejected
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateLocationSchema,
			bytes.NewBufferString(`{"name":"textual","identifiers":[{"name":"latitude","datatype":"string"}]}`),
		)
		require.NoError(err)
		assert.Equal(http.StatusBadRequest, res.Code)
	}

	{
		// and the new schema accepts locations right away
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateLocation,
			bytes.NewBufferString(`{"schema_name":"latlong","latitude":51.5,"longitude":-0.1}`),
		)
		require.NoError(err)
		assert.Equal(http.StatusCreated, res.Code)
	}
}

func (suite *HandlerTestSuite) TestCreateSensorTypeInlineMeasures() {
	assert := suite.Assert()
	require := suite.Require()

	payload := `{
		"name": "weather_station",
		"measures": [
			{"name": "temperature", "units": "degrees Celsius", "datatype": "float"},
			{"name": "humidity", "units": "percent", "datatype": "integer"}
		]
	}`
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateSensorType, bytes.NewBufferString(payload),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code, "HTTP error: %s", string(body))

	var details models.SchemaDetails
	require.NoError(json.Unmarshal(body, &details))
	assert.Len(details.Attributes, 2)

	_, res, err = suite.ServeRequest(
		http.MethodGet,
		"/", "/",
		suite.api.ListMeasures, nil,
	)
	require.NoError(err)
	resBody, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(resBody))

	var measures []models.Attribute
	require.NoError(json.Unmarshal(resBody, &measures))
	assert.Len(measures, 2)
}

func (suite *HandlerTestSuite) TestCreateSchemaUnknownIdentifier() {
	assert := suite.Assert()
	require := suite.Require()

	body, err := json.Marshal(models.AddSchema{
		Name:        "latlong",
		Identifiers: []models.AddAttribute{{Name: "latitude"}},
	})
	require.NoError(err)
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateLocationSchema, bytes.NewBuffer(body),
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)
}

func (suite *HandlerTestSuite) TestDeleteSchemaWithLocations() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createLatlongSchema()

	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateLocation,
		bytes.NewBufferString(`{"schema_name":"latlong","latitude":51.5,"longitude":-0.1}`),
	)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code)

	_, res, err = suite.ServeRequest(
		http.MethodDelete,
		"/:name", "/latlong",
		suite.api.DeleteLocationSchema, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)
}

func (suite *HandlerTestSuite) TestSensorTypeLifecycle() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createWeatherStationType()

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/:name", "/weather_station",
			suite.api.GetSensorType, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var details models.SchemaDetails
		require.NoError(json.Unmarshal(body, &details))
		assert.Equal("weather_station", details.Name)
		assert.Len(details.Attributes, 2)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/", "/",
			suite.api.ListSensorTypes, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var types []models.SchemaDetails
		require.NoError(json.Unmarshal(body, &types))
		assert.Len(types, 1)
	}

	{
		suite.createSensor("TRH-042")
		_, res, err := suite.ServeRequest(
			http.MethodDelete,
			"/:name", "/weather_station",
			suite.api.DeleteSensorType, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusBadRequest, res.Code)
	}
}
