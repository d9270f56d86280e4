package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/twincore-io/twincore/internal/models"
)

func (suite *HandlerTestSuite) createMeasure(add models.AddAttribute) {
	require := suite.Require()
	body, err := json.Marshal(add)
	require.NoError(err)
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateMeasure, bytes.NewBuffer(body),
	)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code)
}

func (suite *HandlerTestSuite) createWeatherStationType() {
	require := suite.Require()
	suite.createMeasure(models.AddAttribute{Name: "temperature", Units: "degrees Celsius", Datatype: models.DatatypeFloat})
	suite.createMeasure(models.AddAttribute{Name: "humidity", Units: "percent", Datatype: models.DatatypeInteger})

	body, err := json.Marshal(models.AddSensorType{
		Name: "weather_station",
		Measures: []models.AddAttribute{
			{Name: "temperature"},
			{Name: "humidity"},
		},
	})
	require.NoError(err)
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateSensorType, bytes.NewBuffer(body),
	)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code)
}

func (suite *HandlerTestSuite) createSensor(uid string) {
	require := suite.Require()
	body, err := json.Marshal(models.AddSensor{
		SensorType:       "weather_station",
		UniqueIdentifier: uid,
	})
	require.NoError(err)
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateSensor, bytes.NewBuffer(body),
	)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code)
}

func (suite *HandlerTestSuite) TestSensorLifecycle() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createWeatherStationType()
	suite.createSensor("TRH-042")

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/:unique_identifier", "/TRH-042",
			suite.api.GetSensor, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var sensor models.Sensor
		require.NoError(json.Unmarshal(body, &sensor))
		assert.Equal("TRH-042", sensor.UniqueIdentifier)
		assert.Equal("weather_station", sensor.SensorTypeName)
	}

	{
		// registering the same identifier again conflicts
		body, err := json.Marshal(models.AddSensor{
			SensorType: "weather_station", UniqueIdentifier: "TRH-042",
		})
		require.NoError(err)
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateSensor, bytes.NewBuffer(body),
		)
		require.NoError(err)
		assert.Equal(http.StatusConflict, res.Code)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/", "/?type=weather_station",
			suite.api.ListSensors, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var sensors []models.Sensor
		require.NoError(json.Unmarshal(body, &sensors))
		assert.Len(sensors, 1)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodDelete,
			"/:unique_identifier", "/TRH-042",
			suite.api.DeleteSensor, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusOK, res.Code)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/:unique_identifier", "/TRH-042",
			suite.api.GetSensor, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusNotFound, res.Code)
	}
}

func (suite *HandlerTestSuite) TestReadingsRoundTrip() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createWeatherStationType()
	suite.createSensor("TRH-042")

	payload := `{
		"measure_name": "temperature",
		"unique_identifier": "TRH-042",
		"readings": [20.5, 21.0, 19.75],
		"timestamps": ["2025-03-01T00:00:00", "2025-03-01T01:00:00", "2025-03-01T02:00:00"]
	}`
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.InsertReadings, bytes.NewBufferString(payload),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code, "HTTP error: %s", string(body))

	uri := fmt.Sprintf("/?measure_name=%s&unique_identifier=%s&dt_from=%s&dt_to=%s",
		"temperature", "TRH-042", "2025-03-01T00:00:00", "2025-03-01T01:00:00")
	_, res, err = suite.ServeRequest(
		http.MethodGet,
		"/", uri,
		suite.api.QueryReadings, nil,
	)
	require.NoError(err)
	body, err = io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

	var readings []models.Reading
	require.NoError(json.Unmarshal(body, &readings))
	require.Len(readings, 2)
	assert.Equal(20.5, readings[0].Value)
	assert.Equal(21.0, readings[1].Value)
}

func (suite *HandlerTestSuite) TestInsertReadingsRejectsRaggedBatch() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createWeatherStationType()
	suite.createSensor("TRH-042")

	payload := `{
		"measure_name": "temperature",
		"unique_identifier": "TRH-042",
		"readings": [20.5, 21.0],
		"timestamps": ["2025-03-01T00:00:00"]
	}`
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.InsertReadings, bytes.NewBufferString(payload),
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)
}

func (suite *HandlerTestSuite) TestInsertReadingsUnknownSensor() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createWeatherStationType()

	payload := `{
		"measure_name": "temperature",
		"unique_identifier": "TRH-000",
		"readings": [20.5],
		"timestamps": ["2025-03-01T00:00:00"]
	}`
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.InsertReadings, bytes.NewBufferString(payload),
	)
	require.NoError(err)
	assert.Equal(http.StatusNotFound, res.Code)
}

func (suite *HandlerTestSuite) TestSensorLocationHistory() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createWeatherStationType()
	suite.createSensor("TRH-042")
	suite.createLatlongSchema()

	for _, payload := range []string{
		`{"schema_name":"latlong","latitude":51.5,"longitude":-0.1}`,
		`{"schema_name":"latlong","latitude":51.4,"longitude":-0.2}`,
	} {
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateLocation, bytes.NewBufferString(payload),
		)
		require.NoError(err)
		require.Equal(http.StatusCreated, res.Code)
	}

	for _, assignment := range []string{
		`{"schema_name":"latlong","coordinates":{"latitude":51.5,"longitude":-0.1},"installation_datetime":"2025-01-01T00:00:00"}`,
		`{"schema_name":"latlong","coordinates":{"latitude":51.4,"longitude":-0.2},"installation_datetime":"2025-02-01T00:00:00"}`,
	} {
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/:unique_identifier", "/TRH-042",
			suite.api.AssignSensorLocation, bytes.NewBufferString(assignment),
		)
		require.NoError(err)
		require.Equal(http.StatusCreated, res.Code)
	}

	_, res, err := suite.ServeRequest(
		http.MethodGet,
		"/:unique_identifier", "/TRH-042",
		suite.api.ListSensorLocations, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

	var history []map[string]interface{}
	require.NoError(json.Unmarshal(body, &history))
	require.Len(history, 2)
	// newest assignment comes first
	newest := history[0]["location"].(map[string]interface{})
	oldest := history[1]["location"].(map[string]interface{})
	assert.Equal(51.4, newest["latitude"])
	assert.Equal(51.5, oldest["latitude"])
}
