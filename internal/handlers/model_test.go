package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/twincore-io/twincore/internal/models"
)

func (suite *HandlerTestSuite) createModel(name string) {
	require := suite.Require()
	body, err := json.Marshal(models.AddModel{Name: name})
	require.NoError(err)
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateModel, bytes.NewBuffer(body),
	)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code)
}

func (suite *HandlerTestSuite) TestModelRegistry() {
	assert := suite.Assert()
	require := suite.Require()

	suite.createModel("arima")
	suite.createModel("prophet")

	{
		body, err := json.Marshal(models.AddModel{Name: "arima"})
		require.NoError(err)
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateModel, bytes.NewBuffer(body),
		)
		require.NoError(err)
		assert.Equal(http.StatusConflict, res.Code)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/", "/",
			suite.api.ListModels, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var actual []models.MLModel
		require.NoError(json.Unmarshal(body, &actual))
		assert.Len(actual, 2)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodDelete,
			"/:name", "/prophet",
			suite.api.DeleteModel, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusOK, res.Code)
	}
}

func (suite *HandlerTestSuite) TestModelScenarios() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createModel("arima")

	body, err := json.Marshal(models.AddModelScenario{
		ModelName: "arima", Description: "business as usual",
	})
	require.NoError(err)
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateModelScenario, bytes.NewBuffer(body),
	)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code)

	_, res, err = suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateModelScenario, bytes.NewBuffer(body),
	)
	require.NoError(err)
	assert.Equal(http.StatusConflict, res.Code)

	_, res, err = suite.ServeRequest(
		http.MethodGet,
		"/", "/?model_name=arima",
		suite.api.ListModelScenarios, nil,
	)
	require.NoError(err)
	resBody, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(resBody))

	var scenarios []models.ModelScenario
	require.NoError(json.Unmarshal(resBody, &scenarios))
	require.Len(scenarios, 1)
	assert.Equal("business as usual", scenarios[0].Description)
}

func (suite *HandlerTestSuite) TestModelRunRoundTrip() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createModel("arima")

	{
		body, err := json.Marshal(models.AddAttribute{
			Name: "temperature_forecast", Units: "degrees Celsius", Datatype: models.DatatypeFloat,
		})
		require.NoError(err)
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateMeasure, bytes.NewBuffer(body),
		)
		require.NoError(err)
		require.Equal(http.StatusCreated, res.Code)
	}

	var run models.ModelRun
	{
		payload := `{
			"model_name": "arima",
			"scenario_description": "heat wave",
			"create_scenario": true,
			"measures_and_values": [{
				"measure_name": "temperature_forecast",
				"values": [30.1, 31.5],
				"timestamps": ["2025-03-02T00:00:00", "2025-03-02T01:00:00"]
			}]
		}`
		_, res, err := suite.ServeRequest(
			http.MethodPost,
			"/", "/",
			suite.api.CreateModelRun, bytes.NewBufferString(payload),
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusCreated, res.Code, "HTTP error: %s", string(body))
		require.NoError(json.Unmarshal(body, &run))
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/", "/?model_name=arima",
			suite.api.ListModelRuns, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var runs []models.ModelRunDetails
		require.NoError(json.Unmarshal(body, &runs))
		require.Len(runs, 1)
		assert.Equal(run.ID, runs[0].ID)
		assert.Equal("heat wave", runs[0].ScenarioDescription)
	}

	{
		_, res, err := suite.ServeRequest(
			http.MethodGet,
			"/:id", "/"+run.ID.String(),
			suite.api.GetModelRunOutput, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, "HTTP error: %s", string(body))

		var output map[string][]models.Reading
		require.NoError(json.Unmarshal(body, &output))
		require.Contains(output, "temperature_forecast")
		require.Len(output["temperature_forecast"], 2)
		assert.Equal(30.1, output["temperature_forecast"][0].Value)
	}
}

func (suite *HandlerTestSuite) TestCreateModelRunRaggedOutput() {
	assert := suite.Assert()
	require := suite.Require()
	suite.createModel("arima")

	payload := `{
		"model_name": "arima",
		"measures_and_values": [{
			"measure_name": "temperature_forecast",
			"values": [30.1, 31.5],
			"timestamps": ["2025-03-02T00:00:00"]
		}]
	}`
	_, res, err := suite.ServeRequest(
		http.MethodPost,
		"/", "/",
		suite.api.CreateModelRun, bytes.NewBufferString(payload),
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)
}

func (suite *HandlerTestSuite) TestGetModelRunOutputBadId() {
	assert := suite.Assert()
	require := suite.Require()

	_, res, err := suite.ServeRequest(
		http.MethodGet,
		"/:id", "/not-a-uuid",
		suite.api.GetModelRunOutput, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)
}
