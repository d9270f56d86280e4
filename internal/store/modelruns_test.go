package store

import (
	"time"

	"github.com/twincore-io/twincore/internal/models"
)

func (suite *StoreTestSuite) TestModelAndScenarioRegistry() {
	assert := suite.Assert()
	require := suite.Require()

	_, err := CreateModel(suite.db, "arima")
	require.NoError(err)
	_, err = CreateModel(suite.db, "arima")
	var conflict *ConflictError
	assert.ErrorAs(err, &conflict)

	_, err = CreateModelScenario(suite.db, "arima", "business as usual")
	require.NoError(err)
	_, err = CreateModelScenario(suite.db, "arima", "business as usual")
	assert.ErrorAs(err, &conflict)

	// the same description under another model is a different scenario
	_, err = CreateModel(suite.db, "prophet")
	require.NoError(err)
	_, err = CreateModelScenario(suite.db, "prophet", "business as usual")
	require.NoError(err)

	scenarios, err := ListModelScenarios(suite.db, "arima")
	require.NoError(err)
	assert.Len(scenarios, 1)
	all, err := ListModelScenarios(suite.db, "")
	require.NoError(err)
	assert.Len(all, 2)
}

func (suite *StoreTestSuite) TestCreateModelRunStoresOutputs() {
	assert := suite.Assert()
	require := suite.Require()

	_, err := CreateModel(suite.db, "arima")
	require.NoError(err)
	_, err = CreateAttribute(suite.db, models.KindMeasure, models.AddAttribute{
		Name: "temperature_forecast", Units: "degrees Celsius", Datatype: models.DatatypeFloat,
	})
	require.NoError(err)

	base := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	run, err := CreateModelRun(suite.db, "arima", "what if", true, "", "",
		[]ModelRunOutput{{
			MeasureName: "temperature_forecast",
			Values:      []interface{}{20.1, 20.7},
			Timestamps:  []time.Time{base, base.Add(time.Hour)},
		}})
	require.NoError(err)
	require.NotNil(run.ScenarioID)

	// the scenario was created on the fly
	scenarios, err := ListModelScenarios(suite.db, "arima")
	require.NoError(err)
	require.Len(scenarios, 1)
	assert.Equal("what if", scenarios[0].Description)

	output, err := GetModelRunOutput(suite.db, run.ID)
	require.NoError(err)
	require.Contains(output, "temperature_forecast")
	require.Len(output["temperature_forecast"], 2)
	assert.Equal(20.1, output["temperature_forecast"][0].Value)
	assert.Equal(20.7, output["temperature_forecast"][1].Value)

	runs, err := ListModelRuns(suite.db, "arima", nil, nil)
	require.NoError(err)
	require.Len(runs, 1)
	assert.Equal("what if", runs[0].ScenarioDescription)
}

func (suite *StoreTestSuite) TestCreateModelRunUnknownScenario() {
	assert := suite.Assert()
	require := suite.Require()

	_, err := CreateModel(suite.db, "arima")
	require.NoError(err)

	var notFound *NotFoundError
	_, err = CreateModelRun(suite.db, "arima", "missing", false, "", "", nil)
	assert.ErrorAs(err, &notFound)

	_, err = CreateModelRun(suite.db, "nowhere", "", false, "", "", nil)
	assert.ErrorAs(err, &notFound)
}

func (suite *StoreTestSuite) TestDeleteModelBlockedByRuns() {
	assert := suite.Assert()
	require := suite.Require()

	_, err := CreateModel(suite.db, "arima")
	require.NoError(err)
	run, err := CreateModelRun(suite.db, "arima", "", false, "", "", nil)
	require.NoError(err)

	err = DeleteModel(suite.db, "arima")
	var invalidState *InvalidStateError
	assert.ErrorAs(err, &invalidState)

	suite.db.Delete(&models.ModelRun{}, "id = ?", run.ID)
	assert.NoError(DeleteModel(suite.db, "arima"))
}
