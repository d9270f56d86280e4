package store

import (
	"time"

	"github.com/twincore-io/twincore/internal/models"
)

func (suite *StoreTestSuite) makeWeatherStationType() {
	require := suite.Require()
	for _, def := range []models.AddAttribute{
		{Name: "temperature", Units: "degrees Celsius", Datatype: models.DatatypeFloat},
		{Name: "humidity", Units: "percent", Datatype: models.DatatypeInteger},
	} {
		_, err := CreateAttribute(suite.db, models.KindMeasure, def)
		require.NoError(err)
	}
	_, err := CreateSchema(suite.db, models.KindMeasure, "weather_station", "", []string{"temperature", "humidity"})
	require.NoError(err)
}

func (suite *StoreTestSuite) TestCreateSensorDuplicateIdentifier() {
	assert := suite.Assert()
	require := suite.Require()
	suite.makeWeatherStationType()

	add := models.AddSensor{
		SensorType:       "weather_station",
		UniqueIdentifier: "TRH-042",
		Name:             "Roof sensor",
	}
	sensor, err := CreateSensor(suite.db, add)
	require.NoError(err)
	assert.Equal("weather_station", sensor.SensorTypeName)

	_, err = CreateSensor(suite.db, add)
	var conflict *ConflictError
	assert.ErrorAs(err, &conflict)
}

func (suite *StoreTestSuite) TestInsertReadingsValidatesMeasure() {
	assert := suite.Assert()
	require := suite.Require()
	suite.makeWeatherStationType()

	_, err := CreateSensor(suite.db, models.AddSensor{
		SensorType: "weather_station", UniqueIdentifier: "TRH-042",
	})
	require.NoError(err)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var notFound *NotFoundError
	err = InsertSensorReadings(suite.db, "TRH-042", "wind_speed",
		[]interface{}{1.0}, []time.Time{now})
	assert.ErrorAs(err, &notFound)

	// measure exists but is not bound by the sensor's type
	_, err = CreateAttribute(suite.db, models.KindMeasure, models.AddAttribute{
		Name: "co2", Units: "ppm", Datatype: models.DatatypeInteger,
	})
	require.NoError(err)
	err = InsertSensorReadings(suite.db, "TRH-042", "co2",
		[]interface{}{400}, []time.Time{now})
	assert.ErrorAs(err, &notFound)

	var validation *ValidationError
	err = InsertSensorReadings(suite.db, "TRH-042", "temperature",
		[]interface{}{"hot"}, []time.Time{now})
	assert.ErrorAs(err, &validation)
}

func (suite *StoreTestSuite) TestReadingsInsertIdempotent() {
	assert := suite.Assert()
	require := suite.Require()
	suite.makeWeatherStationType()

	_, err := CreateSensor(suite.db, models.AddSensor{
		SensorType: "weather_station", UniqueIdentifier: "TRH-042",
	})
	require.NoError(err)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	timestamps := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}
	values := []interface{}{20.5, 21.0, 19.75}

	require.NoError(InsertSensorReadings(suite.db, "TRH-042", "temperature", values, timestamps))
	// replaying the batch must not duplicate points
	require.NoError(InsertSensorReadings(suite.db, "TRH-042", "temperature", values, timestamps))

	readings, err := QuerySensorReadings(suite.db, "TRH-042", "temperature",
		base, base.Add(2*time.Hour))
	require.NoError(err)
	require.Len(readings, 3)
	assert.Equal(20.5, readings[0].Value)
	assert.Equal(21.0, readings[1].Value)
	assert.Equal(19.75, readings[2].Value)
}

func (suite *StoreTestSuite) TestQueryReadingsInclusiveRange() {
	assert := suite.Assert()
	require := suite.Require()
	suite.makeWeatherStationType()

	_, err := CreateSensor(suite.db, models.AddSensor{
		SensorType: "weather_station", UniqueIdentifier: "TRH-042",
	})
	require.NoError(err)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	timestamps := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}
	require.NoError(InsertSensorReadings(suite.db, "TRH-042", "humidity",
		[]interface{}{40, 42, 45}, timestamps))

	// both endpoints are included
	readings, err := QuerySensorReadings(suite.db, "TRH-042", "humidity",
		base, base.Add(time.Hour))
	require.NoError(err)
	assert.Len(readings, 2)

	// from == to selects the single matching point
	point, err := QuerySensorReadings(suite.db, "TRH-042", "humidity",
		base.Add(time.Hour), base.Add(time.Hour))
	require.NoError(err)
	require.Len(point, 1)
	assert.Equal(int64(42), point[0].Value)

	// an empty window is an empty slice, not an error
	empty, err := QuerySensorReadings(suite.db, "TRH-042", "humidity",
		base.Add(3*time.Hour), base.Add(4*time.Hour))
	require.NoError(err)
	assert.Empty(empty)
}

func (suite *StoreTestSuite) TestSensorLocationHistory() {
	assert := suite.Assert()
	require := suite.Require()
	suite.makeWeatherStationType()
	suite.makeLatlongSchema()

	_, err := CreateSensor(suite.db, models.AddSensor{
		SensorType: "weather_station", UniqueIdentifier: "TRH-042",
	})
	require.NoError(err)

	roof := map[string]interface{}{"latitude": 51.5, "longitude": -0.1}
	yard := map[string]interface{}{"latitude": 51.4, "longitude": -0.2}
	_, err = CreateEntity(suite.db, "latlong", roof)
	require.NoError(err)
	_, err = CreateEntity(suite.db, "latlong", yard)
	require.NoError(err)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(AssignSensorLocation(suite.db, "TRH-042", "latlong", roof, t0))
	require.NoError(AssignSensorLocation(suite.db, "TRH-042", "latlong", yard, t1))

	// duplicate (sensor, installation time) is a conflict
	var conflict *ConflictError
	err = AssignSensorLocation(suite.db, "TRH-042", "latlong", roof, t1)
	assert.ErrorAs(err, &conflict)

	// the location must already exist
	var notFound *NotFoundError
	err = AssignSensorLocation(suite.db, "TRH-042", "latlong",
		map[string]interface{}{"latitude": 0.0, "longitude": 0.0}, t1.Add(time.Hour))
	assert.ErrorAs(err, &notFound)

	history, err := ListSensorLocations(suite.db, "TRH-042")
	require.NoError(err)
	require.Len(history, 2)
	// newest-first
	assert.True(history[0].InstallationTime.Equal(t1))
	assert.Equal(51.4, history[0].Location.Values["latitude"].FloatVal())
	assert.True(history[1].InstallationTime.Equal(t0))
	assert.Equal(51.5, history[1].Location.Values["latitude"].FloatVal())
}

func (suite *StoreTestSuite) TestDeleteLocationBlockedByInstallations() {
	assert := suite.Assert()
	require := suite.Require()
	suite.makeWeatherStationType()
	suite.makeLatlongSchema()

	_, err := CreateSensor(suite.db, models.AddSensor{
		SensorType: "weather_station", UniqueIdentifier: "TRH-042",
	})
	require.NoError(err)

	roof := map[string]interface{}{"latitude": 51.5, "longitude": -0.1}
	_, err = CreateEntity(suite.db, "latlong", roof)
	require.NoError(err)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(AssignSensorLocation(suite.db, "TRH-042", "latlong", roof, t0))

	// the installation history pins the location
	err = DeleteEntity(suite.db, "latlong", roof)
	var invalidState *InvalidStateError
	assert.ErrorAs(err, &invalidState)

	history, err := ListSensorLocations(suite.db, "TRH-042")
	require.NoError(err)
	require.Len(history, 1)
	assert.Equal(51.5, history[0].Location.Values["latitude"].FloatVal())

	// once the sensor is gone the location is free to delete
	require.NoError(DeleteSensor(suite.db, "TRH-042"))
	assert.NoError(DeleteEntity(suite.db, "latlong", roof))
}

func (suite *StoreTestSuite) TestDeleteSensorCascades() {
	assert := suite.Assert()
	require := suite.Require()
	suite.makeWeatherStationType()

	sensor, err := CreateSensor(suite.db, models.AddSensor{
		SensorType: "weather_station", UniqueIdentifier: "TRH-042",
	})
	require.NoError(err)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(InsertSensorReadings(suite.db, "TRH-042", "temperature",
		[]interface{}{20.5}, []time.Time{now}))

	require.NoError(DeleteSensor(suite.db, "TRH-042"))

	var notFound *NotFoundError
	_, err = GetSensor(suite.db, "TRH-042")
	assert.ErrorAs(err, &notFound)

	var rows int64
	suite.db.Model(&models.FloatReading{}).Where("entity_id = ?", sensor.ID).Count(&rows)
	assert.Zero(rows)

	// the sensor type is free to delete once its sensors are gone
	assert.NoError(DeleteSchema(suite.db, models.KindMeasure, "weather_station"))
}
