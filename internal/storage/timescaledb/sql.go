package timescaledb

const createTableSQL = `CREATE TABLE IF NOT EXISTS weather (
	time timestamptz NOT NULL,
	stationname text NULL,
	stationtype text NULL,
	barometer float4 NULL,
	pressure float4 NULL,
	intemp float4 NULL,
	outtemp float4 NULL,
	extratemp1 float4 NULL,
	extratemp2 float4 NULL,
	inhumidity float4 NULL,
	outhumidity float4 NULL,
	extrahumidity1 float4 NULL,
	extrahumidity2 float4 NULL,
	indewpoint float4 NULL,
	outdewpoint float4 NULL,
	extradewpoint1 float4 NULL,
	extradewpoint2 float4 NULL,
	windspeed float4 NULL,
	windgust float4 NULL,
	winddir float4 NULL,
	windchill float4 NULL,
	rainrate float4 NULL,
	rainincremental float4 NULL,
	raintotal float4 NULL,
	rainhour float4 NULL,
	rain24 float4 NULL
);`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createHypertableSQL = `SELECT create_hypertable('weather', 'time', if_not_exists => TRUE);`
