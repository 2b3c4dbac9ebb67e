// Package sqlite implements a file-backed storage engine for installations
// that don't want to run a database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/chrissnell/oregonweather/internal/log"
	"github.com/chrissnell/oregonweather/internal/types"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS weather (
	time INTEGER NOT NULL,
	stationname TEXT,
	stationtype TEXT,
	barometer REAL,
	pressure REAL,
	intemp REAL,
	outtemp REAL,
	extratemp1 REAL,
	extratemp2 REAL,
	inhumidity REAL,
	outhumidity REAL,
	extrahumidity1 REAL,
	extrahumidity2 REAL,
	indewpoint REAL,
	outdewpoint REAL,
	extradewpoint1 REAL,
	extradewpoint2 REAL,
	windspeed REAL,
	windgust REAL,
	winddir REAL,
	windchill REAL,
	rainrate REAL,
	rainincremental REAL,
	raintotal REAL,
	rainhour REAL,
	rain24 REAL
);
CREATE INDEX IF NOT EXISTS idx_weather_time ON weather(time);
CREATE INDEX IF NOT EXISTS idx_weather_station ON weather(stationname, time);`

const insertReadingSQL = `INSERT INTO weather (
	time, stationname, stationtype,
	barometer, pressure,
	intemp, outtemp, extratemp1, extratemp2,
	inhumidity, outhumidity, extrahumidity1, extrahumidity2,
	indewpoint, outdewpoint, extradewpoint1, extradewpoint2,
	windspeed, windgust, winddir, windchill,
	rainrate, rainincremental, raintotal, rainhour, rain24
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Storage holds the connection to a SQLite database file
type Storage struct {
	db *sql.DB
}

// New sets up a new SQLite storage backend
func New(ctx context.Context, c *types.Config) (*Storage, error) {
	db, err := sql.Open("sqlite", c.Storage.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", c.Storage.SQLite.Path, err)
	}

	// modernc.org/sqlite does not support concurrent writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create weather table: %w", err)
	}

	return &Storage{db: db}, nil
}

// StartStorageEngine creates a goroutine loop to receive readings and write
// them to the SQLite database
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting SQLite storage engine...")
	readingChan := make(chan types.Reading, 10)
	go s.processMetrics(ctx, wg, readingChan)
	return readingChan
}

func (s *Storage) processMetrics(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			err := s.StoreReading(ctx, r)
			if err != nil {
				log.Error("could not store reading:", err)
			}
		case <-ctx.Done():
			log.Info("cancellation request received.  Cancelling readings processor.")
			s.db.Close()
			return
		}
	}
}

// StoreReading stores a reading value in the SQLite database
func (s *Storage) StoreReading(ctx context.Context, r types.Reading) error {
	_, err := s.db.ExecContext(ctx, insertReadingSQL,
		r.Timestamp.Unix(), r.StationName, r.StationType,
		r.Barometer, r.Pressure,
		r.InTemp, r.OutTemp, r.ExtraTemp1, r.ExtraTemp2,
		r.InHumidity, r.OutHumidity, r.ExtraHumidity1, r.ExtraHumidity2,
		r.InDewpoint, r.OutDewpoint, r.ExtraDewpoint1, r.ExtraDewpoint2,
		r.WindSpeed, r.WindGust, r.WindDir, r.WindChill,
		r.RainRate, r.RainIncremental, r.RainTotal, r.RainHour, r.Rain24,
	)
	return err
}
