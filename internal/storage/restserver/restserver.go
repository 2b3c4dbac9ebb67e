// Package restserver implements a storage engine that serves the most recent
// readings over HTTP instead of persisting them.
package restserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/chrissnell/oregonweather/internal/log"
	"github.com/chrissnell/oregonweather/internal/types"
	"github.com/gorilla/mux"
)

// WeatherReading is the JSON shape we serve to clients
type WeatherReading struct {
	StationName      string  `json:"stationname"`
	ReadingTimestamp int64   `json:"ts"`
	OutsideTemp      float32 `json:"otemp"`
	InsideTemp       float32 `json:"itemp"`
	OutsideHumidity  float32 `json:"ohum"`
	InsideHumidity   float32 `json:"ihum"`
	Barometer        float32 `json:"bar"`
	WindSpeed        float32 `json:"winds"`
	WindGust         float32 `json:"windg"`
	WindDirection    float32 `json:"windd"`
	WindChill        float32 `json:"windch"`
	RainRate         float32 `json:"rainrate"`
	RainfallDay      float32 `json:"rainday"`
}

// Storage implements a REST server storage backend.  It holds the latest
// reading per station in memory and serves it on demand.
type Storage struct {
	latest      map[string]types.Reading
	latestMutex sync.RWMutex
	Server      http.Server
}

// New sets up a new REST server storage backend
func New(ctx context.Context, c *types.Config) (*Storage, error) {
	s := &Storage{
		latest: make(map[string]types.Reading),
	}

	listenAddr := c.Storage.RESTServer.ListenAddr
	// If a ListenAddr was not provided, listen on all interfaces
	if listenAddr == "" {
		log.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		listenAddr = "0.0.0.0"
	}

	router := mux.NewRouter()
	router.HandleFunc("/latest", s.getLatest)
	router.HandleFunc("/latest/{station}", s.getLatestForStation)

	s.Server.Addr = fmt.Sprintf("%v:%v", listenAddr, c.Storage.RESTServer.Port)
	s.Server.Handler = router

	go func() {
		err := s.Server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	return s, nil
}

// StartStorageEngine creates a goroutine loop to receive readings and keep
// the latest-per-station view current
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting REST server storage engine...")
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
			s.latestMutex.Lock()
			s.latest[r.StationName] = r
			s.latestMutex.Unlock()
		case <-ctx.Done():
			log.Info("cancellation request received.  Cancelling readings processor.")
			s.Server.Shutdown(context.Background())
			return
		}
	}
}

func (s *Storage) getLatest(w http.ResponseWriter, req *http.Request) {
	s.latestMutex.RLock()
	readings := make([]WeatherReading, 0, len(s.latest))
	for _, r := range s.latest {
		readings = append(readings, transformReading(r))
	}
	s.latestMutex.RUnlock()

	writeJSON(w, readings)
}

func (s *Storage) getLatestForStation(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	s.latestMutex.RLock()
	r, ok := s.latest[vars["station"]]
	s.latestMutex.RUnlock()

	if !ok {
		http.Error(w, "error: no readings for that station", http.StatusNotFound)
		return
	}

	writeJSON(w, transformReading(r))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Add("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	jsonResponse, err := json.Marshal(v)
	if err != nil {
		log.Errorf("error marshalling readings: %v", err)
		http.Error(w, "error encoding readings", http.StatusInternalServerError)
		return
	}
	w.Write(jsonResponse)
}

func transformReading(r types.Reading) WeatherReading {
	return WeatherReading{
		StationName:      r.StationName,
		ReadingTimestamp: r.Timestamp.Unix(),
		OutsideTemp:      r.OutTemp,
		InsideTemp:       r.InTemp,
		OutsideHumidity:  r.OutHumidity,
		InsideHumidity:   r.InHumidity,
		Barometer:        r.Barometer,
		WindSpeed:        r.WindSpeed,
		WindGust:         r.WindGust,
		WindDirection:    r.WindDir,
		WindChill:        r.WindChill,
		RainRate:         r.RainRate,
		RainfallDay:      r.Rain24,
	}
}
