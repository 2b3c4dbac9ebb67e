package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/oregonweather/internal/log"
	"github.com/chrissnell/oregonweather/internal/types"
	"github.com/chrissnell/oregonweather/internal/weatherstations"
	"github.com/chrissnell/oregonweather/internal/weatherstations/wmr89"
	"go.uber.org/zap"
)

// WeatherStationManager holds our active weather stations
type WeatherStationManager struct {
	stations map[string]weatherstations.WeatherStation
	logger   *zap.SugaredLogger
}

// NewWeatherStationManager creates a WeatherStationManager object, populated
// with all configured weather stations
func NewWeatherStationManager(ctx context.Context, wg *sync.WaitGroup, c *types.Config, distributor chan types.Reading, logger *zap.SugaredLogger) (*WeatherStationManager, error) {
	wsm := &WeatherStationManager{
		stations: make(map[string]weatherstations.WeatherStation),
		logger:   logger,
	}

	for _, deviceConfig := range c.Devices {
		station, err := createStationFromConfig(ctx, wg, deviceConfig, distributor, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating weather station [%s]: %w", deviceConfig.Name, err)
		}
		wsm.stations[deviceConfig.Name] = station
	}

	return wsm, nil
}

// StartWeatherStations starts all configured stations
func (w *WeatherStationManager) StartWeatherStations() error {
	for name, station := range w.stations {
		w.logger.Infof("Starting weather station [%v]...", name)
		if err := station.StartWeatherStation(); err != nil {
			return fmt.Errorf("failed to start weather station [%s]: %w", name, err)
		}
	}
	return nil
}

// createStationFromConfig creates the appropriate weather station based on device type
func createStationFromConfig(ctx context.Context, wg *sync.WaitGroup, deviceConfig types.DeviceConfig, distributor chan types.Reading, logger *zap.SugaredLogger) (weatherstations.WeatherStation, error) {
	if deviceConfig.Name == "" {
		return nil, fmt.Errorf("all devices must have a name")
	}

	switch deviceConfig.Type {
	case "wmr89", "":
		log.Infof("Initializing WMR89 weather station [%v]", deviceConfig.Name)
		return wmr89.NewStation(ctx, wg, deviceConfig, distributor, logger), nil
	default:
		return nil, fmt.Errorf("unknown weather station type: %s", deviceConfig.Type)
	}
}
