package types

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the base configuration object
type Config struct {
	Devices []DeviceConfig `yaml:"devices"`
	Storage StorageConfig  `yaml:"storage,omitempty"`
}

// DeviceConfig holds configuration specific to data collection devices
type DeviceConfig struct {
	Name         string            `yaml:"name"`
	Type         string            `yaml:"type,omitempty"`
	Hostname     string            `yaml:"hostname,omitempty"`
	Port         string            `yaml:"port,omitempty"`
	SerialDevice string            `yaml:"serialdevice,omitempty"`
	Baud         int               `yaml:"baud,omitempty"`
	SensorMap    map[string]string `yaml:"sensor_map,omitempty"`
}

// StorageConfig holds the configuration for various storage backends.
// More than one storage backend can be used simultaneously
type StorageConfig struct {
	TimescaleDB TimescaleDBConfig `yaml:"timescaledb,omitempty"`
	SQLite      SQLiteConfig      `yaml:"sqlite,omitempty"`
	RESTServer  RESTServerConfig  `yaml:"rest,omitempty"`
}

type TimescaleDBConfig struct {
	ConnectionString string `yaml:"connection-string,omitempty"`
}

type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

type RESTServerConfig struct {
	ListenAddr string `yaml:"listen-addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
}

// NewConfig creates a new config object from the given filename.
func NewConfig(filename string) (Config, error) {
	cfgFile, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	c := Config{}
	err = yaml.Unmarshal(cfgFile, &c)
	if err != nil {
		return Config{}, err
	}
	return c, nil
}
