package types

import (
	"reflect"
	"time"
)

// Reading is a generic weather reading, containing human-readable values
// for the metrics that an Oregon Scientific console reports.  When adding
// support for a new console, you should ideally use one of the existing
// Reading struct members.  If you can't find what you need in here, you
// can add a new member to the struct.
type Reading struct {
	Timestamp       time.Time `gorm:"column:time"`
	StationName     string    `gorm:"column:stationname"`
	StationType     string    `gorm:"column:stationtype"`
	Barometer       float32   `gorm:"column:barometer"`
	Pressure        float32   `gorm:"column:pressure"`
	InTemp          float32   `gorm:"column:intemp"`
	OutTemp         float32   `gorm:"column:outtemp"`
	ExtraTemp1      float32   `gorm:"column:extratemp1"`
	ExtraTemp2      float32   `gorm:"column:extratemp2"`
	InHumidity      float32   `gorm:"column:inhumidity"`
	OutHumidity     float32   `gorm:"column:outhumidity"`
	ExtraHumidity1  float32   `gorm:"column:extrahumidity1"`
	ExtraHumidity2  float32   `gorm:"column:extrahumidity2"`
	InDewpoint      float32   `gorm:"column:indewpoint"`
	OutDewpoint     float32   `gorm:"column:outdewpoint"`
	ExtraDewpoint1  float32   `gorm:"column:extradewpoint1"`
	ExtraDewpoint2  float32   `gorm:"column:extradewpoint2"`
	WindSpeed       float32   `gorm:"column:windspeed"`
	WindGust        float32   `gorm:"column:windgust"`
	WindDir         float32   `gorm:"column:winddir"`
	WindChill       float32   `gorm:"column:windchill"`
	RainRate        float32   `gorm:"column:rainrate"`
	RainIncremental float32   `gorm:"column:rainincremental"`
	RainTotal       float32   `gorm:"column:raintotal"`
	RainHour        float32   `gorm:"column:rainhour"`
	Rain24          float32   `gorm:"column:rain24"`
}

// ToMap converts a Reading object into a map for later storage
func (r *Reading) ToMap() map[string]interface{} {
	m := make(map[string]interface{})

	v := reflect.ValueOf(*r)

	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Kind() == reflect.Float32 {
			m[v.Type().Field(i).Name] = v.Field(i).Float()
		}
	}

	return m
}

// TableName implements the GORM Tabler interface for the Reading struct
func (Reading) TableName() string {
	return "weather"
}
