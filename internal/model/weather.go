package model

import "time"

// WeatherType classifies the dominant weather of a day.
type WeatherType string

const (
	WeatherSunny  WeatherType = "SUNNY"
	WeatherCloudy WeatherType = "CLOUDY"
	WeatherRainy  WeatherType = "RAINY"
	WeatherSnowy  WeatherType = "SNOWY"
)

// HourlyTemperature is a single per-hour reading belonging to a weather
// record. Hour is 0-23.
type HourlyTemperature struct {
	Hour        int     `json:"hour"`
	Temperature float64 `json:"temperature"`
}

// WeatherRecord represents one day of weather. The hourly readings, when
// present, cover hours 0-23 exactly once and are owned by the record: any
// update replaces them wholesale.
type WeatherRecord struct {
	ID                 string              `json:"id"`
	Date               time.Time           `json:"date"`
	WeatherType        WeatherType         `json:"weatherType"`
	AverageTemperature float64             `json:"averageTemperature"`
	HourlyTemperatures []HourlyTemperature `json:"hourlyTemperatures"`
}

// WeatherRecordRequest represents a create/update payload for a weather
// record. The date is a calendar day in YYYY-MM-DD form.
type WeatherRecordRequest struct {
	Date               string                     `json:"date" validate:"required,datetime=2006-01-02"`
	WeatherType        string                     `json:"weatherType" validate:"required,oneof=SUNNY CLOUDY RAINY SNOWY"`
	AverageTemperature float64                    `json:"averageTemperature"`
	HourlyTemperatures []HourlyTemperatureRequest `json:"hourlyTemperatures" validate:"omitempty,len=24,dive"`
}

// HourlyTemperatureRequest is one hourly reading in a create/update payload.
type HourlyTemperatureRequest struct {
	Hour        int     `json:"hour" validate:"min=0,max=23"`
	Temperature float64 `json:"temperature"`
}
