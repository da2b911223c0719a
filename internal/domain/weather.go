package domain

// Weather is a snapshot of current conditions at a task's location.
type Weather struct {
	Temp         *float64 `json:"temp"`
	Condition    string   `json:"condition"`
	Description  string   `json:"description"`
	Icon         string   `json:"icon"`
	IsBadWeather bool     `json:"is_bad_weather"`
	Location     string   `json:"location"`
}
