package openweather

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/phrazzld/task-tracker/internal/domain"
)

// UnknownCondition is reported when the response names no condition.
const UnknownCondition = "不明"

// badWeather lists the primary conditions that count as bad weather.
var badWeather = map[string]bool{
	"Rain":         true,
	"Snow":         true,
	"Thunderstorm": true,
	"Drizzle":      true,
}

// response mirrors the parts of the API payload that are read. Every field is
// decoded lazily so that a malformed field degrades instead of failing.
type response struct {
	Weather json.RawMessage `json:"weather"`
	Main    json.RawMessage `json:"main"`
	Name    json.RawMessage `json:"name"`
}

type condition struct {
	Main        string
	Description string
	Icon        string
}

// apiErrorBody is the error payload returned alongside non-2xx responses.
type apiErrorBody struct {
	Message string `json:"message"`
}

// parseWeather converts a response body into a Weather. Only a body that is
// not a JSON object is an error; missing or mistyped fields use defaults.
func parseWeather(body []byte, location string) (*domain.Weather, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	cond := firstCondition(resp.Weather)

	w := &domain.Weather{
		Temp:         temperature(resp.Main),
		Condition:    cond.Description,
		Description:  cond.Description,
		Icon:         cond.Icon,
		IsBadWeather: badWeather[cond.Main],
		Location:     location,
	}
	if w.Condition == "" {
		w.Condition = cond.Main
	}
	if w.Condition == "" {
		w.Condition = UnknownCondition
	}

	var name string
	if err := json.Unmarshal(resp.Name, &name); err == nil {
		w.Location = name
	}

	return w, nil
}

// firstCondition reads weather[0], returning zero values when the list is
// missing, empty, or its first element is not an object.
func firstCondition(raw json.RawMessage) condition {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
		return condition{}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(list[0], &fields); err != nil {
		return condition{}
	}

	return condition{
		Main:        stringField(fields, "main"),
		Description: stringField(fields, "description"),
		Icon:        stringField(fields, "icon"),
	}
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(fields[key], &s); err != nil {
		return ""
	}
	return s
}

// temperature reads main.temp rounded to one decimal, or nil when absent.
func temperature(raw json.RawMessage) *float64 {
	var main map[string]json.RawMessage
	if err := json.Unmarshal(raw, &main); err != nil {
		return nil
	}

	var temp float64
	if err := json.Unmarshal(main["temp"], &temp); err != nil {
		return nil
	}

	rounded := math.Round(temp*10) / 10
	return &rounded
}

// apiMessage extracts the message field of an error payload, if any.
func apiMessage(body []byte) string {
	var payload apiErrorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
