package slots

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Chative-trip-planner/server/internal/trip/model"
)

const (
	SentinelStart = "|||EXTRACT|||"
	SentinelEnd   = "|||END|||"
)

var extractionBlock = regexp.MustCompile(`(?s)\|\|\|EXTRACT\|\|\|(.*?)\|\|\|END\|\|\|`)

// ParseExtraction pulls the first extraction block out of an assistant reply.
// The returned text never contains an extraction block. A reply without a
// block yields empty slots and no error; a block that is not a JSON object
// yields empty slots and an error the caller may log and ignore.
func ParseExtraction(reply string) (string, model.Slots, error) {
	match := extractionBlock.FindStringSubmatch(reply)
	cleaned := strings.TrimSpace(extractionBlock.ReplaceAllString(reply, ""))
	if match == nil {
		return cleaned, model.Slots{}, nil
	}

	payload := stripFences(match[1])
	if payload == "" {
		return cleaned, model.Slots{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return cleaned, model.Slots{}, fmt.Errorf("decode extraction payload: %w", err)
	}
	return cleaned, FromMap(raw), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FromMap converts a loosely typed payload into slots. Null, empty and
// ill-typed values are dropped, as are enum values outside their set.
func FromMap(raw map[string]any) model.Slots {
	var s model.Slots
	s.Origin = asString(raw["origin"])
	s.Destination = asString(raw["destination"])
	s.NumberOfTravelers = asPositiveInt(raw["number_of_travelers"])
	s.WeatherPreference = asEnum(raw["weather_preference"], model.WeatherPreferences)
	s.Activities = asEnum(raw["activities"], model.ActivityStyles)
	s.Budget = asString(raw["budget"])
	s.BudgetAllocation = asAllocation(raw["budget_allocation"])
	s.ArrivalDate = asString(raw["arrival_date"])
	s.DepartureDate = asString(raw["departure_date"])
	s.DateFlexibility = asEnum(raw["date_flexibility"], model.DateFlexibilities)
	s.Confirmed = asBool(raw["confirmed"])
	return s
}

func asString(v any) *string {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		if t == "" || strings.EqualFold(t, "null") {
			return nil
		}
		return &t
	case float64:
		out := strconv.FormatFloat(t, 'f', -1, 64)
		return &out
	}
	return nil
}

func asPositiveInt(v any) *int {
	var n int
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return nil
		}
		n = int(t)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}

func asEnum(v any, allowed []string) *string {
	s := asString(v)
	if s == nil {
		return nil
	}
	lower := strings.ToLower(*s)
	if !lo.Contains(allowed, lower) {
		return nil
	}
	return &lower
}

func asBool(v any) *bool {
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &b
	}
	return nil
}

func asAllocation(v any) *model.BudgetAllocation {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	var (
		a     model.BudgetAllocation
		found bool
	)
	for key, dst := range map[string]*float64{
		"accommodation": &a.Accommodation,
		"flights":       &a.Flights,
		"activities":    &a.Activities,
	} {
		if f, ok := asPercent(m[key]); ok {
			*dst = f
			found = true
		}
	}
	if !found {
		return nil
	}
	return &a
}

func asPercent(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
