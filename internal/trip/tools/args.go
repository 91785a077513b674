package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultPriceMax = 1000
	defaultAdults   = 1
	maxAdults       = 30
)

// argAliases maps alternate argument names models emit onto the catalogue
// names.
var argAliases = map[string]map[string]string{
	"search_hotels": {
		"arrival":   "arrival_date",
		"departure": "departure_date",
		"checkin":   "arrival_date",
		"checkout":  "departure_date",
	},
	"search_flights": {
		"origin":      "origin_city",
		"destination": "destination_city",
		"date":        "departure_date",
	},
}

type args map[string]any

// parseArgs decodes the model's JSON arguments and renames aliased keys.
// Empty input decodes to an empty set.
func parseArgs(tool, raw string) (args, error) {
	m := args{}
	if strings.TrimSpace(raw) == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	for from, to := range argAliases[tool] {
		if v, ok := m[from]; ok {
			if _, taken := m[to]; !taken {
				m[to] = v
			}
			delete(m, from)
		}
	}
	return m, nil
}

func (a args) str(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// intOr reads a number or numeric string and clamps it to [min, max].
func (a args) intOr(key string, def, min, max int) int {
	var n int
	switch v := a[key].(type) {
	case float64:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		n = parsed
	default:
		return def
	}
	return clampInt(n, min, max)
}

// list accepts either a JSON array of strings or a comma separated string.
func (a args) list(key string) []string {
	var parts []string
	switch v := a[key].(type) {
	case string:
		parts = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// clampInt returns v limited to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
