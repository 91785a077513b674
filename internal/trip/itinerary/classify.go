package itinerary

import "strings"

type Direction int

const (
	DirectionNone Direction = iota
	DirectionOutbound
	DirectionInbound
)

func (d Direction) String() string {
	switch d {
	case DirectionOutbound:
		return "journey_to"
	case DirectionInbound:
		return "journey_from"
	}
	return "none"
}

// metroNames maps airport and metro codes to the city name a traveller would
// type. A flight code matches a trip slot when the slot contains the code
// itself or one of these names.
var metroNames = map[string]string{
	"NYC": "NEW YORK", "JFK": "NEW YORK", "LGA": "NEW YORK", "EWR": "NEW YORK",
	"PAR": "PARIS", "CDG": "PARIS", "ORY": "PARIS",
	"LON": "LONDON", "LHR": "LONDON", "LGW": "LONDON", "STN": "LONDON", "LCY": "LONDON",
	"ROM": "ROME", "FCO": "ROME", "CIA": "ROME",
	"MIL": "MILAN", "MXP": "MILAN", "LIN": "MILAN",
	"TYO": "TOKYO", "HND": "TOKYO", "NRT": "TOKYO",
	"CHI": "CHICAGO", "ORD": "CHICAGO", "MDW": "CHICAGO",
	"WAS": "WASHINGTON", "IAD": "WASHINGTON", "DCA": "WASHINGTON",
	"LAX": "LOS ANGELES", "SFO": "SAN FRANCISCO",
	"BER": "BERLIN", "MAD": "MADRID", "BCN": "BARCELONA", "LIS": "LISBON",
	"AMS": "AMSTERDAM", "BKK": "BANGKOK", "DMK": "BANGKOK", "SIN": "SINGAPORE",
	"DXB": "DUBAI", "IST": "ISTANBUL", "SAW": "ISTANBUL", "BOM": "MUMBAI", "DEL": "DELHI",
	"SYD": "SYDNEY", "YTO": "TORONTO", "YYZ": "TORONTO", "MEX": "MEXICO CITY",
}

// codeIn reports whether a stored flight code refers to the place named by
// slot. Comparison is case-insensitive substring containment; an empty code
// never matches.
func codeIn(code, slot string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	slot = strings.ToUpper(slot)
	if code == "" || slot == "" {
		return false
	}
	if strings.Contains(slot, code) {
		return true
	}
	if name, ok := metroNames[code]; ok {
		if strings.Contains(slot, name) {
			return true
		}
		if other, ok := metroNames[strings.TrimSpace(slot)]; ok && other == name {
			return true
		}
	}
	return false
}

// Classify assigns a stored flight to the outbound or inbound leg of the
// trip. A flight matching neither direction claims the outbound leg when
// nothing has claimed it yet, so an ambiguous first flight can become the
// outbound leg.
func Classify(flightOrigin, flightDestination, tripOrigin, tripDestination string, outboundTaken bool) Direction {
	if tripOrigin != "" && tripDestination != "" {
		if codeIn(flightOrigin, tripOrigin) && codeIn(flightDestination, tripDestination) {
			return DirectionOutbound
		}
		if codeIn(flightOrigin, tripDestination) && codeIn(flightDestination, tripOrigin) {
			return DirectionInbound
		}
	}
	if !outboundTaken {
		return DirectionOutbound
	}
	return DirectionNone
}
