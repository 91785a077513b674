package recommend

import (
	"net/url"
	"regexp"
	"strings"
)

var placePattern = regexp.MustCompile(`(?i)(?:Visit|Dine at|Explore|Try|Experience|Enjoy|Go to|See|Check out|Discover)\s+([^-\n.;,]*?)(?:\s*[-:.;,]|$|\n)`)

// MapsURL builds a Google Maps search link for a place in a destination.
func MapsURL(place, destination string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(place+" "+destination)
}

// AddMapLinks appends a map link line after each phrase such as "Visit the
// Colosseum". Places are linked once, compared case-insensitively, and names
// are cut at " - " or " (".
func AddMapLinks(text, destination string) string {
	out := text
	seen := map[string]bool{}

	for _, m := range placePattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if len(name) <= 2 || seen[strings.ToLower(name)] {
			continue
		}
		name, _, _ = strings.Cut(name, " - ")
		name, _, _ = strings.Cut(name, " (")
		name = strings.TrimSpace(name)
		if len(name) <= 2 {
			continue
		}
		seen[strings.ToLower(name)] = true

		link := MapsURL(name, destination)
		if strings.Contains(out, link) {
			continue
		}
		phrase := m[0]
		out = strings.ReplaceAll(out, phrase, phrase+"\n🗺️ ["+name+"]("+link+")")
	}
	return out
}
