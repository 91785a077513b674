package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SuggestionType string

const (
	SuggestionHotel   SuggestionType = "hotel"
	SuggestionFlight  SuggestionType = "flight"
	SuggestionShop    SuggestionType = "shop"
	SuggestionLeisure SuggestionType = "leisure"
)

// Suggestion is a persisted, normalized search result.
type Suggestion struct {
	ID             string              `json:"id"`
	ConversationID string              `json:"conversation_id"`
	Seq            int64               `json:"-"`
	Type           SuggestionType      `json:"type"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Price          decimal.NullDecimal `json:"price"`
	Currency       string              `json:"currency,omitempty"`
	Rating         *float64            `json:"rating"`
	ImageURL       string              `json:"image_url"`
	BookingURL     string              `json:"booking_url"`
	Location       map[string]string   `json:"location"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ItineraryItem is the compact form of a suggestion shown to the model.
type ItineraryItem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Price       *float64          `json:"price"`
	Currency    string            `json:"currency,omitempty"`
	BookingURL  string            `json:"booking_url,omitempty"`
	Location    map[string]string `json:"location,omitempty"`
}

// Itinerary is derived from the suggestion rows on every read.
type Itinerary struct {
	JourneyTo   *ItineraryItem             `json:"journey_to"`
	JourneyFrom *ItineraryItem             `json:"journey_from"`
	Stays       []ItineraryItem            `json:"stays"`
	Shops       []ItineraryItem            `json:"shops"`
	Activities  map[string][]ItineraryItem `json:"activities"`
}
