package itinerary

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-trip-planner/server/internal/trip/model"
	"github.com/Chative-trip-planner/server/internal/trip/repo"
)

func setup(t *testing.T, prefs model.Slots) (*repo.MemoryStore, model.Tx, *Reconciler) {
	t.Helper()
	ctx := context.Background()
	store := repo.NewMemoryStore()
	conv, err := store.CreateConversation(ctx, "user-1")
	require.NoError(t, err)
	conv.Preferences = prefs

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	return store, tx, NewReconciler(tx, conv)
}

func TestRescaleRating(t *testing.T) {
	assert.Equal(t, 0.0, RescaleRating(0))
	assert.Equal(t, 4.0, RescaleRating(8))
	assert.Equal(t, 0.0, RescaleRating(-3))
	assert.Equal(t, 4.6, RescaleRating(9.2))
}

func TestHotelImage(t *testing.T) {
	assert.Equal(t, "room.jpg", HotelImage(model.HotelRecord{RoomPhotoURL: "room.jpg", HotelPhotoURLs: []string{"hotel.jpg"}}))
	assert.Equal(t, "hotel.jpg", HotelImage(model.HotelRecord{RoomPhotoURL: "N/A", HotelPhotoURLs: []string{"hotel.jpg", "b.jpg"}}))
	assert.Equal(t, "hotel.jpg", HotelImage(model.HotelRecord{HotelPhotoURLs: []string{"hotel.jpg"}}))
	assert.Empty(t, HotelImage(model.HotelRecord{RoomPhotoURL: "N/A"}))
}

func TestAddHotels_RescalesAndDoesNotDeduplicate(t *testing.T) {
	ctx := context.Background()
	_, tx, r := setup(t, model.Slots{})

	hotel := model.HotelRecord{
		Destination:    "Rome",
		HotelName:      "Hotel Artemide",
		Rating:         8,
		HotelPhotoURLs: []string{"https://img/artemide.jpg"},
		RoomPhotoURL:   "N/A",
		BookingURL:     "https://booking.example/artemide",
		Price:          decimal.NewNullDecimal(decimal.RequireFromString("412.50")),
		Currency:       "EUR",
	}

	receipt, err := r.AddHotels(ctx, []model.HotelRecord{hotel})
	require.NoError(t, err)
	assert.Equal(t, 1, receipt.Saved)

	_, err = r.AddHotels(ctx, []model.HotelRecord{hotel})
	require.NoError(t, err)

	rows, err := tx.ListSuggestions(ctx, r.conv.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2, "repeated hotel searches append repeated rows")
	assert.Equal(t, 4.0, *rows[0].Rating)
	assert.Equal(t, "https://img/artemide.jpg", rows[0].ImageURL)
	assert.Equal(t, map[string]string{"address": "Rome"}, rows[0].Location)
	assert.True(t, rows[0].Price.Decimal.Equal(decimal.RequireFromString("412.5")))
	it, err := r.Itinerary(ctx)
	require.NoError(t, err)
	assert.Len(t, it.Stays, 2)
}

func TestIngest_MissingPriceStaysNull(t *testing.T) {
	ctx := context.Background()
	_, tx, r := setup(t, model.Slots{})

	_, err := r.AddHotels(ctx, []model.HotelRecord{{HotelName: "Unpriced Inn"}})
	require.NoError(t, err)
	_, err = r.AddFlight(ctx, model.FlightRecord{Title: "Unpriced flight", OriginCode: "NYC", DestinationCode: "PAR"})
	require.NoError(t, err)

	rows, err := tx.ListSuggestions(ctx, r.conv.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.False(t, row.Price.Valid, row.Title)
	}
	it, err := r.Itinerary(ctx)
	require.NoError(t, err)
	assert.Nil(t, it.Stays[0].Price)
}

func TestAddHotels_CapsAtThree(t *testing.T) {
	ctx := context.Background()
	_, _, r := setup(t, model.Slots{})

	hotels := lo.Times(5, func(i int) model.HotelRecord {
		return model.HotelRecord{HotelName: lo.RandomString(8, lo.LettersCharset)}
	})
	receipt, err := r.AddHotels(ctx, hotels)
	require.NoError(t, err)
	assert.Equal(t, MaxHotelsPerSearch, receipt.Saved)

	empty, err := r.AddHotels(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "empty_result", empty.Skipped)
}

func TestAddFlight_ProjectsDirections(t *testing.T) {
	ctx := context.Background()
	_, _, r := setup(t, model.Slots{Origin: lo.ToPtr("New York"), Destination: lo.ToPtr("Paris")})

	_, err := r.AddFlight(ctx, model.FlightRecord{Title: "Return", OriginCode: "Paris", DestinationCode: "NYC", Price: decimal.NewNullDecimal(decimal.NewFromInt(500))})
	require.NoError(t, err)
	_, err = r.AddFlight(ctx, model.FlightRecord{Title: "Outbound", OriginCode: "NYC", DestinationCode: "Paris", Price: decimal.NewNullDecimal(decimal.NewFromInt(600))})
	require.NoError(t, err)

	it, err := r.Itinerary(ctx)
	require.NoError(t, err)
	require.NotNil(t, it.JourneyTo)
	require.NotNil(t, it.JourneyFrom)
	assert.Equal(t, "Outbound", it.JourneyTo.Title)
	assert.Equal(t, "Return", it.JourneyFrom.Title)
	assert.Equal(t, 600.0, *it.JourneyTo.Price)
	assert.Equal(t, map[string]string{"origin": "Paris", "destination": "NYC"}, it.JourneyFrom.Location)
}

func TestAddPlace_DeduplicatesByTitle(t *testing.T) {
	ctx := context.Background()
	store, tx, r := setup(t, model.Slots{})

	market := model.PlaceRecord{Name: "Central Market", City: "Rome", Category: "commercial.marketplace"}
	first, err := r.AddPlace(ctx, model.SuggestionShop, market)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Saved)

	second, err := r.AddPlace(ctx, model.SuggestionShop, market)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Saved)
	assert.Equal(t, "duplicate", second.Skipped)

	require.NoError(t, tx.Commit(ctx))
	rows, err := store.ListSuggestions(ctx, r.conv.ID)
	require.NoError(t, err)
	shops := lo.Filter(rows, func(s model.Suggestion, _ int) bool {
		return s.Type == model.SuggestionShop && s.Title == "Central Market"
	})
	assert.Len(t, shops, 1)
	assert.Equal(t, "Rome", shops[0].Location["city"])
	assert.NotContains(t, shops[0].Location, "address")
}

func TestAddPlace_MissingTitleIsNoop(t *testing.T) {
	ctx := context.Background()
	_, tx, r := setup(t, model.Slots{})

	receipt, err := r.AddPlace(ctx, model.SuggestionLeisure, model.PlaceRecord{Name: "  ", City: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, "missing_title", receipt.Skipped)

	rows, _ := tx.ListSuggestions(ctx, r.conv.ID)
	assert.Empty(t, rows)
}

func TestIngest_LeisureGroupsByCategory(t *testing.T) {
	ctx := context.Background()
	_, _, r := setup(t, model.Slots{})

	_, err := r.Ingest(ctx, model.ToolResult{Kind: model.ResultLeisure, Place: &model.PlaceRecord{Name: "Villa Borghese", Category: "leisure.park"}})
	require.NoError(t, err)
	_, err = r.Ingest(ctx, model.ToolResult{Kind: model.ResultLeisure, Place: &model.PlaceRecord{Name: "Spa Roma"}})
	require.NoError(t, err)
	receipt, err := r.Ingest(ctx, model.ToolResult{Kind: model.ResultText, Text: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "not_reconciled", receipt.Skipped)

	it, err := r.Itinerary(ctx)
	require.NoError(t, err)
	assert.Len(t, it.Activities["leisure.park"], 1)
	assert.Len(t, it.Activities[defaultActivityCategory], 1)
}

func TestItinerary_Idempotent(t *testing.T) {
	ctx := context.Background()
	_, _, r := setup(t, model.Slots{Origin: lo.ToPtr("London"), Destination: lo.ToPtr("Rome")})

	_, err := r.AddFlight(ctx, model.FlightRecord{Title: "LHR-FCO", OriginCode: "LHR", DestinationCode: "FCO"})
	require.NoError(t, err)
	_, err = r.AddHotels(ctx, []model.HotelRecord{{HotelName: "Hotel Raphael", Rating: 9}})
	require.NoError(t, err)
	_, err = r.AddPlace(ctx, model.SuggestionShop, model.PlaceRecord{Name: "Porta Portese"})
	require.NoError(t, err)

	first, err := r.Itinerary(ctx)
	require.NoError(t, err)
	second, err := r.Itinerary(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.NotNil(t, first.JourneyTo)
	assert.Equal(t, "LHR-FCO", first.JourneyTo.Title)
	assert.Nil(t, first.JourneyFrom)
}
