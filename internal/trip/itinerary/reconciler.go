package itinerary

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Chative-trip-planner/server/internal/trip/model"
	logx "github.com/Chative-trip-planner/server/pkg/logger"
)

const MaxHotelsPerSearch = 3

// Receipt describes what one ingestion persisted.
type Receipt struct {
	Saved   int      `json:"saved"`
	Titles  []string `json:"titles,omitempty"`
	Skipped string   `json:"skipped,omitempty"`
}

// Reconciler turns tool results into suggestion rows for one conversation
// and projects them into an itinerary. It writes through the turn's
// transaction, so its dedup checks and inserts share one atomic scope.
type Reconciler struct {
	tx   model.Tx
	conv *model.Conversation
}

func NewReconciler(tx model.Tx, conv *model.Conversation) *Reconciler {
	return &Reconciler{tx: tx, conv: conv}
}

// Ingest routes a tool result to the matching ingestion rule.
func (r *Reconciler) Ingest(ctx context.Context, res model.ToolResult) (Receipt, error) {
	switch res.Kind {
	case model.ResultHotels:
		return r.AddHotels(ctx, res.Hotels)
	case model.ResultFlight:
		if res.Flight == nil {
			return Receipt{Skipped: "empty_result"}, nil
		}
		return r.AddFlight(ctx, *res.Flight)
	case model.ResultShop:
		if res.Place == nil {
			return Receipt{Skipped: "empty_result"}, nil
		}
		return r.AddPlace(ctx, model.SuggestionShop, *res.Place)
	case model.ResultLeisure:
		if res.Place == nil {
			return Receipt{Skipped: "empty_result"}, nil
		}
		return r.AddPlace(ctx, model.SuggestionLeisure, *res.Place)
	}
	return Receipt{Skipped: "not_reconciled"}, nil
}

// AddHotels persists up to MaxHotelsPerSearch hotels. Hotels are not
// deduplicated: a repeated search appends repeated rows.
func (r *Reconciler) AddHotels(ctx context.Context, hotels []model.HotelRecord) (Receipt, error) {
	if len(hotels) == 0 {
		return Receipt{Skipped: "empty_result"}, nil
	}
	var receipt Receipt
	for _, h := range lo.Slice(hotels, 0, MaxHotelsPerSearch) {
		s := &model.Suggestion{
			ConversationID: r.conv.ID,
			Type:           model.SuggestionHotel,
			Title:          h.HotelName,
			Description:    h.HotelDescription,
			Price:          h.Price,
			Currency:       h.Currency,
			Rating:         lo.ToPtr(RescaleRating(h.Rating)),
			ImageURL:       HotelImage(h),
			BookingURL:     h.BookingURL,
			Location:       map[string]string{"address": h.Destination},
		}
		if err := r.tx.InsertSuggestion(ctx, s); err != nil {
			return receipt, fmt.Errorf("insert hotel suggestion: %w", err)
		}
		receipt.Saved++
		receipt.Titles = append(receipt.Titles, h.HotelName)
	}
	logx.Debug().Str("conversation_id", r.conv.ID).Int("saved", receipt.Saved).Msg("hotel suggestions saved")
	return receipt, nil
}

func (r *Reconciler) AddFlight(ctx context.Context, f model.FlightRecord) (Receipt, error) {
	s := &model.Suggestion{
		ConversationID: r.conv.ID,
		Type:           model.SuggestionFlight,
		Title:          f.Title,
		Description:    f.Description,
		Price:          f.Price,
		Currency:       f.Currency,
		ImageURL:       f.ImageURL,
		BookingURL:     f.BookingURL,
		Location: map[string]string{
			"origin":      f.OriginCode,
			"destination": f.DestinationCode,
		},
	}
	if err := r.tx.InsertSuggestion(ctx, s); err != nil {
		return Receipt{}, fmt.Errorf("insert flight suggestion: %w", err)
	}
	logx.Debug().Str("conversation_id", r.conv.ID).Str("title", f.Title).Msg("flight suggestion saved")
	return Receipt{Saved: 1, Titles: []string{f.Title}}, nil
}

// AddPlace persists a shop or leisure point unless one with the same title
// already exists for the conversation. A place without a name is a no-op.
func (r *Reconciler) AddPlace(ctx context.Context, kind model.SuggestionType, p model.PlaceRecord) (Receipt, error) {
	title := strings.TrimSpace(p.Name)
	if title == "" {
		return Receipt{Skipped: "missing_title"}, nil
	}

	exists, err := r.tx.SuggestionExists(ctx, r.conv.ID, kind, title)
	if err != nil {
		return Receipt{}, fmt.Errorf("check %s suggestion: %w", kind, err)
	}
	if exists {
		logx.Debug().Str("conversation_id", r.conv.ID).Str("title", title).Msg("duplicate place skipped")
		return Receipt{Skipped: "duplicate", Titles: []string{title}}, nil
	}

	s := &model.Suggestion{
		ConversationID: r.conv.ID,
		Type:           kind,
		Title:          title,
		Description:    strings.Join(lo.Compact([]string{p.Category, p.Address}), " · "),
		BookingURL:     p.Website,
		Location: lo.OmitByValues(map[string]string{
			"address":  p.Address,
			"city":     p.City,
			"category": p.Category,
		}, []string{""}),
	}
	if err := r.tx.InsertSuggestion(ctx, s); err != nil {
		return Receipt{}, fmt.Errorf("insert %s suggestion: %w", kind, err)
	}
	return Receipt{Saved: 1, Titles: []string{title}}, nil
}

// Itinerary recomputes the projection from every stored row and the current
// preferences.
func (r *Reconciler) Itinerary(ctx context.Context) (model.Itinerary, error) {
	rows, err := r.tx.ListSuggestions(ctx, r.conv.ID)
	if err != nil {
		return model.Itinerary{}, fmt.Errorf("reload suggestions: %w", err)
	}
	return Project(rows, r.conv.Preferences), nil
}

// RescaleRating maps a 0-10 review score onto 0-5. Non-positive scores map
// to zero.
func RescaleRating(score float64) float64 {
	if score <= 0 {
		return 0
	}
	return score / 2
}

// HotelImage prefers the room photo and falls back to the first hotel photo.
func HotelImage(h model.HotelRecord) string {
	if h.RoomPhotoURL != "" && h.RoomPhotoURL != "N/A" {
		return h.RoomPhotoURL
	}
	if len(h.HotelPhotoURLs) > 0 {
		return h.HotelPhotoURLs[0]
	}
	return ""
}
