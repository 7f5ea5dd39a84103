package api

import (
	"net/http"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// localTimestampLayout is accepted alongside RFC 3339 and read as UTC.
const localTimestampLayout = "2006-01-02T15:04:05"

type newBookingBody struct {
	ItemID int64  `json:"itemId"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func parseTimestamp(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(localTimestampLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, domain.Validation("%s must be an RFC 3339 timestamp", field)
}

func (b newBookingBody) toModel() (models.NewBooking, error) {
	start, err := parseTimestamp("start", b.Start)
	if err != nil {
		return models.NewBooking{}, err
	}
	end, err := parseTimestamp("end", b.End)
	if err != nil {
		return models.NewBooking{}, err
	}
	return models.NewBooking{ItemID: b.ItemID, Start: start, End: end}, nil
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var body newBookingBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	req, err := body.toModel()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	booking, err := s.svc.Bookings.CreateBooking(r.Context(), req, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "bookingId")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	approved, err := queryBool(r, "approved")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	booking, err := s.svc.Bookings.ApproveBooking(r.Context(), bookingID, approved, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	bookingID, err := pathID(r, "bookingId")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	booking, err := s.svc.Bookings.GetBooking(r.Context(), bookingID, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleBookingsByBooker(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	bookings, err := s.svc.Bookings.GetBookingsByBooker(r.Context(), r.URL.Query().Get("state"), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleBookingsByOwner(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	bookings, err := s.svc.Bookings.GetBookingsByOwner(r.Context(), r.URL.Query().Get("state"), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}
