package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/dcode-github/property_tours/contracts"
	"github.com/dcode-github/property_tours/events"
	"github.com/dcode-github/property_tours/models"
	"github.com/dcode-github/property_tours/repository"
	"github.com/dcode-github/property_tours/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookTourRequest struct {
	PropertyID string              `json:"propertyId"`
	Date       string              `json:"date"`
	Time       string              `json:"time"`
	Platform   models.TourPlatform `json:"platform"`
	Notes      string              `json:"notes"`
}

type tourList struct {
	Upcoming []models.VirtualTour `json:"upcoming"`
	Past     []models.VirtualTour `json:"past"`
}

func tourEvent(t *models.VirtualTour) events.TourChanged {
	return events.TourChanged{
		TourID:        t.ID.Hex(),
		UserID:        t.UserID,
		ListingID:     t.PropertyID.Hex(),
		ScheduledDate: t.ScheduledDate,
		ScheduledTime: t.ScheduledTime,
		Platform:      string(t.Platform),
	}
}

func BookTour(tours repository.TourStore, listings repository.ListingStore, pub events.Publisher, now Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		body, ok := readBody(w, r, contracts.TourBooking)
		if !ok {
			return
		}

		var req bookTourRequest
		if !decodeBody(w, r, body, &req) {
			return
		}

		current := now()
		date, err := time.ParseInLocation(models.TourDateLayout, req.Date, current.Location())
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "date: must be YYYY-MM-DD")
			return
		}
		if _, err := time.Parse(models.TourTimeLayout, req.Time); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "time: must be HH:MM")
			return
		}
		today := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, current.Location())
		if date.Before(today) {
			utils.WriteError(w, http.StatusBadRequest, "date: tour date cannot be in the past")
			return
		}
		if !req.Platform.Valid() {
			utils.WriteError(w, http.StatusBadRequest, "platform: unsupported platform")
			return
		}
		propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid propertyId format")
			return
		}

		listing, err := listings.GetByID(r.Context(), propertyID)
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Property not found")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to fetch property", err)
			return
		}
		if !listing.Available {
			utils.WriteError(w, http.StatusBadRequest, "Property is not available for tours")
			return
		}

		stamp := current.UTC()
		tour := models.VirtualTour{
			UserID:        userID,
			PropertyID:    propertyID,
			ScheduledDate: date.Format(models.TourDateLayout),
			ScheduledTime: req.Time,
			Platform:      req.Platform,
			Status:        models.TourPending,
			CreatedAt:     stamp,
			UpdatedAt:     stamp,
		}
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			tour.Notes = &notes
		}

		if err := tours.Create(r.Context(), &tour); err != nil {
			serverError(w, r, "Failed to book tour", err)
			return
		}
		tour.Property = listing

		contextkeys.Logger(r.Context()).Info("Tour booked",
			slog.String("tour_id", tour.ID.Hex()),
			slog.String("property_id", propertyID.Hex()))
		publish(r.Context(), pub, events.TourBooked, tourEvent(&tour))

		utils.WriteSuccess(w, http.StatusCreated, "Tour booked", tour)
	}
}

func GetTours(tours repository.TourStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		all, err := tours.ListByUser(r.Context(), userID)
		if err != nil {
			serverError(w, r, "Failed to fetch tours", err)
			return
		}

		list := tourList{Upcoming: []models.VirtualTour{}, Past: []models.VirtualTour{}}
		for _, t := range all {
			if t.Status.Upcoming() {
				list.Upcoming = append(list.Upcoming, t)
			} else {
				list.Past = append(list.Past, t)
			}
		}

		utils.WriteSuccess(w, http.StatusOK, "Fetched tours", list)
	}
}

func CancelTour(tours repository.TourStore, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := objectIDVar(w, r, "id")
		if !ok {
			return
		}

		tour, err := tours.GetByID(r.Context(), id)
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Tour not found")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to fetch tour", err)
			return
		}
		if tour.UserID != userID {
			utils.WriteError(w, http.StatusForbidden, "You can only cancel your own tours")
			return
		}
		if !tour.Status.Upcoming() {
			utils.WriteError(w, http.StatusConflict, "Tour can no longer be cancelled")
			return
		}

		err = tours.UpdateStatus(r.Context(), id, userID,
			[]models.TourStatus{models.TourPending, models.TourConfirmed}, models.TourCancelled)
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusConflict, "Tour can no longer be cancelled")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to cancel tour", err)
			return
		}

		tour.Status = models.TourCancelled
		tour.UpdatedAt = time.Now().UTC()
		publish(r.Context(), pub, events.TourCancelled, tourEvent(tour))

		utils.WriteSuccess(w, http.StatusOK, "Tour cancelled", tour)
	}
}
