package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pricewatch/backend/internal/apperror"
)

// WatchlistHandler handles watchlist HTTP requests
type WatchlistHandler struct {
	service WatchlistServiceInterface
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(service WatchlistServiceInterface) *WatchlistHandler {
	return &WatchlistHandler{service: service}
}

type addItemRequest struct {
	Phone      string  `json:"phone"`
	AmazonLink string  `json:"amazon_link"`
	Nickname   *string `json:"nickname"`
	Relation   *string `json:"relation"`
	Quantity   *int    `json:"quantity"`
}

// AddItem godoc
// @Summary Add a product to a watchlist
// @Description Track an Amazon product for the given phone number, optionally mapped to a family member
// @Tags watchlist
// @Accept json
// @Produce json
// @Param input body addItemRequest true "Item data"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/watchlist [post]
func (h *WatchlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body: "+err.Error()))
		return
	}

	// Validate required fields
	phone := strings.TrimSpace(req.Phone)
	if len(phone) < 8 || len(phone) > 32 {
		respondAppError(w, apperror.ValidationError("phone", "phone must be between 8 and 32 characters"))
		return
	}
	if strings.TrimSpace(req.AmazonLink) == "" {
		respondAppError(w, apperror.ValidationError("amazon_link", "amazon_link is required"))
		return
	}
	quantity := 1
	if req.Quantity != nil {
		if *req.Quantity < 1 || *req.Quantity > 100 {
			respondAppError(w, apperror.ValidationError("quantity", "quantity must be between 1 and 100"))
			return
		}
		quantity = *req.Quantity
	}

	reply, err := h.service.AddItem(r.Context(), phone, req.AmazonLink, req.Nickname, req.Relation, quantity)
	if err != nil {
		respondAppError(w, apperror.Internal(err))
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: reply})
}

// MyWatchlist godoc
// @Summary Get a personal watchlist
// @Description Render the watchlist for a phone number, including items mapped to family members
// @Tags watchlist
// @Produce json
// @Param phone path string true "Phone number"
// @Success 200 {object} MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/watchlist/my/{phone} [get]
func (h *WatchlistHandler) MyWatchlist(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	reply, err := h.service.ListWishlist(r.Context(), phone, true)
	if err != nil {
		respondAppError(w, apperror.Internal(err))
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: reply})
}

// FamilyWatchlist godoc
// @Summary Get a family watchlist
// @Description Render the family watchlist for a phone number, grouped by member
// @Tags watchlist
// @Produce json
// @Param phone path string true "Phone number"
// @Success 200 {object} MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/watchlist/family/{phone} [get]
func (h *WatchlistHandler) FamilyWatchlist(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	reply, err := h.service.FamilyWishlist(r.Context(), phone)
	if err != nil {
		respondAppError(w, apperror.Internal(err))
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: reply})
}
