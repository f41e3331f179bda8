package transport

import (
	"net/http"

	"stash/internal/catalog"
	"stash/internal/domain"
	"stash/internal/middleware"
	"stash/internal/repository"
	"stash/internal/service"
	"stash/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateOutfitRequest represents a finalize payload
type CreateOutfitRequest struct {
	Name    string   `json:"name" validate:"required"`
	ItemIDs []string `json:"itemIds" validate:"required,min=1,max=4"`
	Tags    []string `json:"tags"`
	Season  string   `json:"season"`
	Year    int      `json:"year"`
}

// NameOutfitRequest asks for an AI name for a prospective composition
type NameOutfitRequest struct {
	ItemIDs []string `json:"itemIds" validate:"required,min=1,max=4"`
}

// NameOutfitResponse is the proposed name and tags
type NameOutfitResponse struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// SuggestResponse is the stylist's item pick
type SuggestResponse struct {
	Items []domain.WardrobeItem `json:"items"`
}

// FavoriteRequest carries the target favorite state
type FavoriteRequest struct {
	IsFavorite *bool `json:"isFavorite" validate:"required"`
}

// OutfitHandler handles HTTP requests for outfits
type OutfitHandler struct {
	outfitService service.OutfitService
	itemService   service.ItemService
	stylist       workflow.Stylist
	logger        *zap.Logger
}

// NewOutfitHandler creates a new OutfitHandler
func NewOutfitHandler(outfitService service.OutfitService, itemService service.ItemService, stylist workflow.Stylist, logger *zap.Logger) *OutfitHandler {
	return &OutfitHandler{
		outfitService: outfitService,
		itemService:   itemService,
		stylist:       stylist,
		logger:        logger,
	}
}

// RegisterRoutes registers all outfit routes behind auth
func (h *OutfitHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/outfits", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/filters", h.Filters)
		r.Post("/suggest", h.Suggest)
		r.Post("/name", h.Name)
		r.Patch("/{id}/favorite", h.Favorite)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *OutfitHandler) loadOutfits(w http.ResponseWriter, r *http.Request) ([]domain.Outfit, bool) {
	outfits, err := h.outfitService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list outfits", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list outfits")
		return nil, false
	}

	flat := make([]domain.Outfit, 0, len(outfits))
	for _, outfit := range outfits {
		flat = append(flat, *outfit)
	}
	return flat, true
}

// List handles browsing outfits with search and tag filters
func (h *OutfitHandler) List(w http.ResponseWriter, r *http.Request) {
	outfits, ok := h.loadOutfits(w, r)
	if !ok {
		return
	}

	q := r.URL.Query().Get("q")
	tag := r.URL.Query().Get("tag")
	if q != "" || (tag != "" && tag != catalog.AllFilter) {
		outfits = catalog.SearchOutfits(outfits, q, tag)
	}

	middleware.RespondWithJSON(w, http.StatusOK, outfits)
}

// Filters returns the tag filter vocabulary
func (h *OutfitHandler) Filters(w http.ResponseWriter, r *http.Request) {
	outfits, ok := h.loadOutfits(w, r)
	if !ok {
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, catalog.FilterOptions(outfits))
}

// resolveItems maps the id list to stored item snapshots, preserving order
func (h *OutfitHandler) resolveItems(r *http.Request, rawIDs []string) ([]domain.WardrobeItem, error) {
	items := make([]domain.WardrobeItem, 0, len(rawIDs))
	for _, rawID := range rawIDs {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, repository.ErrItemNotFound
		}
		item, err := h.itemService.GetByID(r.Context(), id)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// Create handles saving a finalized composition
func (h *OutfitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOutfitRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Outfit create validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := h.resolveItems(r, req.ItemIDs)
	if err != nil {
		if err == repository.ErrItemNotFound {
			middleware.RespondWithError(w, http.StatusBadRequest, "unknown item in composition")
			return
		}
		h.logger.Error("Failed to resolve composition items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create outfit")
		return
	}

	outfit, err := h.outfitService.Create(r.Context(), req.Name, items, req.Tags, req.Season, req.Year)
	if err != nil {
		h.logger.Error("Failed to create outfit", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create outfit")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, outfit)
}

// Suggest asks the stylist for a combination from the full inventory
func (h *OutfitHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	stored, err := h.itemService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to load inventory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load inventory")
		return
	}

	inventory := make([]domain.WardrobeItem, 0, len(stored))
	for _, item := range stored {
		inventory = append(inventory, *item)
	}

	composer := workflow.NewComposer(inventory, h.stylist, h.logger)
	if err := composer.Suggest(r.Context()); err != nil {
		if err == workflow.ErrNoSuggestion {
			middleware.RespondWithError(w, http.StatusUnprocessableEntity, "no suggestion could be made from this wardrobe")
			return
		}
		h.logger.Error("Suggestion call failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "stylist unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SuggestResponse{Items: composer.Canvas()})
}

// Name asks the stylist to name a prospective composition. The reply is
// always usable: failures fall back to a generated name inside the
// workflow.
func (h *OutfitHandler) Name(w http.ResponseWriter, r *http.Request) {
	var req NameOutfitRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Outfit name validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := h.resolveItems(r, req.ItemIDs)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown item in composition")
		return
	}

	outfits, ok := h.loadOutfits(w, r)
	if !ok {
		return
	}
	existingTags := catalog.FilterOptions(outfits)[1:] // drop the "All" sentinel

	composer := workflow.NewComposer(items, h.stylist, h.logger)
	for _, item := range items {
		if err := composer.Add(item); err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "too many items in composition")
			return
		}
	}

	review, err := composer.StartReview(r.Context(), existingTags)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "nothing to name")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, NameOutfitResponse{Name: review.Name, Tags: review.Tags})
}

// Favorite handles the favorite toggle
func (h *OutfitHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid outfit id")
		return
	}

	var req FavoriteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.outfitService.SetFavorite(r.Context(), id, *req.IsFavorite); err != nil {
		if err == repository.ErrOutfitNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "outfit not found")
			return
		}
		h.logger.Error("Failed to update favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update favorite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"isFavorite": *req.IsFavorite})
}

// Delete handles removing a saved outfit
func (h *OutfitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid outfit id")
		return
	}

	if err := h.outfitService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrOutfitNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "outfit not found")
			return
		}
		h.logger.Error("Failed to delete outfit", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete outfit")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "outfit deleted"})
}
