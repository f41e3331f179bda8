package transport

import (
	"net/http"

	"stash/internal/catalog"
	"stash/internal/domain"
	"stash/internal/middleware"
	"stash/internal/repository"
	"stash/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaveItemRequest represents a draft save payload. The image may be an
// inline data URL; it is uploaded before the record is written.
type SaveItemRequest struct {
	Name     string   `json:"name" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Colorway string   `json:"colorway"`
	Season   []string `json:"season"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"imageUrl" validate:"required"`
}

// UpdateItemRequest represents an edit payload; only present fields change
type UpdateItemRequest struct {
	Name     *string   `json:"name"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	ImageURL *string   `json:"imageUrl"`
}

// ItemHandler handles HTTP requests for wardrobe items
type ItemHandler struct {
	itemService service.ItemService
	logger      *zap.Logger
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService service.ItemService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// RegisterRoutes registers all item routes behind auth
func (h *ItemHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/items", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles browsing with optional search and category filters
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	flat := make([]domain.WardrobeItem, 0, len(items))
	for _, item := range items {
		flat = append(flat, *item)
	}

	if q := r.URL.Query().Get("q"); q != "" {
		flat = catalog.SearchInventory(flat, q)
	}
	if category := r.URL.Query().Get("category"); category != "" && category != catalog.AllFilter {
		flat = catalog.FilterByCategory(flat, category)
	}

	middleware.RespondWithJSON(w, http.StatusOK, flat)
}

// Get retrieves one item. "new" is the client's transient draft marker
// and never names a stored record.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	if rawID == "new" {
		middleware.RespondWithError(w, http.StatusNotFound, "drafts are not stored")
		return
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.itemService.GetByID(r.Context(), id)
	if err != nil {
		if err == repository.ErrItemNotFound || err == service.ErrDraftNotPersisted {
			middleware.RespondWithError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.Error("Failed to get item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// Create handles saving a reviewed draft
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SaveItemRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Item save validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.itemService.Create(r.Context(), &domain.WardrobeItem{
		Name:     req.Name,
		Category: req.Category,
		Colorway: req.Colorway,
		Season:   req.Season,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		h.logger.Error("Failed to create item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// Update handles editing a stored item
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req UpdateItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Item update validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.itemService.Update(r.Context(), id, service.ItemUpdateInput{
		Name:     req.Name,
		Category: req.Category,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		if err == repository.ErrItemNotFound || err == service.ErrDraftNotPersisted {
			middleware.RespondWithError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.Error("Failed to update item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// Delete handles removing a stored item
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.itemService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrItemNotFound || err == service.ErrDraftNotPersisted {
			middleware.RespondWithError(w, http.StatusNotFound, "item not found")
			return
		}
		h.logger.Error("Failed to delete item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
