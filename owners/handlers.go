package owners

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/validation"
)

// OwnerService is what the handlers need from Service.
type OwnerService interface {
	Create(ctx context.Context, req OwnerRequest) (*Owner, error)
	List(ctx context.Context) ([]Owner, error)
	Get(ctx context.Context, id int64) (*Owner, error)
	Update(ctx context.Context, id int64, req OwnerRequest) (*Owner, error)
	Delete(ctx context.Context, id int64) error
}

// Handlers serves /main/owners.
type Handlers struct {
	service OwnerService
}

// NewHandlers creates the owner handlers.
func NewHandlers(service OwnerService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the owner endpoints on r.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate())
	r.Get("/", h.HandleList())
	r.Get("/{id:[0-9]+}", h.HandleGet())
	r.Put("/{id:[0-9]+}", h.HandleUpdate())
	r.Delete("/{id:[0-9]+}", h.HandleDelete())
}

func ownerID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewNotFoundError(msgOwnerNotFound, err)
	}
	return id, nil
}

// HandleCreate godoc
// @Summary Create an owner
// @Tags Owners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body owners.OwnerRequest true "Owner"
// @Success 201 {object} owners.Owner
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /main/owners [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OwnerRequest
		if err := validation.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		owner, err := h.service.Create(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusCreated, owner)
	}
}

// HandleList godoc
// @Summary List owners with their cars
// @Tags Owners
// @Produce json
// @Security BearerAuth
// @Success 200 {object} owners.ListResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /main/owners [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owners, err := h.service.List(r.Context())
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, ListResponse{Data: owners})
	}
}

// HandleGet godoc
// @Summary Get an owner
// @Tags Owners
// @Produce json
// @Security BearerAuth
// @Param id path int true "Owner ID"
// @Success 200 {object} owners.Owner
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /main/owners/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ownerID(r)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		owner, err := h.service.Get(r.Context(), id)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, owner)
	}
}

// HandleUpdate godoc
// @Summary Update an owner
// @Tags Owners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Owner ID"
// @Param body body owners.OwnerRequest true "Owner"
// @Success 200 {object} owners.Owner
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /main/owners/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ownerID(r)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		var req OwnerRequest
		if err := validation.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		owner, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, owner)
	}
}

// HandleDelete godoc
// @Summary Delete an owner and its cars
// @Tags Owners
// @Produce json
// @Security BearerAuth
// @Param id path int true "Owner ID"
// @Success 200 {object} apperror.MessageResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /main/owners/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ownerID(r)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		if err := h.service.Delete(r.Context(), id); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, apperror.MessageResponse{Msg: "Owner deleted!"})
	}
}
