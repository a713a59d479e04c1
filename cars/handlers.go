package cars

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/validation"
)

// CarService is what the handlers need from Service.
type CarService interface {
	Create(ctx context.Context, req CarRequest) (*Car, error)
	List(ctx context.Context) ([]Car, error)
	Get(ctx context.Context, id int64) (*Car, error)
	Update(ctx context.Context, id int64, req CarRequest) (*Car, error)
	Delete(ctx context.Context, id int64) error
}

// Handlers serves /main/cars.
type Handlers struct {
	service CarService
}

// NewHandlers creates the car handlers.
func NewHandlers(service CarService) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the car endpoints on r. Non-numeric ids do not match.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate())
	r.Get("/", h.HandleList())
	r.Get("/{id:[0-9]+}", h.HandleGet())
	r.Put("/{id:[0-9]+}", h.HandleUpdate())
	r.Delete("/{id:[0-9]+}", h.HandleDelete())
}

func carID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewNotFoundError(msgCarNotFound, err)
	}
	return id, nil
}

// HandleCreate godoc
// @Summary Create a car
// @Tags Cars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body cars.CarRequest true "Car"
// @Success 201 {object} cars.Car
// @Failure 400 {object} apperror.ErrorResponse "Validation error or owner already has 3 cars"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Owner not found"
// @Router /main/cars [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CarRequest
		if err := validation.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		car, err := h.service.Create(r.Context(), req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusCreated, car)
	}
}

// HandleList godoc
// @Summary List cars
// @Tags Cars
// @Produce json
// @Security BearerAuth
// @Success 200 {object} cars.ListResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /main/cars [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cars, err := h.service.List(r.Context())
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, ListResponse{Data: cars})
	}
}

// HandleGet godoc
// @Summary Get a car
// @Tags Cars
// @Produce json
// @Security BearerAuth
// @Param id path int true "Car ID"
// @Success 200 {object} cars.Car
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /main/cars/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := carID(r)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		car, err := h.service.Get(r.Context(), id)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, car)
	}
}

// HandleUpdate godoc
// @Summary Update a car
// @Description Replaces color, model and owner. Moving a car to a full owner fails.
// @Tags Cars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Car ID"
// @Param body body cars.CarRequest true "Car"
// @Success 200 {object} cars.Car
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /main/cars/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := carID(r)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		var req CarRequest
		if err := validation.Decode(w, r, &req); err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		car, err := h.service.Update(r.Context(), id, req)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, car)
	}
}

// HandleDelete godoc
// @Summary Delete a car
// @Tags Cars
// @Produce json
// @Security BearerAuth
// @Param id path int true "Car ID"
// @Success 200 {object} apperror.MessageResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /main/cars/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := carID(r)
		if err != nil {
			apperror.WriteError(w, r, err)
			return
		}

		if err := h.service.Delete(r.Context(), id); err != nil {
			apperror.WriteError(w, r, err)
			return
		}
		apperror.WriteJSON(w, http.StatusOK, apperror.MessageResponse{Msg: "Car deleted!"})
	}
}
