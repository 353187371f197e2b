package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"calcledger/internal/errors"
	"calcledger/internal/middleware"
	"calcledger/internal/service"
)

// CalculationHandler handles calculation ledger endpoints.
type CalculationHandler struct {
	calcService service.CalculationService
}

// NewCalculationHandler creates a new calculation handler.
func NewCalculationHandler(calcService service.CalculationService) *CalculationHandler {
	return &CalculationHandler{calcService: calcService}
}

// CreateCalculationRequest represents a calculation create request. Any
// client-supplied result is ignored; the server always computes it.
type CreateCalculationRequest struct {
	Type   string    `json:"type" validate:"required"`
	Inputs []float64 `json:"inputs" validate:"required"`
}

// UpdateCalculationRequest carries an optional replacement input list.
type UpdateCalculationRequest struct {
	Inputs *[]float64 `json:"inputs"`
}

func currentUser(c echo.Context) (uuid.UUID, *echo.HTTPError) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "could not validate credentials",
			Code:  "UNAUTHENTICATED",
		})
	}
	return user.ID, nil
}

func parseCalculationID(c echo.Context) (uuid.UUID, *echo.HTTPError) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid calculation id format",
			Code:  "INVALID_ID",
		})
	}
	return id, nil
}

// Create godoc
// @Summary Create a calculation
// @Tags calculations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCalculationRequest true "Calculation data"
// @Success 201 {object} model.Calculation
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /calculations [post]
func (h *CalculationHandler) Create(c echo.Context) error {
	userID, httpErr := currentUser(c)
	if httpErr != nil {
		return httpErr
	}

	var req CreateCalculationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	calc, err := h.calcService.Create(c.Request().Context(), userID, req.Type, req.Inputs)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, calc)
}

// List godoc
// @Summary List the authenticated user's calculations
// @Tags calculations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Calculation
// @Failure 401 {object} errors.ErrorResponse
// @Router /calculations [get]
func (h *CalculationHandler) List(c echo.Context) error {
	userID, httpErr := currentUser(c)
	if httpErr != nil {
		return httpErr
	}

	calcs, err := h.calcService.ListForUser(c.Request().Context(), userID)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, calcs)
}

// Get godoc
// @Summary Get a calculation by id
// @Tags calculations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Calculation ID"
// @Success 200 {object} model.Calculation
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /calculations/{id} [get]
func (h *CalculationHandler) Get(c echo.Context) error {
	userID, httpErr := currentUser(c)
	if httpErr != nil {
		return httpErr
	}

	id, httpErr := parseCalculationID(c)
	if httpErr != nil {
		return httpErr
	}

	calc, err := h.calcService.Get(c.Request().Context(), id, userID)
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, calc)
}

// Update godoc
// @Summary Update a calculation's inputs
// @Tags calculations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Calculation ID"
// @Param request body UpdateCalculationRequest true "Fields to update"
// @Success 200 {object} model.Calculation
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /calculations/{id} [put]
func (h *CalculationHandler) Update(c echo.Context) error {
	userID, httpErr := currentUser(c)
	if httpErr != nil {
		return httpErr
	}

	id, httpErr := parseCalculationID(c)
	if httpErr != nil {
		return httpErr
	}

	var req UpdateCalculationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	calc, err := h.calcService.Update(c.Request().Context(), id, userID, service.CalculationUpdateInput{
		Inputs: req.Inputs,
	})
	if err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, calc)
}

// Delete godoc
// @Summary Delete a calculation
// @Tags calculations
// @Security BearerAuth
// @Param id path string true "Calculation ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /calculations/{id} [delete]
func (h *CalculationHandler) Delete(c echo.Context) error {
	userID, httpErr := currentUser(c)
	if httpErr != nil {
		return httpErr
	}

	id, httpErr := parseCalculationID(c)
	if httpErr != nil {
		return httpErr
	}

	if err := h.calcService.Delete(c.Request().Context(), id, userID); err != nil {
		mapped := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
