package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/example/profile-service/internal/adapters/http/middleware"
	"github.com/example/profile-service/internal/apperr"
	"github.com/example/profile-service/internal/usecase"
	res "github.com/example/profile-service/pkg/http"
)

type ProfileHandler struct {
	service usecase.ProfileService
}

func NewProfileHandler(s usecase.ProfileService) *ProfileHandler { return &ProfileHandler{service: s} }

type findByPlatformRequest struct {
	Platform string `json:"platform"`
}

// Upsert creates the caller's profile (201) or merges into the existing one (200).
func (h *ProfileHandler) Upsert(c echo.Context) error {
	callerID, ok := mw.UserID(c)
	if !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing caller identity", requestIDFromCtx(c), nil)
	}
	req := new(usecase.ProfileInput)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	profile, created, err := h.service.Upsert(c.Request().Context(), requestIDFromCtx(c), callerID, *req)
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	if created {
		return res.JSONMessage(c, http.StatusCreated, "profile created successfully", profile)
	}
	return res.JSONMessage(c, http.StatusOK, "profile updated successfully", profile)
}

func (h *ProfileHandler) GetByUsername(c echo.Context) error {
	view, err := h.service.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSON(c, http.StatusOK, view)
}

func (h *ProfileHandler) GetMine(c echo.Context) error {
	callerID, _ := mw.UserID(c)
	view, err := h.service.GetMine(c.Request().Context(), callerID)
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSON(c, http.StatusOK, view)
}

func (h *ProfileHandler) Delete(c echo.Context) error {
	callerID, _ := mw.UserID(c)
	if err := h.service.Delete(c.Request().Context(), requestIDFromCtx(c), callerID); err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSONMessage(c, http.StatusOK, "profile deleted successfully", nil)
}

func (h *ProfileHandler) SearchByCountry(c echo.Context) error {
	views, err := h.service.SearchByCountry(c.Request().Context(), c.QueryParam("country"))
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSONList(c, http.StatusOK, len(views), views)
}

func (h *ProfileHandler) FindByPlatformUsername(c echo.Context) error {
	req := new(findByPlatformRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	view, err := h.service.FindByPlatformUsername(c.Request().Context(), req.Platform, c.Param("username"))
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSON(c, http.StatusOK, view)
}
