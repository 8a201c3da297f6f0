package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/profile-service/internal/apperr"
	"github.com/example/profile-service/internal/usecase"
	res "github.com/example/profile-service/pkg/http"
)

type AuthHandler struct {
	service usecase.AuthService
}

func NewAuthHandler(s usecase.AuthService) *AuthHandler { return &AuthHandler{service: s} }

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type verifyOTPRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

type authResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	req := new(usecase.RegisterInput)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	user, token, err := h.service.Register(c.Request().Context(), requestIDFromCtx(c), *req)
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSONMessage(c, http.StatusCreated, "user registered successfully", authResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	user, token, err := h.service.Login(c.Request().Context(), requestIDFromCtx(c), req.Identifier, req.Password)
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSON(c, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	req := new(verifyOTPRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	if err := h.service.VerifyOTP(c.Request().Context(), requestIDFromCtx(c), req.Identifier, req.Code); err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSONMessage(c, http.StatusOK, "code verified", nil)
}

func (h *AuthHandler) GetUser(c echo.Context) error {
	user, err := h.service.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSONMessage(c, http.StatusOK, "user fetched successfully", user)
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
