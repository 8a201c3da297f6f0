package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/example/profile-service/internal/adapters/http/middleware"
	"github.com/example/profile-service/internal/apperr"
	"github.com/example/profile-service/internal/usecase"
	res "github.com/example/profile-service/pkg/http"
)

type TransactionHandler struct {
	service usecase.TransactionService
}

func NewTransactionHandler(s usecase.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

func (h *TransactionHandler) Record(c echo.Context) error {
	if _, ok := mw.UserID(c); !ok {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing caller identity", requestIDFromCtx(c), nil)
	}
	req := new(usecase.TransactionInput)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	tx, err := h.service.Record(c.Request().Context(), requestIDFromCtx(c), *req)
	if err != nil {
		return res.ErrorJSON(c, apperr.StatusOf(err), apperr.CodeOf(err), err.Error(), requestIDFromCtx(c), nil)
	}
	return res.JSONMessage(c, http.StatusCreated, "transaction created successfully", tx)
}
