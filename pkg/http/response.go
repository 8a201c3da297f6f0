package http

import "github.com/labstack/echo/v4"

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error   Error  `json:"error"`
	TraceID string `json:"trace_id"`
}

type Response struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Results *int        `json:"results,omitempty"`
}

func JSON(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Response{Data: data})
}

// JSONMessage sends data alongside a human-readable message.
func JSONMessage(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Message: message, Data: data})
}

// JSONList sends a collection with its element count.
func JSONList(c echo.Context, status int, count int, data interface{}) error {
	return c.JSON(status, Response{Results: &count, Data: data})
}

func ErrorJSON(c echo.Context, status int, code, message, traceID string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Error: Error{Code: code, Message: message, Details: details}, TraceID: traceID})
}
