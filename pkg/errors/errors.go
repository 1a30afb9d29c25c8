package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

type ErrorCode string

const (
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION"
	ErrUpstream   ErrorCode = "UPSTREAM"
)

type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	case ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(message string) *AppError {
	return &AppError{Code: ErrNotFound, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Code: ErrValidation, Message: message}
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		WriteJSON(w, appErr.StatusCode(), ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		})
		return
	}

	log.Printf("Internal error: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
