package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"paper-analyzer/internal/domain"
	"paper-analyzer/internal/service"
	apperrors "paper-analyzer/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

const (
	maxMultipartMemory = 32 << 20
	maxJSONBody        = 10 << 20
	multipartOverhead  = 1 << 20
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context.
// The token is empty in development mode.
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

type envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Type    string      `json:"type,omitempty"`
	Details string      `json:"details,omitempty"`
}

// writeJSON writes data inside the success envelope.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(envelope{Status: "success", Data: data})
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(envelope{Status: "error", Message: message})
}

// writeAppError maps err to its status code and client-safe message. Server
// side failures are logged.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error) {
	status := apperrors.GetStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, "status", status)
	}

	body := envelope{Status: "error", Message: apperrors.Message(err)}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Type = string(appErr.Type)
		body.Details = appErr.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewValidationError("Invalid request body", err.Error())
	}
	return nil
}

// openUpload parses the multipart form and returns the "file" field.
func openUpload(w http.ResponseWriter, r *http.Request, maxFileSize int64) (multipart.File, *multipart.FileHeader, error) {
	if maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+multipartOverhead)
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, apperrors.NewValidationError("File too large",
				fmt.Sprintf("maximum size is %d bytes", maxFileSize))
		}
		return nil, nil, apperrors.NewValidationError("Invalid multipart form", err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, apperrors.NewValidationError("File is required")
	}
	return file, header, nil
}

func uploadName(header *multipart.FileHeader) string {
	return strings.TrimSpace(filepath.Base(header.Filename))
}

// readUpload reads the multipart "file" field. The declared size is checked
// before the file is read into memory.
func readUpload(w http.ResponseWriter, r *http.Request, svc *service.AnalysisService, maxFileSize int64) (service.Upload, error) {
	file, header, err := openUpload(w, r, maxFileSize)
	if err != nil {
		return service.Upload{}, err
	}
	defer file.Close()

	name := uploadName(header)
	mimeType := header.Header.Get("Content-Type")
	if err := svc.ValidateFile(name, mimeType, header.Size); err != nil {
		return service.Upload{}, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return service.Upload{}, apperrors.NewProcessingError("Failed to read uploaded file", err)
	}
	return service.Upload{Name: name, MimeType: mimeType, Data: data}, nil
}
