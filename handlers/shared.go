package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"prediction-league/logging"
	"prediction-league/models"

	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

// maxBodyBytes caps request bodies; a full league document fits comfortably
const maxBodyBytes = 4 << 20

// base holds what every API handler needs
type base struct {
	render    *render.Render
	validator *validator.Validate
	logger    *logging.Logger
}

func newBase(r *render.Render, v *validator.Validate, prefix string) base {
	return base{render: r, validator: v, logger: logging.WithPrefix(prefix)}
}

// decodeJSON reads the request body into payload and validates its tags
func (b base) decodeJSON(r *http.Request, w http.ResponseWriter, payload any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(payload); err != nil {
		return &models.ValidationError{Field: "body", Reason: fmt.Sprintf("bad request: %v", err)}
	}
	return b.validateRequest(r.Context(), payload)
}

func (b base) validateRequest(ctx context.Context, payload any) error {
	if err := b.validator.StructCtx(ctx, payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &models.ValidationError{Field: lowerFirst(fe.Field()), Reason: fmt.Sprintf("failed %q check", fe.Tag())}
		}
		return &models.ValidationError{Reason: err.Error()}
	}
	return nil
}

// writeError maps err to a status code and writes {"error": "..."}
func (b base) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		b.logger.Errorf("Request failed: %v", err)
	} else {
		b.logger.Debugf("Request rejected (%d): %v", status, err)
	}
	b.render.JSON(w, status, map[string]string{"error": err.Error()})
}

func (b base) writeOK(w http.ResponseWriter, fields map[string]any) {
	out := map[string]any{"ok": true}
	for k, v := range fields {
		out[k] = v
	}
	b.render.JSON(w, http.StatusOK, out)
}

func errorStatus(err error) int {
	switch {
	case models.IsValidationError(err), models.IsAggregationError(err), errors.Is(err, models.ErrFixtureNotFound):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidPassword):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrPlayerNotFound), errors.Is(err, models.ErrLeagueNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrWeekSubmitted), errors.Is(err, models.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// formatETag quotes a document version for the ETag header
func formatETag(version int64) string {
	return strconv.Quote(strconv.FormatInt(version, 10))
}

// parseETag reads a version from an If-Match value such as "3" or W/"3"
func parseETag(value string) (int64, bool) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "W/")
	value = strings.Trim(value, `"`)
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func pathInt(vars map[string]string, name string) (int, error) {
	v, err := strconv.Atoi(vars[name])
	if err != nil || v <= 0 {
		return 0, &models.ValidationError{Field: name, Reason: fmt.Sprintf("invalid %s %q", name, vars[name])}
	}
	return v, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
