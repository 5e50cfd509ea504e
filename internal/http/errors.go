package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/energy-usage-database/internal/domain"
)

type errorResponse struct {
	Error string   `json:"error"`
	Code  string   `json:"code"`
	Value *float64 `json:"value,omitempty"`
}

// Order matters: an audit write failure also matches ErrLogWriteFailed.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrAuditWriteFailed, fiber.StatusInternalServerError, "audit_write_failed"},
	{domain.ErrNoChangeRequired, fiber.StatusConflict, "no_change_required"},
	{domain.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{domain.ErrLogFileNotFound, fiber.StatusNotFound, "log_not_found"},
	{domain.ErrUnknownEnergyType, fiber.StatusBadRequest, "unknown_energy_type"},
	{domain.ErrUnknownMeter, fiber.StatusBadRequest, "unknown_meter"},
	{domain.ErrNoMeters, fiber.StatusBadRequest, "no_meters"},
	{domain.ErrInvalidActor, fiber.StatusBadRequest, "invalid_actor"},
	{domain.ErrInvalidTimestamp, fiber.StatusBadRequest, "invalid_timestamp"},
	{domain.ErrWindowOutOfRange, fiber.StatusUnprocessableEntity, "window_out_of_range"},
	{domain.ErrUpdateFailed, fiber.StatusInternalServerError, "update_failed"},
	{domain.ErrLogWriteFailed, fiber.StatusInternalServerError, "log_write_failed"},
	{domain.ErrCloudDisabled, fiber.StatusNotImplemented, "cloud_disabled"},
}

func errorHandler(c *fiber.Ctx, err error) error {
	resp := errorResponse{Error: err.Error(), Code: "internal"}
	status := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status, resp.Code = fe.Code, "request"
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			status, resp.Code = ec.status, ec.code
			break
		}
	}
	var awe *domain.AuditWriteError
	if errors.As(err, &awe) {
		v := awe.Value
		resp.Value = &v
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("code", resp.Code).Msg("request failed")
	}
	return c.Status(status).JSON(resp)
}
