package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"campusapi/internal/kyc"
	"campusapi/internal/pkg/logger"
	"campusapi/internal/service"
)

// CreateKYCRequest godoc
// @Summary Create a KYC request from a template
// @Tags kyc
// @Accept json
// @Produce json
// @Param request body kyc.CreateKYCRequest true "KYC request"
// @Success 200 {object} kyc.KYCResponse
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /integration/create_request [post]
func CreateKYCRequest(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req kyc.CreateKYCRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.CreateRequest(c.UserContext(), req)
		if err != nil {
			return writeKYCError(c, err)
		}
		return c.JSON(res)
	}
}

// FetchIDData godoc
// @Summary Fetch registry data for an identity document
// @Tags kyc
// @Accept json
// @Produce json
// @Param types query string true "PAN, PASSPORT, VEHICLE_RC, VOTER_ID or DRIVING_LICENSE"
// @Param request body kyc.FetchIDCardRequest true "Document"
// @Success 200 {object} kyc.FetchIDCardResponse
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /fetch_id_data [post]
func FetchIDData(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := kyc.ParseIDCardType(c.Query("types"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID_TYPE", "types must be one of PAN, PASSPORT, VEHICLE_RC, VOTER_ID, DRIVING_LICENSE")
		}

		var req kyc.FetchIDCardRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.FetchIDData(c.UserContext(), t, req)
		if err != nil {
			return writeKYCError(c, err)
		}
		return c.JSON(res)
	}
}

// AnalyzeIDCard godoc
// @Summary Analyze an identity card image
// @Tags kyc
// @Accept multipart/form-data
// @Produce json
// @Param front_part formData file true "Front of the card"
// @Param should_verify formData bool false "Verify against the registry"
// @Success 200 {object} service.IDCardResult
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /analyze/idcard [post]
func AnalyzeIDCard(svc service.KYCService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("front_part")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "front_part is required")
		}

		shouldVerify := false
		if v := c.FormValue("should_verify"); v != "" {
			if shouldVerify, err = strconv.ParseBool(v); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "should_verify must be a boolean")
			}
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.AnalyzeIDCard(c.UserContext(), service.IDCardUpload{
			Reader:       f,
			Filename:     fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			ShouldVerify: shouldVerify,
		})
		if err != nil {
			return writeKYCError(c, err)
		}
		return c.JSON(res)
	}
}

func writeKYCError(c *fiber.Ctx, err error) error {
	var apiErr *kyc.APIError

	switch {
	case errors.Is(err, service.ErrKYCDisabled):
		return writeError(c, fiber.StatusServiceUnavailable, "KYC_UNAVAILABLE", "kyc integration is not configured")
	case errors.Is(err, kyc.ErrInvalidRequest):
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
	case errors.As(err, &apiErr):
		logger.WithComponent("kyc").Warn().
			Str("request_id", requestIDFromCtx(c)).
			Int("upstream_status", apiErr.Status).
			Msg("digio rejected request")
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "digio returned status "+strconv.Itoa(apiErr.Status))
	default:
		logger.WithComponent("kyc").Error().
			Str("request_id", requestIDFromCtx(c)).
			Err(err).
			Msg("kyc request failed")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
