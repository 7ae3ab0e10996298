package analysisHandler

import (
	"NutriLens/internal/api/analysis"
	contextPkg "NutriLens/pkg/context"
	"NutriLens/pkg/handlerUtil"
	"NutriLens/pkg/log"
	"github.com/gofiber/fiber/v2"
	"net/url"
)

func (h *AnalysisHandler) AnalyzeImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := contextPkg.WithTimeout(ctx, h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing food image analysis request")

	var image []byte

	file, err := ctx.FormFile("image")
	if err == nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		image, err = h.utils.ReadImageFile(file)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image_file")
		}
	} else {
		var req analysis.AnalyzeImageRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, analysis.ErrBadRequest, ctx.Path(), "parse_request_body")
		}

		if err := h.validator.Struct(req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}

		image, err = h.utils.DecodeBase64Image(req.ImageBase64)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "decode_base64_image")
		}
	}

	result, err := h.analysisService.AnalyzeImage(c, image)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id":  requestID,
			"path":        ctx.Path(),
			"analysis_id": result.AnalysisID,
			"detections":  result.Detections,
		}).Info("Food image analysis successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, analysis.AnalysisResult{
			Data: *result,
		})
	}
}

func (h *AnalysisHandler) AggregateDetections(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := contextPkg.WithTimeout(ctx, h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req analysis.AggregateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, analysis.ErrBadRequest, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.analysisService.AnalyzeDetections(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "aggregate_detections")
	}

	h.log.WithFields(log.Fields{
		"request_id":  requestID,
		"path":        ctx.Path(),
		"analysis_id": result.AnalysisID,
	}).Info("Detection aggregation successful")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, analysis.AnalysisResult{
		Data: *result,
	})
}

func (h *AnalysisHandler) ListCatalog(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	result, err := h.analysisService.ListCatalog(contextPkg.FromFiberCtx(ctx))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_catalog")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{"data": result})
}

func (h *AnalysisHandler) GetProfile(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	label, err := url.PathUnescape(ctx.Params("label"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, analysis.ErrBadRequest, ctx.Path(), "parse_label")
	}

	result, err := h.analysisService.GetProfile(contextPkg.FromFiberCtx(ctx), label)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_profile")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{"data": result})
}
