package analysisService

import (
	"NutriLens/internal/api/analysis"
	"NutriLens/internal/entity"
	contextPkg "NutriLens/pkg/context"
	"NutriLens/pkg/log"
	"NutriLens/pkg/nutrition"
	"NutriLens/pkg/response"
	"golang.org/x/net/context"
	"image"
	"time"
)

func (s *analysisService) AnalyzeImage(ctx context.Context, img []byte) (*analysis.AnalysisResponse, error) {
	if s.detector == nil {
		return nil, analysis.ErrDetectorUnavailable
	}
	if err := s.utils.ValidateImageBytes(img); err != nil {
		return nil, response.Wrap(analysis.ErrInvalidImage, err)
	}

	detections, err := s.detector.Detect(ctx, img)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.WithFields(log.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"detector":   s.detector.Name(),
			"error":      err.Error(),
		}).Error("Food detection failed")
		return nil, response.Wrap(analysis.ErrDetectionFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := filterByConfidence(detections, s.minConfidence)
	return s.analyze(ctx, entity.Analysis{
		Source:     s.detector.Name(),
		Detections: len(detections),
		Discarded:  len(detections) - len(kept),
	}, kept)
}

func (s *analysisService) AnalyzeDetections(ctx context.Context, req analysis.AggregateRequest) (*analysis.AnalysisResponse, error) {
	detections := make([]nutrition.Detection, 0, len(req.Detections))
	for _, d := range req.Detections {
		det := nutrition.Detection{
			ClassID:    d.ClassID,
			Label:      d.Label,
			Confidence: d.Confidence,
		}
		if d.Box != nil {
			det.Box = image.Rect(d.Box.X1, d.Box.Y1, d.Box.X2, d.Box.Y2)
		}
		detections = append(detections, det)
	}

	kept := detections
	if req.MinConfidence != nil {
		kept = filterByConfidence(detections, *req.MinConfidence)
	}

	return s.analyze(ctx, entity.Analysis{
		Source:     "batch",
		Detections: len(detections),
		Discarded:  len(detections) - len(kept),
	}, kept)
}

func (s *analysisService) analyze(ctx context.Context, a entity.Analysis, detections []nutrition.Detection) (*analysis.AnalysisResponse, error) {
	catalog := s.store.Catalog()
	if catalog == nil {
		return nil, analysis.ErrCatalogUnavailable
	}

	a.CreatedAt = time.Now()
	id, err := s.utils.NewULIDFromTimestamp(a.CreatedAt)
	if err != nil {
		return nil, response.Wrap(analysis.ErrInternalServerError, err)
	}
	a.ID = id

	result := s.aggregator.Analyze(detections, catalog)

	objects := make([]analysis.DetectedObject, 0, len(detections))
	for _, d := range detections {
		label := d.Label
		if label == "" {
			label = s.aggregator.Label(d.ClassID)
		}
		objects = append(objects, analysis.DetectedObject{
			Label:      label,
			Confidence: d.Confidence,
			Box: analysis.BoundingBox{
				X1: d.Box.Min.X,
				Y1: d.Box.Min.Y,
				X2: d.Box.Max.X,
				Y2: d.Box.Max.Y,
			},
		})
	}

	unscored := result.Unscored
	if unscored == nil {
		unscored = []string{}
	}

	fields := log.Fields{
		"request_id":  contextPkg.GetRequestID(ctx),
		"analysis_id": a.ID,
		"source":      a.Source,
		"detections":  a.Detections,
		"discarded":   a.Discarded,
		"calories":    result.Totals.Calories,
	}
	if len(unscored) > 0 {
		fields["unscored"] = unscored
		s.log.WithFields(fields).Warn("Analysis completed with labels missing from the catalog")
	} else {
		s.log.WithFields(fields).Info("Analysis completed")
	}

	return &analysis.AnalysisResponse{
		AnalysisID:     a.ID,
		Detections:     result.Summaries,
		TotalNutrition: result.Totals,
		Unscored:       unscored,
		Objects:        objects,
		Discarded:      a.Discarded,
	}, nil
}

func (s *analysisService) ListCatalog(ctx context.Context) (*analysis.CatalogResponse, error) {
	catalog := s.store.Catalog()
	if catalog == nil {
		return nil, analysis.ErrCatalogUnavailable
	}

	return &analysis.CatalogResponse{
		Count:  catalog.Len(),
		Labels: catalog.Labels(),
	}, nil
}

func (s *analysisService) GetProfile(ctx context.Context, label string) (*analysis.ProfileResponse, error) {
	profile, ok := s.store.Catalog().Lookup(label)
	if !ok {
		return nil, analysis.ErrCatalogEntryNotFound
	}

	return &analysis.ProfileResponse{
		Label:   label,
		Profile: profile,
	}, nil
}

func filterByConfidence(detections []nutrition.Detection, min float64) []nutrition.Detection {
	if min <= 0 {
		return detections
	}

	kept := make([]nutrition.Detection, 0, len(detections))
	for _, d := range detections {
		if d.Confidence >= min {
			kept = append(kept, d)
		}
	}
	return kept
}
