package analysisService

import (
	"NutriLens/internal/api/analysis"
	"NutriLens/pkg/nutrition"
	"NutriLens/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IAnalysisService interface {
	AnalyzeImage(ctx context.Context, image []byte) (*analysis.AnalysisResponse, error)
	AnalyzeDetections(ctx context.Context, req analysis.AggregateRequest) (*analysis.AnalysisResponse, error)
	ListCatalog(ctx context.Context) (*analysis.CatalogResponse, error)
	GetProfile(ctx context.Context, label string) (*analysis.ProfileResponse, error)
}

type analysisService struct {
	log           *logrus.Logger
	store         *nutrition.Store
	aggregator    *nutrition.Aggregator
	detector      Detector
	utils         utils.IUtils
	minConfidence float64
}

// NewAnalysisService wires the aggregation core to a detector. detector may
// be nil, in which case only detection batches can be analysed.
func NewAnalysisService(
	log *logrus.Logger,
	store *nutrition.Store,
	aggregator *nutrition.Aggregator,
	detector Detector,
	utils utils.IUtils,
	minConfidence float64,
) IAnalysisService {
	return &analysisService{
		log:           log,
		store:         store,
		aggregator:    aggregator,
		detector:      detector,
		utils:         utils,
		minConfidence: minConfidence,
	}
}
