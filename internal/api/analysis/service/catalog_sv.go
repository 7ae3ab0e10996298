package analysisService

import (
	"NutriLens/internal/api/analysis"
	analysisRepository "NutriLens/internal/api/analysis/repository"
	"NutriLens/pkg/log"
	"NutriLens/pkg/nutrition"
	"NutriLens/pkg/redis"
	"NutriLens/pkg/s3"
	"bytes"
	"fmt"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"time"
)

type ICatalogLoader interface {
	Load(ctx context.Context) (*nutrition.Catalog, error)
	Reload(ctx context.Context, store *nutrition.Store) error
}

type catalogLoader struct {
	log    *logrus.Logger
	config analysis.CatalogConfig
	s3     s3.ItfS3
	redis  redis.IRedis
	repo   analysisRepository.Repository
}

// NewCatalogLoader builds a loader for cfg.Source. Only the client for the
// configured source needs to be non-nil.
func NewCatalogLoader(
	log *logrus.Logger,
	cfg analysis.CatalogConfig,
	s3Client s3.ItfS3,
	redisClient redis.IRedis,
	repo analysisRepository.Repository,
) ICatalogLoader {
	if cfg.Source == "" {
		cfg.Source = analysis.SourceFile
	}
	return &catalogLoader{
		log:    log,
		config: cfg,
		s3:     s3Client,
		redis:  redisClient,
		repo:   repo,
	}
}

func (l *catalogLoader) Load(ctx context.Context) (*nutrition.Catalog, error) {
	start := time.Now()

	catalog, err := l.load(ctx)
	if err != nil {
		l.log.WithFields(log.Fields{
			"source": l.config.Source,
			"error":  err.Error(),
		}).Error("Failed to load nutrition catalog")
		return nil, err
	}

	l.log.WithFields(log.Fields{
		"source":     l.config.Source,
		"entries":    catalog.Len(),
		"latency_ms": time.Since(start).Milliseconds(),
	}).Info("Nutrition catalog loaded")

	return catalog, nil
}

func (l *catalogLoader) load(ctx context.Context) (*nutrition.Catalog, error) {
	switch l.config.Source {
	case analysis.SourceFile:
		return nutrition.LoadFile(l.config.Path)

	case analysis.SourceS3:
		if l.s3 == nil {
			return nil, fmt.Errorf("catalog source %q: s3 client not configured", l.config.Source)
		}
		data, err := l.s3.GetObject(ctx, l.config.S3Key)
		if err != nil {
			return nil, &nutrition.DataLoadError{Reason: "cannot fetch catalog object", Err: err}
		}
		return nutrition.Load(bytes.NewReader(data))

	case analysis.SourceRedis:
		if l.redis == nil {
			return nil, fmt.Errorf("catalog source %q: redis client not configured", l.config.Source)
		}
		raw, err := l.redis.GetCatalogEntries(ctx, l.config.RedisKey)
		if err != nil {
			return nil, &nutrition.DataLoadError{Reason: "cannot read catalog hash", Err: err}
		}
		entries := make(map[string]nutrition.Entry, len(raw))
		for label, value := range raw {
			entry, err := nutrition.DecodeEntry(label, []byte(value))
			if err != nil {
				return nil, err
			}
			entries[label] = entry
		}
		return nutrition.NewCatalog(entries)

	case analysis.SourcePostgres:
		if l.repo == nil {
			return nil, fmt.Errorf("catalog source %q: database not configured", l.config.Source)
		}
		entries, err := l.repo.GetCatalogEntries(ctx)
		if err != nil {
			return nil, &nutrition.DataLoadError{Reason: "cannot query nutrition_profiles", Err: err}
		}
		return nutrition.NewCatalog(entries)

	default:
		return nil, fmt.Errorf("unknown catalog source %q", l.config.Source)
	}
}

// Reload swaps in a freshly loaded catalog. On failure the store keeps
// serving the previous one.
func (l *catalogLoader) Reload(ctx context.Context, store *nutrition.Store) error {
	catalog, err := l.Load(ctx)
	if err != nil {
		l.log.Warn("Catalog reload failed, keeping the current catalog")
		return err
	}

	previous := store.Swap(catalog)
	l.log.WithFields(log.Fields{
		"previous_entries": previous.Len(),
		"entries":          catalog.Len(),
	}).Info("Nutrition catalog swapped")

	return nil
}

// ReportLabelCoverage logs detector labels that have no catalog entry and
// returns them. Such labels are still detected but never scored.
func ReportLabelCoverage(logger *logrus.Logger, catalog *nutrition.Catalog, labels nutrition.Labels) []string {
	if len(labels) == 0 {
		logger.Debug("No detector label space configured, skipping coverage check")
		return nil
	}

	missing := catalog.Missing(labels)
	if len(missing) == 0 {
		logger.WithFields(log.Fields{
			"labels": len(labels),
		}).Info("Every detector label has a nutrition profile")
		return nil
	}

	logger.WithFields(log.Fields{
		"labels":  len(labels),
		"missing": missing,
	}).Warn("Detector labels without nutrition profile will not be scored")

	return missing
}
