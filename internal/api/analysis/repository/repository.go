package analysisRepository

import (
	"NutriLens/pkg/nutrition"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type Repository interface {
	GetCatalogEntries(ctx context.Context) (map[string]nutrition.Entry, error)
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		q:   db,
		log: log,
	}
}

type repository struct {
	q   SQLExecutor
	log *logrus.Logger
}
