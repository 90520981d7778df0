package database

import (
	"github.com/askora/askora/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	user    *models.UserModel
	ban     *models.BanModel
	warning *models.WarningModel
	stats   *models.StatsModel
	strike  *models.StrikeModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		user:    models.NewUser(db, logger),
		ban:     models.NewBan(db, logger),
		warning: models.NewWarning(db, logger),
		stats:   models.NewStats(db, logger),
		strike:  models.NewStrike(db, logger),
	}
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}

// Ban returns the ban model repository.
func (r *Repository) Ban() *models.BanModel {
	return r.ban
}

// Warning returns the warning model repository.
func (r *Repository) Warning() *models.WarningModel {
	return r.warning
}

// Stats returns the moderation stats model repository.
func (r *Repository) Stats() *models.StatsModel {
	return r.stats
}

// Strike returns the strike ledger model repository.
func (r *Repository) Strike() *models.StrikeModel {
	return r.strike
}
