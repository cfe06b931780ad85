package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ravgen/rav-api/internal/dto"
	"github.com/ravgen/rav-api/internal/models"
	appErrors "github.com/ravgen/rav-api/pkg/errors"
)

type configurationStore interface {
	Upsert(ctx context.Context, cfg *models.Configuration) error
	GetByTeacher(ctx context.Context, teacherID string) (*models.Configuration, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ConfigurationService serves teacher report settings through a
// read-through Redis cache.
type ConfigurationService struct {
	repo   configurationStore
	cache  cacheStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewConfigurationService(repo configurationStore, cache cacheStore, ttl time.Duration, logger *zap.Logger) *ConfigurationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ConfigurationService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func configurationCacheKey(teacherID string) string {
	return fmt.Sprintf("configuration:%s", teacherID)
}

// Get returns the teacher's configuration, nil when none was saved yet.
func (s *ConfigurationService) Get(ctx context.Context, teacherID string) (*models.Configuration, error) {
	key := configurationCacheKey(teacherID)
	var cached models.Configuration
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("configuration cache read failed", zap.Error(err))
	}

	cfg, err := s.repo.GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		if err := s.cache.Set(ctx, key, cfg, s.ttl); err != nil {
			s.logger.Warn("configuration cache write failed", zap.Error(err))
		}
	}
	return cfg, nil
}

// Upsert saves the settings and invalidates the cache entry.
func (s *ConfigurationService) Upsert(ctx context.Context, teacherID string, req dto.UpsertConfigurationRequest) (*models.Configuration, error) {
	cfg := &models.Configuration{
		TeacherID:            teacherID,
		SchoolYear:           req.SchoolYear,
		RegionalCoordination: req.RegionalCoordination,
		SchoolUnit:           req.SchoolUnit,
		Block:                req.Block,
		Grade:                req.Grade,
		ClassGroup:           req.ClassGroup,
		Shift:                req.Shift,
		Term:                 req.Term,
		TeacherName:          req.TeacherName,
		Registration:         req.Registration,
		QuestionMode:         req.QuestionMode,
		TemplateID:           req.TemplateID,
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, configurationCacheKey(teacherID)); err != nil {
		s.logger.Warn("configuration cache invalidation failed", zap.Error(err))
	}
	return cfg, nil
}
