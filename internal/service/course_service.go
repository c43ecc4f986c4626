package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/training-attendance-api/internal/models"
	appErrors "github.com/noah-isme/training-attendance-api/pkg/errors"
)

const courseListCacheKey = "courses:list"

// CourseProvider lists the course catalogue.
type CourseProvider interface {
	List(ctx context.Context) ([]models.Course, error)
}

// CourseService serves the course catalogue through the cache.
type CourseService struct {
	repo   CourseProvider
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewCourseService constructs a CourseService. cache may be nil.
func NewCourseService(repo CourseProvider, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// List returns all courses and whether they came from cache.
func (s *CourseService) List(ctx context.Context) ([]models.Course, bool, error) {
	var cached []models.Course
	if s.cache.Get(ctx, courseListCacheKey, &cached) {
		return cached, true, nil
	}
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	s.cache.Set(ctx, courseListCacheKey, courses, s.ttl)
	return courses, false, nil
}

// Invalidate drops the cached catalogue.
func (s *CourseService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, courseListCacheKey)
}
