package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/training-attendance-api/internal/models"
)

// CourseMembershipResolver narrows a caller-scoped roster down to one course.
type CourseMembershipResolver struct {
	logger  *zap.Logger
	metrics *MetricsService
}

// NewCourseMembershipResolver constructs the resolver.
func NewCourseMembershipResolver(logger *zap.Logger, metrics *MetricsService) *CourseMembershipResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseMembershipResolver{logger: logger, metrics: metrics}
}

// Resolve keeps students registered for target, comparing trimmed lower-cased names.
//
// When nothing matches but the roster is not empty, the whole roster is returned
// tagged MembershipFallbackAll: the roster is already scoped upstream, so an empty
// match points at inconsistent course naming rather than an empty class.
func (r *CourseMembershipResolver) Resolve(roster []models.Student, target string) models.MembershipResult {
	if models.NormalizeCourseName(target) == "" {
		return models.MembershipResult{Outcome: models.MembershipNoSelection, Students: []models.Student{}}
	}

	matched := make([]models.Student, 0, len(roster))
	for _, student := range roster {
		if student.Courses.Contains(target) {
			matched = append(matched, student)
		}
	}
	if len(matched) > 0 || len(roster) == 0 {
		return models.MembershipResult{Outcome: models.MembershipExactMatch, Students: matched}
	}

	diagnostic := &models.MembershipDiagnostic{
		Target:      target,
		SeenCourses: models.DistinctCourseValues(roster),
	}
	r.logger.Warn("no roster student matched course, returning full roster",
		zap.String("target", target),
		zap.Strings("seen_courses", diagnostic.SeenCourses),
		zap.Int("roster_size", len(roster)),
	)
	r.metrics.RecordRosterFallback()

	all := make([]models.Student, len(roster))
	copy(all, roster)
	return models.MembershipResult{Outcome: models.MembershipFallbackAll, Students: all, Diagnostic: diagnostic}
}
