package service

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-attendance-api/internal/models"
)

func studentIDs(students []models.Student) []string {
	ids := make([]string, len(students))
	for i, s := range students {
		ids[i] = s.ID
	}
	return ids
}

func TestCourseMembershipResolverExactMatch(t *testing.T) {
	resolver := NewCourseMembershipResolver(nil, nil)
	roster := []models.Student{
		{ID: "1", FullName: "Ana", Courses: models.CourseNames{"  Hair Styling "}},
		{ID: "2", FullName: "Budi", Courses: models.CourseNames{"Makeup", "HAIR styling"}},
		{ID: "3", FullName: "Citra", Courses: models.CourseNames{"Makeup"}},
		{ID: "4", FullName: "Dewi"},
	}

	result := resolver.Resolve(roster, "hair styling")
	assert.Equal(t, models.MembershipExactMatch, result.Outcome)
	assert.Equal(t, []string{"1", "2"}, studentIDs(result.Students))
	assert.Nil(t, result.Diagnostic)
}

func TestCourseMembershipResolverStudentListedTwiceInCourses(t *testing.T) {
	resolver := NewCourseMembershipResolver(nil, nil)
	roster := []models.Student{{ID: "1", Courses: models.CourseNames{"Makeup", " makeup"}}}

	result := resolver.Resolve(roster, "MAKEUP")
	assert.Equal(t, []string{"1"}, studentIDs(result.Students))
}

func TestCourseMembershipResolverEmptyTarget(t *testing.T) {
	resolver := NewCourseMembershipResolver(nil, nil)
	roster := []models.Student{{ID: "1", Courses: models.CourseNames{"Makeup"}}}

	result := resolver.Resolve(roster, "   ")
	assert.Equal(t, models.MembershipNoSelection, result.Outcome)
	assert.Empty(t, result.Students)
}

func TestCourseMembershipResolverFallbackAll(t *testing.T) {
	metrics := NewMetricsService()
	resolver := NewCourseMembershipResolver(nil, metrics)
	roster := []models.Student{
		{ID: "1", Courses: models.CourseNames{"Hair-Styling"}},
		{ID: "2", Courses: models.CourseNames{"makeup", "Hair-Styling "}},
	}

	result := resolver.Resolve(roster, "Hair Styling")
	assert.Equal(t, models.MembershipFallbackAll, result.Outcome)
	assert.Equal(t, []string{"1", "2"}, studentIDs(result.Students))
	require.NotNil(t, result.Diagnostic)
	assert.Equal(t, "Hair Styling", result.Diagnostic.Target)
	assert.Equal(t, []string{"hair-styling", "makeup"}, result.Diagnostic.SeenCourses)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.rosterFallbacks))
}

func TestCourseMembershipResolverEmptyRoster(t *testing.T) {
	resolver := NewCourseMembershipResolver(nil, nil)

	result := resolver.Resolve(nil, "Makeup")
	assert.Equal(t, models.MembershipExactMatch, result.Outcome)
	assert.Empty(t, result.Students)
}
