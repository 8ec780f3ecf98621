package query

import (
	"sort"
	"strings"
	"time"

	"github.com/acmutd/grades-api/internal/dataset"
	"github.com/acmutd/grades-api/internal/types"
	"github.com/patrickmn/go-cache"
)

const suggestCleanupInterval = 10 * time.Minute

// Service answers read-only lookups over a dataset snapshot. It is safe for
// concurrent use.
type Service struct {
	snap         *dataset.Snapshot
	suggestCache *cache.Cache
}

// NewService builds a query service over snap. Suggestion lists are cached
// for suggestTTL; a zero TTL disables the cache.
func NewService(snap *dataset.Snapshot, suggestTTL time.Duration) *Service {
	s := &Service{snap: snap}
	if suggestTTL > 0 {
		s.suggestCache = cache.New(suggestTTL, suggestCleanupInterval)
	}
	return s
}

// Records reports the size of the underlying table.
func (s *Service) Records() int {
	return s.snap.Len()
}

// Search returns every record whose course contains courseName, ignoring
// case. An empty name matches every record.
func (s *Service) Search(courseName string) []types.GradeRecord {
	needle := strings.ToLower(courseName)
	results := []types.GradeRecord{}

	s.snap.Range(func(r types.GradeRecord) bool {
		if strings.Contains(strings.ToLower(r.Course), needle) {
			results = append(results, r)
		}
		return true
	})

	return results
}

// Suggest returns distinct course names containing query, ignoring case, in
// the order they first appear in the table.
func (s *Service) Suggest(query string) []string {
	needle := strings.ToLower(query)

	if s.suggestCache != nil {
		if cached, found := s.suggestCache.Get(needle); found {
			return append([]string{}, cached.([]string)...)
		}
	}

	seen := make(map[string]struct{})
	suggestions := []string{}

	s.snap.Range(func(r types.GradeRecord) bool {
		if _, dup := seen[r.Course]; dup {
			return true
		}
		if strings.Contains(strings.ToLower(r.Course), needle) {
			seen[r.Course] = struct{}{}
			suggestions = append(suggestions, r.Course)
		}
		return true
	})

	if s.suggestCache != nil {
		s.suggestCache.Set(needle, append([]string{}, suggestions...), cache.DefaultExpiration)
	}

	return suggestions
}

// Years returns the distinct years offered for an exact course name.
func (s *Service) Years(courseName string) []string {
	return s.distinct(
		func(r types.GradeRecord) bool { return r.Course == courseName },
		func(r types.GradeRecord) string { return r.Year },
	)
}

// Semesters returns the distinct semesters for an exact course and year.
func (s *Service) Semesters(courseName, year string) []string {
	return s.distinct(
		func(r types.GradeRecord) bool { return r.Course == courseName && r.Year == year },
		func(r types.GradeRecord) string { return r.Semester },
	)
}

// Grades returns the grade buckets of one course offering sorted by grade
// string. The order is plain byte-wise ("A" < "A*" < "B"); any
// presentation order is left to the client.
func (s *Service) Grades(courseName, year, semester string) []types.GradeCount {
	grades := []types.GradeCount{}

	s.snap.Range(func(r types.GradeRecord) bool {
		if r.Course == courseName && r.Year == year && r.Semester == semester {
			grades = append(grades, types.GradeCount{
				Semester: r.Semester,
				Grade:    r.Grade,
				Count:    r.Count,
			})
		}
		return true
	})

	sort.SliceStable(grades, func(i, j int) bool {
		return grades[i].Grade < grades[j].Grade
	})

	return grades
}

func (s *Service) distinct(match func(types.GradeRecord) bool, value func(types.GradeRecord) string) []string {
	seen := make(map[string]struct{})
	values := []string{}

	s.snap.Range(func(r types.GradeRecord) bool {
		if !match(r) {
			return true
		}
		v := value(r)
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			values = append(values, v)
		}
		return true
	})

	return values
}
