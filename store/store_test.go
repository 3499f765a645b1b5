package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPaths(t *testing.T) {
	for _, ok := range []string{"Class", "Class/abc/reviews"} {
		assert.NoError(t, CheckCollection(ok), ok)
	}
	for _, bad := range []string{"", "Class/abc", "Class//x", "/Class"} {
		assert.ErrorIs(t, CheckCollection(bad), ErrInvalidPath, bad)
	}

	assert.NoError(t, CheckDocument("Class/abc"))
	assert.ErrorIs(t, CheckDocument("Class"), ErrInvalidPath)
	assert.ErrorIs(t, CheckDocument("Class/"), ErrInvalidPath)
}

func TestMatches(t *testing.T) {
	fields := map[string]interface{}{
		"Department":     "ECE",
		"CourseNumValue": float64(220),
		"active":         true,
	}

	assert.True(t, Matches(fields, nil))
	assert.True(t, Matches(fields, []Where{{Field: "Department", Value: "ECE"}}))
	assert.True(t, Matches(fields, []Where{{Field: "CourseNumValue", Value: 220}}))
	assert.True(t, Matches(fields, []Where{{Field: "active", Value: true}}))
	assert.False(t, Matches(fields, []Where{{Field: "Department", Value: "MATH"}}))
	assert.False(t, Matches(fields, []Where{{Field: "CourseNumValue", Value: "220"}}))
	assert.False(t, Matches(fields, []Where{{Field: "missing", Value: nil}}))
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "Class/abc", relativePath("projects/demo/databases/(default)/documents/Class/abc"))
	assert.Equal(t, "Class/abc/reviews/r1", relativePath("projects/documents/databases/prod/documents/Class/abc/reviews/r1"))
	assert.Equal(t, "Class/abc", relativePath("Class/abc"))
}
