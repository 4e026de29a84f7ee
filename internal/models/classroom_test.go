package models

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJoinCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewJoinCode()
		require.Regexp(t, pattern, code)
		seen[code] = true
	}
	// 100 draws from a 16.7M space should not collapse to a handful.
	require.Greater(t, len(seen), 90)
}

func TestClassroomHasStudent(t *testing.T) {
	classroom := Classroom{Students: []User{{ID: 1}, {ID: 2}}}
	require.True(t, classroom.HasStudent(2))
	require.False(t, classroom.HasStudent(3))
}
