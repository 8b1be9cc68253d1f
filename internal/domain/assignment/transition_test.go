package assignment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestTransition(t *testing.T) {
	today := day("2024-03-15")

	cases := []struct {
		name    string
		current Status
		start   time.Time
		end     *time.Time
		want    Status
	}{
		{"open ended starting later", StatusPending, day("2024-03-16"), nil, StatusPending},
		{"open ended starting today", StatusPending, today, nil, StatusApproved},
		{"open ended started earlier", StatusExpired, day("2024-01-01"), nil, StatusApproved},
		{"future range", StatusApproved, day("2024-04-01"), dayPtr("2024-04-30"), StatusPending},
		{"range covering today", StatusPending, day("2024-03-01"), dayPtr("2024-03-31"), StatusApproved},
		{"range ending today", StatusPending, day("2024-03-01"), dayPtr("2024-03-15"), StatusApproved},
		{"range ended yesterday", StatusApproved, day("2024-03-01"), dayPtr("2024-03-14"), StatusExpired},
		{"cancelled stays cancelled", StatusCancelled, day("2024-03-01"), dayPtr("2024-03-31"), StatusCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Transition(tc.current, tc.start, tc.end, today)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTransition_InvalidRange(t *testing.T) {
	_, err := Transition(StatusPending, day("2024-03-10"), dayPtr("2024-03-10"), day("2024-03-15"))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = Transition(StatusPending, day("2024-03-10"), dayPtr("2024-03-01"), day("2024-03-15"))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestTransition_TotalAndPure(t *testing.T) {
	start := day("2024-01-10")
	for offset := -40; offset <= 40; offset += 3 {
		today := start.AddDate(0, 0, offset)
		for _, end := range []*time.Time{nil, dayPtr("2024-01-20"), dayPtr("2024-02-10")} {
			first, err := Transition(StatusPending, start, end, today)
			require.NoError(t, err)
			second, err := Transition(StatusPending, start, end, today)
			require.NoError(t, err)

			assert.Contains(t, []Status{StatusPending, StatusApproved, StatusExpired}, first)
			assert.Equal(t, first, second)
		}
	}
}

func TestAssignment_Overlaps(t *testing.T) {
	a := Assignment{StartDate: day("2024-01-01"), EndDate: dayPtr("2024-01-31")}

	assert.True(t, a.Overlaps(day("2024-01-15"), dayPtr("2024-02-15")))
	assert.True(t, a.Overlaps(day("2024-01-31"), nil), "shared boundary day overlaps")
	assert.False(t, a.Overlaps(day("2024-02-01"), dayPtr("2024-02-28")))

	openEnded := Assignment{StartDate: day("2024-03-01")}
	assert.True(t, openEnded.Overlaps(day("2030-01-01"), nil))
	assert.False(t, openEnded.Overlaps(day("2024-01-01"), dayPtr("2024-02-29")))
}

func TestParseSubjectType(t *testing.T) {
	st, ok := ParseSubjectType("department")
	assert.True(t, ok)
	assert.Equal(t, SubjectDepartment, st)

	_, ok = ParseSubjectType("team")
	assert.False(t, ok)
}
