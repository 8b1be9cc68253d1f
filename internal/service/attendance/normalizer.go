package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

// Normalize sorts punches by time and snaps them to a grid measured from local midnight.
// A leading IN is floored and a trailing OUT is ceiled; every other punch goes to the nearest grid point.
// The result is already on the grid, so normalizing it again returns it unchanged.
func Normalize(punches []attendance.Punch, grid time.Duration) []attendance.Punch {
	out := append([]attendance.Punch(nil), punches...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	if grid <= 0 || len(out) == 0 {
		return out
	}

	last := len(out) - 1
	for i := range out {
		switch {
		case i == 0 && out[i].Type == attendance.PunchIn:
			out[i].Time = floorTo(out[i].Time, grid)
		case i == last && out[i].Type == attendance.PunchOut:
			out[i].Time = ceilTo(out[i].Time, grid)
		default:
			out[i].Time = nearest(out[i].Time, grid)
		}
	}
	return out
}

// EarliestIn returns the earliest IN punch without rounding it.
func EarliestIn(punches []attendance.Punch) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, p := range punches {
		if p.Type != attendance.PunchIn {
			continue
		}
		if !found || p.Time.Before(earliest) {
			earliest, found = p.Time, true
		}
	}
	return earliest, found
}

func sinceMidnight(t time.Time) (time.Time, time.Duration) {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight, t.Sub(midnight)
}

func floorTo(t time.Time, grid time.Duration) time.Time {
	midnight, offset := sinceMidnight(t)
	return midnight.Add(offset - offset%grid)
}

func ceilTo(t time.Time, grid time.Duration) time.Time {
	midnight, offset := sinceMidnight(t)
	rem := offset % grid
	if rem == 0 {
		return midnight.Add(offset)
	}
	return midnight.Add(offset - rem + grid)
}

func nearest(t time.Time, grid time.Duration) time.Time {
	_, offset := sinceMidnight(t)
	if 2*(offset%grid) >= grid {
		return ceilTo(t, grid)
	}
	return floorTo(t, grid)
}

// DetectMissed classifies a day's punches; reason is empty when nothing is missing.
func DetectMissed(punches []attendance.Punch) (bool, string) {
	if len(punches) == 0 {
		return true, attendance.MissedNoPunches
	}

	var hasIn, hasOut bool
	for _, p := range punches {
		switch p.Type {
		case attendance.PunchIn:
			hasIn = true
		case attendance.PunchOut:
			hasOut = true
		}
	}

	switch {
	case !hasIn:
		return true, attendance.MissedInPunch
	case !hasOut:
		return true, attendance.MissedOutPunch
	}
	return false, ""
}

// WorkedMinutes totals sorted punches under policy.
// MULTIPLE closes each OUT against the most recent unmatched IN; FIRST_LAST spans the first IN to the last OUT.
func WorkedMinutes(punches []attendance.Punch, policy shift.PunchPolicy) int {
	if policy == shift.PunchPolicyFirstLast {
		var first, last *time.Time
		for i := range punches {
			p := punches[i]
			if p.Type == attendance.PunchIn && first == nil {
				first = &punches[i].Time
			}
			if p.Type == attendance.PunchOut {
				last = &punches[i].Time
			}
		}
		if first == nil || last == nil || !last.After(*first) {
			return 0
		}
		return int(last.Sub(*first) / time.Minute)
	}

	var open []time.Time
	var total time.Duration
	for _, p := range punches {
		switch p.Type {
		case attendance.PunchIn:
			open = append(open, p.Time)
		case attendance.PunchOut:
			if len(open) == 0 {
				continue
			}
			in := open[len(open)-1]
			open = open[:len(open)-1]
			if p.Time.After(in) {
				total += p.Time.Sub(in)
			}
		}
	}
	return int(total / time.Minute)
}
