// Package interval provides pure functions over sorted, non-overlapping
// time ranges measured in seconds.
package interval

// Interval is a half-open time range [Start, End) in seconds.
// A valid interval always has Start < End.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns the length of the interval in seconds.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Intersect computes the intersection of two sorted, non-overlapping
// interval lists using a two-pointer sweep. The result is itself sorted
// and non-overlapping.
func Intersect(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := max(a[i].Start, b[j].Start)
		end := min(a[i].End, b[j].End)
		if start < end {
			out = append(out, Interval{Start: start, End: end})
		}
		// Advance whichever interval ends first.
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}

// IntersectAll reduces N interval lists to their common intersection.
// Intersection is commutative and associative, so the reduction order
// does not affect the result. A single list is returned as-is (copied);
// zero lists yield nil.
func IntersectAll(lists [][]Interval) []Interval {
	if len(lists) == 0 {
		return nil
	}
	acc := append([]Interval(nil), lists[0]...)
	for _, l := range lists[1:] {
		acc = Intersect(acc, l)
		if len(acc) == 0 {
			break
		}
	}
	return acc
}

// Pad shrinks each interval inward by padding seconds on both sides.
// Intervals shorter than 2*padding collapse and are dropped, so the
// result never contains an empty or inverted range.
func Pad(list []Interval, padding float64) []Interval {
	if padding <= 0 {
		return append([]Interval(nil), list...)
	}
	var out []Interval
	for _, iv := range list {
		// Test the duration, not the padded endpoints: float rounding
		// can leave a sliver where Start+padding < End-padding even
		// though the interval is exactly 2*padding long.
		if iv.Duration() <= 2*padding {
			continue
		}
		out = append(out, Interval{Start: iv.Start + padding, End: iv.End - padding})
	}
	return out
}

// Complement returns the gaps of list within [0, duration): the regions
// kept after removing every interval in list. The input must be sorted
// and non-overlapping.
func Complement(list []Interval, duration float64) []Interval {
	var out []Interval
	cursor := 0.0
	for _, iv := range list {
		if iv.Start >= duration {
			break
		}
		if iv.Start > cursor {
			out = append(out, Interval{Start: cursor, End: iv.Start})
		}
		if iv.End > cursor {
			cursor = iv.End
		}
	}
	if cursor < duration {
		out = append(out, Interval{Start: cursor, End: duration})
	}
	return out
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
