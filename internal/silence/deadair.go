package silence

import (
	"sort"

	"github.com/petems/trackdeck/internal/interval"
)

// Plan is the set of time ranges judged silent on every track at once,
// already padded, sorted ascending by start. Callers applying the cuts
// to audio must process the ranges from last to first, because removing
// an earlier range shifts every later timestamp.
type Plan struct {
	Cuts []interval.Interval
}

// Empty reports whether the plan removes nothing.
func (p Plan) Empty() bool {
	return len(p.Cuts) == 0
}

// Aggregate combines per-track silence reports into one removal plan.
//
// The reports are intersected pairwise: a range is dead air only when
// every track is silent across it. Each surviving range is then shrunk
// inward by padding seconds per side so natural silence survives around
// every cut; ranges shorter than twice the padding are dropped. Zero
// reports, or any report with no silence, yield an empty plan.
func Aggregate(reports []Report, padding float64) Plan {
	if len(reports) == 0 {
		return Plan{}
	}

	lists := make([][]interval.Interval, len(reports))
	for i, r := range reports {
		lists[i] = r.Intervals
	}

	common := interval.IntersectAll(lists)
	cuts := interval.Pad(common, padding)
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].Start < cuts[j].Start })
	return Plan{Cuts: cuts}
}
