package silence

import (
	"math"
	"testing"

	"github.com/petems/trackdeck/internal/interval"
)

const testRate = 8000

// buildTrack generates a mono buffer of the given length where the
// listed ranges are silent (zero samples) and everything else is a loud
// sine.
func buildTrack(seconds float64, quiet []interval.Interval) []float32 {
	n := int(seconds * testRate)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / testRate
		silent := false
		for _, q := range quiet {
			if t >= q.Start && t < q.End {
				silent = true
				break
			}
		}
		if !silent {
			out[i] = float32(0.5 * math.Sin(2*math.Pi*440*t))
		}
	}
	return out
}

func approx(a, b float64) bool {
	// Window granularity is 50ms; allow one window of slack.
	return math.Abs(a-b) <= WindowSeconds+1e-9
}

func TestAnalyzeScenarioA(t *testing.T) {
	// 10s track, silent 2.0-5.0, loud elsewhere.
	samples := buildTrack(10, []interval.Interval{{Start: 2.0, End: 5.0}})
	report := Analyze(samples, testRate, DefaultConfig())

	if len(report.Intervals) != 1 {
		t.Fatalf("intervals = %v, want exactly one", report.Intervals)
	}
	got := report.Intervals[0]
	if !approx(got.Start, 2.0) || !approx(got.End, 5.0) {
		t.Errorf("interval = [%v, %v), want [2.0, 5.0)", got.Start, got.End)
	}

	plan := Aggregate([]Report{report}, 0.3)
	if len(plan.Cuts) != 1 {
		t.Fatalf("plan = %v, want one cut", plan.Cuts)
	}
	cut := plan.Cuts[0]
	if !approx(cut.Start, 2.3) || !approx(cut.End, 4.7) {
		t.Errorf("cut = [%v, %v), want [2.3, 4.7)", cut.Start, cut.End)
	}
}

func TestAggregateScenarioB(t *testing.T) {
	track1 := Report{Intervals: []interval.Interval{{Start: 2.0, End: 5.0}}}
	track2 := Report{Intervals: []interval.Interval{{Start: 3.0, End: 4.0}}}

	plan := Aggregate([]Report{track1, track2}, 0.3)
	if len(plan.Cuts) != 1 {
		t.Fatalf("plan = %v, want one cut", plan.Cuts)
	}
	cut := plan.Cuts[0]
	if math.Abs(cut.Start-3.3) > 1e-9 || math.Abs(cut.End-3.7) > 1e-9 {
		t.Errorf("cut = [%v, %v), want [3.3, 3.7)", cut.Start, cut.End)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	reports := []Report{
		{Intervals: []interval.Interval{{Start: 1.0, End: 6.0}}},
		{Intervals: []interval.Interval{{Start: 2.0, End: 4.0}, {Start: 5.0, End: 8.0}}},
		{Intervals: []interval.Interval{{Start: 0.0, End: 7.0}}},
	}
	want := Aggregate(reports, 0.1)

	perms := [][]int{{0, 2, 1}, {1, 0, 2}, {2, 1, 0}}
	for _, p := range perms {
		permuted := []Report{reports[p[0]], reports[p[1]], reports[p[2]]}
		got := Aggregate(permuted, 0.1)
		if len(got.Cuts) != len(want.Cuts) {
			t.Fatalf("permutation %v: %v vs %v", p, got.Cuts, want.Cuts)
		}
		for i := range want.Cuts {
			if got.Cuts[i] != want.Cuts[i] {
				t.Errorf("permutation %v: cut %d = %v, want %v", p, i, got.Cuts[i], want.Cuts[i])
			}
		}
	}
}

func TestAggregateNoReports(t *testing.T) {
	if plan := Aggregate(nil, 0.3); !plan.Empty() {
		t.Errorf("plan = %v, want empty", plan.Cuts)
	}
}

func TestAggregateTrackWithNoSilence(t *testing.T) {
	reports := []Report{
		{Intervals: []interval.Interval{{Start: 2.0, End: 5.0}}},
		{}, // one track is never silent, so nothing is dead air
	}
	if plan := Aggregate(reports, 0.3); !plan.Empty() {
		t.Errorf("plan = %v, want empty", plan.Cuts)
	}
}

func TestAnalyzeEmptyBuffer(t *testing.T) {
	report := Analyze(nil, testRate, DefaultConfig())
	if len(report.Intervals) != 0 {
		t.Errorf("intervals = %v, want none", report.Intervals)
	}
}

func TestAnalyzeShortRunDiscarded(t *testing.T) {
	// 1.0s of silence is under the 1.5s minimum.
	samples := buildTrack(10, []interval.Interval{{Start: 4.0, End: 5.0}})
	report := Analyze(samples, testRate, DefaultConfig())
	if len(report.Intervals) != 0 {
		t.Errorf("intervals = %v, want none (run too short)", report.Intervals)
	}
}

func TestAnalyzeZeroMinDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDuration = 0
	samples := buildTrack(2, []interval.Interval{{Start: 0.5, End: 0.6}})
	report := Analyze(samples, testRate, cfg)
	if len(report.Intervals) != 1 {
		t.Fatalf("intervals = %v, want the 0.1s run reported", report.Intervals)
	}
	got := report.Intervals[0]
	if !approx(got.Start, 0.5) || !approx(got.End, 0.6) {
		t.Errorf("interval = [%v, %v), want [0.5, 0.6)", got.Start, got.End)
	}
}

func TestAnalyzeTailRunEmitted(t *testing.T) {
	// Silence runs to the end of the buffer.
	samples := buildTrack(10, []interval.Interval{{Start: 7.0, End: 10.0}})
	report := Analyze(samples, testRate, DefaultConfig())
	if len(report.Intervals) != 1 {
		t.Fatalf("intervals = %v, want one", report.Intervals)
	}
	got := report.Intervals[0]
	if !approx(got.Start, 7.0) || !approx(got.End, 10.0) {
		t.Errorf("interval = [%v, %v), want [7.0, 10.0)", got.Start, got.End)
	}
}

func TestAnalyzeAllSilent(t *testing.T) {
	samples := make([]float32, testRate*3)
	report := Analyze(samples, testRate, DefaultConfig())
	if len(report.Intervals) != 1 {
		t.Fatalf("intervals = %v, want one covering the whole buffer", report.Intervals)
	}
	got := report.Intervals[0]
	if got.Start != 0 || !approx(got.End, 3.0) {
		t.Errorf("interval = [%v, %v), want [0, 3.0)", got.Start, got.End)
	}
}

func TestRMSLoudSignalNotQuiet(t *testing.T) {
	samples := buildTrack(1, nil)
	report := Analyze(samples, testRate, DefaultConfig())
	if len(report.Intervals) != 0 {
		t.Errorf("loud signal flagged silent: %v", report.Intervals)
	}
}
