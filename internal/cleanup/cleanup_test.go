package cleanup

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/petems/trackdeck/internal/interval"
	"github.com/petems/trackdeck/internal/silence"
	"github.com/petems/trackdeck/internal/store"
	"github.com/petems/trackdeck/internal/wav"
)

const testRate = 8000

func writeTrack(t *testing.T, dir, name string, seconds float64, quiet []interval.Interval) string {
	t.Helper()
	n := int(seconds * testRate)
	samples := make([]float32, n)
	for i := range samples {
		ts := float64(i) / testRate
		silent := false
		for _, q := range quiet {
			if ts >= q.Start && ts < q.End {
				silent = true
				break
			}
		}
		if !silent {
			samples[i] = float32(0.5 * math.Sin(2*math.Pi*220*ts))
		}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, wav.Encode(samples, testRate, 1), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func newPipeline() *Pipeline {
	return New(silence.DefaultConfig(), store.New(), zerolog.Nop())
}

func TestRunCutsCommonSilence(t *testing.T) {
	dir := t.TempDir()
	// Both tracks silent across [3.0, 6.0); track two also silent
	// elsewhere on its own, which must not be cut.
	t1 := writeTrack(t, dir, "one.wav", 10, []interval.Interval{{Start: 3.0, End: 6.0}})
	t2 := writeTrack(t, dir, "two.wav", 10, []interval.Interval{{Start: 1.0, End: 2.0}, {Start: 3.0, End: 6.5}})

	result, err := newPipeline().Run([]string{t1, t2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("warnings: %v", result.Warnings)
	}
	if len(result.Plan.Cuts) != 1 {
		t.Fatalf("plan = %v, want one cut", result.Plan.Cuts)
	}
	cut := result.Plan.Cuts[0]
	// Intersection [3.0, 6.0) padded by 0.3 on each side.
	if math.Abs(cut.Start-3.3) > 0.06 || math.Abs(cut.End-5.7) > 0.06 {
		t.Errorf("cut = [%v, %v), want about [3.3, 5.7)", cut.Start, cut.End)
	}

	if len(result.Edited) != 2 {
		t.Fatalf("edited = %v, want both tracks rewritten", result.Edited)
	}
	for orig, edited := range result.Edited {
		buf, err := wav.DecodeFile(edited)
		if err != nil {
			t.Fatalf("decoding edited %s: %v", edited, err)
		}
		wantDur := 10.0 - cut.Duration()
		if math.Abs(buf.Duration()-wantDur) > 0.1 {
			t.Errorf("%s edited duration = %v, want about %v", orig, buf.Duration(), wantDur)
		}
	}
}

func TestRunNoDeadAirLeavesFilesAlone(t *testing.T) {
	dir := t.TempDir()
	t1 := writeTrack(t, dir, "one.wav", 5, []interval.Interval{{Start: 1.0, End: 3.0}})
	t2 := writeTrack(t, dir, "two.wav", 5, nil) // never silent

	result, err := newPipeline().Run([]string{t1, t2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Plan.Empty() {
		t.Errorf("plan = %v, want empty", result.Plan.Cuts)
	}
	if len(result.Edited) != 0 {
		t.Errorf("edited = %v, want none", result.Edited)
	}
}

func TestRunUnreadableTrackWarnsAndCutsNothing(t *testing.T) {
	dir := t.TempDir()
	t1 := writeTrack(t, dir, "one.wav", 5, []interval.Interval{{Start: 1.0, End: 4.0}})
	bad := filepath.Join(dir, "bad.wav")
	if err := os.WriteFile(bad, []byte("this is not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := newPipeline().Run([]string{t1, bad})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := result.Warnings[bad]; !ok {
		t.Error("unreadable track must surface a warning")
	}
	// An unreadable track is assumed never silent, so nothing is dead
	// air on every track at once.
	if !result.Plan.Empty() {
		t.Errorf("plan = %v, want empty", result.Plan.Cuts)
	}
}

func TestRemoveRangesDescendingOrder(t *testing.T) {
	// 10 frames at 1 Hz, mono: sample i covers second i.
	samples := []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	cuts := []interval.Interval{
		{Start: 1, End: 3}, // removes 1, 2
		{Start: 6, End: 8}, // removes 6, 7
	}
	got := RemoveRanges(samples, 1, 1, cuts)
	want := []float32{0, 3, 4, 5, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRemoveRangesStereoKeepsFrameAlignment(t *testing.T) {
	// 4 stereo frames at 1 Hz.
	samples := []float32{
		0, 10,
		1, 11,
		2, 12,
		3, 13,
	}
	got := RemoveRanges(samples, 2, 1, []interval.Interval{{Start: 1, End: 3}})
	want := []float32{0, 10, 3, 13}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRemoveRangesOutOfBoundsClamped(t *testing.T) {
	samples := []float32{0, 1, 2, 3}
	got := RemoveRanges(samples, 1, 1, []interval.Interval{{Start: 2, End: 99}})
	want := []float32{0, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
