package rhythm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPicker struct {
	dirs  []Direction
	lanes []Lane
	di    int
	li    int
}

func (p *scriptedPicker) Direction(bool) Direction {
	if len(p.dirs) == 0 {
		return DirUp
	}
	d := p.dirs[p.di%len(p.dirs)]
	p.di++
	return d
}

func (p *scriptedPicker) Lane() Lane {
	if len(p.lanes) == 0 {
		return LaneA
	}
	l := p.lanes[p.li%len(p.lanes)]
	p.li++
	return l
}

func newTestSession(t *testing.T, v Variant, picker Picker) (*Session, *ManualClock) {
	t.Helper()
	clock := NewManualClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	return NewSession(DefaultParams(v), clock, picker), clock
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestSpawnInterval(t *testing.T) {
	base := DefaultBaseSpeed
	assert.Equal(t, 300*time.Millisecond, SpawnInterval(base+0.07, base))
	assert.Equal(t, 1000*time.Millisecond, SpawnInterval(base, base))
	assert.Equal(t, 700*time.Millisecond, SpawnInterval(base+0.03, base))
	assert.Equal(t, MinSpawnInterval, SpawnInterval(base+5, base))
}

func TestChartArrivals(t *testing.T) {
	chart := Chart{
		NoteDuration: time.Second,
		Gap:          500 * time.Millisecond,
		Steps:        []Step{{Direction: DirUp}, {Direction: DirDown}, {Direction: DirLeft}},
	}
	assert.Equal(t, time.Duration(0), chart.Arrival(0))
	assert.Equal(t, 500*time.Millisecond, chart.Arrival(1))
	assert.Equal(t, 1000*time.Millisecond, chart.Arrival(2))

	start, end := chart.Window(2)
	assert.Equal(t, time.Duration(0), start)
	assert.Equal(t, 1000*time.Millisecond, end)
	assert.Equal(t, 1000*time.Millisecond, chart.Length())
}

func TestDoubleAttemptScoresOnce(t *testing.T) {
	s, _ := newTestSession(t, VariantSingle, &scriptedPicker{dirs: []Direction{DirLeft}})
	events := s.StartProcedural()
	require.Equal(t, []EventKind{EventSpawned}, kinds(events))

	first := s.Press(DirLeft, LaneNone)
	second := s.Press(DirLeft, LaneNone)

	assert.Equal(t, VerdictHit, first.Verdict)
	assert.Equal(t, StateHit, first.Note.State)
	assert.Equal(t, VerdictIgnored, second.Verdict)
	assert.Equal(t, 1, s.Stats().Score)
	assert.Equal(t, 1, s.Stats().Combo)
}

func TestWrongDirectionConsumesNote(t *testing.T) {
	s, _ := newTestSession(t, VariantSingle, &scriptedPicker{dirs: []Direction{DirUp, DirDown}})
	s.StartProcedural()
	require.Equal(t, VerdictHit, s.Press(DirUp, LaneNone).Verdict)
	s.Tick()

	wrong := s.Press(DirLeft, LaneNone)
	assert.Equal(t, VerdictWrongDirection, wrong.Verdict)
	assert.Equal(t, StateHit, wrong.Note.State)
	assert.Equal(t, 0, s.Stats().Combo)
	assert.Equal(t, 1, s.Stats().Score)

	// The consumed note cannot be retried.
	assert.Equal(t, VerdictIgnored, s.Press(DirDown, LaneNone).Verdict)
	assert.Equal(t, 1, s.Stats().Wrong)

	// The next tick replaces it.
	events := s.Tick()
	assert.Contains(t, kinds(events), EventSpawned)
	require.Len(t, s.Live(), 1)
	assert.True(t, s.Live()[0].Pending())
}

func TestSingleProceduralMissWhenNotePasses(t *testing.T) {
	s, _ := newTestSession(t, VariantSingle, &scriptedPicker{})
	s.StartProcedural()

	var missed []Event
	for i := 0; i < 1000 && len(missed) == 0; i++ {
		for _, ev := range s.Tick() {
			if ev.Kind == EventJudged && ev.Verdict == VerdictMiss {
				missed = append(missed, ev)
			}
		}
	}
	require.Len(t, missed, 1)
	assert.Equal(t, StateMissed, missed[0].Note.State)
	assert.Greater(t, missed[0].Note.Z, s.Params().PassZ)
	assert.Equal(t, 1, s.Stats().Misses)
	assert.Greater(t, s.Speed(), DefaultBaseSpeed)

	live := s.Live()
	require.Len(t, live, 1)
	assert.Equal(t, uint64(2), live[0].ID)
}

func TestHitWindowGrace(t *testing.T) {
	chart := Chart{
		NoteDuration: time.Second,
		Gap:          500 * time.Millisecond,
		Steps:        []Step{{Direction: DirUp}, {Direction: DirDown}},
	}

	s, _ := newTestSession(t, VariantSingle, nil)
	s.StartAuthored(chart)
	ev := s.Attempt(HitAttempt{At: 99 * time.Millisecond, Direction: DirUp})
	assert.Equal(t, VerdictHit, ev.Verdict)
	assert.Equal(t, 1, s.Stats().Score)

	s, _ = newTestSession(t, VariantSingle, nil)
	s.StartAuthored(chart)
	ev = s.Attempt(HitAttempt{At: 101 * time.Millisecond, Direction: DirUp})
	assert.Equal(t, VerdictMiss, ev.Verdict)
	assert.Equal(t, StateMissed, ev.Note.State)
	assert.Equal(t, 0, s.Stats().Score)
	assert.Equal(t, 1, s.Stats().Misses)
}

func TestHitWindowGraceMultiAuthored(t *testing.T) {
	// The lane A note arrives at 500ms; its window is [-500ms, 500ms].
	chart := Chart{
		NoteDuration: time.Second,
		Gap:          500 * time.Millisecond,
		Steps:        []Step{{Direction: DirDown, Lane: LaneB}, {Direction: DirUp, Lane: LaneA}},
	}
	up := DirUp.Unit()
	cases := []struct {
		name    string
		at      time.Duration
		motion  Vec2
		verdict Verdict
	}{
		{name: "before grace", at: -601 * time.Millisecond, motion: up, verdict: VerdictIgnored},
		{name: "wrong swing before grace", at: -601 * time.Millisecond, motion: DirLeft.Unit(), verdict: VerdictIgnored},
		{name: "early grace", at: -599 * time.Millisecond, motion: up, verdict: VerdictHit},
		{name: "before arrival", at: 410 * time.Millisecond, motion: up, verdict: VerdictHit},
		{name: "at arrival", at: 500 * time.Millisecond, motion: up, verdict: VerdictHit},
		{name: "late grace", at: 599 * time.Millisecond, motion: up, verdict: VerdictHit},
		{name: "past grace", at: 601 * time.Millisecond, motion: up, verdict: VerdictMiss},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestSession(t, VariantMulti, nil)
			s.StartAuthored(chart)
			motion := tc.motion
			ev := s.Attempt(HitAttempt{At: tc.at, Lane: LaneA, Motion: &motion})
			assert.Equal(t, tc.verdict, ev.Verdict)
			if tc.verdict == VerdictHit {
				assert.Equal(t, 1, s.Stats().Score)
				assert.Equal(t, DirUp, ev.Note.Direction)
			}
			if tc.verdict == VerdictIgnored {
				assert.Len(t, s.Live(), 2, "nothing may be consumed outside the window")
			}
		})
	}
}

func TestToleranceBandIsInclusive(t *testing.T) {
	for _, edge := range []float64{-1, 1} {
		s, _ := newTestSession(t, VariantMulti, &scriptedPicker{dirs: []Direction{DirRight}, lanes: []Lane{LaneA}})
		s.StartProcedural()
		_, _, ok := s.FireSpawnTimer(s.Generation())
		require.True(t, ok)
		p := s.Params()
		s.live[0].Z = p.HitZ + edge*p.Tolerance
		assert.Equal(t, VerdictHit, s.Swing(LaneA, DirRight.Unit()).Verdict, "edge %v", edge)
	}
}

func TestPauseFreezesGameTime(t *testing.T) {
	s, clock := newTestSession(t, VariantSingle, &scriptedPicker{dirs: []Direction{DirUp}})
	s.StartProcedural()
	clock.Advance(200 * time.Millisecond)
	s.Tick()
	z := s.Live()[0].Z

	s.Pause()
	require.True(t, s.Paused())
	clock.Advance(5 * time.Second)
	assert.Equal(t, 200*time.Millisecond, s.Now())
	assert.Nil(t, s.Tick())
	assert.Equal(t, z, s.Live()[0].Z)
	assert.Equal(t, VerdictIgnored, s.Press(DirUp, LaneNone).Verdict)
	assert.Equal(t, 0, s.Stats().Score)

	s.Resume()
	assert.False(t, s.Paused())
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 300*time.Millisecond, s.Now())
	assert.Equal(t, VerdictHit, s.Press(DirUp, LaneNone).Verdict)

	s.Pause()
	s.End("quit")
	assert.False(t, s.Paused())
	s.StartProcedural()
	clock.Advance(time.Second)
	assert.Equal(t, time.Second, s.Now(), "a new start must not inherit a pause")
}

func TestAuthoredEarlyAttemptIsIgnored(t *testing.T) {
	chart := Chart{
		NoteDuration: 500 * time.Millisecond,
		Gap:          2 * time.Second,
		Steps:        []Step{{Direction: DirUp}, {Direction: DirRight}},
	}
	s, clock := newTestSession(t, VariantSingle, nil)
	events := s.StartAuthored(chart)
	require.Equal(t, []EventKind{EventSpawned}, kinds(events))
	require.Equal(t, VerdictHit, s.Attempt(HitAttempt{At: 0, Direction: DirUp}).Verdict)

	clock.Advance(1500 * time.Millisecond)
	events = s.Tick()
	require.Contains(t, kinds(events), EventSpawned)

	early := s.Attempt(HitAttempt{At: 1350 * time.Millisecond, Direction: DirRight})
	assert.Equal(t, VerdictIgnored, early.Verdict)
	require.Len(t, s.Live(), 1)
	assert.True(t, s.Live()[0].Pending())

	onTime := s.Attempt(HitAttempt{At: 1950 * time.Millisecond, Direction: DirRight})
	assert.Equal(t, VerdictHit, onTime.Verdict)
	assert.Equal(t, 2, s.Stats().Score)
	// The tick at 1500ms dropped the first hit's combo.
	assert.Equal(t, 1, s.Stats().Combo)
}

func TestAuthoredStaleNoteMissedOnceThenLevelEnds(t *testing.T) {
	chart := Chart{
		Name:         "one",
		NoteDuration: 500 * time.Millisecond,
		Gap:          500 * time.Millisecond,
		Steps:        []Step{{Direction: DirUp}},
	}
	s, clock := newTestSession(t, VariantSingle, nil)
	s.StartAuthored(chart)

	clock.Advance(100 * time.Millisecond)
	assert.Empty(t, s.Tick())

	clock.Advance(2 * time.Millisecond)
	events := s.Tick()
	require.Equal(t, []EventKind{EventJudged, EventEnded}, kinds(events))
	assert.Equal(t, VerdictMiss, events[0].Verdict)
	assert.Equal(t, ReasonLevelComplete, events[1].Reason)
	assert.False(t, s.Running())
	assert.Nil(t, s.Tick())

	sum := s.Summary()
	assert.Equal(t, "one", sum.Level)
	assert.Equal(t, ModeAuthored, sum.Mode)
	assert.Equal(t, 1, sum.Notes)
	assert.Equal(t, 1, sum.Stats.Misses)
}

func TestEmptyLevelEndsWithWarning(t *testing.T) {
	s, _ := newTestSession(t, VariantSingle, nil)
	events := s.StartAuthored(Chart{Gap: time.Second, NoteDuration: time.Second})
	require.Equal(t, []EventKind{EventWarning, EventEnded}, kinds(events))
	assert.Equal(t, ReasonEmptyLevel, events[0].Reason)
	assert.False(t, s.Running())
}

func TestComboDecayInSession(t *testing.T) {
	s, clock := newTestSession(t, VariantSingle, &scriptedPicker{dirs: []Direction{DirUp}})
	s.StartProcedural()
	require.Equal(t, VerdictHit, s.Press(DirUp, LaneNone).Verdict)

	clock.Advance(999 * time.Millisecond)
	assert.NotContains(t, kinds(s.Tick()), EventComboDecayed)
	assert.Equal(t, 1, s.Stats().Combo)

	clock.Advance(2 * time.Millisecond)
	assert.Contains(t, kinds(s.Tick()), EventComboDecayed)
	assert.Equal(t, 0, s.Stats().Combo)
	assert.Equal(t, 1, s.Stats().Score)
}

func TestSpawnTimerGeneration(t *testing.T) {
	s, _ := newTestSession(t, VariantMulti, &scriptedPicker{dirs: []Direction{DirAny}, lanes: []Lane{LaneB}})
	assert.Empty(t, s.StartProcedural())
	gen := s.Generation()

	events, next, ok := s.FireSpawnTimer(gen)
	require.True(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, LaneB, events[0].Note.Lane)
	assert.Equal(t, 1000*time.Millisecond, next)

	s.StartProcedural()
	_, _, ok = s.FireSpawnTimer(gen)
	assert.False(t, ok, "timer from a previous start must be dropped")

	s.Pause()
	events, _, ok = s.FireSpawnTimer(s.Generation())
	assert.True(t, ok, "a paused session keeps its timer")
	assert.Empty(t, events)
	s.Resume()

	gen = s.Generation()
	s.End("quit")
	_, _, ok = s.FireSpawnTimer(gen)
	assert.False(t, ok, "timer after end must be dropped")
	assert.Empty(t, s.End("again"))
}

// tickUntilHittable advances a multi session until its first note enters the hit zone.
func tickUntilHittable(t *testing.T, s *Session) {
	t.Helper()
	p := s.Params()
	for i := 0; i < 2000; i++ {
		s.Tick()
		live := s.Live()
		require.NotEmpty(t, live)
		if live[0].Z > p.HitZ-p.Tolerance {
			require.Less(t, live[0].Z, p.HitZ+p.Tolerance)
			return
		}
	}
	t.Fatalf("note never reached the hit zone")
}

func TestSwingJudgedByDotProduct(t *testing.T) {
	cases := []struct {
		name    string
		lane    Lane
		motion  Vec2
		verdict Verdict
	}{
		{name: "aligned", lane: LaneA, motion: Vec2{X: 1, Y: 0.2}, verdict: VerdictHit},
		{name: "perpendicular", lane: LaneA, motion: Vec2{X: 0, Y: 1}, verdict: VerdictWrongDirection},
		{name: "at threshold", lane: LaneA, motion: Vec2{X: 1, Y: 1.8}, verdict: VerdictWrongDirection},
		{name: "still hand", lane: LaneA, motion: Vec2{}, verdict: VerdictWrongDirection},
		{name: "other hand", lane: LaneB, motion: Vec2{X: 1, Y: 0}, verdict: VerdictIgnored},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestSession(t, VariantMulti, &scriptedPicker{dirs: []Direction{DirRight}, lanes: []Lane{LaneA}})
			s.StartProcedural()
			_, _, ok := s.FireSpawnTimer(s.Generation())
			require.True(t, ok)

			assert.Equal(t, VerdictIgnored, s.Swing(tc.lane, tc.motion).Verdict, "note far from the hit plane")

			tickUntilHittable(t, s)
			ev := s.Swing(tc.lane, tc.motion)
			assert.Equal(t, tc.verdict, ev.Verdict)
			if tc.verdict == VerdictHit {
				assert.Equal(t, 1, s.Stats().Score)
			}
		})
	}
}

func TestAnyDirectionAlwaysMatches(t *testing.T) {
	s, _ := newTestSession(t, VariantMulti, &scriptedPicker{dirs: []Direction{DirAny}, lanes: []Lane{LaneB}})
	s.StartProcedural()
	_, _, ok := s.FireSpawnTimer(s.Generation())
	require.True(t, ok)
	tickUntilHittable(t, s)
	assert.Equal(t, VerdictHit, s.Swing(LaneB, Vec2{X: 0, Y: -3}).Verdict)
}

func TestScoreTracksHitsAndComboResets(t *testing.T) {
	dirs := []Direction{DirUp, DirDown, DirLeft, DirRight, DirUp, DirLeft}
	presses := []Direction{DirUp, DirDown, DirUp, DirRight, DirUp, DirDown}
	s, _ := newTestSession(t, VariantSingle, &scriptedPicker{dirs: dirs})
	s.StartProcedural()

	prevScore := 0
	for _, d := range presses {
		ev := s.Press(d, LaneNone)
		st := s.Stats()
		assert.GreaterOrEqual(t, st.Score, prevScore)
		assert.Equal(t, st.Hits, st.Score)
		if ev.Verdict == VerdictMiss || ev.Verdict == VerdictWrongDirection {
			assert.Equal(t, 0, st.Combo)
		}
		prevScore = st.Score
		s.Tick()
	}
	st := s.Stats()
	assert.Equal(t, 4, st.Score)
	assert.Equal(t, 2, st.Wrong)
	assert.Equal(t, 2, st.MaxCombo)
	assert.InDelta(t, 4.0/6.0, st.Accuracy(), 1e-9)
}
