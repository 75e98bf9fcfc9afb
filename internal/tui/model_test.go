package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuibeat/internal/audio"
	"github.com/verte-zerg/tuibeat/internal/generator"
	"github.com/verte-zerg/tuibeat/internal/model"
	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

type fakeStore struct {
	inserted []model.SessionStats
	dirs     [][]model.DirectionStats
	sessions []model.SessionAggregate
	weak     []model.DirectionAggregate
}

func (f *fakeStore) InsertSession(_ context.Context, stats model.SessionStats, dirs []model.DirectionStats) (int64, error) {
	f.inserted = append(f.inserted, stats)
	f.dirs = append(f.dirs, dirs)
	return int64(len(f.inserted)), nil
}

func (f *fakeStore) GetWeakDirections(context.Context, int, string) ([]model.DirectionAggregate, error) {
	return f.weak, nil
}

func (f *fakeStore) ListSessions(context.Context, model.StatsConfig) ([]model.SessionAggregate, error) {
	return f.sessions, nil
}

type fakePlayer struct {
	cues   []audio.Cue
	paused []bool
	plays  int
	stops  int
}

func (f *fakePlayer) Play(*audio.Track) (<-chan struct{}, error) {
	f.plays++
	return make(chan struct{}), nil
}

func (f *fakePlayer) PlayCue(c audio.Cue) error {
	f.cues = append(f.cues, c)
	return nil
}

func (f *fakePlayer) SetPaused(paused bool) {
	f.paused = append(f.paused, paused)
}

func (f *fakePlayer) Stop() {
	f.stops++
}

var dirKeys = map[rhythm.Direction]tea.KeyMsg{
	rhythm.DirUp:    runeKey('w'),
	rhythm.DirDown:  runeKey('s'),
	rhythm.DirLeft:  runeKey('a'),
	rhythm.DirRight: runeKey('d'),
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestModel(t *testing.T, v rhythm.Variant, chart *rhythm.Chart) (*Model, *rhythm.ManualClock, *fakeStore) {
	t.Helper()
	clock := rhythm.NewManualClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	store := &fakeStore{}
	m := NewModel(Options{
		Params: rhythm.DefaultParams(v),
		Chart:  chart,
		Store:  store,
		Gen:    generator.NewSeeded(7),
		Clock:  clock,
	})
	return m, clock, store
}

func TestInitStartsProceduralSession(t *testing.T) {
	m, _, _ := newTestModel(t, rhythm.VariantSingle, nil)
	if cmd := m.Init(); cmd == nil {
		t.Fatalf("expected frame command")
	}
	if !m.Session().Running() {
		t.Fatalf("expected running session")
	}
	if got := len(m.Session().Live()); got != 1 {
		t.Fatalf("expected one note on screen, got %d", got)
	}
	if m.View() == "" {
		t.Fatalf("expected game view")
	}
}

func TestCorrectKeyScores(t *testing.T) {
	m, clock, _ := newTestModel(t, rhythm.VariantSingle, nil)
	m.Init()
	note := m.Session().Live()[0]
	clock.Advance(200 * time.Millisecond)
	m.Update(dirKeys[note.Direction])

	st := m.Session().Stats()
	if st.Score != 1 || st.Combo != 1 || st.Hits != 1 {
		t.Fatalf("unexpected stats after hit: %+v", st)
	}
	label, kind, _ := m.feedback.Current(clock.Now())
	if label != "Perfect!" || kind != feedbackHit {
		t.Fatalf("expected hit feedback, got %q/%d", label, kind)
	}
	if m.dirStats[note.Direction].hits != 1 || m.dirStats[note.Direction].latencyCount != 1 {
		t.Fatalf("expected direction stats for %s", note.Direction)
	}
}

func TestWrongKeyResetsCombo(t *testing.T) {
	m, _, _ := newTestModel(t, rhythm.VariantSingle, nil)
	m.Init()
	note := m.Session().Live()[0]
	var wrong rhythm.Direction
	for _, d := range rhythm.Directions {
		if d != note.Direction {
			wrong = d
			break
		}
	}
	m.Update(dirKeys[wrong])
	st := m.Session().Stats()
	if st.Wrong != 1 || st.Score != 0 {
		t.Fatalf("unexpected stats after wrong key: %+v", st)
	}
}

func TestStaleFrameIsDropped(t *testing.T) {
	m, _, _ := newTestModel(t, rhythm.VariantSingle, nil)
	m.Init()
	gen := m.Session().Generation()

	if _, cmd := m.Update(frameMsg{gen: gen}); cmd == nil {
		t.Fatalf("expected next frame for live generation")
	}
	m.Update(runeKey('m'))
	if _, cmd := m.Update(frameMsg{gen: gen}); cmd != nil {
		t.Fatalf("expected frame from an ended session to be dropped")
	}
	m.Update(runeKey('r'))
	if _, cmd := m.Update(frameMsg{gen: gen}); cmd != nil {
		t.Fatalf("expected frame from a previous session to be dropped")
	}
}

func TestEndKeySavesSession(t *testing.T) {
	m, clock, store := newTestModel(t, rhythm.VariantSingle, nil)
	m.Init()
	note := m.Session().Live()[0]
	clock.Advance(150 * time.Millisecond)
	m.Update(dirKeys[note.Direction])
	clock.Advance(time.Second)
	m.Update(runeKey('m'))

	if m.Session().Running() {
		t.Fatalf("expected session to end")
	}
	if m.result == nil || m.result.Reason != ReasonPlayerEnded {
		t.Fatalf("expected result screen, got %+v", m.result)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one saved session, got %d", len(store.inserted))
	}
	saved := store.inserted[0]
	if saved.Score != 1 || saved.Variant != "single" || saved.Mode != "procedural" {
		t.Fatalf("unexpected saved session: %+v", saved)
	}
	if saved.DurationMs != 1150 {
		t.Fatalf("expected 1150ms duration, got %d", saved.DurationMs)
	}
	if len(store.dirs[0]) != 1 || store.dirs[0][0].Direction != note.Direction.String() {
		t.Fatalf("unexpected direction stats: %+v", store.dirs[0])
	}
	if !strings.Contains(m.View(), "Game over") {
		t.Fatalf("expected results view")
	}
	if !m.hasLast || m.lastBest != 1 || m.allGames != 1 {
		t.Fatalf("expected footer stats to update")
	}
}

func TestRetryStartsNewGeneration(t *testing.T) {
	m, _, _ := newTestModel(t, rhythm.VariantSingle, nil)
	m.Init()
	m.Update(runeKey('m'))
	ended := m.Session().Generation()
	if _, cmd := m.Update(runeKey('r')); cmd == nil {
		t.Fatalf("expected retry to schedule frames")
	}
	if !m.Session().Running() || m.Session().Generation() == ended {
		t.Fatalf("expected a fresh session")
	}
	if m.result != nil {
		t.Fatalf("expected results cleared")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m, _, _ := newTestModel(t, rhythm.VariantSingle, nil)
	m.Init()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if m.Session().Running() {
		t.Fatalf("expected session to end on quit")
	}
}

func TestMultiSpawnTimer(t *testing.T) {
	m, _, _ := newTestModel(t, rhythm.VariantMulti, nil)
	m.Init()
	if got := len(m.Session().Live()); got != 0 {
		t.Fatalf("expected no notes before the spawn timer, got %d", got)
	}
	gen := m.Session().Generation()
	if _, cmd := m.Update(spawnMsg{gen: gen}); cmd == nil {
		t.Fatalf("expected spawn timer to rearm")
	}
	if got := len(m.Session().Live()); got != 1 {
		t.Fatalf("expected one note, got %d", got)
	}
	if _, cmd := m.Update(spawnMsg{gen: gen + 1}); cmd != nil {
		t.Fatalf("expected stale spawn timer to be dropped")
	}
}

func TestHandSwingMotion(t *testing.T) {
	var h hand
	if got := h.swing(rhythm.DirRight); got != (rhythm.Vec2{X: 1}) {
		t.Fatalf("expected unit swing from rest, got %+v", got)
	}
	if got := h.swing(rhythm.DirLeft); got != (rhythm.Vec2{X: -2}) {
		t.Fatalf("expected full reversal, got %+v", got)
	}
	if h.glyph() != "◀" {
		t.Fatalf("expected left glyph, got %s", h.glyph())
	}
	for i := 0; i < 20; i++ {
		h.recover()
	}
	if h.pos != (rhythm.Vec2{}) || h.glyph() != "●" {
		t.Fatalf("expected hand at rest, got %+v", h.pos)
	}
}

func TestEmptyChartShowsNotice(t *testing.T) {
	m, _, store := newTestModel(t, rhythm.VariantSingle, &rhythm.Chart{Name: "empty", Gap: time.Second})
	if cmd := m.Init(); cmd != nil {
		t.Fatalf("expected no commands for an empty level")
	}
	if m.notice != rhythm.ReasonEmptyLevel {
		t.Fatalf("expected empty-level notice, got %q", m.notice)
	}
	if len(store.inserted) != 0 {
		t.Fatalf("expected empty level not to be saved")
	}
	if !strings.Contains(m.View(), rhythm.ReasonEmptyLevel) {
		t.Fatalf("expected notice in view")
	}
}

func TestFooterLoadsHistory(t *testing.T) {
	clock := rhythm.NewManualClock(time.Now())
	store := &fakeStore{sessions: []model.SessionAggregate{{Score: 10}, {Score: 30}, {Score: 20}}}
	m := NewModel(Options{Params: rhythm.DefaultParams(rhythm.VariantSingle), Store: store, Clock: clock})
	if !m.hasLast || m.lastBest != 20 || m.allBest != 30 || m.allGames != 3 {
		t.Fatalf("unexpected footer stats: last=%d best=%d games=%d", m.lastBest, m.allBest, m.allGames)
	}
}

func TestVerdictsPlayCues(t *testing.T) {
	m, _, _ := newTestModel(t, rhythm.VariantSingle, nil)
	player := &fakePlayer{}
	m.opts.Player = player
	m.Init()

	note := m.Session().Live()[0]
	m.Update(dirKeys[note.Direction])
	m.handleFrame(frameMsg{gen: m.Session().Generation()})
	next := m.Session().Live()
	if len(next) != 1 || !next[0].Pending() {
		t.Fatalf("expected a fresh note after the hit, got %+v", next)
	}
	var wrong rhythm.Direction
	for _, d := range rhythm.Directions {
		if d != next[0].Direction {
			wrong = d
			break
		}
	}
	m.Update(dirKeys[wrong])

	want := []audio.Cue{audio.CueHit, audio.CueMiss}
	if len(player.cues) != len(want) || player.cues[0] != want[0] || player.cues[1] != want[1] {
		t.Fatalf("cues = %v, want %v", player.cues, want)
	}
	if player.plays != 0 {
		t.Fatalf("no track means no track playback, got %d plays", player.plays)
	}
}

func TestPauseFreezesGame(t *testing.T) {
	chart := &rhythm.Chart{
		NoteDuration: time.Second,
		Gap:          500 * time.Millisecond,
		Steps:        []rhythm.Step{{Direction: rhythm.DirUp}, {Direction: rhythm.DirDown}},
	}
	m, clock, _ := newTestModel(t, rhythm.VariantSingle, chart)
	player := &fakePlayer{}
	m.opts.Player = player
	m.opts.Track = &audio.Track{}
	m.Init()
	gen := m.Session().Generation()
	if player.plays != 1 {
		t.Fatalf("expected the track to start, got %d plays", player.plays)
	}

	clock.Advance(100 * time.Millisecond)
	m.handleFrame(frameMsg{gen: gen})
	m.Update(runeKey('p'))
	if !m.Session().Paused() {
		t.Fatalf("expected paused session")
	}
	if !strings.Contains(m.View(), "paused") {
		t.Fatalf("expected paused marker in view")
	}

	clock.Advance(10 * time.Second)
	if cmd := m.handleFrame(frameMsg{gen: gen}); cmd == nil {
		t.Fatalf("frame loop must keep running while paused")
	}
	if got := m.Session().Now(); got != 100*time.Millisecond {
		t.Fatalf("game time moved while paused: %v", got)
	}
	if !m.Session().Running() || m.Session().Stats().Misses != 0 {
		t.Fatalf("paused level must not miss notes or end: %+v", m.Session().Stats())
	}
	m.Update(dirKeys[rhythm.DirUp])
	if m.Session().Stats().Score != 0 {
		t.Fatalf("keys must be ignored while paused")
	}

	m.Update(runeKey('p'))
	if m.Session().Paused() {
		t.Fatalf("expected resumed session")
	}
	clock.Advance(50 * time.Millisecond)
	if got := m.Session().Now(); got != 150*time.Millisecond {
		t.Fatalf("expected 150ms of game time, got %v", got)
	}
	if len(player.paused) != 2 || !player.paused[0] || player.paused[1] {
		t.Fatalf("track pause calls = %v", player.paused)
	}
}
