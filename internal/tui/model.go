// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuibeat/internal/anim"
	"github.com/verte-zerg/tuibeat/internal/audio"
	"github.com/verte-zerg/tuibeat/internal/generator"
	"github.com/verte-zerg/tuibeat/internal/model"
	"github.com/verte-zerg/tuibeat/internal/rhythm"
	statsPkg "github.com/verte-zerg/tuibeat/internal/stats"
)

// ReasonPlayerEnded marks a session the player stopped.
const ReasonPlayerEnded = "ended by player"

var allDirections = []rhythm.Direction{rhythm.DirUp, rhythm.DirDown, rhythm.DirLeft, rhythm.DirRight, rhythm.DirAny}

// SessionStore persists finished sessions.
type SessionStore interface {
	InsertSession(ctx context.Context, stats model.SessionStats, dirs []model.DirectionStats) (int64, error)
	GetWeakDirections(ctx context.Context, window int, variant string) ([]model.DirectionAggregate, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Player plays a level track and the hit/miss cues.
type Player interface {
	Play(t *audio.Track) (<-chan struct{}, error)
	PlayCue(c audio.Cue) error
	SetPaused(paused bool)
	Stop()
}

// Options configures a game.
type Options struct {
	Config model.Config
	Params rhythm.Params
	// Chart selects authored mode; nil plays procedurally.
	Chart  *rhythm.Chart
	Track  *audio.Track
	Player Player
	Store  SessionStore
	Gen    *generator.Generator
	Clock  rhythm.Clock
}

type frameMsg struct {
	gen uint64
}

type spawnMsg struct {
	gen uint64
}

type trackDoneMsg struct {
	gen uint64
}

type dirStat struct {
	hits         int
	misses       int
	wrong        int
	latencySumMs int64
	latencyCount int64
}

// Feedback style tags.
const (
	feedbackHit = iota + 1
	feedbackMiss
	feedbackWrong
)

// Model implements the Bubble Tea game UI.
type Model struct {
	opts     Options
	clock    rhythm.Clock
	session  *rhythm.Session
	animator *anim.Animator
	feedback *anim.Feedback
	keys     keyMap
	help     help.Model
	hands    [2]hand

	width  int
	height int

	dirStats    map[rhythm.Direction]*dirStat
	weakNoticed bool
	cueFailed   bool

	result   *rhythm.Summary
	notice   string
	hasLast  bool
	lastBest int
	allBest  int
	allGames int
}

// NewModel constructs a game model. The session starts on Init.
func NewModel(opts Options) *Model {
	clock := opts.Clock
	if clock == nil {
		clock = rhythm.SystemClock{}
	}
	if opts.Gen == nil {
		opts.Gen = generator.New()
	}
	if opts.Params.TickPeriod <= 0 {
		opts.Params.TickPeriod = rhythm.DefaultTickPeriod
	}
	animator := anim.NewAnimator()
	m := &Model{
		opts:     opts,
		clock:    clock,
		session:  rhythm.NewSession(opts.Params, clock, opts.Gen),
		animator: animator,
		feedback: anim.NewFeedback(animator),
		keys:     newKeyMap(opts.Params.Variant),
		help:     help.New(),
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.start()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case frameMsg:
		return m, m.handleFrame(msg)
	case spawnMsg:
		return m, m.handleSpawn(msg)
	case trackDoneMsg:
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

// Session exposes the running session for inspection.
func (m *Model) Session() *rhythm.Session {
	return m.session
}

func (m *Model) start() tea.Cmd {
	m.result = nil
	m.notice = ""
	m.hands = [2]hand{}
	m.dirStats = map[rhythm.Direction]*dirStat{}
	m.keys.setPlaying(true)
	if m.opts.Config.FocusWeak && m.opts.Chart == nil {
		m.refreshWeakSet()
	}

	var events []rhythm.Event
	if m.opts.Chart != nil {
		events = m.session.StartAuthored(*m.opts.Chart)
	} else {
		events = m.session.StartProcedural()
	}
	gen := m.session.Generation()
	m.handleEvents(events)
	if !m.session.Running() {
		return nil
	}

	cmds := []tea.Cmd{m.frameCmd(gen)}
	if m.opts.Chart == nil && m.opts.Params.Variant == rhythm.VariantMulti {
		cmds = append(cmds, spawnCmd(gen, m.session.SpawnInterval()))
	}
	if cmd := m.playTrack(gen); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) frameCmd(gen uint64) tea.Cmd {
	return tea.Tick(m.opts.Params.TickPeriod, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

func spawnCmd(gen uint64, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return spawnMsg{gen: gen}
	})
}

func (m *Model) playTrack(gen uint64) tea.Cmd {
	if m.opts.Track == nil || m.opts.Player == nil {
		return nil
	}
	done, err := m.opts.Player.Play(m.opts.Track)
	if err != nil {
		log.Printf("audio: playback skipped: %v", err)
		return nil
	}
	return func() tea.Msg {
		<-done
		return trackDoneMsg{gen: gen}
	}
}

func (m *Model) handleFrame(msg frameMsg) tea.Cmd {
	if !m.session.Alive(msg.gen) {
		return nil
	}
	if m.session.Paused() {
		return m.frameCmd(msg.gen)
	}
	m.handleEvents(m.session.Tick())
	m.animator.Update(m.clock.Now())
	for i := range m.hands {
		m.hands[i].recover()
	}
	if !m.session.Running() {
		return nil
	}
	return m.frameCmd(msg.gen)
}

func (m *Model) handleSpawn(msg spawnMsg) tea.Cmd {
	events, next, ok := m.session.FireSpawnTimer(msg.gen)
	if !ok {
		return nil
	}
	m.handleEvents(events)
	return spawnCmd(msg.gen, next)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.end(ReasonPlayerEnded)
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.End):
		m.end(ReasonPlayerEnded)
		return nil
	case key.Matches(msg, m.keys.Pause):
		m.togglePause()
		return nil
	case key.Matches(msg, m.keys.Retry):
		return m.start()
	}

	if !m.session.Running() || m.session.Paused() {
		return nil
	}
	for _, hk := range m.keys.handKeys() {
		if !key.Matches(msg, *hk.binding) {
			continue
		}
		var ev rhythm.Event
		if m.opts.Params.Variant == rhythm.VariantMulti {
			h := &m.hands[hk.lane-rhythm.LaneA]
			ev = m.session.Swing(hk.lane, h.swing(hk.direction))
		} else {
			ev = m.session.Press(hk.direction, rhythm.LaneNone)
		}
		m.handleEvents([]rhythm.Event{ev})
		return nil
	}
	return nil
}

// togglePause freezes game time and the track together so they stay in step.
func (m *Model) togglePause() {
	if !m.session.Running() {
		return
	}
	if m.session.Paused() {
		m.session.Resume()
	} else {
		m.session.Pause()
	}
	if m.opts.Player != nil && m.opts.Track != nil {
		m.opts.Player.SetPaused(m.session.Paused())
	}
}

func (m *Model) end(reason string) {
	m.handleEvents(m.session.End(reason))
}

func (m *Model) handleEvents(events []rhythm.Event) {
	now := m.clock.Now()
	for _, ev := range events {
		switch ev.Kind {
		case rhythm.EventJudged:
			m.recordVerdict(ev)
			switch ev.Verdict {
			case rhythm.VerdictHit:
				m.feedback.Show(ev.Verdict.Label(), feedbackHit, now)
				m.playCue(audio.CueHit)
			case rhythm.VerdictMiss:
				m.feedback.Show(ev.Verdict.Label(), feedbackMiss, now)
				m.playCue(audio.CueMiss)
			case rhythm.VerdictWrongDirection:
				m.feedback.Show(ev.Verdict.Label(), feedbackWrong, now)
				m.playCue(audio.CueMiss)
			}
		case rhythm.EventWarning:
			m.notice = ev.Reason
			log.Printf("session warning: %s", ev.Reason)
		case rhythm.EventEnded:
			m.finishSession()
		}
	}
}

// playCue logs the first failure and then stays quiet.
func (m *Model) playCue(c audio.Cue) {
	if m.opts.Player == nil || m.cueFailed {
		return
	}
	if err := m.opts.Player.PlayCue(c); err != nil {
		log.Printf("audio: %s cue skipped: %v", c, err)
		m.cueFailed = true
	}
}

func (m *Model) recordVerdict(ev rhythm.Event) {
	if ev.Verdict == rhythm.VerdictIgnored {
		return
	}
	entry, ok := m.dirStats[ev.Note.Direction]
	if !ok {
		entry = &dirStat{}
		m.dirStats[ev.Note.Direction] = entry
	}
	switch ev.Verdict {
	case rhythm.VerdictHit:
		entry.hits++
		latency := ev.At - ev.Note.SpawnTime
		if latency < 0 {
			latency = 0
		}
		entry.latencySumMs += latency.Milliseconds()
		entry.latencyCount++
	case rhythm.VerdictMiss:
		entry.misses++
	case rhythm.VerdictWrongDirection:
		entry.wrong++
	}
}

func (m *Model) finishSession() {
	sum := m.session.Summary()
	m.result = &sum
	m.animator.Reset()
	m.keys.setPlaying(false)
	if m.opts.Player != nil && m.opts.Track != nil {
		m.opts.Player.Stop()
	}
	log.Printf("session ended: %s score=%d hits=%d misses=%d wrong=%d", sum.Reason, sum.Stats.Score, sum.Stats.Hits, sum.Stats.Misses, sum.Stats.Wrong)

	if sum.Notes == 0 {
		return
	}
	stats := summaryStats(sum)
	dirs := make([]model.DirectionStats, 0, len(m.dirStats))
	for _, d := range allDirections {
		entry, ok := m.dirStats[d]
		if !ok {
			continue
		}
		dirs = append(dirs, model.DirectionStats{
			Direction:    d.String(),
			Hits:         entry.hits,
			Misses:       entry.misses,
			Wrong:        entry.wrong,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	if m.opts.Store != nil {
		if _, err := m.opts.Store.InsertSession(context.Background(), stats, dirs); err != nil {
			log.Printf("failed to save session: %v", err)
		}
	}
	m.lastBest = sum.Stats.Score
	m.hasLast = true
	m.allGames++
	if sum.Stats.Score > m.allBest {
		m.allBest = sum.Stats.Score
	}
}

func summaryStats(sum rhythm.Summary) model.SessionStats {
	return model.SessionStats{
		StartedAt:  sum.StartedAt,
		EndedAt:    sum.StartedAt.Add(sum.Duration),
		Mode:       sum.Mode.String(),
		Variant:    sum.Variant.String(),
		Level:      sum.Level,
		Score:      sum.Stats.Score,
		Hits:       sum.Stats.Hits,
		Misses:     sum.Stats.Misses,
		Wrong:      sum.Stats.Wrong,
		MaxCombo:   sum.Stats.MaxCombo,
		Notes:      sum.Notes,
		DurationMs: sum.Duration.Milliseconds(),
		Reason:     sum.Reason,
	}
}

func (m *Model) loadFooterStats() {
	if m.opts.Store == nil {
		return
	}
	sessions, err := m.opts.Store.ListSessions(context.Background(), model.StatsConfig{Variant: m.opts.Params.Variant.String()})
	if err != nil {
		log.Printf("failed to load session stats: %v", err)
		return
	}
	if len(sessions) == 0 {
		return
	}
	m.lastBest = sessions[len(sessions)-1].Score
	m.hasLast = true
	m.allGames = len(sessions)
	m.allBest = statsPkg.Summarize(sessions).BestScore
}

func (m *Model) refreshWeakSet() {
	if m.opts.Store == nil {
		return
	}
	aggs, err := m.opts.Store.GetWeakDirections(context.Background(), m.opts.Config.WeakWindow, m.opts.Params.Variant.String())
	if err != nil {
		log.Printf("failed to load weak directions: %v", err)
		return
	}
	if len(aggs) == 0 {
		if !m.weakNoticed {
			log.Printf("no stats available for weak-direction focus yet; using uniform notes")
			m.weakNoticed = true
		}
		m.opts.Gen.FocusWeak(nil, 0)
		return
	}
	weak := map[rhythm.Direction]struct{}{}
	for name := range statsPkg.SelectWeakDirections(aggs, m.opts.Config.WeakTop) {
		d, err := rhythm.ParseDirection(name)
		if err != nil {
			continue
		}
		weak[d] = struct{}{}
	}
	m.opts.Gen.FocusWeak(weak, m.opts.Config.WeakFactor)
}
