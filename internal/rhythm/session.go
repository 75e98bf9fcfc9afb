package rhythm

import (
	"math"
	"time"
)

// EventKind classifies session events.
type EventKind uint8

const (
	EventSpawned EventKind = iota
	EventJudged
	EventComboDecayed
	EventWarning
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventSpawned:
		return "spawned"
	case EventJudged:
		return "judged"
	case EventComboDecayed:
		return "combo-decayed"
	case EventWarning:
		return "warning"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event reports something the display layer may want to react to.
// Note is a copy; changing it has no effect on the session.
type Event struct {
	Kind    EventKind
	Note    Note
	Verdict Verdict
	At      time.Duration
	Reason  string
}

// Summary describes a session for persistence.
type Summary struct {
	Mode      Mode
	Variant   Variant
	Level     string
	Stats     Stats
	Notes     int
	StartedAt time.Time
	Duration  time.Duration
	Reason    string
}

// Reasons a session ends on its own.
const (
	ReasonLevelComplete = "level complete"
	ReasonEmptyLevel    = "level has no notes"
)

// Session is one game from start to end. It is not safe for concurrent use;
// callers drive it from a single loop.
type Session struct {
	params  Params
	clock   *GameClock
	picker  Picker
	tracker *Tracker

	mode      Mode
	cursor    *authoredCursor
	levelName string
	live      []*Note
	nextID    uint64
	spawned   int
	speed     float64
	now       time.Duration

	gen     uint64
	running bool
	reason  string
}

// NewSession builds an idle session. picker is only used in procedural mode.
func NewSession(p Params, clock Clock, picker Picker) *Session {
	return &Session{
		params:  p,
		clock:   NewGameClock(clock),
		picker:  picker,
		tracker: NewTracker(p.ComboTimeout),
		speed:   p.BaseSpeed,
	}
}

func (s *Session) reset(mode Mode) {
	s.gen++
	s.clock.Reset()
	s.tracker.Reset()
	s.mode = mode
	s.cursor = nil
	s.levelName = ""
	s.live = nil
	s.nextID = 0
	s.spawned = 0
	s.speed = s.params.BaseSpeed
	s.now = 0
	s.running = true
	s.reason = ""
}

// StartProcedural begins an endless, accelerating session. The single variant
// gets its first note immediately; the multi variant waits for the spawn timer.
func (s *Session) StartProcedural() []Event {
	s.reset(ModeProcedural)
	if s.params.Variant == VariantSingle {
		return []Event{s.spawnRandom()}
	}
	return nil
}

// StartAuthored begins replaying chart. An empty chart ends the session at once
// with a warning.
func (s *Session) StartAuthored(chart Chart) []Event {
	s.reset(ModeAuthored)
	s.cursor = &authoredCursor{chart: chart}
	s.levelName = chart.Name
	if len(chart.Steps) == 0 {
		events := []Event{{Kind: EventWarning, Reason: ReasonEmptyLevel}}
		return append(events, s.End(ReasonEmptyLevel)...)
	}
	events := s.spawnDue()
	s.placeAuthored()
	return events
}

// End stops the session. Later calls are no-ops. Every outstanding generation
// handed out before End becomes stale.
func (s *Session) End(reason string) []Event {
	if !s.running {
		return nil
	}
	s.now = s.clock.Elapsed()
	s.clock.Resume()
	s.running = false
	s.gen++
	s.reason = reason
	s.live = nil
	return []Event{{Kind: EventEnded, At: s.now, Reason: reason}}
}

// Pause freezes game time. Ticks and attempts do nothing until Resume.
func (s *Session) Pause() {
	if s.running {
		s.clock.Pause()
	}
}

// Resume continues a paused session from the instant it was paused.
func (s *Session) Resume() {
	s.clock.Resume()
}

// Paused reports whether the running session is paused.
func (s *Session) Paused() bool {
	return s.running && s.clock.Paused()
}

// Tick advances the session to the current game time.
func (s *Session) Tick() []Event {
	if !s.running || s.clock.Paused() {
		return nil
	}
	s.now = s.clock.Elapsed()

	var events []Event
	switch s.mode {
	case ModeProcedural:
		s.speed += s.params.SpeedIncrement
		for _, n := range s.live {
			n.Z += s.speed
		}
	case ModeAuthored:
		events = append(events, s.spawnDue()...)
		s.placeAuthored()
	}

	events = append(events, s.sweep()...)
	s.prune()

	if s.mode == ModeProcedural && s.params.Variant == VariantSingle && len(s.live) == 0 {
		events = append(events, s.spawnRandom())
	}

	if s.tracker.Decay(s.now) {
		events = append(events, Event{Kind: EventComboDecayed, At: s.now})
	}

	if s.mode == ModeAuthored && s.cursor.done() && len(s.live) == 0 {
		events = append(events, s.End(ReasonLevelComplete)...)
	}
	return events
}

// FireSpawnTimer handles the procedural spawn timer of the multi variant. It
// returns the spawn events and the delay before the next firing; a paused
// session spawns nothing but keeps the timer. ok is false
// when gen no longer names the live session; the caller must drop the timer.
func (s *Session) FireSpawnTimer(gen uint64) (events []Event, next time.Duration, ok bool) {
	if !s.Alive(gen) || s.mode != ModeProcedural || s.params.Variant != VariantMulti {
		return nil, 0, false
	}
	if s.clock.Paused() {
		return nil, s.SpawnInterval(), true
	}
	s.now = s.clock.Elapsed()
	return []Event{s.spawnRandom()}, s.SpawnInterval(), true
}

// SpawnInterval returns the current procedural spawn period.
func (s *Session) SpawnInterval() time.Duration {
	return SpawnInterval(s.speed, s.params.BaseSpeed)
}

// Attempt judges one input. The returned event always has Kind EventJudged;
// attempts that land on nothing carry VerdictIgnored.
func (s *Session) Attempt(a HitAttempt) Event {
	ev := Event{Kind: EventJudged, Verdict: VerdictIgnored, At: a.At}
	if !s.running || s.clock.Paused() {
		return ev
	}
	n, v := judge(s.eligible(a), a, s.params)
	if n == nil {
		return ev
	}
	state := StateHit
	if v == VerdictMiss {
		state = StateMissed
	}
	if !n.resolve(state, v) {
		return ev
	}
	s.tracker.Apply(v, a.At)
	ev.Note = *n
	ev.Verdict = v
	return ev
}

// Press judges a key press at the current game time.
func (s *Session) Press(dir Direction, lane Lane) Event {
	return s.Attempt(HitAttempt{At: s.Now(), Direction: dir, Lane: lane})
}

// Swing judges a hand displacement at the current game time.
func (s *Session) Swing(lane Lane, motion Vec2) Event {
	return s.Attempt(HitAttempt{At: s.Now(), Lane: lane, Motion: &motion})
}

func (s *Session) eligible(a HitAttempt) []*Note {
	var out []*Note
	for _, n := range s.live {
		if !n.Pending() || !n.Lane.matches(a.Lane) {
			continue
		}
		if s.params.Variant == VariantSingle {
			return []*Note{n}
		}
		if s.inReach(n, a.At) {
			out = append(out, n)
		}
	}
	return out
}

// inReach reports whether a multi-variant attempt at may land on n. Authored
// notes are reachable from WindowStart-grace on; procedural notes only inside
// the tolerance band around the hit plane, bounds included.
func (s *Session) inReach(n *Note, at time.Duration) bool {
	if n.authored {
		return at >= n.WindowStart-s.params.Grace
	}
	return math.Abs(n.Z-s.params.HitZ) <= s.params.Tolerance
}

func (s *Session) spawnRandom() Event {
	lane := LaneNone
	allowAny := false
	if s.params.Variant == VariantMulti {
		lane = s.picker.Lane()
		allowAny = true
	}
	n := &Note{
		ID:          s.newID(),
		Lane:        lane,
		Direction:   s.picker.Direction(allowAny),
		SpawnTime:   s.now,
		WindowStart: s.now,
		WindowEnd:   s.now + s.travelTime(),
		Z:           s.params.SpawnZ,
	}
	s.live = append(s.live, n)
	s.spawned++
	return Event{Kind: EventSpawned, Note: *n, At: s.now}
}

// travelTime projects how long a procedural note needs to reach the hit plane
// at the current speed.
func (s *Session) travelTime() time.Duration {
	if s.speed <= 0 {
		return 0
	}
	ticks := (s.params.HitZ - s.params.SpawnZ) / s.speed
	return time.Duration(math.Round(ticks * float64(s.params.TickPeriod)))
}

func (s *Session) spawnDue() []Event {
	var events []Event
	for _, idx := range s.cursor.due(s.now) {
		step := s.cursor.chart.Steps[idx]
		start, end := s.cursor.chart.Window(idx)
		n := &Note{
			ID:          s.newID(),
			Lane:        step.Lane,
			Direction:   step.Direction,
			SpawnTime:   start,
			WindowStart: start,
			WindowEnd:   end,
			authored:    true,
		}
		s.live = append(s.live, n)
		s.spawned++
		events = append(events, Event{Kind: EventSpawned, Note: *n, At: s.now})
	}
	return events
}

// placeAuthored interpolates positions so a note meets the hit plane at its arrival.
func (s *Session) placeAuthored() {
	for _, n := range s.live {
		travel := n.WindowEnd - n.SpawnTime
		if travel <= 0 {
			n.Z = s.params.HitZ
			continue
		}
		frac := float64(s.now-n.SpawnTime) / float64(travel)
		n.Z = s.params.SpawnZ + (s.params.HitZ-s.params.SpawnZ)*frac
	}
}

func (s *Session) stale(n *Note) bool {
	if n.authored {
		return s.now > n.WindowEnd+s.params.Grace
	}
	return n.Z > s.params.PassZ
}

func (s *Session) sweep() []Event {
	var events []Event
	for _, n := range s.live {
		if !n.Pending() || !s.stale(n) {
			continue
		}
		if n.resolve(StateMissed, VerdictMiss) {
			s.tracker.Apply(VerdictMiss, s.now)
			events = append(events, Event{Kind: EventJudged, Note: *n, Verdict: VerdictMiss, At: s.now})
		}
	}
	return events
}

func (s *Session) prune() {
	kept := s.live[:0]
	for _, n := range s.live {
		if n.Pending() {
			kept = append(kept, n)
		}
	}
	for i := len(kept); i < len(s.live); i++ {
		s.live[i] = nil
	}
	s.live = kept
}

func (s *Session) newID() uint64 {
	s.nextID++
	return s.nextID
}

// Now returns the current game time.
func (s *Session) Now() time.Duration {
	if !s.running {
		return s.now
	}
	return s.clock.Elapsed()
}

// Elapsed returns the game time observed by the last Tick.
func (s *Session) Elapsed() time.Duration {
	return s.now
}

// Running reports whether the session has started and not ended.
func (s *Session) Running() bool {
	return s.running
}

// Generation names the current lifecycle. It changes on every Start and End.
func (s *Session) Generation() uint64 {
	return s.gen
}

// Alive reports whether gen still names a running session.
func (s *Session) Alive(gen uint64) bool {
	return s.running && gen == s.gen
}

// Mode returns the mode of the current or last session.
func (s *Session) Mode() Mode {
	return s.mode
}

// Params returns the tuning the session was built with.
func (s *Session) Params() Params {
	return s.params
}

// Speed returns the procedural travel speed in units per tick.
func (s *Session) Speed() float64 {
	return s.speed
}

// Stats returns score and combo counters.
func (s *Session) Stats() Stats {
	return s.tracker.Stats()
}

// Live returns copies of the notes still pending or resolved since the last Tick.
func (s *Session) Live() []Note {
	out := make([]Note, len(s.live))
	for i, n := range s.live {
		out[i] = *n
	}
	return out
}

// Progress returns how far an authored session is through its chart, in [0, 1].
func (s *Session) Progress() float64 {
	if s.cursor == nil {
		return 0
	}
	total := s.cursor.chart.Length() + s.params.Grace
	if total <= 0 {
		return 1
	}
	p := float64(s.now) / float64(total)
	return math.Max(0, math.Min(1, p))
}

// Summary describes the current or last session.
func (s *Session) Summary() Summary {
	return Summary{
		Mode:      s.mode,
		Variant:   s.params.Variant,
		Level:     s.levelName,
		Stats:     s.tracker.Stats(),
		Notes:     s.spawned,
		StartedAt: s.clock.Origin(),
		Duration:  s.now,
		Reason:    s.reason,
	}
}
