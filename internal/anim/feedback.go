package anim

import "time"

// Fade timing for judgment feedback labels.
const (
	FeedbackDelay    = 300 * time.Millisecond
	FeedbackDuration = 500 * time.Millisecond
)

// FeedbackTween fades a label from opaque to invisible.
func FeedbackTween() Tween {
	return Tween{From: 1, To: 0, Delay: FeedbackDelay, Duration: FeedbackDuration, Ease: QuadOut}
}

// Feedback shows one label at a time. Showing a new label supersedes the
// previous one.
type Feedback struct {
	anim   *Animator
	handle Handle
	label  string
	kind   int
}

// NewFeedback returns a Feedback driven by a.
func NewFeedback(a *Animator) *Feedback {
	return &Feedback{anim: a}
}

// Show displays label from now. kind is an opaque style tag for the renderer.
func (f *Feedback) Show(label string, kind int, now time.Time) {
	f.anim.Cancel(f.handle)
	f.label = label
	f.kind = kind
	var h Handle
	h = f.anim.Start(FeedbackTween(), now, func() {
		if f.handle == h {
			f.label = ""
		}
	})
	f.handle = h
}

// Current returns the visible label, its style tag and opacity. An empty label
// means nothing is shown.
func (f *Feedback) Current(now time.Time) (label string, kind int, opacity float64) {
	v, ok := f.anim.Value(f.handle, now)
	if !ok || f.label == "" {
		return "", 0, 0
	}
	return f.label, f.kind, v
}
