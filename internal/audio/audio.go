// Package audio decodes level tracks and plays them through the system speaker.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// ErrNoTrack is returned when Play is called without a decoded track.
var ErrNoTrack = errors.New("no track to play")

// bufferLatency is the speaker buffer length. Larger values trade latency for
// fewer underruns.
const bufferLatency = 100 * time.Millisecond

// Track is a decoded, seekable mp3 stream.
type Track struct {
	stream beep.StreamSeekCloser
	format beep.Format
}

// Decode decodes mp3 bytes. The data is held in memory for the life of the track.
func Decode(data []byte) (*Track, error) {
	if len(data) == 0 {
		return nil, ErrNoTrack
	}
	stream, format, err := mp3.Decode(memReader{bytes.NewReader(data)})
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}
	return &Track{stream: stream, format: format}, nil
}

// memReader keeps Seek visible to the decoder, which needs it for Len and Seek.
type memReader struct {
	*bytes.Reader
}

func (memReader) Close() error { return nil }

// Duration returns the playing time of the track.
func (t *Track) Duration() time.Duration {
	return t.format.SampleRate.D(t.stream.Len())
}

// SampleRate returns the native sample rate.
func (t *Track) SampleRate() beep.SampleRate {
	return t.format.SampleRate
}

// Close releases the decoder.
func (t *Track) Close() error {
	return t.stream.Close()
}

// Player owns the speaker. The speaker is initialised once, at the rate of the
// first track played; later tracks are resampled to it.
type Player struct {
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
	rate     beep.SampleRate
	ctrl     *beep.Ctrl
}

// NewPlayer returns an idle Player.
func NewPlayer() *Player {
	return &Player{}
}

func (p *Player) init(rate beep.SampleRate) error {
	p.initOnce.Do(func() {
		p.rate = rate
		if err := speaker.Init(rate, rate.N(bufferLatency)); err != nil {
			p.initErr = fmt.Errorf("failed to init speaker: %w", err)
		}
	})
	return p.initErr
}

// Play starts t from the beginning, replacing whatever was playing. It does not
// block; the returned channel closes when the track plays to its end and never
// closes if the track is stopped or replaced.
func (p *Player) Play(t *Track) (<-chan struct{}, error) {
	if t == nil {
		return nil, ErrNoTrack
	}
	if err := p.init(t.format.SampleRate); err != nil {
		return nil, err
	}
	if err := t.stream.Seek(0); err != nil {
		return nil, fmt.Errorf("failed to rewind track: %w", err)
	}

	var src beep.Streamer = t.stream
	if t.format.SampleRate != p.rate {
		src = beep.Resample(4, t.format.SampleRate, p.rate, src)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	speaker.Clear()
	done := make(chan struct{})
	p.ctrl = &beep.Ctrl{Streamer: src}
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		close(done)
	})))
	return done, nil
}

// SetPaused pauses or resumes the current track.
func (p *Player) SetPaused(paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

// Stop silences the speaker. It is safe to call before anything was played.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Clear()
	p.ctrl = nil
}
