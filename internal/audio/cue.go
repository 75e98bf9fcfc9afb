package audio

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// Cue is a short sound effect played over the track.
type Cue uint8

const (
	CueHit Cue = iota
	CueMiss
)

func (c Cue) String() string {
	switch c {
	case CueHit:
		return "hit"
	case CueMiss:
		return "miss"
	default:
		return "unknown"
	}
}

var (
	//go:embed cues/hit.wav
	hitWAV []byte
	//go:embed cues/miss.wav
	missWAV []byte
)

// cueGain scales each cue; the miss cue plays quieter than the hit.
var cueGain = map[Cue]float64{
	CueHit:  1,
	CueMiss: 0.7,
}

var (
	cuesOnce sync.Once
	cues     map[Cue]*beep.Buffer
	cuesErr  error
)

func loadCues() (map[Cue]*beep.Buffer, error) {
	cuesOnce.Do(func() {
		out := map[Cue]*beep.Buffer{}
		for c, data := range map[Cue][]byte{CueHit: hitWAV, CueMiss: missWAV} {
			stream, format, err := wav.Decode(bytes.NewReader(data))
			if err != nil {
				cuesErr = fmt.Errorf("failed to decode %s cue: %w", c, err)
				return
			}
			buf := beep.NewBuffer(format)
			buf.Append(stream)
			if cerr := stream.Close(); cerr != nil {
				// Best-effort decoder close.
				_ = cerr
			}
			out[c] = buf
		}
		cues = out
	})
	return cues, cuesErr
}

// PlayCue mixes c into whatever is playing. It does not block.
func (p *Player) PlayCue(c Cue) error {
	all, err := loadCues()
	if err != nil {
		return err
	}
	buf, ok := all[c]
	if !ok {
		return fmt.Errorf("unknown cue %d", c)
	}
	rate := buf.Format().SampleRate
	if err := p.init(rate); err != nil {
		return err
	}

	var s beep.Streamer = buf.Streamer(0, buf.Len())
	if rate != p.rate {
		s = beep.Resample(3, rate, p.rate, s)
	}
	if gain := cueGain[c]; gain != 1 {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
	}
	speaker.Play(s)
	return nil
}
