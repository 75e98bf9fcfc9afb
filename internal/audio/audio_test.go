package audio

import (
	"errors"
	"testing"
	"time"
)

func TestDecodeRejectsEmptyAndGarbage(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrNoTrack) {
		t.Fatalf("expected ErrNoTrack, got %v", err)
	}
	if _, err := Decode([]byte("definitely not an mp3 stream")); err == nil {
		t.Fatalf("expected decode error for garbage input")
	}
}

func TestPlayerWithoutTrack(t *testing.T) {
	p := NewPlayer()
	if _, err := p.Play(nil); !errors.Is(err, ErrNoTrack) {
		t.Fatalf("expected ErrNoTrack, got %v", err)
	}
	p.SetPaused(true)
	p.Stop()
}

func TestEmbeddedCuesDecode(t *testing.T) {
	all, err := loadCues()
	if err != nil {
		t.Fatalf("load cues: %v", err)
	}
	for _, c := range []Cue{CueHit, CueMiss} {
		buf, ok := all[c]
		if !ok {
			t.Fatalf("missing %s cue", c)
		}
		if buf.Len() == 0 {
			t.Fatalf("%s cue is empty", c)
		}
		if got := buf.Format().SampleRate.D(buf.Len()); got > 200*time.Millisecond {
			t.Fatalf("%s cue too long: %v", c, got)
		}
	}
	if cueGain[CueMiss] != 0.7 || cueGain[CueHit] != 1 {
		t.Fatalf("unexpected cue gains: %v", cueGain)
	}
}

func TestPlayUnknownCue(t *testing.T) {
	if err := NewPlayer().PlayCue(Cue(9)); err == nil {
		t.Fatalf("expected error for unknown cue")
	}
}
