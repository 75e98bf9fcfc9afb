package level

import (
	"fmt"

	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

// Add appends a note pointing up and returns its index.
func (s *Spec) Add() int {
	s.Notes = append(s.Notes, NoteSpec{Direction: rhythm.DirUp})
	return len(s.Notes) - 1
}

// Insert places a note at index i, shifting later notes.
func (s *Spec) Insert(i int, n NoteSpec) error {
	if i < 0 || i > len(s.Notes) {
		return fmt.Errorf("note index %d out of range", i)
	}
	s.Notes = append(s.Notes, NoteSpec{})
	copy(s.Notes[i+1:], s.Notes[i:])
	s.Notes[i] = n
	return nil
}

// Remove deletes the note at index i.
func (s *Spec) Remove(i int) error {
	if i < 0 || i >= len(s.Notes) {
		return fmt.Errorf("note index %d out of range", i)
	}
	s.Notes = append(s.Notes[:i], s.Notes[i+1:]...)
	return nil
}

// SetDirection changes the direction of note i.
func (s *Spec) SetDirection(i int, d rhythm.Direction) error {
	if i < 0 || i >= len(s.Notes) {
		return fmt.Errorf("note index %d out of range", i)
	}
	s.Notes[i].Direction = d
	return nil
}

// CycleDirection advances note i through up, down, left, right, any.
func (s *Spec) CycleDirection(i int) error {
	if i < 0 || i >= len(s.Notes) {
		return fmt.Errorf("note index %d out of range", i)
	}
	s.Notes[i].Direction = (s.Notes[i].Direction + 1) % (rhythm.DirAny + 1)
	return nil
}

// CycleLane advances note i through none, a, b.
func (s *Spec) CycleLane(i int) error {
	if i < 0 || i >= len(s.Notes) {
		return fmt.Errorf("note index %d out of range", i)
	}
	s.Notes[i].Lane = (s.Notes[i].Lane + 1) % (rhythm.LaneB + 1)
	return nil
}

// Duration returns the arrival time of the last note.
func (s Spec) Duration() float64 {
	if len(s.Notes) == 0 {
		return 0
	}
	return float64(len(s.Notes)-1) * s.GapBetweenNotes
}
