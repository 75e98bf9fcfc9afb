// Package bundle reads and writes custom level bundles: a zip archive holding
// one level JSON file and one mp3 track.
package bundle

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/tuibeat/internal/level"
)

var (
	// ErrMissingLevel is returned for a bundle without a .json entry.
	ErrMissingLevel = errors.New("bundle must contain a .json level file")
	// ErrMissingTrack is returned for a bundle without a .mp3 entry.
	ErrMissingTrack = errors.New("bundle must contain a .mp3 file")
)

// maxEntrySize bounds how much of a single entry is read into memory.
const maxEntrySize = 64 << 20

// Bundle is a loaded level with its track.
type Bundle struct {
	Name      string
	Level     level.Spec
	Track     []byte
	LevelFile string
	TrackFile string
}

// Load opens the bundle at path. On any failure it returns a zero Bundle.
func Load(zipPath string) (Bundle, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	b, err := read(&reader.Reader)
	if err != nil {
		return Bundle{}, err
	}
	b.Name = level.Name(zipPath)
	return b, nil
}

// Read parses a bundle held in memory.
func Read(data []byte, name string) (Bundle, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to open bundle: %w", err)
	}
	b, err := read(zr)
	if err != nil {
		return Bundle{}, err
	}
	b.Name = name
	return b, nil
}

func read(zr *zip.Reader) (Bundle, error) {
	levelFile := selectEntry(zr.File, ".json")
	if levelFile == nil {
		return Bundle{}, ErrMissingLevel
	}
	trackFile := selectEntry(zr.File, ".mp3")
	if trackFile == nil {
		return Bundle{}, ErrMissingTrack
	}

	raw, err := readEntry(levelFile)
	if err != nil {
		return Bundle{}, err
	}
	spec, err := level.Parse(raw)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to parse %s: %w", levelFile.Name, err)
	}
	track, err := readEntry(trackFile)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Level:     spec,
		Track:     track,
		LevelFile: levelFile.Name,
		TrackFile: trackFile.Name,
	}, nil
}

// selectEntry returns the first regular file whose name ends in suffix.
func selectEntry(files []*zip.File, suffix string) *zip.File {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		base := path.Base(f.Name)
		if strings.HasPrefix(base, "._") || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if strings.HasSuffix(strings.ToLower(f.Name), suffix) {
			return f
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() {
		_ = rc.Close()
	}()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("%s is larger than %d bytes", f.Name, maxEntrySize)
	}
	return data, nil
}

// Pack writes a bundle at out from a level JSON file and an mp3 file. The level
// is validated first; out is replaced atomically.
func Pack(levelPath, trackPath, out string) error {
	spec, err := level.Load(levelPath)
	if err != nil {
		return err
	}
	levelData, err := spec.Marshal()
	if err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(trackPath), ".mp3") {
		return fmt.Errorf("%w: %s", ErrMissingTrack, filepath.Base(trackPath))
	}
	track, err := os.ReadFile(trackPath)
	if err != nil {
		return fmt.Errorf("failed to read track: %w", err)
	}

	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bundle dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "bundle-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp bundle: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	zw := zip.NewWriter(tmpFile)
	entries := []struct {
		name string
		data []byte
	}{
		{name: filepath.Base(levelPath), data: levelData},
		{name: filepath.Base(trackPath), data: track},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish bundle: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp bundle: %w", err)
	}
	if err := os.Rename(tmpPath, out); err != nil {
		return fmt.Errorf("failed to move bundle into place: %w", err)
	}
	return nil
}
