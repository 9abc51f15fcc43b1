package rtc

import (
	"os"
	"path/filepath"
	"testing"

	pion "github.com/pion/webrtc/v4"
)

func TestNewFileSource_RequiresAtLeastOneFile(t *testing.T) {
	if _, err := NewFileSource("", ""); err == nil {
		t.Error("expected an error with no files")
	}
}

func TestNewFileSource_MissingFileFailsEarly(t *testing.T) {
	if _, err := NewFileSource("/no/such/file.ivf", ""); err == nil {
		t.Error("expected an error for a missing video file")
	}
	if _, err := NewFileSource("", "/no/such/file.ogg"); err == nil {
		t.Error("expected an error for a missing audio file")
	}
}

func TestNewFileSource_RejectsGarbageHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.ivf")
	if err := os.WriteFile(path, []byte("not an ivf file"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileSource(path, ""); err == nil {
		t.Error("expected an error for a non-IVF file")
	}
}

func TestSilenceSource_HasOneAudioTrack(t *testing.T) {
	src, err := NewSilenceSource()
	if err != nil {
		t.Fatalf("new silence source: %v", err)
	}
	defer src.Stop()

	tracks := src.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	if tracks[0].Kind() != pion.RTPCodecTypeAudio {
		t.Errorf("expected an audio track, got %s", tracks[0].Kind())
	}
}

func TestSilenceSource_StopIsIdempotent(t *testing.T) {
	src, err := NewSilenceSource()
	if err != nil {
		t.Fatal(err)
	}
	src.Play()
	src.Stop()
	src.Stop()
}
