package rtc

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
	pion "github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfwriter"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
)

// MediaSink consumes the remote side's tracks. It always counts received
// bytes, and when created with a directory it also records VP8 video to an
// IVF file and Opus audio to an Ogg file in it.
type MediaSink struct {
	dir string

	mu      sync.Mutex
	closed  bool
	closers []io.Closer

	videoBytes atomic.Int64
	audioBytes atomic.Int64
}

// NewMediaSink returns a sink that records into dir, or only counts bytes
// when dir is empty.
func NewMediaSink(dir string) *MediaSink {
	return &MediaSink{dir: dir}
}

// ConsumeTrack reads RTP from track until it ends. Meant to run in its own
// goroutine, one per remote track.
func (s *MediaSink) ConsumeTrack(track *pion.TrackRemote) {
	counter := &s.audioBytes
	if track.Kind() == pion.RTPCodecTypeVideo {
		counter = &s.videoBytes
	}

	writer := s.openWriter(track)

	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("read remote track", "kind", track.Kind().String(), "err", err)
			}
			return
		}

		counter.Add(int64(len(pkt.Payload)))

		if writer != nil {
			if err := writer.WriteRTP(pkt); err != nil {
				slog.Warn("write recording", "kind", track.Kind().String(), "err", err)
				writer = nil
			}
		}
	}
}

// rtpWriter is the shared surface of ivfwriter and oggwriter.
type rtpWriter interface {
	WriteRTP(*rtp.Packet) error
	Close() error
}

// openWriter creates the recording file for track, or returns nil when the
// sink is count-only or the codec is not one we can contain.
func (s *MediaSink) openWriter(track *pion.TrackRemote) rtpWriter {
	if s.dir == "" {
		return nil
	}

	mime := strings.ToLower(track.Codec().MimeType)

	var (
		writer rtpWriter
		err    error
	)
	switch {
	case mime == strings.ToLower(pion.MimeTypeVP8):
		writer, err = ivfwriter.New(filepath.Join(s.dir, "remote.ivf"))
	case mime == strings.ToLower(pion.MimeTypeOpus):
		writer, err = oggwriter.New(filepath.Join(s.dir, "remote.ogg"), opusSampleRate, opusChannels)
	default:
		slog.Warn("not recording unsupported codec", "mime", track.Codec().MimeType)
		return nil
	}
	if err != nil {
		slog.Warn("open recording file", "dir", s.dir, "err", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		writer.Close()
		return nil
	}
	s.closers = append(s.closers, writer)
	return writer
}

// SinkStats is what the sink has received so far, in payload bytes.
type SinkStats struct {
	VideoBytes int64
	AudioBytes int64
}

func (s *MediaSink) Stats() SinkStats {
	return SinkStats{
		VideoBytes: s.videoBytes.Load(),
		AudioBytes: s.audioBytes.Load(),
	}
}

// Close flushes and closes any recording files. Safe to call more than once.
func (s *MediaSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			slog.Warn("close recording file", "err", err)
		}
	}
	s.closers = nil
}
