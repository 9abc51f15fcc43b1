package rtc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	pion "github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
)

// MediaSource is the CLI's stand-in for a browser's camera and microphone:
// a set of local tracks plus a pump that feeds them samples.
type MediaSource interface {
	Tracks() []pion.TrackLocal

	// Play starts pumping samples into the tracks. Call once, after the
	// tracks have been added to a peer connection.
	Play()

	Stop()
}

const (
	oggPageDuration    = 20 * time.Millisecond
	opusSampleRate     = 48000
	opusChannels       = 2
	silenceOpusTimeout = 20 * time.Millisecond
)

// opusSilence is a single 20ms silent Opus frame.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

// FileSource plays a VP8 video (IVF container) and/or an Opus audio (Ogg
// container) file into local tracks, looping when it reaches the end so a
// call can outlast the clip. Either path may be empty, but not both.
type FileSource struct {
	videoPath string
	audioPath string

	videoTrack *pion.TrackLocalStaticSample
	audioTrack *pion.TrackLocalStaticSample

	stop chan struct{}
}

// NewFileSource opens and validates the media files up front, so a missing
// or unreadable file fails here, before any signaling has happened.
func NewFileSource(videoPath, audioPath string) (*FileSource, error) {
	if videoPath == "" && audioPath == "" {
		return nil, errors.New("no media files given")
	}

	s := &FileSource{
		videoPath: videoPath,
		audioPath: audioPath,
		stop:      make(chan struct{}),
	}

	if videoPath != "" {
		f, err := os.Open(videoPath)
		if err != nil {
			return nil, fmt.Errorf("open video: %w", err)
		}
		_, _, err = ivfreader.NewWith(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse IVF header: %w", err)
		}

		s.videoTrack, err = pion.NewTrackLocalStaticSample(
			pion.RTPCodecCapability{MimeType: pion.MimeTypeVP8}, "video", "fancall")
		if err != nil {
			return nil, fmt.Errorf("create video track: %w", err)
		}
	}

	if audioPath != "" {
		f, err := os.Open(audioPath)
		if err != nil {
			return nil, fmt.Errorf("open audio: %w", err)
		}
		_, _, err = oggreader.NewWith(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse Ogg header: %w", err)
		}

		s.audioTrack, err = pion.NewTrackLocalStaticSample(
			pion.RTPCodecCapability{MimeType: pion.MimeTypeOpus}, "audio", "fancall")
		if err != nil {
			return nil, fmt.Errorf("create audio track: %w", err)
		}
	}

	return s, nil
}

func (s *FileSource) Tracks() []pion.TrackLocal {
	var tracks []pion.TrackLocal
	if s.videoTrack != nil {
		tracks = append(tracks, s.videoTrack)
	}
	if s.audioTrack != nil {
		tracks = append(tracks, s.audioTrack)
	}
	return tracks
}

func (s *FileSource) Play() {
	if s.videoTrack != nil {
		go s.playVideo()
	}
	if s.audioTrack != nil {
		go s.playAudio()
	}
}

func (s *FileSource) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// playVideo paces IVF frames by the file's own timebase.
func (s *FileSource) playVideo() {
	for {
		file, err := os.Open(s.videoPath)
		if err != nil {
			slog.Error("reopen video file", "err", err)
			return
		}

		ivf, header, err := ivfreader.NewWith(file)
		if err != nil {
			file.Close()
			slog.Error("parse IVF header", "err", err)
			return
		}

		frameDuration := time.Millisecond * time.Duration(
			(float32(header.TimebaseNumerator)/float32(header.TimebaseDenominator))*1000)
		ticker := time.NewTicker(frameDuration)

		for {
			frame, _, err := ivf.ParseNextFrame()
			if errors.Is(err, io.EOF) {
				break // loop the clip
			}
			if err != nil {
				slog.Error("read IVF frame", "err", err)
				ticker.Stop()
				file.Close()
				return
			}

			if err := s.videoTrack.WriteSample(media.Sample{Data: frame, Duration: frameDuration}); err != nil {
				slog.Debug("write video sample", "err", err)
			}

			select {
			case <-s.stop:
				ticker.Stop()
				file.Close()
				return
			case <-ticker.C:
			}
		}

		ticker.Stop()
		file.Close()
	}
}

// playAudio paces Ogg pages by granule position, the way Opus expects.
func (s *FileSource) playAudio() {
	for {
		file, err := os.Open(s.audioPath)
		if err != nil {
			slog.Error("reopen audio file", "err", err)
			return
		}

		ogg, _, err := oggreader.NewWith(file)
		if err != nil {
			file.Close()
			slog.Error("parse Ogg header", "err", err)
			return
		}

		var lastGranule uint64
		ticker := time.NewTicker(oggPageDuration)

		for {
			pageData, pageHeader, err := ogg.ParseNextPage()
			if errors.Is(err, io.EOF) {
				break // loop the clip
			}
			if err != nil {
				slog.Error("read Ogg page", "err", err)
				ticker.Stop()
				file.Close()
				return
			}

			sampleCount := float64(pageHeader.GranulePosition - lastGranule)
			lastGranule = pageHeader.GranulePosition
			sampleDuration := time.Duration((sampleCount/opusSampleRate)*1000) * time.Millisecond

			if err := s.audioTrack.WriteSample(media.Sample{Data: pageData, Duration: sampleDuration}); err != nil {
				slog.Debug("write audio sample", "err", err)
			}

			select {
			case <-s.stop:
				ticker.Stop()
				file.Close()
				return
			case <-ticker.C:
			}
		}

		ticker.Stop()
		file.Close()
	}
}

// SilenceSource is the zero-setup media source: a single Opus track
// carrying silence. Useful for trying out a call without any media files,
// and for tests.
type SilenceSource struct {
	track *pion.TrackLocalStaticSample
	stop  chan struct{}
}

func NewSilenceSource() (*SilenceSource, error) {
	track, err := pion.NewTrackLocalStaticSample(
		pion.RTPCodecCapability{MimeType: pion.MimeTypeOpus}, "audio", "fancall")
	if err != nil {
		return nil, fmt.Errorf("create audio track: %w", err)
	}
	return &SilenceSource{track: track, stop: make(chan struct{})}, nil
}

func (s *SilenceSource) Tracks() []pion.TrackLocal {
	return []pion.TrackLocal{s.track}
}

func (s *SilenceSource) Play() {
	go func() {
		ticker := time.NewTicker(silenceOpusTimeout)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if err := s.track.WriteSample(media.Sample{Data: opusSilence, Duration: silenceOpusTimeout}); err != nil {
					slog.Debug("write silence sample", "err", err)
				}
			}
		}
	}()
}

func (s *SilenceSource) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}
