package player

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/llehouerou/rpconsole/internal/playback"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
)

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

// opened is a decoded source ready to be played.
type opened struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	size     int64
	seekable bool
	tempFile string
	tags     embeddedTags
}

// load tries each source in order and plays the first one that decodes.
func (p *Player) load(params playback.Params) {
	var lastErr error
	for _, src := range params.Sources {
		if p.ctx.Err() != nil {
			return
		}

		o, err := p.open(src, params.Live)
		if err != nil {
			lastErr = err
			p.log.Warn().Err(err).Str("url", src.URL).Msg("audio source failed")
			continue
		}

		if err := p.start(src, o, params); err != nil {
			o.close()
			lastErr = err
			continue
		}
		return
	}

	if lastErr == nil {
		lastErr = ErrNoSource
	}
	p.setState(playback.StateStopped)
	p.events.PublishError(playback.ErrorEvent{Operation: "load", Err: lastErr})
}

// open fetches and decodes a source. Live sources are decoded straight from
// the response body; on-demand sources are downloaded first so they can seek.
func (p *Player) open(src playback.Source, live bool) (*opened, error) {
	req, err := http.NewRequestWithContext(p.ctx, http.MethodGet, src.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	ext := formatExt(src.URL, resp.Header.Get("Content-Type"))

	if live {
		s, f, err := decode(ext, resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decode stream: %w", err)
		}
		return &opened{streamer: s, format: f}, nil
	}

	defer resp.Body.Close()
	file, size, err := download(p.tempDir, ext, resp.Body)
	if err != nil {
		return nil, err
	}
	s, f, err := decodeFile(ext, file)
	if err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("decode file: %w", err)
	}
	tags, err := readTags(file.Name())
	if err != nil {
		p.log.Debug().Err(err).Str("url", src.URL).Msg("no readable tags")
	}
	return &opened{streamer: s, format: f, size: size, seekable: true, tempFile: file.Name(), tags: tags}, nil
}

// start wires the decoded stream into the speaker and announces it.
func (p *Player) start(src playback.Source, o *opened, params playback.Params) error {
	speakerOnce.Do(func() {
		speakerRate = o.format.SampleRate
		speakerErr = speaker.Init(speakerRate, speakerRate.N(bufferTime(params.BufferTime)))
	})
	if speakerErr != nil {
		return fmt.Errorf("init speaker: %w", speakerErr)
	}

	var s beep.Streamer = o.streamer
	if o.format.SampleRate != speakerRate {
		s = beep.Resample(4, o.format.SampleRate, speakerRate, o.streamer)
	}
	ctrl := &beep.Ctrl{Streamer: s}
	vol := &effects.Volume{Streamer: ctrl, Base: 2}
	applyVolume(vol, params.VolumeLevel())

	var duration time.Duration
	if o.seekable {
		duration = o.format.SampleRate.D(o.streamer.Len())
	}

	p.mu.Lock()
	if p.ctx.Err() != nil {
		p.mu.Unlock()
		return p.ctx.Err()
	}
	p.streamer = o.streamer
	p.format = o.format
	p.ctrl = ctrl
	p.volume = vol
	p.duration = duration
	p.seekable = o.seekable
	p.tempFile = o.tempFile
	p.mu.Unlock()

	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		go p.setState(playback.StateStopped)
	})))
	p.setState(playback.StatePlaying)

	p.log.Info().
		Str("url", src.URL).
		Dur("duration", duration).
		Bool("seekable", o.seekable).
		Msg("audio loaded")
	p.events.PublishLoaded(playback.Loaded{
		Source:   src,
		Duration: duration,
		Size:     o.size,
		Title:    o.tags.Title,
		Artist:   o.tags.Artist,
	})
	return nil
}

func (o *opened) close() {
	o.streamer.Close()
	if o.tempFile != "" {
		os.Remove(o.tempFile)
	}
}

// download copies body into a temp file and rewinds it.
func download(dir, ext string, body io.Reader) (*os.File, int64, error) {
	f, err := os.CreateTemp(dir, "rpconsole-*"+ext)
	if err != nil {
		return nil, 0, fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(f, body)
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, 0, fmt.Errorf("download: %w", err)
	}
	return f, n, nil
}

func decode(ext string, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case extFLAC:
		if rs, ok := rc.(io.ReadSeeker); ok {
			if err := skipID3v2(rs); err != nil {
				return nil, beep.Format{}, err
			}
		}
		return flac.Decode(rc)
	case extMP3:
		return mp3.Decode(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", ext)
	}
}

// decodeFile decodes a downloaded on-demand file. Mp3 files get the
// sample-indexed decoder so seeks land exactly.
func decodeFile(ext string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	if ext == extMP3 {
		return decodeMP3File(f)
	}
	return decode(ext, f)
}

// formatExt picks a decoder from the URL path, falling back to the
// response content type and finally to mp3, the usual radio format.
func formatExt(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case extMP3:
			return extMP3
		case extFLAC:
			return extFLAC
		}
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "audio/flac", "audio/x-flac":
			return extFLAC
		case "audio/mpeg", "audio/mp3":
			return extMP3
		}
	}
	return extMP3
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
// Some FLAC files have ID3v2 tags prepended, which the FLAC decoder doesn't handle.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Syncsafe integer: 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
