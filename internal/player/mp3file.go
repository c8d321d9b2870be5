package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// mp3File streams a downloaded mp3 with sample-accurate seeking.
type mp3File struct {
	dec    *mp3.Decoder
	closer io.Closer
	buf    []byte
	err    error
}

// bytes per decoded frame: stereo, 16-bit
const mp3FrameSize = 4

func decodeMP3File(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if dec.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3File{dec: dec, closer: rc}, format, nil
}

func (m *mp3File) Stream(samples [][2]float64) (int, bool) {
	if m.err != nil {
		return 0, false
	}
	want := len(samples) * mp3FrameSize
	if cap(m.buf) < want {
		m.buf = make([]byte, want)
	}
	buf := m.buf[:want]

	read, err := io.ReadFull(m.dec, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		m.err = err
		return 0, false
	}
	n := read / mp3FrameSize
	for i := range n {
		off := i * mp3FrameSize
		l := int16(binary.LittleEndian.Uint16(buf[off:]))   //nolint:gosec // pcm sample
		r := int16(binary.LittleEndian.Uint16(buf[off+2:])) //nolint:gosec // pcm sample
		samples[i][0] = float64(l) / 32768
		samples[i][1] = float64(r) / 32768
	}
	return n, n > 0
}

func (m *mp3File) Err() error { return m.err }

func (m *mp3File) Len() int {
	return max(int(m.dec.SampleCount()), 0)
}

func (m *mp3File) Position() int {
	return int(m.dec.SamplePosition())
}

func (m *mp3File) Seek(p int) error {
	p = max(0, min(p, m.Len()))
	if err := m.dec.SeekToSample(int64(p)); err != nil {
		return err
	}
	m.err = nil
	return nil
}

func (m *mp3File) Close() error {
	return m.closer.Close()
}
