package render

import (
	"errors"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavBuffer is an in-memory io.WriteSeeker for the WAV encoder, which
// seeks back over the header to patch chunk sizes on Close.
type wavBuffer struct {
	buf []byte
	pos int
}

func (w *wavBuffer) Write(p []byte) (int, error) {
	if end := w.pos + len(p); end > len(w.buf) {
		grown := make([]byte, end)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[w.pos:], p)
	w.pos += len(p)
	return len(p), nil
}

func (w *wavBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(w.pos) + offset
	case io.SeekEnd:
		next = int64(len(w.buf)) + offset
	default:
		return 0, errors.New("render: bad seek whence")
	}
	if next < 0 {
		return 0, errors.New("render: seek before start")
	}
	w.pos = int(next)
	return next, nil
}

// encodeWAV interleaves the two channels and encodes them as 16-bit PCM.
func encodeWAV(left, right []float64, sampleRate int) ([]byte, error) {
	data := make([]int, 0, len(left)*2)
	for i := range left {
		data = append(data, pcm16(left[i]), pcm16(right[i]))
	}
	out := &wavBuffer{}
	enc := wav.NewEncoder(out, sampleRate, 16, 2, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.buf, nil
}

func pcm16(v float64) int {
	s := int(math.Round(v * 32767))
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return s
}
