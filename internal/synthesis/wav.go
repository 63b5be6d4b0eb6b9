package synthesis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	DefaultSampleRate = 22050
	pcmBitDepth       = 16
	monoChannels      = 1
	wavFormatPCM      = 1
)

// EncodeWAV frames little-endian 16-bit mono PCM as a WAV file.
func EncodeWAV(w io.WriteSeeker, pcm []byte, sampleRate int) error {
	if len(pcm)%2 != 0 {
		return fmt.Errorf("pcm data has odd length %d", len(pcm))
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	enc := wav.NewEncoder(w, sampleRate, pcmBitDepth, monoChannels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: monoChannels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: pcmBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// wavBytes encodes pcm through a temporary file; the encoder seeks back to
// patch chunk sizes once all samples are written.
func wavBytes(pcm []byte, sampleRate int) ([]byte, error) {
	f, err := os.CreateTemp("", "speakdoc-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := EncodeWAV(f, pcm, sampleRate); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind temp wav: %w", err)
	}
	return io.ReadAll(f)
}

// DecodeWAV returns the little-endian PCM16 samples and sample rate of a
// mono 16-bit WAV file.
func DecodeWAV(data []byte) ([]byte, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid wav file")
	}
	if dec.BitDepth != pcmBitDepth || dec.NumChans != monoChannels {
		return nil, 0, fmt.Errorf("unsupported wav layout: %d-bit, %d channels", dec.BitDepth, dec.NumChans)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("read samples: %w", err)
	}

	pcm := make([]byte, 2*len(buf.Data))
	for i, v := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(v)))
	}
	return pcm, int(dec.SampleRate), nil
}

// joinAudio concatenates clips of one content type. MP3 frames are
// self-delimiting and are appended as-is; WAV clips are re-framed as one
// file.
func joinAudio(parts []*SynthesisResult) (*SynthesisResult, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("no audio to join")
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	contentType := parts[0].ContentType
	for _, p := range parts[1:] {
		if p.ContentType != contentType {
			return nil, fmt.Errorf("cannot join %s with %s", contentType, p.ContentType)
		}
	}

	if contentType != ContentTypeWAV {
		var out bytes.Buffer
		for _, p := range parts {
			out.Write(p.Audio)
		}
		return &SynthesisResult{Audio: out.Bytes(), ContentType: contentType}, nil
	}

	var pcm []byte
	sampleRate := 0
	for i, p := range parts {
		samples, rate, err := DecodeWAV(p.Audio)
		if err != nil {
			return nil, fmt.Errorf("decode part %d: %w", i, err)
		}
		if sampleRate == 0 {
			sampleRate = rate
		} else if rate != sampleRate {
			return nil, fmt.Errorf("part %d has sample rate %d, want %d", i, rate, sampleRate)
		}
		pcm = append(pcm, samples...)
	}

	joined, err := wavBytes(pcm, sampleRate)
	if err != nil {
		return nil, err
	}
	return &SynthesisResult{Audio: joined, ContentType: ContentTypeWAV}, nil
}
