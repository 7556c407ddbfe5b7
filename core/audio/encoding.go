package audio

import "strings"

const (
	DefaultSampleRate = 44100
	DefaultFormat     = "pcm_f32le"
	DefaultContainer  = "wav"

	// CaptureSampleRate is the rate every microphone backend records at.
	// Recognizers that negotiate an encoding up front assume this rate.
	CaptureSampleRate = 48000
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{
		Container:  DefaultContainer,
		SampleRate: DefaultSampleRate,
		Format:     encodingFormat(DefaultFormat),
	}
}

// GetCaptureEncodingInfo describes the raw stream microphone backends hand to
// a recognizer.
func GetCaptureEncodingInfo() EncodingInfo {
	return EncodingInfo{
		SampleRate: CaptureSampleRate,
		Format:     EncodingLinear16,
	}
}

// EncodingInfo describes the wire encoding of an audio payload: the container
// it is wrapped in, the per-sample encoding, and the sample rate.
type EncodingInfo struct {
	Container  string
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// SilenceValue returns the byte that encodes silence in this format. For
// multi-byte formats a run of these bytes is a silent frame.
func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	}

	return 0
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	case EncodingPCMF32LE:
		return 4
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
	EncodingPCMF32LE encodingFormat = "pcm_f32le"
)

// allowedContentTypes is the closed set of audio media types accepted for
// playback. Anything else a synthesis service reports is rejected before the
// clip can reach the playback queue.
var allowedContentTypes = []string{
	"audio/wav",
	"audio/mpeg",
	"audio/mp3",
}

// IsSupportedContentType reports whether contentType names one of the
// recognized audio encodings. Media type parameters (e.g. "; charset=...")
// and casing are ignored.
func IsSupportedContentType(contentType string) bool {
	mediaType := contentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	for _, allowed := range allowedContentTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

// AllowedContentTypes returns the accepted audio media types.
func AllowedContentTypes() []string {
	out := make([]string, len(allowedContentTypes))
	copy(out, allowedContentTypes)
	return out
}
