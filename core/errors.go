package orchestration

import "errors"

var (
	// ErrInvalidInput marks an empty or malformed request rejected locally,
	// before any network call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapabilityUnavailable marks a missing platform capability, e.g. no
	// speech recognition client is configured.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrUpstreamFailure marks a completion or synthesis service error or
	// timeout.
	ErrUpstreamFailure = errors.New("upstream failure")

	// ErrUnsupportedAudioFormat marks a synthesis result whose reported
	// content type is not in the playback allow-list.
	ErrUnsupportedAudioFormat = errors.New("unsupported audio format")

	// ErrPlaybackError marks a device-level playback failure.
	ErrPlaybackError = errors.New("playback error")

	// ErrEmptyReply marks a completion that returned no usable content.
	ErrEmptyReply = errors.New("empty reply")
)

// Recovered error turns surface these fixed messages; diagnostic detail stays
// in spans and logs, never in the transcript.
const (
	noticeReplyFailed     = "Sorry, I ran into a problem answering that. Please try again in a moment."
	noticeEmptyReply      = "Sorry, I did not come up with an answer to that."
	noticeSynthesisFailed = "Sorry, I could not generate audio for my reply."
	noticeBadAudioFormat  = "Sorry, my reply came back in an audio format I cannot play."
)
