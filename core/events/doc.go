// Package events defines the typed event contract consumed by the voice
// interaction dispatch loop.
//
// Event kinds are grouped by producer-facing namespaces:
//
//   - user_input.*
//   - dialogue.*
//   - synthesis.*
//   - playback.*
//
// user_input events
//
//   - TranscriptReceived (user_input.transcript_final): one finalized
//     utterance emitted by the capture adapter, verbatim.
//
// dialogue events
//
//   - ReplyReady (dialogue.reply): the completion service produced reply text
//     for a previously submitted transcript.
//   - ReplyFailed (dialogue.failed): the completion request ended in an error
//     or a timeout.
//
// synthesis events
//
//   - ClipReady (synthesis.clip_ready): a synthesis request finished and its
//     audio has been wrapped as a clip. Carries the generation the request was
//     issued under so stale results can be dropped after a flush.
//   - SynthesisFailed (synthesis.failed): a synthesis request ended in an
//     error or a timeout. Carries the issuing generation.
//
// playback events
//
//   - ClipFinished (playback.clip_finished): the in-flight clip played to
//     completion.
//   - ClipFailed (playback.clip_failed): the playback device rejected or
//     aborted the in-flight clip.
package events
