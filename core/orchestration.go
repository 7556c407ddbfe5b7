package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinvok/voxchat/core/audio"
	"github.com/tinvok/voxchat/core/events"
)

// State is the orchestrator's externally visible mode. It is derived from the
// pipeline after every dispatched event, never set directly by callers.
type State string

const (
	// StateIdle means capture is closed and nothing is pending.
	StateIdle State = "idle"
	// StateListening means capture is armed and awaiting an utterance.
	StateListening State = "listening"
	// StateProcessing means a chat request is in flight.
	StateProcessing State = "processing"
	// StateSpeaking means at least one clip is queued or playing.
	StateSpeaking State = "speaking"
)

const defaultRequestTimeout = 15 * time.Second

var defaultInterruptKeywords = []string{"stop", "cancel"}

// Orchestrator drives one spoken conversation: finalized utterances go to the
// completion service, replies are synthesized to audio, and clips play back
// strictly in order while the microphone stays closed. Saying an interrupt
// keyword cuts playback and reopens the microphone immediately.
//
// All coordination happens on a single dispatch loop; provider calls run in
// their own goroutines and report back as events. External callbacks run
// inline on the loop and must not block.
type Orchestrator struct {
	loop *eventLoop

	capture   *speechCapture
	dialogue  *dialoguePipeline
	synthesis *synthesisQueue
	sequencer *playbackSequencer
	log       *conversationLog

	interruptKeywords []string
	requestTimeout    time.Duration

	// captureRequested is the user-facing microphone switch. Dispatch-owned
	// after Run.
	captureRequested bool
	captureAvailable atomic.Bool

	// processing counts chat requests in flight. Dispatch-owned.
	processing int

	stateMu sync.RWMutex
	state   State

	runOpts RunOptions

	closeOnce sync.Once
	closeErr  error
}

// NewOrchestrator creates an orchestrator with the given providers. Missing
// providers degrade gracefully: the affected stage reports a failure event
// instead of panicking, so a partially configured orchestrator is still
// usable for tests and text-only operation.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		loop:              newEventLoop(),
		log:               newConversationLog(),
		interruptKeywords: append([]string(nil), defaultInterruptKeywords...),
		requestTimeout:    defaultRequestTimeout,
		captureRequested:  true,
		state:             StateIdle,
	}

	emit := func(event events.Event) { o.loop.Post(event) }
	o.capture = newSpeechCapture(nil, emit)
	o.dialogue = newDialoguePipeline(nil, emit)
	o.synthesis = newSynthesisQueue(nil, emit)
	o.sequencer = newPlaybackSequencer(nil, emit)

	for _, opt := range opts {
		opt(o)
	}

	o.dialogue.timeout = o.requestTimeout
	o.synthesis.timeout = o.requestTimeout

	return o
}

// Run starts the dispatch loop and the continuous recognition session, then
// returns. The conversation keeps running until ctx is canceled or Close is
// called.
//
// When no recognition client is configured Run returns
// ErrCapabilityUnavailable but leaves the loop running: SubmitTranscript
// still drives the full pipeline in that degraded mode.
func (o *Orchestrator) Run(ctx context.Context, opts ...RunOption) error {
	if o == nil {
		return errors.New("orchestrator is nil")
	}

	for _, opt := range opts {
		opt(&o.runOpts)
	}

	if !o.loop.Start(ctx, o.dispatch) {
		return errors.New("orchestrator already started or closed")
	}

	go func() {
		<-ctx.Done()
		o.Close()
	}()

	if err := o.capture.Start(ctx); err != nil {
		if errors.Is(err, ErrCapabilityUnavailable) {
			logger.Warn("speech capture unavailable, continuing without microphone", "error", err)
			return err
		}

		o.Close()
		return err
	}

	o.captureAvailable.Store(true)
	o.capture.Arm()
	o.setState(StateListening)

	return nil
}

// Close stops dispatch, discards pending playback and in-flight synthesis,
// and shuts down the recognition session. Safe to call more than once.
func (o *Orchestrator) Close() error {
	if o == nil {
		return nil
	}

	o.closeOnce.Do(func() {
		o.loop.Stop()
		o.loop.AwaitDone()

		// The loop is down, so the sequencer can be drained without racing
		// dispatch.
		o.synthesis.Flush()
		o.sequencer.Flush()

		o.closeErr = o.capture.Close()
		o.setState(StateIdle)
	})

	return o.closeErr
}

// State returns the current orchestrator mode.
func (o *Orchestrator) State() State {
	if o == nil {
		return StateIdle
	}

	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

// Conversation returns a point-in-time copy of the conversation log.
func (o *Orchestrator) Conversation() []Turn {
	if o == nil {
		return nil
	}

	return o.log.Snapshot()
}

// IsCaptureArmed reports whether the microphone is currently open.
func (o *Orchestrator) IsCaptureArmed() bool {
	return o != nil && o.capture.IsArmed()
}

// SubmitTranscript injects an utterance as if the capture adapter had
// recognized it. It follows the same path as spoken input, including
// interrupt keyword handling.
func (o *Orchestrator) SubmitTranscript(transcript string) error {
	if o == nil {
		return errors.New("orchestrator is nil")
	}

	transcript = strings.ToLower(strings.TrimSpace(transcript))
	if transcript == "" {
		return fmt.Errorf("%w: empty transcript", ErrInvalidInput)
	}

	if !o.loop.Post(events.NewTranscriptReceived(transcript)) {
		return errors.New("orchestrator is not running")
	}

	return nil
}

// ReplayLast queues the most recent assistant reply for synthesis and
// playback again. A conversation with no assistant turns yet makes this a
// no-op.
func (o *Orchestrator) ReplayLast() error {
	if o == nil {
		return errors.New("orchestrator is nil")
	}

	if !o.loop.Post(events.NewReplayRequested()) {
		return errors.New("orchestrator is not running")
	}

	return nil
}

// StartCapture reopens the user-facing microphone switch. The microphone
// still stays closed while playback is pending.
func (o *Orchestrator) StartCapture() error {
	return o.toggleCapture(true)
}

// StopCapture closes the user-facing microphone switch until StartCapture.
func (o *Orchestrator) StopCapture() error {
	return o.toggleCapture(false)
}

func (o *Orchestrator) toggleCapture(requested bool) error {
	if o == nil {
		return errors.New("orchestrator is nil")
	}

	if !o.loop.Post(events.NewCaptureToggled(requested)) {
		return errors.New("orchestrator is not running")
	}

	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, event events.Event) {
	ctx, span := tracer.Start(ctx, "dispatch "+string(event.Kind()))
	defer span.End()

	switch event := event.(type) {
	case events.TranscriptReceived:
		o.handleTranscript(ctx, event)
	case events.ReplyReady:
		o.handleReplyReady(ctx, event)
	case events.ReplyFailed:
		o.handleReplyFailed(event)
	case events.ClipReady:
		o.handleClipReady(event)
	case events.SynthesisFailed:
		o.handleSynthesisFailed(event)
	case events.ClipFinished:
		o.handleClipTerminal(event.ClipID, nil)
	case events.ClipFailed:
		o.handleClipTerminal(event.ClipID, event.Err)
	case events.ReplayRequested:
		o.handleReplay(ctx)
	case events.CaptureToggled:
		o.captureRequested = event.Requested
	default:
		logger.Warn("dropping event of unknown kind", "kind", event.Kind())
	}

	o.reconcile()
}

func (o *Orchestrator) handleTranscript(ctx context.Context, event events.TranscriptReceived) {
	if o.runOpts.onTranscript != nil {
		o.runOpts.onTranscript(event.Transcript)
	}

	if strings.TrimSpace(event.Transcript) == "" {
		return
	}

	if o.matchesInterrupt(event.Transcript) {
		// Interrupt keywords are consumed silently: no log entry, no chat
		// request. Pending playback and in-flight synthesis are discarded so
		// the microphone reopens in the same dispatch.
		o.sequencer.Flush()
		o.synthesis.Flush()
		if o.runOpts.onBargeIn != nil {
			o.runOpts.onBargeIn()
		}
		return
	}

	o.appendTurn(TurnRoleUser, event.Transcript)
	o.processing++
	if err := o.dialogue.Request(ctx, event.Transcript); err != nil {
		o.processing--
		o.reportError(err)
	}
}

func (o *Orchestrator) handleReplyReady(ctx context.Context, event events.ReplyReady) {
	if o.processing > 0 {
		o.processing--
	}

	if event.Reply == "" {
		o.recoverWithNotice(noticeEmptyReply, ErrEmptyReply)
		return
	}

	o.appendTurn(TurnRoleAssistant, event.Reply)
	o.synthesis.Enqueue(ctx, event.Reply)
}

func (o *Orchestrator) handleReplyFailed(event events.ReplyFailed) {
	if o.processing > 0 {
		o.processing--
	}

	o.recoverWithNotice(noticeReplyFailed, event.Err)
}

func (o *Orchestrator) handleClipReady(event events.ClipReady) {
	if event.Generation != o.synthesis.Generation() {
		logger.Debug("dropping synthesis result from flushed generation",
			"generation", event.Generation)
		return
	}

	if !audio.IsSupportedContentType(event.ContentType) {
		o.recoverWithNotice(noticeBadAudioFormat,
			fmt.Errorf("%w: %q", ErrUnsupportedAudioFormat, event.ContentType))
		return
	}

	before := o.sequencer.InFlight()
	o.sequencer.Enqueue(newClip(event.Audio, event.ContentType))
	o.notifyPlaybackStarted(before)
}

func (o *Orchestrator) handleSynthesisFailed(event events.SynthesisFailed) {
	if event.Generation != o.synthesis.Generation() {
		return
	}

	o.recoverWithNotice(noticeSynthesisFailed, event.Err)
}

func (o *Orchestrator) handleClipTerminal(clipID string, playErr error) {
	before := o.sequencer.InFlight()
	if !o.sequencer.HandleTerminal(clipID, playErr) {
		return
	}

	if playErr != nil {
		// Skip-and-continue policy: a failed clip surfaces through the error
		// callback only, the remaining clips still play.
		o.reportError(playErr)
	}

	if o.sequencer.IsEmpty() {
		if o.runOpts.onPlaybackEnded != nil {
			o.runOpts.onPlaybackEnded()
		}
		return
	}

	o.notifyPlaybackStarted(before)
}

func (o *Orchestrator) handleReplay(ctx context.Context) {
	if !o.sequencer.IsEmpty() {
		// Speech is already queued or playing; replaying now would stack a
		// duplicate of it behind itself.
		return
	}

	last := o.log.LastAssistantContent()
	if last == "" {
		return
	}

	o.synthesis.Enqueue(ctx, last)
}

// reconcile derives the mic gate and the visible state from the pipeline.
// The microphone is open exactly when the user wants it open, capture is
// available, and no playback is queued or in flight.
func (o *Orchestrator) reconcile() {
	if o.captureRequested && o.captureAvailable.Load() && o.sequencer.IsEmpty() {
		o.capture.Arm()
	} else {
		o.capture.Disarm()
	}

	switch {
	case !o.sequencer.IsEmpty():
		o.setState(StateSpeaking)
	case o.processing > 0:
		o.setState(StateProcessing)
	case o.capture.IsArmed():
		o.setState(StateListening)
	default:
		o.setState(StateIdle)
	}
}

func (o *Orchestrator) setState(state State) {
	o.stateMu.Lock()
	changed := o.state != state
	o.state = state
	o.stateMu.Unlock()

	if changed && o.runOpts.onStateChanged != nil {
		o.runOpts.onStateChanged(state)
	}
}

func (o *Orchestrator) matchesInterrupt(transcript string) bool {
	folded := strings.ToLower(transcript)
	for _, keyword := range o.interruptKeywords {
		if strings.Contains(folded, keyword) {
			return true
		}
	}

	return false
}

func (o *Orchestrator) appendTurn(role TurnRole, content string) Turn {
	turn := o.log.Append(role, content)
	if o.runOpts.onTurnAppended != nil {
		o.runOpts.onTurnAppended(turn)
	}

	return turn
}

// recoverWithNotice converts a pipeline failure into a visible assistant turn
// with a fixed message. Diagnostic detail goes to the error callback and the
// logs, never into the transcript.
func (o *Orchestrator) recoverWithNotice(notice string, err error) {
	o.appendTurn(TurnRoleAssistant, notice)
	o.reportError(err)
}

func (o *Orchestrator) reportError(err error) {
	if err == nil {
		return
	}

	logger.Warn("recovered pipeline failure", "error", err)
	if o.runOpts.onError != nil {
		o.runOpts.onError(err)
	}
}

func (o *Orchestrator) notifyPlaybackStarted(before *Clip) {
	after := o.sequencer.InFlight()
	if after == nil || after == before {
		return
	}

	if o.runOpts.onPlaybackStarted != nil {
		o.runOpts.onPlaybackStarted(after.ID)
	}
}
