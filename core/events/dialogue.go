package events

const (
	// KindReplyReady identifies a completed chat request.
	KindReplyReady Kind = "dialogue.reply"
	// KindReplyFailed identifies a chat request that ended in an error.
	KindReplyFailed Kind = "dialogue.failed"
)

// ReplyReady carries the reply text produced for a submitted transcript.
type ReplyReady struct {
	Base
	Reply string
}

// NewReplyReady creates a reply-ready event.
func NewReplyReady(reply string) ReplyReady {
	return ReplyReady{Base: NewBase(KindReplyReady), Reply: reply}
}

// ReplyFailed carries the terminal error of a chat request.
type ReplyFailed struct {
	Base
	Err error
}

// NewReplyFailed creates a reply-failed event.
func NewReplyFailed(err error) ReplyFailed {
	return ReplyFailed{Base: NewBase(KindReplyFailed), Err: err}
}
