package deepgram

import (
	"strconv"
	"testing"

	"github.com/tinvok/voxchat/core/speechtotext"
)

func finalResult(transcript string, speechFinal bool) []byte {
	msg := `{"type":"Results","is_final":true,"speech_final":` + strconv.FormatBool(speechFinal) +
		`,"channel":{"alternatives":[{"transcript":"` + transcript + `"}]}}`
	return []byte(msg)
}

func TestProcessMessageAccumulatesFinalSegments(t *testing.T) {
	var transcripts []string
	options := speechtotext.RecognitionOptions{
		TranscriptCallback: func(transcript string) { transcripts = append(transcripts, transcript) },
	}

	client := NewClient("test-key")
	client.processMessage(finalResult("what is", false), options)
	client.processMessage(finalResult("the capital of france?", false), options)

	if len(transcripts) != 0 {
		t.Fatalf("expected no delivery before speech ends, got %v", transcripts)
	}

	client.processMessage(finalResult("", true), options)

	if len(transcripts) != 1 {
		t.Fatalf("expected one finalized utterance, got %d", len(transcripts))
	}
	if transcripts[0] != "what is the capital of france?" {
		t.Fatalf("unexpected utterance %q", transcripts[0])
	}
}

func TestProcessMessageIgnoresInterimResults(t *testing.T) {
	var transcripts []string
	options := speechtotext.RecognitionOptions{
		TranscriptCallback: func(transcript string) { transcripts = append(transcripts, transcript) },
	}

	client := NewClient("test-key")
	client.processMessage([]byte(`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"wha"}]}}`), options)
	client.processMessage(finalResult("hello", true), options)

	if len(transcripts) != 1 || transcripts[0] != "hello" {
		t.Fatalf("expected only the final segment, got %v", transcripts)
	}
}

func TestProcessMessageUtteranceEndFlushesOpenSegments(t *testing.T) {
	var transcripts []string
	options := speechtotext.RecognitionOptions{
		TranscriptCallback: func(transcript string) { transcripts = append(transcripts, transcript) },
	}

	client := NewClient("test-key")
	client.processMessage([]byte(`{"type":"SpeechStarted"}`), options)
	client.processMessage(finalResult("hello there", false), options)
	client.processMessage([]byte(`{"type":"UtteranceEnd"}`), options)

	if len(transcripts) != 1 || transcripts[0] != "hello there" {
		t.Fatalf("expected the open segment to be flushed, got %v", transcripts)
	}

	// Without a started segment an utterance end delivers nothing.
	client.processMessage([]byte(`{"type":"UtteranceEnd"}`), options)
	if len(transcripts) != 1 {
		t.Fatalf("expected no delivery for a bare utterance end, got %v", transcripts)
	}
}

func TestProcessMessageDropsEmptyUtterances(t *testing.T) {
	calls := 0
	options := speechtotext.RecognitionOptions{
		TranscriptCallback: func(string) { calls++ },
	}

	client := NewClient("test-key")
	client.processMessage(finalResult("", true), options)

	if calls != 0 {
		t.Fatalf("expected no callback for an empty utterance, got %d calls", calls)
	}
}

func TestSendAudioRequiresAnOpenSession(t *testing.T) {
	client := NewClient("test-key")

	if err := client.SendAudio([]byte{0, 0}); err == nil {
		t.Fatalf("expected an error without an open session")
	}
}

func TestStopWithoutASessionIsANoOp(t *testing.T) {
	client := NewClient("test-key")

	if err := client.Stop(); err != nil {
		t.Fatalf("expected stop without a session to succeed, got %v", err)
	}
}
