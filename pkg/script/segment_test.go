package script_test

import (
	"reflect"
	"strings"
	"testing"

	"google.golang.org/api/iterator"

	"github.com/lyrebird-studio/lyrebird/pkg/script"
)

func TestParseSegmentsPlainText(t *testing.T) {
	segs := script.ParseSegments("Just a plain paragraph.\nSecond line.")
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Speaker != 0 {
		t.Fatalf("speaker = %d, want 0", segs[0].Speaker)
	}
	if segs[0].Emotion != script.EmotionNeutral {
		t.Fatalf("emotion = %q, want neutral", segs[0].Emotion)
	}
	if !strings.Contains(segs[0].Text, "Second line.") {
		t.Fatalf("text lost content: %q", segs[0].Text)
	}
}

func TestParseSegmentsInlineTags(t *testing.T) {
	segs := script.ParseSegments("Hello <happy>great day</happy> friend")
	want := []script.Segment{
		{Speaker: 0, Emotion: "neutral", Text: "Hello"},
		{Speaker: 0, Emotion: "happy", Text: "great day"},
		{Speaker: 0, Emotion: "neutral", Text: "friend"},
	}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("segments = %+v, want %+v", segs, want)
	}
}

func TestParseSegmentsMultiSpeaker(t *testing.T) {
	text := "Speaker 0: Hello <happy>great day</happy>\nSpeaker 1: Indeed."
	segs := script.ParseSegments(text)
	want := []script.Segment{
		{Speaker: 0, Emotion: "neutral", Text: "Hello"},
		{Speaker: 0, Emotion: "happy", Text: "great day"},
		{Speaker: 1, Emotion: "neutral", Text: "Indeed."},
	}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("segments = %+v, want %+v", segs, want)
	}
}

func TestParseSegmentsContinuationLines(t *testing.T) {
	text := "Speaker 0: First line\nstill speaker zero\nSpeaker 1: Reply"
	segs := script.ParseSegments(text)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(segs), segs)
	}
	if !strings.Contains(segs[0].Text, "still speaker zero") {
		t.Fatalf("continuation line lost: %q", segs[0].Text)
	}
	if segs[1].Speaker != 1 {
		t.Fatalf("second segment speaker = %d, want 1", segs[1].Speaker)
	}
}

func TestParseSegmentsUnterminatedTag(t *testing.T) {
	segs := script.ParseSegments("before <happy>never closed")
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1: %+v", len(segs), segs)
	}
	if segs[0].Emotion != script.EmotionNeutral {
		t.Fatalf("unterminated tag must stay neutral, got %q", segs[0].Emotion)
	}
	// The stray opening marker is stripped during cleanup.
	if strings.Contains(segs[0].Text, "<happy>") {
		t.Fatalf("stray marker not stripped: %q", segs[0].Text)
	}
	if !strings.Contains(segs[0].Text, "never closed") {
		t.Fatalf("text after unterminated tag lost: %q", segs[0].Text)
	}
}

func TestParseSegmentsLegacyEmotionPrefix(t *testing.T) {
	segs := script.ParseSegments("你说话的情感是happy。今天天气真好")
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1: %+v", len(segs), segs)
	}
	if segs[0].Emotion != "happy" {
		t.Fatalf("emotion = %q, want happy", segs[0].Emotion)
	}
	if segs[0].Text != "今天天气真好" {
		t.Fatalf("text = %q", segs[0].Text)
	}
}

func TestParseSegmentsDropsBlank(t *testing.T) {
	segs := script.ParseSegments("<happy>   </happy><sad>real</sad>")
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1: %+v", len(segs), segs)
	}
	if segs[0].Emotion != "sad" || segs[0].Text != "real" {
		t.Fatalf("segment = %+v", segs[0])
	}
	for _, s := range segs {
		if strings.TrimSpace(s.Text) == "" {
			t.Fatal("blank segment leaked through")
		}
	}
}

func TestParseSegmentsStripsStrongMarkup(t *testing.T) {
	segs := script.ParseSegments("say <strong>loud</strong> words")
	if len(segs) != 1 {
		t.Fatalf("got %d segments: %+v", len(segs), segs)
	}
	if segs[0].Text != "say loud words" {
		t.Fatalf("text = %q, want markup stripped", segs[0].Text)
	}
}

func TestInstructionKnownTags(t *testing.T) {
	for _, tag := range []string{
		"happy", "sad", "angry", "fearful", "surprised", "disgusted",
		"neutral", "whisper", "affectionate", "serious",
		"fast", "slow", "high_pitch", "low_pitch",
	} {
		if !script.KnownEmotion(tag) {
			t.Errorf("tag %q should be known", tag)
		}
		if script.Instruction(tag) == "" {
			t.Errorf("Instruction(%q) is empty", tag)
		}
	}
}

func TestInstructionUnknownTag(t *testing.T) {
	inst := script.Instruction("brooding")
	if inst == "" {
		t.Fatal("unknown tag produced empty instruction")
	}
	if !strings.Contains(inst, "brooding") {
		t.Fatalf("instruction %q does not embed the tag", inst)
	}
}

func TestSegmentIterator(t *testing.T) {
	it := script.Segments("Speaker 0: one\nSpeaker 1: two")
	var texts []string
	for {
		seg, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		texts = append(texts, seg.Text)
	}
	if !reflect.DeepEqual(texts, []string{"one", "two"}) {
		t.Fatalf("texts = %v", texts)
	}
	// Drained iterators keep reporting Done.
	if _, err := it.Next(); err != iterator.Done {
		t.Fatalf("err = %v", err)
	}
}
