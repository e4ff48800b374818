// Package script parses narration scripts into the units the synthesis
// pipeline consumes.
//
// Two script shapes are understood:
//
//   - Generation scripts: optional "Speaker N:" run markers with inline
//     <tag>...</tag> emotion markup, parsed by ParseSegments.
//   - Dialogue scripts: "Host: ..." / "Guest: ..." lines as produced by the
//     LLM script writer, parsed by ParseDialogue.
package script

import (
	"regexp"
	"strconv"
	"strings"
)

// EmotionNeutral is the default emotion tag for untagged text.
const EmotionNeutral = "neutral"

// Segment is a contiguous span of text attributed to one speaker and one
// emotion tag. Speaker 0 is the primary (host) voice.
type Segment struct {
	Speaker int
	Emotion string
	Text    string
}

var (
	speakerMarkerRe = regexp.MustCompile(`^Speaker (\d+):[ \t]*(.*)$`)
	legacyEmotionRe = regexp.MustCompile(`(?s)^\s*你说话的情感是\s*([a-zA-Z_]+)[。！!.]?\s*(.*)$`)
	strayMarkupRe   = regexp.MustCompile(`</?[a-zA-Z_]+>`)
)

// ParseSegments splits raw script text into an ordered sequence of
// segments. Order always matches source order. Every returned segment has a
// defined speaker (default 0), a defined emotion tag (default "neutral"),
// and non-empty trimmed text; blank spans are dropped so they never reach
// the synthesis engine.
func ParseSegments(text string) []Segment {
	var segs []Segment
	for _, run := range splitSpeakerRuns(text) {
		// <strong> markers destabilize tag matching; drop them before the
		// emotion pass, like any other unsupported formatting.
		runText := strings.ReplaceAll(run.text, "<strong>", "")
		runText = strings.ReplaceAll(runText, "</strong>", "")
		for _, part := range splitEmotionTags(runText) {
			clean := cleanupText(part.text)
			if clean == "" {
				continue
			}
			segs = append(segs, Segment{
				Speaker: run.speaker,
				Emotion: part.emotion,
				Text:    clean,
			})
		}
	}
	return segs
}

type speakerRun struct {
	speaker int
	text    string
}

// splitSpeakerRuns performs the first scanner pass: "Speaker N:" markers
// start a new run, unmarked lines append to the current run, and text
// before the first marker is discarded. Without any marker the whole input
// is one run for speaker 0.
func splitSpeakerRuns(text string) []speakerRun {
	if !strings.Contains(text, "Speaker ") || !strings.Contains(text, ":") {
		return []speakerRun{{speaker: 0, text: text}}
	}

	var (
		runs    []speakerRun
		current *speakerRun
	)
	for _, line := range strings.Split(text, "\n") {
		if m := speakerMarkerRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				runs = append(runs, *current)
			}
			n, _ := strconv.Atoi(m[1])
			current = &speakerRun{speaker: n, text: strings.TrimSpace(m[2])}
			continue
		}
		if current != nil {
			current.text += "\n" + line
		}
	}
	if current != nil {
		runs = append(runs, *current)
	}
	if len(runs) == 0 {
		return []speakerRun{{speaker: 0, text: text}}
	}
	return runs
}

type taggedText struct {
	emotion string
	text    string
}

// splitEmotionTags performs the second scanner pass over one speaker run:
// <tag>inner</tag> spans become tagged parts, surrounding text becomes
// neutral parts. An opening tag without its matching closer is kept as
// plain text rather than guessing closure. When no tag markup exists at
// all, a legacy "你说话的情感是 <tag>" prefix line is honored; otherwise the
// whole run is one neutral part.
func splitEmotionTags(text string) []taggedText {
	var (
		parts  []taggedText
		plain  strings.Builder // text not claimed by a matched tag pair
		rest   = text
		sawTag bool
	)

	for rest != "" {
		open, tag, bodyStart := nextOpenTag(rest)
		if open < 0 {
			plain.WriteString(rest)
			break
		}
		closer := "</" + tag + ">"
		end := strings.Index(rest[bodyStart:], closer)
		if end < 0 {
			// Unterminated tag: the opening marker is plain text.
			plain.WriteString(rest[:bodyStart])
			rest = rest[bodyStart:]
			continue
		}
		sawTag = true
		plain.WriteString(rest[:open])
		if p := plain.String(); strings.TrimSpace(p) != "" {
			parts = append(parts, taggedText{EmotionNeutral, p})
		}
		plain.Reset()
		parts = append(parts, taggedText{strings.ToLower(tag), rest[bodyStart : bodyStart+end]})
		rest = rest[bodyStart+end+len(closer):]
	}

	if !sawTag {
		if m := legacyEmotionRe.FindStringSubmatch(text); m != nil {
			return []taggedText{{strings.ToLower(m[1]), m[2]}}
		}
		return []taggedText{{EmotionNeutral, text}}
	}
	if p := plain.String(); strings.TrimSpace(p) != "" {
		parts = append(parts, taggedText{EmotionNeutral, p})
	}
	return parts
}

// nextOpenTag finds the next <tag> marker in s. It returns the index of
// '<', the tag name, and the index just past '>', or -1 when none remains.
func nextOpenTag(s string) (open int, tag string, bodyStart int) {
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		j := i + 1
		for j < len(s) && (isTagByte(s[j])) {
			j++
		}
		if j > i+1 && j < len(s) && s[j] == '>' {
			return i, s[i+1 : j], j + 1
		}
	}
	return -1, "", -1
}

func isTagByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// cleanupText strips stray markup left over after tag splitting and trims
// whitespace. The engine crashes on blank input, so callers drop segments
// whose text comes back empty.
func cleanupText(s string) string {
	s = strings.ReplaceAll(s, "<strong>", "")
	s = strings.ReplaceAll(s, "</strong>", "")
	s = strayMarkupRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
