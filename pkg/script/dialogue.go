package script

import "strings"

// Canonical dialogue roles. Downstream consumers (the web UI, the emotion
// optimizer) only understand these two labels.
const (
	RoleHost  = "Host"
	RoleGuest = "Guest"
)

// Known localized aliases for each role, matched in addition to the literal
// role name and the caller-supplied display names.
var (
	hostAliases  = []string{"寒松"}
	guestAliases = []string{"夏天"}
)

// DialogueLine is one structured line of a generated dialogue script.
type DialogueLine struct {
	ID      string `json:"id,omitempty"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ParseDialogue parses free-form "Label: utterance" text into ordered
// dialogue lines. A line opens a new utterance only when the text before
// its first colon matches a role name, a caller-supplied display name, or a
// known alias; other lines are space-joined onto the currently open
// utterance. Text before the first recognized speaker line is discarded.
// Completely unstructured input yields zero lines.
func ParseDialogue(text, hostName, guestName string) []DialogueLine {
	var (
		lines       []DialogueLine
		curSpeaker  string
		curText     []string
		flushActive = func() {
			if curSpeaker != "" {
				lines = append(lines, DialogueLine{
					Speaker: curSpeaker,
					Text:    strings.Join(curText, " "),
				})
			}
		}
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if name, rest, ok := strings.Cut(line, ":"); ok {
			label := strings.TrimSpace(name)
			isHost := matchesRole(label, RoleHost, hostName, hostAliases)
			isGuest := matchesRole(label, RoleGuest, guestName, guestAliases)
			if isHost || isGuest {
				flushActive()
				if isHost {
					curSpeaker = speakerName(hostName, RoleHost)
				} else {
					curSpeaker = speakerName(guestName, RoleGuest)
				}
				curText = curText[:0]
				if rest = strings.TrimSpace(rest); rest != "" {
					curText = append(curText, rest)
				}
				continue
			}
		}
		if curSpeaker != "" {
			curText = append(curText, line)
		}
	}
	flushActive()
	return lines
}

func matchesRole(label, role, displayName string, aliases []string) bool {
	if label == role {
		return true
	}
	if displayName != "" && label == displayName {
		return true
	}
	for _, a := range aliases {
		if label == a {
			return true
		}
	}
	return false
}

func speakerName(displayName, role string) string {
	if displayName != "" {
		return displayName
	}
	return role
}

// NormalizeRole maps a free-form speaker label back to the canonical role
// set. Unrecognized labels default to the host role so a stray label never
// breaks downstream consumers.
func NormalizeRole(label, hostName, guestName string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "h", strings.Contains(l, "host"),
		containsAnyFold(l, hostAliases),
		hostName != "" && strings.Contains(l, strings.ToLower(hostName)):
		return RoleHost
	case l == "g", strings.Contains(l, "guest"),
		containsAnyFold(l, guestAliases),
		guestName != "" && strings.Contains(l, strings.ToLower(guestName)):
		return RoleGuest
	}
	return RoleHost
}

func containsAnyFold(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
