package script

import "fmt"

// emotionInstructions maps known emotion tags to the natural-language
// delivery instruction passed to the synthesis engine. The instruction
// strings are what the engine was tuned on; do not localize them.
var emotionInstructions = map[string]string{
	"happy":        "说话者语气充满快乐和兴奋，声音欢快，语调上扬，带有明显的笑意，语速适中。",
	"sad":          "说话者语气非常悲伤，声音低沉，语速缓慢，带有哽咽或叹息的感觉。",
	"angry":        "说话者非常愤怒，声音紧绷有力，语速较快，语气强烈不满。",
	"fearful":      "说话者感到恐惧和紧张，声音颤抖，呼吸急促，语速不稳定。",
	"surprised":    "说话者感到非常惊讶，难以置信，语调极高，带有强烈的疑问感。",
	"disgusted":    "说话者语气充满厌恶和不屑，声音冷淡，强调重读，带有排斥感。",
	"neutral":      "说话者语气平和自然，情绪稳定，像日常交谈一样放松。",
	"whisper":      "说话者在轻声耳语，声音极低，气息感强，像在说秘密。",
	"affectionate": "说话者语气温柔深情，声音柔软，带有关切和爱意，语速舒缓。",
	"serious":      "说话者语气严肃认真，沉着冷静，声音笃定，语速适中，不带玩笑成分。",
	"fast":         "说话者语速非常快，情绪激动或着急。",
	"slow":         "说话者语速很慢，从容不迫或犹豫不决。",
	"high_pitch":   "说话者音调很高，情绪高昂。",
	"low_pitch":    "说话者音调很低，深沉稳重。",
}

// Instruction maps an emotion tag to a delivery instruction for the
// synthesis engine. Unknown tags fall back to a generic instruction
// embedding the tag literally; Instruction never returns an empty string.
func Instruction(tag string) string {
	if inst, ok := emotionInstructions[tag]; ok {
		return inst
	}
	return fmt.Sprintf("用%s的语气", tag)
}

// KnownEmotion reports whether the tag has a dedicated instruction.
func KnownEmotion(tag string) bool {
	_, ok := emotionInstructions[tag]
	return ok
}
