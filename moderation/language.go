package moderation

import "github.com/abadojack/whatlanggo"

// Short messages ("ok", "lol") rarely carry a reliable signal, so a
// minimum confidence is required before tagging a language at all.
const minConfidence = 0.6

// DetectLanguage returns the ISO 639-1 code of the content's most likely
// language, or an empty string when detection is not confident enough.
func DetectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	if !info.IsReliable() && info.Confidence < minConfidence {
		return ""
	}
	return info.Lang.Iso6391()
}
