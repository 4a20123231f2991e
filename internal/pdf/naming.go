package pdf

import (
	"fmt"
	"strings"
	"unicode"
)

// Extension is the suffix of every output document.
const Extension = ".pdf"

// chatSeparator divides the chat id from the rest of an output filename.
// The delivery watcher splits on its first occurrence, so it must never
// appear inside a chat id or a safe title.
const chatSeparator = "__"

// SafeTitle reduces a novel title to a filename-safe form: characters other
// than letters, digits, spaces and underscores are stripped, spaces become
// underscores, and underscore runs are collapsed so the chat separator can
// never appear inside the title.
func SafeTitle(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case r == ' ' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// Filename returns the output document name for one batch:
// <chatID>__<safeTitle>_<start>_to_<end>.pdf
func Filename(chatID, safeTitle string, start, end int) string {
	return fmt.Sprintf("%s%s%s_%d_to_%d%s", chatID, chatSeparator, safeTitle, start, end, Extension)
}

// ParseFilename splits an output document name into the chat id and the
// remainder. It reports false for names that do not follow the convention;
// such files are left alone by the watcher.
func ParseFilename(name string) (chatID, rest string, ok bool) {
	if !strings.HasSuffix(strings.ToLower(name), Extension) {
		return "", "", false
	}
	chatID, rest, found := strings.Cut(name, chatSeparator)
	if !found || chatID == "" || rest == "" || rest == Extension {
		return "", "", false
	}
	return chatID, rest, true
}
