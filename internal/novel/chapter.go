// Package novel provides shared novel types and the catalog of known novels.
// This package has no dependencies on other novelforge packages to avoid
// import cycles.
package novel

import "strconv"

// Chapter is one fetched (or substituted) chapter held in memory between the
// fetch loop and the document builder. It is never persisted on its own.
type Chapter struct {
	Title      string
	Paragraphs []string
}

// Novel describes one scrapeable novel.
type Novel struct {
	// Title is the display name shown in the chat menu.
	Title string
	// ChapterURL is the chapter URL prefix; appending a chapter number
	// yields the full chapter page URL.
	ChapterURL string
	// TotalChapters is the known chapter count, nil when unknown.
	TotalChapters *int
}

// URL returns the page URL for the given chapter number.
func (n Novel) URL(chapter int) string {
	return n.ChapterURL + strconv.Itoa(chapter)
}
