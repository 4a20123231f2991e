// Package pdf renders batches of chapters into paginated PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/novelforge/novelforge/internal/novel"
)

// Layout constants, matched to an A4 page with one-inch margins.
const (
	marginMM        = 25.4
	titleFontSize   = 16
	titleLineHeight = 7.0 // mm, ~20pt leading
	titleSpaceAfter = 5.0 // mm, ~14pt
	bodyFontSize    = 11
	bodyLineHeight  = 5.6 // mm, ~16pt leading
	bodySpaceAfter  = 3.5 // mm, ~10pt
)

// Builder writes chapter batches as PDF files into the outputs directory,
// with a best-effort archival copy in the backups directory.
type Builder struct {
	outputsDir string
	backupsDir string
	log        *slog.Logger
}

// NewBuilder creates a Builder. backupsDir may be empty to disable archival
// copies. Logger defaults to slog.Default().
func NewBuilder(outputsDir, backupsDir string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		outputsDir: outputsDir,
		backupsDir: backupsDir,
		log:        logger,
	}
}

// Build renders the chapters in order, one title block plus body paragraphs
// per chapter with a page break between chapters, and writes the document to
// the outputs directory under the batch filename. The file appears under its
// final name only once fully written (rendered to memory, written to a temp
// file, validated, then renamed). Returns the final path.
func (b *Builder) Build(chapters []novel.Chapter, chatID, safeTitle string, batchStart, batchEnd int) (string, error) {
	if len(chapters) == 0 {
		return "", fmt.Errorf("no chapters to render")
	}

	data, err := render(chapters)
	if err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}

	name := Filename(chatID, safeTitle, batchStart, batchEnd)

	// Archival copy first; its failure never fails the primary write.
	if b.backupsDir != "" {
		backupPath := filepath.Join(b.backupsDir, name)
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			b.log.Warn("failed to write backup copy", "path", backupPath, "error", err)
		}
	}

	finalPath := filepath.Join(b.outputsDir, name)
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	if err := api.ValidateFile(tmpPath, nil); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("produced document failed validation: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to publish document: %w", err)
	}

	b.log.Info("document written", "path", finalPath, "chapters", len(chapters))
	return finalPath, nil
}

// render lays out the chapters into an in-memory PDF.
func render(chapters []novel.Chapter) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(marginMM, marginMM, marginMM)
	doc.SetAutoPageBreak(true, marginMM)

	// Core fonts are cp1252; translate fetched text into that range.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, ch := range chapters {
		doc.AddPage()
		doc.SetFont("Helvetica", "B", titleFontSize)
		doc.MultiCell(0, titleLineHeight, tr(ch.Title), "", "L", false)
		doc.Ln(titleSpaceAfter)

		doc.SetFont("Helvetica", "", bodyFontSize)
		for _, p := range ch.Paragraphs {
			doc.MultiCell(0, bodyLineHeight, tr(p), "", "L", false)
			doc.Ln(bodySpaceAfter)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
