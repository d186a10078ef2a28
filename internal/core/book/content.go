// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"encoding/json"
	"fmt"

	"github.com/taibuivan/bookgod/internal/platform/sanitize"
)

// Book content is stored as a block document:
//
//	{"blocks": [{"type": "header", "data": {"text": "Chapter 1", "level": 2}}, ...]}
//
// Header blocks of level 1 or 2 open a new chapter.

const (
	blockTypeHeader    = "header"
	chapterHeaderLevel = 2
	prologueTitle      = "Prologue"
)

// Block is a single content block. Data is kept raw so the reader receives
// it exactly as the editor produced it.
type Block struct {
	ID   string          `json:"id,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Document is the persisted content of a book.
type Document struct {
	Time    int64   `json:"time,omitempty"`
	Blocks  []Block `json:"blocks"`
	Version string  `json:"version,omitempty"`
}

// Chapter is a contiguous run of blocks opened by a header.
type Chapter struct {
	Index  int     `json:"index"`
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// TOCEntry is one line of a table of contents.
type TOCEntry struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// Reading is what an entitled reader receives.
type Reading struct {
	BookID          string     `json:"book_id"`
	Title           string     `json:"title"`
	TableOfContents []TOCEntry `json:"table_of_contents"`
	Chapters        []Chapter  `json:"chapters"`
}

type headerData struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// ParseDocument decodes stored content. An empty payload is an empty document.
func ParseDocument(raw json.RawMessage) (*Document, error) {
	document := &Document{}
	if len(raw) == 0 || string(raw) == "null" {
		return document, nil
	}
	if err := json.Unmarshal(raw, document); err != nil {
		return nil, fmt.Errorf("book: malformed content: %w", err)
	}
	return document, nil
}

// IsEmpty reports whether the document has no blocks.
func (document *Document) IsEmpty() bool {
	return document == nil || len(document.Blocks) == 0
}

// SplitChapters groups blocks into chapters.
//
// Each header of level <= 2 starts a chapter titled with the header text;
// the header block itself is not repeated in the chapter body. Blocks before
// the first such header form a "Prologue" chapter.
func SplitChapters(document *Document) []Chapter {
	if document.IsEmpty() {
		return nil
	}

	var chapters []Chapter
	var current *Chapter

	for _, block := range document.Blocks {
		if title, ok := chapterTitle(block); ok {
			chapters = append(chapters, Chapter{Index: len(chapters), Title: title, Blocks: []Block{}})
			current = &chapters[len(chapters)-1]
			continue
		}

		if current == nil {
			chapters = append(chapters, Chapter{Index: 0, Title: prologueTitle})
			current = &chapters[0]
		}
		current.Blocks = append(current.Blocks, block)
	}

	return chapters
}

// TableOfContents lists the chapter titles in order.
func TableOfContents(chapters []Chapter) []TOCEntry {
	entries := make([]TOCEntry, len(chapters))
	for i, chapter := range chapters {
		entries[i] = TOCEntry{Index: chapter.Index, Title: chapter.Title}
	}
	return entries
}

// chapterTitle reports whether block opens a chapter and returns its plain-text title.
func chapterTitle(block Block) (string, bool) {
	if block.Type != blockTypeHeader {
		return "", false
	}

	var data headerData
	if err := json.Unmarshal(block.Data, &data); err != nil {
		return "", false
	}
	if data.Level < 1 || data.Level > chapterHeaderLevel {
		return "", false
	}

	title := sanitize.Text(data.Text)
	if title == "" {
		return "", false
	}
	return title, true
}
