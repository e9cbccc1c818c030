// Package formatting prepares text before it is sent to a chat platform.
package formatting

import (
	"strings"
	"unicode/utf8"
)

// DefaultPageLength is the longest message Discord accepts.
const DefaultPageLength = 2000

// PagifyOptions tweak Pagify.
type PagifyOptions struct {
	// Delims are the strings pages are broken at. With no delimiters pages
	// are broken at PageLength.
	Delims []string
	// EscapeMassMentions escapes @everyone and @here in every page.
	EscapeMassMentions bool
	// ShortenBy is subtracted from PageLength, leaving room for wrapping
	// such as code fences.
	ShortenBy int
	// PageLength is the maximum length of each page in bytes.
	PageLength int
	// Priority breaks at the first delimiter in Delims order that occurs in
	// the page, instead of at the last possible delimiter.
	Priority bool
}

// DefaultPagifyOptions breaks at newlines and spaces, escapes mass mentions,
// and keeps pages 8 bytes under DefaultPageLength.
func DefaultPagifyOptions() PagifyOptions {
	return PagifyOptions{
		Delims:             []string{"\n", " "},
		EscapeMassMentions: true,
		ShortenBy:          8,
		PageLength:         DefaultPageLength,
	}
}

// Pagify breaks text into pages no longer than opts.PageLength-opts.ShortenBy.
// Pages never split a UTF-8 sequence, so a rune longer than the page length
// becomes a page of its own. A trailing all-whitespace remainder is dropped.
func Pagify(text string, opts PagifyOptions) []string {
	pageLen := max(opts.PageLength-opts.ShortenBy, 1)

	var pages []string
	rest := text
	for len(rest) > pageLen {
		thisLen := pageLen
		if opts.EscapeMassMentions {
			window := rest[:floorRune(rest, pageLen)]
			thisLen -= strings.Count(window, "@here") + strings.Count(window, "@everyone")
		}
		thisLen = floorRune(rest, thisLen)
		if thisLen == 0 {
			// The page is shorter than the leading rune; emit that rune alone.
			_, thisLen = utf8.DecodeRuneInString(rest)
		}

		cut := breakPoint(rest, thisLen, opts)

		page := rest[:cut]
		if opts.EscapeMassMentions {
			page = EscapeMassMentions(page)
		}
		if page != "" {
			pages = append(pages, page)
		}
		rest = rest[cut:]
	}

	if strings.TrimSpace(rest) != "" {
		if opts.EscapeMassMentions {
			rest = EscapeMassMentions(rest)
		}
		pages = append(pages, rest)
	}

	return pages
}

// breakPoint returns where to cut rest, given a page of at most limit bytes.
// Delimiters at offset 0 are skipped so every page makes progress.
func breakPoint(rest string, limit int, opts PagifyOptions) int {
	if limit <= 1 {
		return limit
	}
	window := rest[1:limit]

	best := -1
	for _, d := range opts.Delims {
		if d == "" {
			continue
		}
		i := strings.LastIndex(window, d)
		if i < 0 {
			continue
		}
		pos := i + 1
		if opts.Priority {
			if pos > 1 {
				return pos
			}
			continue
		}
		best = max(best, pos)
	}

	if best < 1 {
		return limit
	}
	return best
}

// floorRune moves n back to the start of the UTF-8 sequence containing s[n].
func floorRune(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

// EscapeMassMentions inserts a zero-width space after the @ of @everyone and
// @here so they no longer ping.
func EscapeMassMentions(text string) string {
	return strings.NewReplacer(
		"@everyone", "@\u200beveryone",
		"@here", "@\u200bhere",
	).Replace(text)
}
