package search

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const itemSelector = ".search-item"

// Source yields the searchable entries found in live page content.
type Source interface {
	Entries(ctx context.Context) ([]Entry, error)
}

type SourceFunc func(ctx context.Context) ([]Entry, error)

func (f SourceFunc) Entries(ctx context.Context) ([]Entry, error) { return f(ctx) }

// ParsePage collects every element carrying the search-item class. The name
// comes from data-name or the element's trimmed text, the link defaults to "#".
func ParsePage(r io.Reader) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var out []Entry
	doc.Find(itemSelector).Each(func(_ int, sel *goquery.Selection) {
		name := attr(sel, "data-name")
		if name == "" {
			name = strings.TrimSpace(sel.Text())
		}
		link := attr(sel, "data-link")
		if link == "" {
			link = "#"
		}

		out = append(out, Entry{
			Name:        name,
			Description: attr(sel, "data-description"),
			Link:        link,
		})
	})
	return out, nil
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return v
}

// PageFiles reads search items out of HTML files on disk, in order.
type PageFiles []string

func (p PageFiles) Entries(ctx context.Context) ([]Entry, error) {
	var out []Entry
	for _, path := range p {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

func parseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	entries, err := ParsePage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
