package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newsmesh/newsgraph/internal/models"
)

const sampleArticle = `---
id: reuters-2026-0142
title: Tesla expands battery plant
source: reuters
url: https://example.com/tesla-battery
published: 2026-03-14T09:30:00Z
entities:
  - name: Tesla
    type: ORGANIZATION
    confidence: 0.95
    context: Tesla expands battery plant in Nevada
  - name: Nevada
    type: LOCATION
    confidence: 0.8
---

Tesla announced an expansion of its Nevada battery plant on Friday.
`

func TestParseArticle(t *testing.T) {
	parsed, err := ParseArticle(sampleArticle)
	if err != nil {
		t.Fatalf("ParseArticle() error = %v", err)
	}

	a := parsed.Article
	if a.ID != "reuters-2026-0142" {
		t.Errorf("ID = %q", a.ID)
	}
	if a.Title != "Tesla expands battery plant" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Source != "reuters" {
		t.Errorf("Source = %q", a.Source)
	}
	if a.URL == nil || *a.URL != "https://example.com/tesla-battery" {
		t.Errorf("URL = %v", a.URL)
	}
	want := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if !a.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", a.PublishedAt, want)
	}

	if len(parsed.Mentions) != 2 {
		t.Fatalf("got %d mentions, want 2", len(parsed.Mentions))
	}
	if parsed.Mentions[0].Name != "Tesla" || parsed.Mentions[0].Type != models.EntityOrganization {
		t.Errorf("mention[0] = %+v", parsed.Mentions[0])
	}
	if parsed.Mentions[1].Confidence != 0.8 {
		t.Errorf("mention[1].Confidence = %v", parsed.Mentions[1].Confidence)
	}
}

func TestParseArticle_Defaults(t *testing.T) {
	parsed, err := ParseArticle("---\npublished: 2026-01-02\n---\n\n# Headline From Body\n\nSome text.\n")
	if err != nil {
		t.Fatalf("ParseArticle() error = %v", err)
	}
	if parsed.Article.ID == "" {
		t.Error("missing ID should get a generated one")
	}
	if parsed.Article.Title != "Headline From Body" {
		t.Errorf("Title = %q, want first h1", parsed.Article.Title)
	}
}

func TestParseArticle_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no content", "---\ntitle: t\npublished: 2026-01-02\n---\n\n"},
		{"no title", "---\npublished: 2026-01-02\n---\n\nbody without heading\n"},
		{"no published date", "---\ntitle: t\n---\n\nbody\n"},
		{"bad published date", "---\ntitle: t\npublished: soon\n---\n\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArticle(tt.content)
			if !errors.Is(err, models.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestFindArticleFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.md"), "x")
	mustWrite(t, filepath.Join(dir, "notes.txt"), "x")
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(sub, "b.MD"), "x")
	hidden := filepath.Join(dir, ".git")
	if err := os.Mkdir(hidden, 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(hidden, "c.md"), "x")

	files, err := FindArticleFiles(dir)
	if err != nil {
		t.Fatalf("FindArticleFiles() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2: %v", len(files), files)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
