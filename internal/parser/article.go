// Package parser reads article files from disk. Articles are Markdown with
// a YAML frontmatter block carrying the publication metadata.
package parser

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/newsmesh/newsgraph/internal/models"
)

// frontmatter is the YAML header of an article file.
type frontmatter struct {
	ID        string       `yaml:"id"`
	Title     string       `yaml:"title"`
	Source    string       `yaml:"source"`
	URL       string       `yaml:"url"`
	Published string       `yaml:"published"`
	Entities  []rawMention `yaml:"entities"`
}

// rawMention is a pre-annotated entity in frontmatter, used when no
// extraction model is configured.
type rawMention struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	Confidence float64 `yaml:"confidence"`
	Context    string  `yaml:"context"`
}

// ParsedArticle is one article file plus any pre-annotated mentions.
type ParsedArticle struct {
	Article  models.Article
	Mentions []models.ExtractedMention
}

var h1Regex = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// publishedLayouts are accepted frontmatter date formats, most specific
// first.
var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseArticle parses a single article document. Missing IDs get a fresh
// UUID; a missing title falls back to the first h1; a missing published
// date is an error since ranking and timelines depend on it.
func ParseArticle(content string) (*ParsedArticle, error) {
	var fm frontmatter
	body := content

	if strings.HasPrefix(content, "---\n") {
		endIdx := strings.Index(content[4:], "\n---")
		if endIdx > 0 {
			frontmatterYAML := content[4 : 4+endIdx]
			body = strings.TrimPrefix(content[4+endIdx+4:], "\n")

			if err := yaml.Unmarshal([]byte(frontmatterYAML), &fm); err != nil {
				return nil, fmt.Errorf("parse frontmatter: %w", err)
			}
		}
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: article has no content", models.ErrInvalidArgument)
	}

	title := fm.Title
	if title == "" {
		if match := h1Regex.FindStringSubmatch(body); len(match) > 1 {
			title = strings.TrimSpace(match[1])
		}
	}
	if title == "" {
		return nil, fmt.Errorf("%w: article has no title", models.ErrInvalidArgument)
	}

	if fm.Published == "" {
		return nil, fmt.Errorf("%w: article has no published date", models.ErrInvalidArgument)
	}
	published, err := parsePublished(fm.Published)
	if err != nil {
		return nil, err
	}

	id := fm.ID
	if id == "" {
		id = uuid.NewString()
	}

	parsed := &ParsedArticle{
		Article: models.Article{
			ID:          id,
			Title:       title,
			Content:     body,
			Source:      fm.Source,
			PublishedAt: published,
		},
	}
	if fm.URL != "" {
		parsed.Article.URL = &fm.URL
	}

	for _, raw := range fm.Entities {
		if strings.TrimSpace(raw.Name) == "" {
			continue
		}
		confidence := raw.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 1
		}
		parsed.Mentions = append(parsed.Mentions, models.ExtractedMention{
			Name:       raw.Name,
			Type:       models.ParseEntityType(raw.Type),
			Confidence: confidence,
			Context:    raw.Context,
		})
	}

	return parsed, nil
}

func parsePublished(s string) (time.Time, error) {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable published date %q", models.ErrInvalidArgument, s)
}

// ParseFile reads and parses one article file.
func ParseFile(path string) (*ParsedArticle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read article file: %w", err)
	}
	parsed, err := ParseArticle(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return parsed, nil
}

// FindArticleFiles walks a directory for Markdown article files.
func FindArticleFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return paths, nil
}
