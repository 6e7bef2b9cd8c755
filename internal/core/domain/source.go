package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// SourceType identifies how a source's data is turned into entries.
type SourceType string

const (
	SourceMarkdown     SourceType = "markdown"
	SourceMarkdownURL  SourceType = "markdown.url"
	SourceGithubAuthor SourceType = "github.author"
	SourceGithubList   SourceType = "github.list"
	SourceGithubRepos  SourceType = "github.repos"
	SourceURLList      SourceType = "url.list"
	SourceEntries      SourceType = "entries"
)

// Source option keys.
const (
	// OptionCategory is the default category label for entries a source produces.
	OptionCategory = "category"

	// OptionIncludeAuthorForks includes forked repositories for github.author sources.
	OptionIncludeAuthorForks = "includeAuthorForks"
)

// Source is a declarative input describing where entries come from.
// Data shape depends on Type: a string for markdown, markdown.url, github.author
// and github.list; a list of strings for github.repos and url.list; a list of
// {type, data, category} mappings for entries.
type Source struct {
	Type    SourceType     `json:"type" yaml:"type"`
	Data    any            `json:"data" yaml:"data"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Category returns the category option, or fallback when unset.
func (s Source) Category(fallback string) string {
	if c, ok := s.Options[OptionCategory].(string); ok && c != "" {
		return c
	}
	return fallback
}

// BoolOption returns a boolean option, false when unset.
func (s Source) BoolOption(key string) bool {
	b, _ := s.Options[key].(bool)
	return b
}

// StringData returns Data as a string.
func (s Source) StringData() (string, error) {
	str, ok := s.Data.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s source expects string data, got %T", ErrInvalidInput, s.Type, s.Data)
	}
	return str, nil
}

// StringListData returns Data as a list of strings.
func (s Source) StringListData() ([]string, error) {
	switch v := s.Data.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s source expects string items, got %T", ErrInvalidInput, s.Type, item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s source expects a list, got %T", ErrInvalidInput, s.Type, s.Data)
	}
}

// Equal reports whether two sources have the same type and data.
// Options are ignored: a processor that only rewrites options has not progressed.
func (s Source) Equal(other Source) bool {
	return s.Type == other.Type && reflect.DeepEqual(s.Data, other.Data)
}

// Fingerprint returns a stable string for cycle detection.
func (s Source) Fingerprint() string {
	b, err := json.Marshal(struct {
		Type SourceType `json:"t"`
		Data any        `json:"d"`
	}{s.Type, s.Data})
	if err != nil {
		return fmt.Sprintf("%s:%v", s.Type, s.Data)
	}
	return string(b)
}

// EntryDefinition is one typed entry description carried by an entries source.
type EntryDefinition struct {
	Type     string         `json:"type" yaml:"type"`
	Data     map[string]any `json:"data" yaml:"data"`
	Category string         `json:"category,omitempty" yaml:"category,omitempty"`
}

// EntryDefinitionsData returns Data as entry definitions.
func (s Source) EntryDefinitionsData() ([]EntryDefinition, error) {
	switch v := s.Data.(type) {
	case []EntryDefinition:
		return v, nil
	case []any:
		out := make([]EntryDefinition, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: entries source expects mappings, got %T", ErrInvalidInput, item)
			}
			def := EntryDefinition{}
			def.Type, _ = m["type"].(string)
			def.Category, _ = m["category"].(string)
			if data, ok := m["data"].(map[string]any); ok {
				def.Data = data
			}
			out = append(out, def)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: entries source expects a list, got %T", ErrInvalidInput, s.Data)
	}
}
