package domain

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Entry type tags.
const (
	// TypeRepoGithub tags a GitHub repository entry.
	TypeRepoGithub = "repo.github"
)

// Well-known entry data keys.
const (
	KeyAuthor      = "author"
	KeyName        = "name"
	KeyDescription = "description"
	KeyLanguage    = "language"
	KeyLicense     = "license"
	KeyScoresAvg   = "scores_avg"
	KeyScores      = "scores"
	KeyPushedAt    = "pushed_at"
	KeyArchived    = "archived"
	KeyCategories  = "categories"
	KeyResolvedAt  = "resolved_at"
	KeyUpdated     = "updated"
)

// Entry is one catalog item. Its type and id never change after creation;
// its data is filled in by resolvers and the list organiser.
type Entry struct {
	typ      string
	id       string
	data     map[string]any
	resolved bool
}

// NewEntry creates an entry whose id is derived from its type and natural key.
func NewEntry(typ, key string, data map[string]any) *Entry {
	d := make(map[string]any, len(data))
	maps.Copy(d, data)
	return &Entry{
		typ:  typ,
		id:   EntryID(typ, key),
		data: d,
	}
}

// EntryID builds the stable identity "<type>:<key>".
func EntryID(typ, key string) string {
	return typ + ":" + key
}

// NewRepoGithubEntry creates a repo.github entry for author/name.
func NewRepoGithubEntry(author, name string) *Entry {
	return NewEntry(TypeRepoGithub, author+"/"+name, map[string]any{
		KeyAuthor: author,
		KeyName:   name,
	})
}

// Type returns the entry type tag.
func (e *Entry) Type() string {
	return e.typ
}

// ID returns the stable entry identity.
func (e *Entry) ID() string {
	return e.id
}

// Data returns a shallow copy of the entry data.
func (e *Entry) Data() map[string]any {
	d := make(map[string]any, len(e.data))
	maps.Copy(d, e.data)
	return d
}

// Get returns the value stored under key, or ErrUndefinedKey.
func (e *Entry) Get(key string) (any, error) {
	v, ok := e.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUndefinedKey, key, e.id)
	}
	return v, nil
}

// GetString returns the string under key, or "" when missing or not a string.
func (e *Entry) GetString(key string) string {
	s, _ := e.data[key].(string)
	return s
}

// Has reports whether key is set.
func (e *Entry) Has(key string) bool {
	_, ok := e.data[key]
	return ok
}

// Set stores a single value.
func (e *Entry) Set(key string, value any) {
	e.data[key] = value
}

// Merge copies every key of data onto the entry, overwriting existing values.
func (e *Entry) Merge(data map[string]any) {
	maps.Copy(e.data, data)
}

// IsResolved reports whether a resolver has enriched this entry.
func (e *Entry) IsResolved() bool {
	return e.resolved
}

// SetResolved marks the entry as resolved.
func (e *Entry) SetResolved(resolved bool) {
	e.resolved = resolved
}

// Clone returns an independent copy of the entry.
func (e *Entry) Clone() *Entry {
	return &Entry{
		typ:      e.typ,
		id:       e.id,
		data:     e.Data(),
		resolved: e.resolved,
	}
}

type entryJSON struct {
	Type     string         `json:"type"`
	ID       string         `json:"id"`
	Data     map[string]any `json:"data"`
	Resolved bool           `json:"resolved"`
}

// MarshalJSON encodes the entry as a plain record.
func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Type:     e.typ,
		ID:       e.id,
		Data:     e.data,
		Resolved: e.resolved,
	})
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Type == "" || raw.ID == "" {
		return fmt.Errorf("%w: entry record without type or id", ErrInvalidInput)
	}
	if raw.Data == nil {
		raw.Data = make(map[string]any)
	}
	e.typ = raw.Type
	e.id = raw.ID
	e.data = raw.Data
	e.resolved = raw.Resolved
	return nil
}
