package services

import (
	"context"
	"crypto/sha1" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driven"
)

// AllCollection is the collection every distributed list joins.
const AllCollection = "all"

// ListSummary is one row of a collection artifact.
type ListSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Score   int    `json:"score"`
	Entries int    `json:"entries"`
	Updated int64  `json:"updated"`
}

// Collection is the lists/<collection> artifact.
type Collection struct {
	Lists   []ListSummary `json:"lists"`
	Entries int           `json:"entries"`
}

// ListArtifact is the list/<id> artifact.
type ListArtifact struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Desc    string            `json:"desc"`
	Score   int               `json:"score"`
	Cats    []domain.Category `json:"cats"`
	Updated int64             `json:"updated"`
	Entries map[string][]any  `json:"entries"`
}

// RepoRecord is the API shape of a repo.github entry.
type RepoRecord struct {
	Author  string         `json:"author"`
	Name    string         `json:"name"`
	Desc    string         `json:"desc"`
	Lang    string         `json:"lang"`
	License string         `json:"license"`
	Cats    []int          `json:"cats"`
	Score   int            `json:"score"`
	Scores  map[string]int `json:"scores"`
	Deltas  map[string]int `json:"deltas"`
	Pushed  int64          `json:"pushed"`
	Updated int64          `json:"updated"`
}

// Distribution summarises one Distribute call.
type Distribution struct {
	ListID      string
	Score       int
	Distributed int
	Filtered    int
	Changed     int
	Updated     int64
	Collections []string
}

// DistributorConfig configures a ListDistributor.
type DistributorConfig struct {
	// Collections maps collection ids to the list ids they contain.
	Collections map[string][]string

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// Status receives operator-facing messages. Defaults to the logger.
	Status domain.StatusFunc
}

// ListDistributor writes resolved lists into a build, diffing every record
// against the cached build so unchanged records keep their timestamps.
type ListDistributor struct {
	build       driven.Build
	cached      driven.Build
	collections map[string][]string
	now         func() time.Time
	status      domain.StatusFunc
}

// NewListDistributor creates a distributor writing to build. cached may be
// nil, in which case every record counts as new.
func NewListDistributor(build, cached driven.Build, cfg DistributorConfig) *ListDistributor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Status == nil {
		cfg.Status = LoggerStatus("distribute")
	}
	return &ListDistributor{
		build:       build,
		cached:      cached,
		collections: cfg.Collections,
		now:         cfg.Now,
		status:      cfg.Status,
	}
}

// Distribute writes list/<id> and registers the list in its collections.
// The list must be resolved.
func (d *ListDistributor) Distribute(ctx context.Context, list *EntryList) (*Distribution, error) {
	if !list.IsResolved() {
		return nil, fmt.Errorf("%w: list %s must be resolved before it is distributed", domain.ErrLogic, list.ID())
	}

	artifact, dist, err := d.buildList(ctx, list)
	if err != nil {
		return nil, err
	}
	if err := d.build.Write(ctx, "list/"+list.ID(), artifact); err != nil {
		return nil, err
	}

	summary := ListSummary{
		ID:      artifact.ID,
		Name:    artifact.Name,
		Desc:    artifact.Desc,
		Score:   artifact.Score,
		Entries: dist.Distributed,
		Updated: artifact.Updated,
	}
	for _, collection := range d.collectionsOf(list.ID()) {
		if err := d.addToCollection(ctx, collection, summary); err != nil {
			return nil, err
		}
		dist.Collections = append(dist.Collections, collection)
	}

	d.status(domain.StatusInfo, fmt.Sprintf("%s: %d entries distributed, %d filtered, %d changed",
		list.ID(), dist.Distributed, dist.Filtered, dist.Changed))
	return dist, nil
}

// collectionsOf returns "all" followed by every configured collection that
// names id, compared case-insensitively.
func (d *ListDistributor) collectionsOf(id string) []string {
	out := []string{AllCollection}
	for name, members := range d.collections {
		if strings.EqualFold(name, AllCollection) {
			continue
		}
		for _, member := range members {
			if strings.EqualFold(member, id) {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out[1:])
	return out
}

func (d *ListDistributor) buildList(ctx context.Context, list *EntryList) (*ListArtifact, *Distribution, error) {
	now := d.now().Unix()
	dist := &Distribution{ListID: list.ID()}
	entries := make(map[string][]any)
	anyChanged := false
	scoreSum := 0

	for _, entry := range list.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		if entry.Type() == domain.TypeRepoGithub && !distributable(entry) {
			dist.Filtered++
			continue
		}

		fresh, err := normalize(entry.Data())
		if err != nil {
			return nil, nil, fmt.Errorf("entry %s: %w", entry.ID(), err)
		}
		fresh[domain.KeyUpdated] = float64(now)

		cached, changed, err := d.reconcile(ctx, entry.ID(), fresh)
		if err != nil {
			return nil, nil, err
		}
		if changed {
			dist.Changed++
			anyChanged = true
		}

		if entry.Type() == domain.TypeRepoGithub {
			record := repoRecord(fresh, cached)
			scoreSum += record.Score
			entries[entry.Type()] = append(entries[entry.Type()], record)
		} else {
			entries[entry.Type()] = append(entries[entry.Type()], fresh)
		}
		dist.Distributed++
	}

	score := 0
	if dist.Distributed > 0 {
		score = int(math.Round(float64(scoreSum) / float64(dist.Distributed)))
	}
	list.SetScore(score)
	dist.Score = score

	artifact := &ListArtifact{
		ID:      list.ID(),
		Name:    list.Name(),
		Desc:    list.Desc(),
		Score:   score,
		Cats:    list.Categories(),
		Entries: entries,
	}

	meta, err := normalize(map[string]any{
		"id":    artifact.ID,
		"name":  artifact.Name,
		"desc":  artifact.Desc,
		"score": artifact.Score,
		"cats":  artifact.Cats,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", list.ID(), err)
	}
	meta[domain.KeyUpdated] = float64(now)

	if _, _, err := d.reconcileWith(ctx, "list:"+list.ID(), meta, anyChanged); err != nil {
		return nil, nil, err
	}
	artifact.Updated = int64(toFloat(meta[domain.KeyUpdated]))
	dist.Updated = artifact.Updated

	return artifact, dist, nil
}

// reconcile diffs fresh against the cached object for key. When only the
// updated stamp differs, fresh inherits the cached stamp. The result is
// always written to the new build's object cache.
func (d *ListDistributor) reconcile(ctx context.Context, key string, fresh map[string]any) (map[string]any, bool, error) {
	return d.reconcileWith(ctx, key, fresh, false)
}

// reconcileWith is reconcile where forceChanged keeps the fresh stamp even
// when the record itself did not change.
func (d *ListDistributor) reconcileWith(
	ctx context.Context, key string, fresh map[string]any, forceChanged bool,
) (map[string]any, bool, error) {
	cached, err := d.readObject(ctx, key)
	if err != nil {
		return nil, false, err
	}

	changed := true
	if cached != nil {
		diff := DeepDiff(fresh, cached)
		_, onlyUpdated := diff[domain.KeyUpdated]
		changed = len(diff) > 1 || (len(diff) == 1 && !onlyUpdated)
	}
	if !changed && !forceChanged {
		if stamp, ok := cached[domain.KeyUpdated]; ok {
			fresh[domain.KeyUpdated] = stamp
		}
	}

	if err := d.writeObject(ctx, key, fresh); err != nil {
		return nil, false, err
	}
	return cached, changed, nil
}

// ObjectPath returns the fan-out object cache path for key.
func ObjectPath(key string) string {
	sum := sha1.Sum([]byte(key)) //nolint:gosec // content addressing
	hash := hex.EncodeToString(sum[:])
	return "objects/" + hash[0:1] + "/" + hash[1:2] + "/" + hash
}

func (d *ListDistributor) readObject(ctx context.Context, key string) (map[string]any, error) {
	if d.cached == nil {
		return nil, nil
	}
	data, err := d.cached.ReadRaw(ctx, ObjectPath(key))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cached object %s: %w", key, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		d.status(domain.StatusWarning, fmt.Sprintf("ignoring unreadable cached object %s: %v", key, err))
		return nil, nil
	}
	return out, nil
}

func (d *ListDistributor) writeObject(ctx context.Context, key string, record map[string]any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode object %s: %w", key, err)
	}
	if err := d.build.WriteRaw(ctx, ObjectPath(key), data); err != nil {
		return fmt.Errorf("write object %s: %w", key, err)
	}
	return nil
}

// addToCollection registers summary in lists/<collection>. An identical row
// is left alone; a row for the same list is replaced.
func (d *ListDistributor) addToCollection(ctx context.Context, collection string, summary ListSummary) error {
	path := "lists/" + collection

	var current Collection
	exists, err := d.build.Exists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		if err := d.build.Read(ctx, path, &current); err != nil {
			return err
		}
	}

	found := false
	for i, row := range current.Lists {
		if reflect.DeepEqual(row, summary) {
			found = true
			break
		}
		if row.ID == summary.ID {
			current.Lists[i] = summary
			found = true
			break
		}
	}
	if !found {
		current.Lists = append(current.Lists, summary)
	}

	current.Entries = 0
	for _, row := range current.Lists {
		current.Entries += row.Entries
	}

	return d.build.Write(ctx, path, current)
}

// distributable reports whether a repository is worth listing: it must have
// a score and must not be archived.
func distributable(entry *domain.Entry) bool {
	data := entry.Data()
	if archived, _ := data[domain.KeyArchived].(bool); archived {
		return false
	}
	return toFloat(data[domain.KeyScoresAvg]) > 0
}

// repoRecord projects a normalised repo.github record into its API shape.
func repoRecord(fresh, cached map[string]any) RepoRecord {
	scores := toIntMap(fresh[domain.KeyScores])
	var cachedScores map[string]int
	if cached != nil {
		cachedScores = toIntMap(cached[domain.KeyScores])
	}
	deltas := make(map[string]int, len(scores))
	for k, v := range scores {
		if prev, ok := cachedScores[k]; ok {
			deltas[k] = v - prev
		} else {
			deltas[k] = 0
		}
	}

	var pushed int64
	if s, ok := fresh[domain.KeyPushedAt].(string); ok && s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			pushed = t.Unix()
		}
	}

	str := func(key string) string {
		s, _ := fresh[key].(string)
		return s
	}

	return RepoRecord{
		Author:  str(domain.KeyAuthor),
		Name:    str(domain.KeyName),
		Desc:    str(domain.KeyDescription),
		Lang:    str(domain.KeyLanguage),
		License: str(domain.KeyLicense),
		Cats:    toIntSlice(fresh[domain.KeyCategories]),
		Score:   int(toFloat(fresh[domain.KeyScoresAvg])),
		Scores:  scores,
		Deltas:  deltas,
		Pushed:  pushed,
		Updated: int64(toFloat(fresh[domain.KeyUpdated])),
	}
}
