package resolver

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/model"
	"github.com/pokerjest/stashNfoHook/internal/stash"
)

// Catalog is the slice of the Stash API the reconciliation needs. The find
// calls do case-insensitive INCLUDES matching server side; exact matching
// is done here on the returned entries.
type Catalog interface {
	FindScene(id string) (*stash.Scene, error)
	FindPerformers(name string) ([]stash.Performer, error)
	FindStudios(name string) ([]stash.Studio, error)
	FindTags(name string) ([]stash.Tag, error)
	FindMovies(name string) ([]stash.Movie, error)
	CreatePerformer(name string) (string, error)
	CreateStudio(name string) (string, error)
	CreateTag(name string) (string, error)
	CreateMovie(name, studioID, date string) (string, error)
	UpdateScene(input *stash.SceneUpdateInput) (string, error)
}

// Resolved carries the catalog ids matched or created for one record.
// Empty string / empty slice means the field stayed unresolved.
type Resolved struct {
	StudioID     string
	PerformerIDs []string
	TagIDs       []string
	MovieID      string
}

// Resolver maps the free-text names of a SceneRecord onto catalog ids,
// creating missing entities where configuration allows.
type Resolver struct {
	cfg     *config.Config
	log     *logrus.Logger
	catalog Catalog
}

func New(cfg *config.Config, log *logrus.Logger, catalog Catalog) *Resolver {
	return &Resolver{cfg: cfg, log: log, catalog: catalog}
}

// Resolve runs the per-entity lookups. Any catalog error aborts: partially
// created entities without the final scene update would be orphaned.
func (r *Resolver) Resolve(rec *model.SceneRecord) (*Resolved, error) {
	res := &Resolved{}
	var err error
	if res.PerformerIDs, err = r.resolvePerformers(rec); err != nil {
		return nil, err
	}
	if res.StudioID, err = r.resolveStudio(rec); err != nil {
		return nil, err
	}
	if res.TagIDs, err = r.resolveTags(rec); err != nil {
		return nil, err
	}
	if res.MovieID, err = r.resolveMovie(rec, res.StudioID); err != nil {
		return nil, err
	}
	return res, nil
}

// match is the shared two-pass name lookup. aliases are the comma-space
// joined alias strings per entry, nil disables the alias pass.
type match struct {
	id     string
	direct bool
	alias  bool
	count  int
}

func matchNames(candidate string, names []string, ids []string) match {
	m := match{}
	for i, name := range names {
		if strings.EqualFold(candidate, name) {
			if m.id == "" {
				m.id = ids[i]
				m.direct = true
			}
			m.count++
		}
	}
	return m
}

func matchAliases(m match, candidate string, aliases []string, ids []string) match {
	for i, aliasList := range aliases {
		if aliasList == "" {
			continue
		}
		for _, alias := range strings.Split(aliasList, ", ") {
			if strings.EqualFold(candidate, alias) {
				if m.id == "" {
					m.id = ids[i]
					m.alias = true
				}
				m.count++
			}
		}
	}
	return m
}

func (r *Resolver) reportMatch(kind, name, title string, m match) {
	r.log.Debugf("Matched existing %s '%s' with id %s (direct: %v, alias: %v, match_count: %d)",
		kind, name, m.id, m.direct, m.alias, m.count)
	if m.count > 1 {
		r.log.Warnf("Linked scene with title '%s' to existing %s '%s' (id %s). Attention: %d matches were found. Check to de-duplicate...",
			title, kind, name, m.id, m.count)
	}
}

// creationAllowed centralizes the dry-run and per-type creation gates.
func (r *Resolver) creationAllowed(kind, name string, enabled bool) bool {
	if r.cfg.DryRun {
		r.log.Infof("Dry run: skipped creation of %s '%s'", kind, name)
		return false
	}
	if !enabled {
		r.log.Infof("Creation of missing %s '%s' is disabled by config", kind, name)
		return false
	}
	return true
}

func (r *Resolver) resolvePerformers(rec *model.SceneRecord) ([]string, error) {
	var ids []string
	seen := map[string]bool{}
	for _, actor := range rec.Actors {
		if actor == "" {
			continue
		}
		performers, err := r.catalog.FindPerformers(actor)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(performers))
		entryIDs := make([]string, len(performers))
		aliases := make([]string, len(performers))
		for i, p := range performers {
			names[i], entryIDs[i], aliases[i] = p.Name, p.ID, p.Aliases
		}
		m := matchNames(actor, names, entryIDs)
		// Single-word names skip the alias pass when so configured, a
		// common first name in an alias list is a poor signal.
		if m.id == "" && r.cfg.Search.PerformerAliases &&
			(!r.cfg.Search.IgnoreSingleNameAliases || strings.Contains(actor, " ")) {
			m = matchAliases(m, actor, aliases, entryIDs)
		}
		id := m.id
		if id == "" {
			if !r.creationAllowed("performer", actor, r.cfg.Create.Performers) {
				continue
			}
			if id, err = r.catalog.CreatePerformer(actor); err != nil {
				return nil, err
			}
			r.log.Debugf("Created missing performer '%s' with id %s", actor, id)
		} else {
			r.reportMatch("performer", actor, rec.Title, m)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Resolver) resolveStudio(rec *model.SceneRecord) (string, error) {
	if rec.Studio == "" {
		return "", nil
	}
	studios, err := r.catalog.FindStudios(rec.Studio)
	if err != nil {
		return "", err
	}
	names := make([]string, len(studios))
	entryIDs := make([]string, len(studios))
	aliases := make([]string, len(studios))
	for i, s := range studios {
		names[i], entryIDs[i], aliases[i] = s.Name, s.ID, s.Aliases
	}
	m := matchNames(rec.Studio, names, entryIDs)
	if m.id == "" && r.cfg.Search.StudioAliases {
		m = matchAliases(m, rec.Studio, aliases, entryIDs)
	}
	if m.id != "" {
		r.reportMatch("studio", rec.Studio, rec.Title, m)
		return m.id, nil
	}
	if !r.creationAllowed("studio", rec.Studio, r.cfg.Create.Studio) {
		return "", nil
	}
	id, err := r.catalog.CreateStudio(rec.Studio)
	if err != nil {
		return "", err
	}
	r.log.Debugf("Created missing studio '%s' with id %s", rec.Studio, id)
	return id, nil
}

func (r *Resolver) resolveTags(rec *model.SceneRecord) ([]string, error) {
	blacklisted := map[string]bool{}
	for _, t := range r.cfg.BlacklistedTags {
		blacklisted[strings.ToLower(t)] = true
	}
	var ids []string
	seen := map[string]bool{}
	for _, name := range rec.Tags {
		if name == "" {
			continue
		}
		if blacklisted[strings.ToLower(name)] {
			r.log.Debugf("Skipping blacklisted tag '%s'", name)
			continue
		}
		tags, err := r.catalog.FindTags(name)
		if err != nil {
			return nil, err
		}
		tagNames := make([]string, len(tags))
		entryIDs := make([]string, len(tags))
		for i, t := range tags {
			tagNames[i], entryIDs[i] = t.Name, t.ID
		}
		m := matchNames(name, tagNames, entryIDs)
		id := m.id
		if id == "" {
			if !r.creationAllowed("tag", name, r.cfg.Create.Tags) {
				continue
			}
			if id, err = r.catalog.CreateTag(name); err != nil {
				return nil, err
			}
			r.log.Debugf("Created missing tag '%s' with id %s", name, id)
		} else {
			r.reportMatch("tag", name, rec.Title, m)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Resolver) resolveMovie(rec *model.SceneRecord, studioID string) (string, error) {
	if rec.Movie == "" {
		return "", nil
	}
	movies, err := r.catalog.FindMovies(rec.Movie)
	if err != nil {
		return "", err
	}
	names := make([]string, len(movies))
	entryIDs := make([]string, len(movies))
	for i, mv := range movies {
		names[i], entryIDs[i] = mv.Name, mv.ID
	}
	m := matchNames(rec.Movie, names, entryIDs)
	if m.id != "" {
		r.reportMatch("movie", rec.Movie, rec.Title, m)
		return m.id, nil
	}
	if !r.creationAllowed("movie", rec.Movie, r.cfg.Create.Movie) {
		return "", nil
	}
	id, err := r.catalog.CreateMovie(rec.Movie, studioID, rec.Date)
	if err != nil {
		return "", err
	}
	r.log.Debugf("Created missing movie '%s' with id %s", rec.Movie, id)
	return id, nil
}
