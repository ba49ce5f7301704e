package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/model"
)

// regexConfig is the per-directory pattern config file
// (nfoSceneParser.json): a regex with named capture groups, an optional
// splitter for multi-value groups, and the match scope.
type regexConfig struct {
	Regex    string `json:"regex"`
	Splitter string `json:"splitter"`
	Scope    string `json:"scope"` // "path" (default) or "filename"
}

// RegexParser extracts scene metadata by matching a user-provided regex
// against the scene path. Used as fallback when no sidecar file exists.
type RegexParser struct {
	cfg       *config.Config
	log       *logrus.Logger
	blacklist model.FieldSet
}

func NewRegexParser(cfg *config.Config, log *logrus.Logger) *RegexParser {
	return &RegexParser{cfg: cfg, log: log, blacklist: model.NewFieldSet(cfg.Blacklist)}
}

// findConfig looks for the pattern config in dir and every ancestor
// directory up to the filesystem root.
func (p *RegexParser) findConfig(dir string) (string, *regexConfig) {
	for {
		file := filepath.Join(dir, p.cfg.RegexConfigName)
		if data, err := os.ReadFile(file); err == nil {
			rc := &regexConfig{}
			if err := json.Unmarshal(data, rc); err != nil || rc.Regex == "" {
				p.log.Infof("Could not load regex config file '%s': %v", file, err)
				return "", nil
			}
			p.log.Debugf("Using regex config file %s", file)
			return file, rc
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Parse matches the configured regex against scenePath and builds a record
// from the named capture groups, falling back to defaults for missing
// groups. Returns nil when no config file applies to this path. A config
// that does not match still yields a record so defaults can apply.
func (p *RegexParser) Parse(scenePath string, defaults model.DefaultsChain) *model.SceneRecord {
	file, rc := p.findConfig(filepath.Dir(scenePath))
	if rc == nil {
		p.log.Debugf("No regex config found for %s", scenePath)
		return nil
	}

	re, err := regexp.Compile(rc.Regex)
	if err != nil {
		p.log.Infof("Invalid regex in '%s': %v", file, err)
		return nil
	}

	name := scenePath
	if strings.EqualFold(rc.Scope, "filename") {
		name = filepath.Base(scenePath)
	}

	groups := map[string]string{}
	if m := re.FindStringSubmatch(name); m != nil {
		for i, g := range re.SubexpNames() {
			if g != "" && m[i] != "" {
				groups[g] = m[i]
			}
		}
	} else {
		p.log.Infof("Regex found in %s, is NOT matching '%s'", file, name)
	}

	rec := &model.SceneRecord{
		Source: model.SourceRegex,
		File:   file,
	}
	if !p.blacklist.Has(model.FieldTitle) {
		rec.Title = firstOf(groups["title"], defaults.Lookup(model.FieldTitle, model.SourceRegex))
	}
	if !p.blacklist.Has(model.FieldDetails) {
		rec.Details = defaults.Lookup(model.FieldDetails)
	}
	if !p.blacklist.Has(model.FieldStudio) {
		rec.Studio = firstOf(groups["studio"], defaults.Lookup(model.FieldStudio))
	}
	if !p.blacklist.Has(model.FieldDirector) {
		rec.Director = firstOf(groups["director"], defaults.Lookup(model.FieldDirector))
	}
	if !p.blacklist.Has(model.FieldMovie) {
		// A scene belonging to a movie is usually named after it: the
		// movie falls back to the default title, not the default movie.
		rec.Movie = firstOf(groups["movie"], defaults.Lookup(model.FieldTitle))
	}
	if !p.blacklist.Has(model.FieldDate) {
		rec.Date = firstOf(p.extractDate(groups, name), defaults.Lookup(model.FieldDate))
	}
	if !p.blacklist.Has(model.FieldRating) {
		rec.Rating = p.extractRating(groups)
		if rec.Rating == 0 {
			rec.Rating = defaults.LookupRating()
		}
	}
	rec.SceneIndex = p.extractIndex(groups)
	if rec.SceneIndex == 0 {
		rec.SceneIndex = defaults.LookupIndex()
	}
	if !p.blacklist.Has(model.FieldPerformers) {
		rec.Actors = p.split(groups["performers"], rc.Splitter)
		if len(rec.Actors) == 0 {
			rec.Actors = defaults.LookupActors()
		}
	}
	if !p.blacklist.Has(model.FieldTags) {
		rec.Tags = model.MergeTags(p.split(groups["tags"], rc.Splitter), defaults.AllTags())
	}
	return rec
}

// extractDate parses the date group when captured, otherwise scans the
// whole matched scope string for a recognizable date.
func (p *RegexParser) extractDate(groups map[string]string, name string) string {
	raw := groups["date"]
	if raw == "" {
		raw = name
	}
	return FindDate(raw)
}

func (p *RegexParser) extractRating(groups map[string]string) int {
	if groups["rating"] == "" {
		return 0
	}
	r, err := strconv.Atoi(strings.TrimSpace(groups["rating"]))
	if err != nil || r < 0 || r > 5 {
		p.log.Debugf("Ignoring unparseable rating '%s'", groups["rating"])
		return 0
	}
	return r
}

func (p *RegexParser) extractIndex(groups map[string]string) int {
	if groups["index"] == "" {
		return 0
	}
	i, err := strconv.Atoi(strings.TrimSpace(groups["index"]))
	if err != nil || i < 0 {
		return 0
	}
	return i
}

// split breaks a multi-value capture on the configured splitter. Without a
// splitter the whole capture is a single value.
func (p *RegexParser) split(value, splitter string) []string {
	if value == "" {
		return nil
	}
	if splitter == "" {
		return []string{strings.TrimSpace(value)}
	}
	var out []string
	for _, v := range strings.Split(value, splitter) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
