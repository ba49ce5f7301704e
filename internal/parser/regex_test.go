package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/logger"
	"github.com/pokerjest/stashNfoHook/internal/model"
)

func newTestRegexParser(cfg *config.Config) *RegexParser {
	if cfg.RegexConfigName == "" {
		cfg.RegexConfigName = "nfoSceneParser.json"
	}
	return NewRegexParser(cfg, logger.Discard())
}

func writeRegexConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "nfoSceneParser.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRegexParseNoConfig(t *testing.T) {
	p := newTestRegexParser(testConfig())
	if rec := p.Parse(filepath.Join(t.TempDir(), "scene.mp4"), nil); rec != nil {
		t.Errorf("expected nil without config, got %+v", rec)
	}
}

func TestRegexParseMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	writeRegexConfig(t, dir, "{not json")
	p := newTestRegexParser(testConfig())
	if rec := p.Parse(filepath.Join(dir, "scene.mp4"), nil); rec != nil {
		t.Errorf("expected malformed config treated as absent, got %+v", rec)
	}
}

func TestRegexParseFilenameScope(t *testing.T) {
	dir := t.TempDir()
	writeRegexConfig(t, dir, `{
        "regex": "(?P<studio>[^-]+) - (?P<title>.+) - (?P<performers>.+)\\.mp4",
        "splitter": ", ",
        "scope": "filename"
    }`)
	p := newTestRegexParser(testConfig())
	rec := p.Parse(filepath.Join(dir, "ABC Studio - My Scene 03-04-2021 - Anna Smith, Beth Jones.mp4"), nil)
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Source != model.SourceRegex {
		t.Errorf("source: got %s", rec.Source)
	}
	if rec.Studio != "ABC Studio" {
		t.Errorf("studio: got %q", rec.Studio)
	}
	if rec.Title != "My Scene 03-04-2021" {
		t.Errorf("title: got %q", rec.Title)
	}
	if !reflect.DeepEqual(rec.Actors, []string{"Anna Smith", "Beth Jones"}) {
		t.Errorf("actors: got %v", rec.Actors)
	}
	// no date group: the whole scope string is scanned, DD-MM-YYYY form
	if rec.Date != "2021-04-03" {
		t.Errorf("date: got %q", rec.Date)
	}
	// movie falls back to the default title, none configured here
	if rec.Movie != "" {
		t.Errorf("movie: got %q", rec.Movie)
	}
}

func TestRegexParseConfigInAncestor(t *testing.T) {
	root := t.TempDir()
	writeRegexConfig(t, root, `{"regex": "(?P<title>[^/]+)\\.mp4$"}`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	p := newTestRegexParser(testConfig())
	rec := p.Parse(filepath.Join(nested, "Nested Scene.mp4"), nil)
	if rec == nil || rec.Title != "Nested Scene" {
		t.Errorf("expected config found in ancestor dir, got %+v", rec)
	}
}

func TestRegexParseNoMatchStillYieldsRecord(t *testing.T) {
	dir := t.TempDir()
	writeRegexConfig(t, dir, `{"regex": "^WONTMATCH (?P<title>.+)$", "scope": "filename"}`)
	defaults := model.DefaultsChain{{Source: model.SourceNFO, Studio: "Fallback Studio"}}
	p := newTestRegexParser(testConfig())
	rec := p.Parse(filepath.Join(dir, "scene.mp4"), defaults)
	if rec == nil {
		t.Fatal("config present: expected a present-but-empty record")
	}
	if rec.Title != "" {
		t.Errorf("title should be empty, got %q", rec.Title)
	}
	if rec.Studio != "Fallback Studio" {
		t.Errorf("defaults should still apply, got %q", rec.Studio)
	}
}

func TestRegexParseSingleValueWithoutSplitter(t *testing.T) {
	dir := t.TempDir()
	writeRegexConfig(t, dir, `{"regex": "(?P<performers>[^/]+)\\.mp4$"}`)
	p := newTestRegexParser(testConfig())
	rec := p.Parse(filepath.Join(dir, "Anna Smith.mp4"), nil)
	if rec == nil || !reflect.DeepEqual(rec.Actors, []string{"Anna Smith"}) {
		t.Errorf("expected single performer, got %+v", rec)
	}
}

func TestRegexParseGroups(t *testing.T) {
	dir := t.TempDir()
	writeRegexConfig(t, dir, `{
        "regex": "(?P<movie>.+) - (?P<index>\\d+) - (?P<date>[0-9-]+) - (?P<rating>\\d)( (?P<tags>.+))?\\.mp4",
        "splitter": ",",
        "scope": "filename"
    }`)
	p := newTestRegexParser(testConfig())
	rec := p.Parse(filepath.Join(dir, "Great Series - 2 - 2020-05-06 - 4 hd,outdoor.mp4"), nil)
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Movie != "Great Series" {
		t.Errorf("movie: got %q", rec.Movie)
	}
	if rec.SceneIndex != 2 {
		t.Errorf("index: got %d", rec.SceneIndex)
	}
	if rec.Date != "2020-05-06" {
		t.Errorf("date: got %q", rec.Date)
	}
	if rec.Rating != 4 {
		t.Errorf("rating: got %d", rec.Rating)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"hd", "outdoor"}) {
		t.Errorf("tags: got %v", rec.Tags)
	}
}
