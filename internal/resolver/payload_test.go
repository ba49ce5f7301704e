package resolver

import (
	"reflect"
	"testing"

	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/model"
	"github.com/pokerjest/stashNfoHook/internal/stash"
)

func payloadConfig() *config.Config {
	return &config.Config{
		OverrideValues: true,
		SetOrganized:   true,
		SetOrganizedOnlyIf: []string{
			"title", "performers", "details", "date", "studio",
		},
	}
}

func baseScene() *stash.Scene {
	return &stash.Scene{
		ID:         "42",
		Performers: []stash.Performer{{ID: "p-old", Name: "Old"}},
		Tags:       []stash.Tag{{ID: "t-old", Name: "old"}},
	}
}

func fullRecord() *model.SceneRecord {
	return &model.SceneRecord{
		Source:  model.SourceNFO,
		Title:   "T",
		Details: "D",
		Date:    "2020-01-02",
	}
}

func fullResolved() *Resolved {
	return &Resolved{
		StudioID:     "s1",
		PerformerIDs: []string{"p-new"},
		TagIDs:       []string{"t-new"},
	}
}

func TestBuildPayloadAdditiveLinks(t *testing.T) {
	input := BuildPayload(payloadConfig(), baseScene(), fullRecord(), fullResolved())
	if !reflect.DeepEqual(input.PerformerIDs, []string{"p-old", "p-new"}) {
		t.Errorf("performer ids not additive: %v", input.PerformerIDs)
	}
	if !reflect.DeepEqual(input.TagIDs, []string{"t-old", "t-new"}) {
		t.Errorf("tag ids not additive: %v", input.TagIDs)
	}
}

func TestBuildPayloadOverrideModes(t *testing.T) {
	scene := baseScene()
	scene.Title = "Existing Title"
	scene.Date = ""

	// override on: incoming wins
	input := BuildPayload(payloadConfig(), scene, fullRecord(), fullResolved())
	if input.Title == nil || *input.Title != "T" {
		t.Errorf("override mode should rewrite title, got %v", input.Title)
	}

	// fill-empty-only: populated fields stay, empty fields fill
	cfg := payloadConfig()
	cfg.OverrideValues = false
	input = BuildPayload(cfg, scene, fullRecord(), fullResolved())
	if input.Title != nil {
		t.Errorf("fill-empty mode must not touch populated title, got %q", *input.Title)
	}
	if input.Date == nil || *input.Date != "2020-01-02" {
		t.Errorf("fill-empty mode should fill empty date, got %v", input.Date)
	}
}

func TestBuildPayloadOrganized(t *testing.T) {
	input := BuildPayload(payloadConfig(), baseScene(), fullRecord(), fullResolved())
	if input.Organized == nil || !*input.Organized {
		t.Error("expected organized set for complete nfo record")
	}
}

func TestBuildPayloadOrganizedNeverForRegexSource(t *testing.T) {
	rec := fullRecord()
	rec.Source = model.SourceRegex
	input := BuildPayload(payloadConfig(), baseScene(), rec, fullResolved())
	if input.Organized != nil {
		t.Error("regex-sourced records must never set organized")
	}
}

func TestBuildPayloadOrganizedRequiresAllFields(t *testing.T) {
	rec := fullRecord()
	rec.Details = "" // required by set_organized_only_if
	input := BuildPayload(payloadConfig(), baseScene(), rec, fullResolved())
	if input.Organized != nil {
		t.Error("organized must not be set when a required field is missing")
	}
}

func TestBuildPayloadMovies(t *testing.T) {
	scene := baseScene()
	scene.Movies = []stash.SceneMovie{{Movie: stash.Movie{ID: "m-old"}, SceneIndex: 1}}
	rec := fullRecord()
	rec.SceneIndex = 4
	res := fullResolved()
	res.MovieID = "m-new"

	input := BuildPayload(payloadConfig(), scene, rec, res)
	if len(input.Movies) != 2 {
		t.Fatalf("expected existing plus new movie link, got %v", input.Movies)
	}
	if input.Movies[0].MovieID != "m-old" || input.Movies[0].SceneIndex == nil || *input.Movies[0].SceneIndex != 1 {
		t.Errorf("existing link must survive: %+v", input.Movies[0])
	}
	if input.Movies[1].MovieID != "m-new" || input.Movies[1].SceneIndex == nil || *input.Movies[1].SceneIndex != 4 {
		t.Errorf("new link wrong: %+v", input.Movies[1])
	}

	// already linked: no duplicate
	res.MovieID = "m-old"
	input = BuildPayload(payloadConfig(), scene, rec, res)
	if len(input.Movies) != 1 {
		t.Errorf("linked movie must not duplicate, got %v", input.Movies)
	}
}

func TestBuildPayloadSkipsEmptyScalars(t *testing.T) {
	rec := &model.SceneRecord{Source: model.SourceNFO, Title: "only title"}
	input := BuildPayload(payloadConfig(), baseScene(), rec, &Resolved{})
	if input.Details != nil || input.Date != nil || input.Rating != nil || input.StudioID != nil {
		t.Errorf("empty fields must stay nil: %+v", input)
	}
}
