package resolver

import (
	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/model"
	"github.com/pokerjest/stashNfoHook/internal/stash"
)

// BuildPayload assembles the scene update from the parsed record, the
// resolved ids and the scene's current state. Performer and tag links are
// additive only: existing ids are kept and merged with the resolved ones.
// Scalar fields overwrite, or fill empty fields only when override_values
// is off.
func BuildPayload(cfg *config.Config, scene *stash.Scene, rec *model.SceneRecord, res *Resolved) *stash.SceneUpdateInput {
	input := &stash.SceneUpdateInput{ID: scene.ID}

	setString := func(value, current string, dst **string) {
		if value == "" {
			return
		}
		if !cfg.OverrideValues && current != "" {
			return
		}
		v := value
		*dst = &v
	}
	setString(rec.Title, scene.Title, &input.Title)
	setString(rec.Details, scene.Details, &input.Details)
	setString(rec.Date, scene.Date, &input.Date)
	setString(rec.URL, scene.URL, &input.URL)
	setString(rec.Director, scene.Director, &input.Director)
	if rec.Rating != 0 && (cfg.OverrideValues || scene.Rating == 0) {
		v := rec.Rating
		input.Rating = &v
	}
	if res.StudioID != "" && (cfg.OverrideValues || scene.Studio == nil) {
		v := res.StudioID
		input.StudioID = &v
	}
	if rec.CoverImage != "" {
		v := rec.CoverImage
		input.CoverImage = &v
	}

	input.PerformerIDs = unionIDs(performerIDs(scene), res.PerformerIDs)
	input.TagIDs = unionIDs(tagIDs(scene), res.TagIDs)
	input.Movies = mergeMovies(scene, rec, res)

	if organized := organizedAfterUpdate(cfg, rec, res); organized {
		v := true
		input.Organized = &v
	}
	return input
}

func performerIDs(scene *stash.Scene) []string {
	ids := make([]string, 0, len(scene.Performers))
	for _, p := range scene.Performers {
		ids = append(ids, p.ID)
	}
	return ids
}

func tagIDs(scene *stash.Scene) []string {
	ids := make([]string, 0, len(scene.Tags))
	for _, t := range scene.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// unionIDs keeps existing links and appends new ids, never removes.
func unionIDs(existing, resolved []string) []string {
	seen := make(map[string]bool, len(existing)+len(resolved))
	var out []string
	for _, lst := range [][]string{existing, resolved} {
		for _, id := range lst {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// mergeMovies keeps the scene's existing movie links and adds the resolved
// one with its scene index if it is not linked yet.
func mergeMovies(scene *stash.Scene, rec *model.SceneRecord, res *Resolved) []stash.SceneMovieInput {
	var out []stash.SceneMovieInput
	linked := false
	for _, sm := range scene.Movies {
		in := stash.SceneMovieInput{MovieID: sm.Movie.ID}
		if sm.SceneIndex != 0 {
			idx := sm.SceneIndex
			in.SceneIndex = &idx
		}
		if sm.Movie.ID == res.MovieID {
			linked = true
		}
		out = append(out, in)
	}
	if res.MovieID != "" && !linked {
		in := stash.SceneMovieInput{MovieID: res.MovieID}
		if rec.SceneIndex != 0 {
			idx := rec.SceneIndex
			in.SceneIndex = &idx
		}
		out = append(out, in)
	}
	return out
}

// organizedAfterUpdate decides whether this update also marks the scene
// organized: only for sidecar-sourced records, and only when every field
// the config requires actually resolved.
func organizedAfterUpdate(cfg *config.Config, rec *model.SceneRecord, res *Resolved) bool {
	if !cfg.SetOrganized || rec.Source != model.SourceNFO {
		return false
	}
	for _, name := range cfg.SetOrganizedOnlyIf {
		ok := false
		switch model.Field(name) {
		case model.FieldTitle:
			ok = rec.Title != ""
		case model.FieldDetails:
			ok = rec.Details != ""
		case model.FieldDate:
			ok = rec.Date != ""
		case model.FieldRating:
			ok = rec.Rating != 0
		case model.FieldURL:
			ok = rec.URL != ""
		case model.FieldCoverImage:
			ok = rec.CoverImage != ""
		case model.FieldStudio:
			ok = res.StudioID != ""
		case model.FieldPerformers:
			ok = len(res.PerformerIDs) > 0
		case model.FieldTags:
			ok = len(res.TagIDs) > 0
		case model.FieldMovie:
			ok = res.MovieID != ""
		}
		if !ok {
			return false
		}
	}
	return true
}
