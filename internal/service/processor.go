package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/journal"
	"github.com/pokerjest/stashNfoHook/internal/model"
	"github.com/pokerjest/stashNfoHook/internal/parser"
	"github.com/pokerjest/stashNfoHook/internal/resolver"
	"github.com/pokerjest/stashNfoHook/internal/stash"
)

// HookTypeSceneCreate is the only hook this tool handles.
const HookTypeSceneCreate = "Scene.Create.Post"

// ErrUnsupportedTrigger aborts the run before any parsing when the hook
// type is not a scene creation.
var ErrUnsupportedTrigger = errors.New("unsupported plugin trigger")

// Result is the terminal status of one scene run.
type Result struct {
	SceneID    string
	Status     string // "updated", "dry_run" or "skipped"
	Reason     string
	Source     model.Source // which parser produced the record, if any
	Performers int          // resolved performer ids
	Tags       int          // resolved tag ids
}

func (r *Result) String() string {
	if r.Reason != "" {
		return fmt.Sprintf("%s (%s)", r.Status, r.Reason)
	}
	return r.Status
}

// Processor wires the two parsers and the reconciliation together for a
// single scene. One Processor handles one scene at a time.
type Processor struct {
	cfg     *config.Config
	log     *logrus.Logger
	catalog resolver.Catalog
	nfo     *parser.NFOParser
	re      *parser.RegexParser
	res     *resolver.Resolver
	jrnl    *journal.Journal // nil when disabled
}

func NewProcessor(cfg *config.Config, log *logrus.Logger, catalog resolver.Catalog, jrnl *journal.Journal) *Processor {
	return &Processor{
		cfg:     cfg,
		log:     log,
		catalog: catalog,
		nfo:     parser.NewNFOParser(cfg, log),
		re:      parser.NewRegexParser(cfg, log),
		res:     resolver.New(cfg, log, catalog),
		jrnl:    jrnl,
	}
}

// Process runs the full pipeline for the triggered scene. Catalog failures
// are fatal and returned as errors, everything else degrades to a skip.
func (p *Processor) Process(trigger model.Trigger) (*Result, error) {
	if trigger.HookType != HookTypeSceneCreate {
		return nil, fmt.Errorf("%w: %s. This tool only supports '%s'",
			ErrUnsupportedTrigger, trigger.HookType, HookTypeSceneCreate)
	}

	scene, err := p.loadScene(trigger)
	if err != nil {
		return nil, err
	}

	result, err := p.processScene(scene)
	p.record(scene, result, err)
	return result, err
}

func (p *Processor) loadScene(trigger model.Trigger) (*stash.Scene, error) {
	if trigger.Kind == model.TriggerInline && trigger.Scene != nil {
		return trigger.Scene, nil
	}
	return p.catalog.FindScene(trigger.SceneID)
}

func (p *Processor) processScene(scene *stash.Scene) (*Result, error) {
	// Organized scenes were confirmed by hand, leave them alone.
	if scene.Organized && p.cfg.SkipOrganized {
		p.log.Debugf("Skipping already organized scene id: %s", scene.ID)
		return &Result{SceneID: scene.ID, Status: "skipped", Reason: "scene already organized"}, nil
	}

	defaults := p.folderDefaults(scene.Path)
	rec := p.nfo.Parse(scene.Path, false, defaults)
	if rec == nil {
		rec = p.re.Parse(scene.Path, defaults)
	}
	if rec == nil {
		p.log.Debugf("No nfo file and no regex config for scene %s, nothing to do", scene.ID)
		return &Result{SceneID: scene.ID, Status: "skipped", Reason: "no metadata source found"}, nil
	}

	resolved, err := p.res.Resolve(rec)
	if err != nil {
		return nil, err
	}
	payload := resolver.BuildPayload(p.cfg, scene, rec, resolved)

	result := &Result{
		SceneID:    scene.ID,
		Source:     rec.Source,
		Performers: len(resolved.PerformerIDs),
		Tags:       len(resolved.TagIDs),
	}
	if p.cfg.DryRun {
		p.log.Infof("Dry run: would update scene %s with %s", scene.ID, payloadForLog(payload))
		result.Status = "dry_run"
		return result, nil
	}
	if _, err := p.catalog.UpdateScene(payload); err != nil {
		return nil, err
	}
	p.log.Infof("Updated scene %s from %s '%s'", scene.ID, rec.Source, rec.File)
	result.Status = "updated"
	return result, nil
}

// folderDefaults builds the lowest-priority fallback records once per
// invocation: a folder.nfo sidecar and a regex match on the folder path.
// Both parsers consult these for fields their own source is missing.
func (p *Processor) folderDefaults(scenePath string) model.DefaultsChain {
	dir := filepath.Dir(scenePath)
	var chain model.DefaultsChain
	if folderRec := p.nfo.Parse(scenePath, true, nil); folderRec != nil {
		chain = append(chain, folderRec)
	}
	if folderRe := p.re.Parse(dir, nil); folderRe != nil {
		chain = append(chain, folderRe)
	}
	return chain
}

// payloadForLog renders the payload with embedded images shortened, a full
// base64 cover would drown the log.
func payloadForLog(input *stash.SceneUpdateInput) string {
	clone := *input
	if clone.CoverImage != nil {
		placeholder := "<base64 image data>"
		clone.CoverImage = &placeholder
	}
	data, err := json.Marshal(&clone)
	if err != nil {
		return fmt.Sprintf("%+v", &clone)
	}
	return string(data)
}

func (p *Processor) record(scene *stash.Scene, result *Result, runErr error) {
	if p.jrnl == nil || scene == nil {
		return
	}
	e := &journal.Entry{
		SceneID: scene.ID,
		Path:    scene.Path,
		DryRun:  p.cfg.DryRun,
	}
	if result != nil {
		e.Status = result.Status
		e.Reason = result.Reason
		e.Source = string(result.Source)
		e.Performers = result.Performers
		e.Tags = result.Tags
	}
	if runErr != nil {
		e.Status = "error"
		e.Error = runErr.Error()
	}
	if err := p.jrnl.Record(e); err != nil {
		p.log.Debugf("Failed to write journal entry for scene %s: %v", scene.ID, err)
	}
}
