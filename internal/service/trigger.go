package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pokerjest/stashNfoHook/internal/model"
	"github.com/pokerjest/stashNfoHook/internal/stash"
)

// hookPayload mirrors the JSON Stash writes to the plugin's stdin.
type hookPayload struct {
	Args struct {
		HookContext struct {
			Type  string       `json:"type"`
			ID    interface{}  `json:"id"` // number or string depending on version
			Scene *stash.Scene `json:"scene"`
		} `json:"hookContext"`
	} `json:"args"`
}

// DecodeTrigger reads the hook payload and resolves it into the tagged
// trigger variant: an embedded scene when present, a scene id otherwise.
func DecodeTrigger(r io.Reader) (model.Trigger, error) {
	var payload hookPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return model.Trigger{}, fmt.Errorf("failed to decode hook payload: %w", err)
	}
	ctx := payload.Args.HookContext
	trigger := model.Trigger{HookType: ctx.Type}
	if ctx.Scene != nil && ctx.Scene.ID != "" {
		trigger.Kind = model.TriggerInline
		trigger.Scene = ctx.Scene
		trigger.SceneID = ctx.Scene.ID
		return trigger, nil
	}
	trigger.Kind = model.TriggerByID
	switch id := ctx.ID.(type) {
	case string:
		trigger.SceneID = id
	case float64:
		trigger.SceneID = strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return model.Trigger{}, fmt.Errorf("hook payload carries no scene id")
	default:
		return model.Trigger{}, fmt.Errorf("unexpected scene id type %T", ctx.ID)
	}
	return trigger, nil
}
