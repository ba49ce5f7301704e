package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pokerjest/stashNfoHook/internal/api"
	"github.com/pokerjest/stashNfoHook/internal/config"
	"github.com/pokerjest/stashNfoHook/internal/journal"
	"github.com/pokerjest/stashNfoHook/internal/logger"
	"github.com/pokerjest/stashNfoHook/internal/service"
	"github.com/pokerjest/stashNfoHook/internal/stash"
)

// pluginOutput is the single status object Stash expects on stdout.
type pluginOutput struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "extra directory to search for config.yaml")
	serve := flag.Bool("serve", false, "run as a webhook server instead of a stdin hook")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, !*serve)

	var jrnl *journal.Journal
	if cfg.Journal.Path != "" {
		if jrnl, err = journal.Open(cfg.Journal.Path); err != nil {
			log.Errorf("Journal disabled: %v", err)
		}
	}

	catalog := stash.NewClient(cfg.Stash.URL, cfg.Stash.APIKey,
		time.Duration(cfg.Stash.TimeoutSeconds)*time.Second)
	processor := service.NewProcessor(cfg, log, catalog, jrnl)

	if *serve {
		srv := api.NewServer(cfg, log, processor)
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Infof("Webhook server listening on %s", addr)
		if err := srv.Routes().Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	start := time.Now()
	trigger, err := service.DecodeTrigger(os.Stdin)
	if err != nil {
		exitPlugin("", err)
	}
	log.Debugf("Starting hook for scene %s", trigger.SceneID)

	result, err := processor.Process(trigger)
	log.Debugf("Execution time: %s", time.Since(start).Round(time.Millisecond))
	if err != nil {
		exitPlugin("", err)
	}
	exitPlugin(result.String(), nil)
}

// exitPlugin prints the terminal status object. The plugin protocol always
// exits zero, errors travel inside the JSON.
func exitPlugin(msg string, err error) {
	out := pluginOutput{Output: msg}
	if err != nil {
		out.Error = err.Error()
	}
	if data, jsonErr := json.Marshal(out); jsonErr == nil {
		fmt.Println(string(data))
	}
	os.Exit(0)
}
