// Command sheet-syncd is the self-hosted alternative to the Cloud Functions
// surface: it loads sheet configurations from a YAML file, builds an engine
// per configuration, and runs the auto-sync scheduler until terminated.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"usersync.dev/gsheet-sync/sheetsync"
)

const directoryUrlName = "DIRECTORY_URL"
const directoryTokenName = "DIRECTORY_TOKEN"

func main() {
	var configPath = flag.String("config", "sheet-sync.yaml", "path to the sync configuration file")
	flag.Parse()

	configs, err := sheetsync.LoadConfigs(*configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if len(configs) == 0 {
		log.Fatalf("no configurations in %s", *configPath)
	}

	var directoryUrl = os.Getenv(directoryUrlName)
	if len(directoryUrl) == 0 {
		log.Fatalf("environment variable %q is not set", directoryUrlName)
	}
	var directoryToken = os.Getenv(directoryTokenName)

	var ctx = context.Background()
	var engines []sheetsync.ISheetSync
	for _, cfg := range configs {
		credentials, err := os.ReadFile(cfg.Credentials)
		if err != nil {
			log.Fatalf("configuration %q: read credentials: %v", cfg.Name, err)
		}
		store, err := sheetsync.NewGoogleSheetsStore(ctx, credentials)
		if err != nil {
			log.Fatalf("configuration %q: %v", cfg.Name, err)
		}
		var directory = sheetsync.NewRestDirectory(directoryUrl, directoryToken)
		engines = append(engines, sheetsync.NewSheetSync(cfg, store, directory, sheetsync.NewMemoryGridCache()))
	}

	var scheduler = sheetsync.NewScheduler(engines, nil)
	if err = scheduler.Start(); err != nil {
		log.Fatalln(err)
	}

	var stop = make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	scheduler.Stop()
}
