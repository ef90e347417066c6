package user_gsheet_sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/cloudevents/sdk-go/v2/event"
	ksm "github.com/keeper-security/secrets-manager-go/core"

	"usersync.dev/gsheet-sync/sheetsync"
)

func init() {
	// Register an HTTP function with the Functions Framework
	functions.HTTP("GcpUserSheetSyncHttp", gcpUserSheetSyncHttp)
	functions.CloudEvent("GcpUserSheetSyncPubSub", gcpUserSheetSyncPubSub)
}

const ksmConfigName = "KSM_CONFIG_BASE64"
const ksmRecordUid = "KSM_RECORD_UID"

func buildEngine() (engine sheetsync.ISheetSync, err error) {
	var configBase64 = os.Getenv(ksmConfigName)
	if len(configBase64) == 0 {
		err = fmt.Errorf("environment variable %q is not set", ksmConfigName)
		log.Println(err)
		return
	}

	var config = ksm.NewMemoryKeyValueStorage(configBase64)
	var sm = ksm.NewSecretsManager(&ksm.ClientOptions{
		Config: config,
	})

	var filter []string
	var recordUid = os.Getenv(ksmRecordUid)
	if len(recordUid) > 0 {
		filter = append(filter, recordUid)
	}

	var records []*ksm.Record
	if records, err = sm.GetSecrets(filter); err != nil {
		log.Println(err)
		return
	}

	var syncRecord *ksm.Record
	for _, r := range records {
		if r.Type() != "login" {
			continue
		}
		if len(r.GetFieldValueByType("url")) == 0 {
			continue
		}
		if len(r.FindFiles("credentials.json")) == 0 {
			continue
		}
		syncRecord = r
		break
	}
	if syncRecord == nil {
		err = errors.New("sync record was not found. Make sure the record is valid and shared to the KSM application")
		log.Println(err)
		return
	}

	var params *sheetsync.SyncParameters
	if params, err = sheetsync.LoadSyncParametersFromRecord(syncRecord); err != nil {
		log.Println(err)
		return
	}

	var store sheetsync.ITabularStore
	if store, err = sheetsync.NewGoogleSheetsStore(context.Background(), params.Credentials); err != nil {
		log.Println(err)
		return
	}
	var directory = sheetsync.NewRestDirectory(params.DirectoryUrl, params.DirectoryToken)

	engine = sheetsync.NewSheetSync(params.Config, store, directory, sheetsync.NewMemoryGridCache())
	return
}

func runSync(direction string) (result *sheetsync.SyncResult, err error) {
	var engine sheetsync.ISheetSync
	if engine, err = buildEngine(); err != nil {
		return
	}
	if direction == sheetsync.DirectionPush {
		result = engine.PushAll()
	} else {
		result = engine.Pull()
	}
	return
}

func printResult(w io.Writer, direction string, result *sheetsync.SyncResult) {
	if result == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "%s: created %d, updated %d, skipped %d\n",
		direction, result.Created, result.Updated, result.Skipped)
	if len(result.Errors) > 0 {
		_, _ = fmt.Fprintf(w, "Errors:\n")
		for _, txt := range result.Errors {
			_, _ = fmt.Fprintf(w, "\t%s\n", txt)
		}
	}
}

// Function gcpUserSheetSyncHttp is an HTTP handler. The sync direction comes
// from the "direction" query parameter ("push" or "pull"), defaulting to pull.
func gcpUserSheetSyncHttp(w http.ResponseWriter, r *http.Request) {
	var direction = r.URL.Query().Get("direction")
	if direction != sheetsync.DirectionPush {
		direction = sheetsync.DirectionPull
	}
	var result, err = runSync(direction)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	printResult(w, direction, result)
}

// gcpUserSheetSyncPubSub consumes a scheduler tick delivered over Pub/Sub and
// runs whichever directions the configuration has auto-sync enabled for.
func gcpUserSheetSyncPubSub(_ context.Context, _ event.Event) (err error) {
	var engine sheetsync.ISheetSync
	if engine, err = buildEngine(); err != nil {
		return
	}
	var cfg = engine.Config()
	if cfg.AutoSyncPull {
		printResult(os.Stdout, sheetsync.DirectionPull, engine.Pull())
	}
	if cfg.AutoSyncPush {
		printResult(os.Stdout, sheetsync.DirectionPush, engine.PushAll())
	}
	return
}
