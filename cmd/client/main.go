package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MKhiriev/health-companion/internal/adapter"
	"github.com/MKhiriev/health-companion/internal/assistant"
	"github.com/MKhiriev/health-companion/internal/config"
	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/internal/medinfo"
	"github.com/MKhiriev/health-companion/internal/service"
	"github.com/MKhiriev/health-companion/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("health-companion")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storages, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer storages.Close()

	docs := adapter.NewHTTPDocumentStore(adapter.HTTPClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	})
	if token := os.Getenv("REMOTE_BEARER_TOKEN"); token != "" {
		docs.SetToken(token)
	}

	blobs, err := adapter.NewS3BlobStore(ctx, adapter.S3Config{
		Region:          cfg.Remote.Blob.Region,
		Bucket:          cfg.Remote.Blob.Bucket,
		Endpoint:        cfg.Remote.Blob.Endpoint,
		AccessKeyID:     cfg.Remote.Blob.AccessKeyID,
		SecretAccessKey: cfg.Remote.Blob.SecretAccessKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create blob store")
	}

	conn := adapter.NewDialConnectivityChecker(cfg.Remote.BaseURL)
	health := service.NewHealthStore(storages, docs, blobs, conn, log)

	labels := medinfo.NewFDAClient(cfg.Labels.BaseURL, cfg.Remote.RequestTimeout, log)
	meds := medinfo.NewService(storages.KV, labels, log)
	asst := assistant.NewService(meds, assistant.NewAnthropicResponder(cfg.Assistant), log)

	ownerID, err := docs.OwnerFromToken()
	if err != nil {
		log.Warn().Err(err).Msg("no authenticated owner, background sync disabled")
	}

	job := service.NewSyncJob(health, log)
	if ownerID != "" {
		job.Start(ctx, ownerID, cfg.Workers.SyncInterval)
	}

	runPrompt(ctx, ownerID, health, asst)

	job.Stop()
	health.Wait()
	log.Info().Msg("shutting down")
}

// runPrompt is a minimal interactive surface: /status and /sync commands,
// anything else is handed to the medicine assistant. It exits on EOF, /quit
// or signal.
func runPrompt(ctx context.Context, ownerID string, health *service.HealthStore, asst *assistant.Service) {
	var history []assistant.Turn
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Ask a medicine question, or use /status, /sync, /quit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() || ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/status":
			snap := health.SyncStatus()
			fmt.Printf("online: %v, pending: %d (prescriptions %d, reminders %d)\n",
				snap.Online, snap.TotalPending, snap.PendingPrescriptions, snap.PendingReminders)
		case line == "/sync":
			out, err := health.ForceSyncAll(ctx, ownerID)
			if err != nil {
				fmt.Println("sync failed:", err)
				continue
			}
			fmt.Printf("synced %d, failed %d\n",
				out.Prescriptions.Success+out.Reminders.Success,
				out.Prescriptions.Failed+out.Reminders.Failed)
		default:
			reply := asst.Answer(ctx, line, history)
			fmt.Println(reply.Text)
			history = append(history,
				assistant.Turn{Role: assistant.RoleUser, Text: line},
				assistant.Turn{Role: assistant.RoleAssistant, Text: reply.Text})
		}
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
