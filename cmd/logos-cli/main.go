package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/tobiakanji/logos-go/internal/api"
	"github.com/tobiakanji/logos-go/internal/config"
	"github.com/tobiakanji/logos-go/internal/core"
	"github.com/tobiakanji/logos-go/internal/db"
	"github.com/tobiakanji/logos-go/internal/downloader"
	"github.com/tobiakanji/logos-go/internal/kvstore"
	"github.com/tobiakanji/logos-go/internal/models"
	"github.com/tobiakanji/logos-go/internal/remote"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "logos-cli",
		Short: "Manage the offline scripture store from the command line",
	}

	rootCmd.AddCommand(downloadCmd())
	rootCmd.AddCommand(downloadBookCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore loads config.yml, opens the database and applies migrations.
func openStore() (*sql.DB, *kvstore.Store, *remote.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return database, kvstore.New(database), remote.New(cfg.Source.BaseURL, cfg.Notes.BaseURL), nil
}

func downloadCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the full scripture dataset for offline use",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, kv, client, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			dl := downloader.New(kv, client, nil)
			if dl.HasBibleData() && !force {
				fmt.Println("Offline dataset already present. Use --force to download again.")
				return nil
			}

			log.Println("Starting full dataset download...")
			dataset, err := dl.DownloadFullDataset(cmd.Context(), func(p models.DownloadProgress) {
				if p.TotalBytes > 0 {
					fmt.Printf("\r%.1f%% (%d/%d bytes)", p.ProgressPercent, p.WrittenBytes, p.TotalBytes)
				} else {
					fmt.Printf("\r%d bytes", p.WrittenBytes)
				}
			})
			fmt.Println()
			if err != nil {
				return fmt.Errorf("download failed: %w", err)
			}

			fmt.Printf("Download complete: %d books saved.\n", len(dataset.Books))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "download even if a dataset is already present")
	return cmd
}

func downloadBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download-book [book-id]",
		Short: "Fetch a single book's chapters from the upstream API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, kv, client, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			dl := downloader.New(kv, client, nil)
			book, err := dl.DownloadBook(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Fetched %s: %d chapters.\n", book.Name, len(book.Chapters))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := core.New()
			if err != nil {
				return fmt.Errorf("fatal error during application setup: %w", err)
			}
			defer app.Close()

			server := api.NewServer(app)
			scheduler := server.Notes().StartPendingProcessing(app.Config.SyncInterval)
			defer scheduler.Stop()

			addr := fmt.Sprintf(":%d", app.Config.Port)
			log.Printf("Starting web server on %s", addr)
			return http.ListenAndServe(addr, server.Router())
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the offline store",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, kv, _, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			if kv.Has(kvstore.KeyBibleDataset) {
				fmt.Println("Offline dataset: present")
			} else {
				fmt.Println("Offline dataset: not downloaded")
			}
			if kv.Has(kvstore.KeyNotesPendingQueue) {
				fmt.Println("Pending note writes: queued")
			} else {
				fmt.Println("Pending note writes: none")
			}
			return nil
		},
	}
}
