package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/acmutd/grades-api/internal/firebase"
	"github.com/acmutd/grades-api/internal/importer"
	"github.com/acmutd/grades-api/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[grades-importer] note: could not load .env file (%v); continuing with system environment", err)
	}
	log.SetPrefix("[grades-importer] ")
}

type options struct {
	credentials string
	logLevel    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("importer failed: %v\n", err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "importer",
		Short:         "Publish grade distribution sheets for the grades API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.credentials, "credentials", os.Getenv("FIREBASE_CONFIG"), "Firebase service account file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level")

	root.AddCommand(newInspectCmd(opts), newUploadCmd(opts), newSeedCmd(opts))
	return root
}

func newInspectCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Parse a sheet and print a summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(opts.logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			summary, err := importer.New(nil, nil, logger).Inspect(file)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
	cmd.Flags().StringVar(&file, "file", "public/prof_grades.xlsx", "sheet to inspect")
	return cmd
}

func newUploadCmd(opts *options) *cobra.Command {
	var file, dir, bucket, objectPath string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a sheet (or a directory of sheets) to Cloud Storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file == "") == (dir == "") {
				return fmt.Errorf("exactly one of --file or --dir is required")
			}
			if bucket == "" {
				return fmt.Errorf("--bucket or DATASET_BUCKET is required")
			}

			ctx := cmd.Context()
			logger, err := logging.New(opts.logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app, err := firebase.NewApp(ctx, opts.credentials)
			if err != nil {
				return err
			}
			storage, err := firebase.NewCloudStorage(ctx, app)
			if err != nil {
				return err
			}

			svc := importer.New(storage, nil, logger)
			if dir != "" {
				_, err := svc.UploadDir(ctx, dir, bucket, objectPath)
				return err
			}
			if objectPath == "" {
				objectPath = path.Join("grades", filepath.Base(file))
			}
			return svc.Upload(ctx, file, bucket, objectPath)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "sheet to upload")
	cmd.Flags().StringVar(&dir, "dir", "", "directory of sheets to upload")
	cmd.Flags().StringVar(&bucket, "bucket", os.Getenv("DATASET_BUCKET"), "destination bucket")
	cmd.Flags().StringVar(&objectPath, "path", "", "object path (object prefix with --dir)")
	return cmd
}

func newSeedCmd(opts *options) *cobra.Command {
	var file, collection string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a sheet's records to a Firestore collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger, err := logging.New(opts.logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app, err := firebase.NewApp(ctx, opts.credentials)
			if err != nil {
				return err
			}
			db, err := firebase.NewFirestore(ctx, app)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := importer.New(nil, db, logger).Seed(ctx, file, collection)
			if err != nil {
				return err
			}
			logger.Info("seed complete", zap.Int("records", n))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "public/prof_grades.xlsx", "sheet to seed from")
	cmd.Flags().StringVar(&collection, "collection", "grade_records", "destination collection")
	return cmd
}
