package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/lyrebird-studio/lyrebird/pkg/config"
	"github.com/lyrebird-studio/lyrebird/pkg/engine"
	"github.com/lyrebird-studio/lyrebird/pkg/kv"
	"github.com/lyrebird-studio/lyrebird/pkg/library"
	"github.com/lyrebird-studio/lyrebird/pkg/llm"
	"github.com/lyrebird-studio/lyrebird/pkg/server"
	"github.com/lyrebird-studio/lyrebird/pkg/storage"
	"github.com/lyrebird-studio/lyrebird/pkg/synth"
	"github.com/lyrebird-studio/lyrebird/pkg/task"
	"github.com/lyrebird-studio/lyrebird/pkg/voice"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the studio HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	var engineOpts []engine.Option
	if cfg.Engine.APIKey != "" {
		engineOpts = append(engineOpts, engine.WithAPIKey(cfg.Engine.APIKey))
	}
	if cfg.Engine.Timeout > 0 {
		engineOpts = append(engineOpts, engine.WithTimeout(time.Duration(cfg.Engine.Timeout)*time.Second))
	}
	eng, err := engine.Dial(ctx, cfg.Engine.BaseURL, engineOpts...)
	if err != nil {
		return fmt.Errorf("connect engine: %w", err)
	}
	slog.Info("engine connected", "base_url", cfg.Engine.BaseURL, "capabilities", eng.Capabilities())

	voices := voice.NewRegistry(cfg.Voices.Dir, eng)
	if err := voices.Scan(); err != nil {
		return err
	}

	store, err := newFileStore(cfg)
	if err != nil {
		return err
	}

	kvStore, err := newKVStore(cfg)
	if err != nil {
		return err
	}
	defer kvStore.Close()
	tasks := task.NewKVStore(kvStore)

	writer, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Voices:    voices,
		Generator: synth.NewPipeline(synth.NewRouter(eng), voices),
		Library:   library.New(store),
		Tasks:     tasks,
		Runner:    task.NewRunner(tasks, cfg.Tasks.Workers),
		Writer:    writer,
	})

	slog.Info("server listening", "addr", cfg.Server.Addr)
	return http.ListenAndServe(cfg.Server.Addr, srv.Handler())
}

func newFileStore(cfg *config.Config) (storage.FileStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		client := s3.New(s3.Options{
			Region: cfg.Storage.S3.Region,
			Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
					SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
					SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				}, nil
			}),
		})
		return storage.NewS3(client, cfg.Storage.S3.Bucket, cfg.Storage.S3.Prefix), nil
	default:
		return storage.NewLocal(cfg.Storage.Dir)
	}
}

func newKVStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Tasks.Backend {
	case "badger":
		return kv.NewBadger(kv.BadgerOptions{Dir: cfg.Tasks.Dir})
	default:
		return kv.NewMemory(nil), nil
	}
}
