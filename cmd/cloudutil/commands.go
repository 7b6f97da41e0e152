package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/andresuchdata/cloudutil/internal/awsclient"
	"github.com/andresuchdata/cloudutil/internal/config"
	"github.com/andresuchdata/cloudutil/internal/enqueue"
	"github.com/andresuchdata/cloudutil/internal/ingest"
	"github.com/andresuchdata/cloudutil/internal/queue"
	"github.com/andresuchdata/cloudutil/internal/storage"
	"github.com/andresuchdata/cloudutil/pkg/logger"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	logger.Configure(cfg.Log.Format, level)

	c.App.Metadata = map[string]any{configKey: cfg}
	return nil
}

func appConfig(c *cli.Context) *config.Config {
	return c.App.Metadata[configKey].(*config.Config)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newBackend(c *cli.Context, cfg *config.Config) (storage.Backend, error) {
	if cfg.Storage.Backend == config.StorageBackendMinio {
		return storage.NewMinioBackend(storage.MinioConfig{
			Endpoint:  cfg.Storage.MinioEndpoint,
			AccessKey: cfg.Storage.MinioAccessKey,
			SecretKey: cfg.Storage.MinioSecretKey,
			Region:    cfg.AWS.Region,
			UseSSL:    cfg.Storage.MinioUseSSL,
		})
	}

	awsCfg, err := awsclient.Load(c.Context, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return storage.NewS3Backend(awsclient.NewS3(awsCfg)), nil
}

func newQueueClient(c *cli.Context, cfg *config.Config) (*queue.Client, error) {
	awsCfg, err := awsclient.Load(c.Context, cfg.AWS)
	if err != nil {
		return nil, err
	}
	return queue.New(
		awsclient.NewSQS(awsCfg),
		cfg.AWS.AccountID,
		queue.WithOperationTimeout(cfg.App.OperationTimeout),
	), nil
}

func runKeywords(c *cli.Context) error {
	cfg := appConfig(c)

	keywords, err := ingest.NewCSVIngester(cfg.App.FilePathTemplate).Keywords(c.Context, c.String("file"))
	if err != nil {
		return err
	}
	return printJSON(keywords)
}

func runPut(c *cli.Context) error {
	cfg := appConfig(c)

	req := storage.WriteRequest{
		Source:     c.String("source"),
		Bucket:     c.String("bucket"),
		Path:       c.String("path"),
		ObjectName: c.String("name"),
	}
	if file := c.String("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		req.Data = data
		if req.Source == "" {
			req.Source = file
		}
	}
	if req.Source == "" {
		return fmt.Errorf("either --source or --file is required")
	}

	backend, err := newBackend(c, cfg)
	if err != nil {
		return err
	}

	if c.Bool("ensure-bucket") {
		ensurer, ok := backend.(storage.BucketEnsurer)
		if !ok {
			return fmt.Errorf("storage backend %q cannot create buckets", cfg.Storage.Backend)
		}
		if err := ensurer.EnsureBucket(c.Context, req.Bucket); err != nil {
			return err
		}
	}

	res, err := storage.NewWriter(backend, cfg.App.OperationTimeout).Write(c.Context, req)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runList(c *cli.Context) error {
	cfg := appConfig(c)

	backend, err := newBackend(c, cfg)
	if err != nil {
		return err
	}

	objects, err := storage.NewLister(backend, cfg.App.OperationTimeout).List(c.Context, c.String("bucket"), c.String("prefix"))
	if err != nil {
		return err
	}
	return printJSON(objects)
}

func runSend(c *cli.Context) error {
	raw := json.RawMessage(c.String("message"))
	if !json.Valid(raw) {
		return fmt.Errorf("--message must be valid JSON")
	}

	client, err := newQueueClient(c, appConfig(c))
	if err != nil {
		return err
	}

	res, err := client.Send(c.Context, raw, c.String("queue"))
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runReceive(c *cli.Context) error {
	client, err := newQueueClient(c, appConfig(c))
	if err != nil {
		return err
	}

	res, err := client.Receive(c.Context, c.String("queue"))
	if err != nil {
		return err
	}
	if res.Empty() {
		logger.Log.Info().Str("queue", c.String("queue")).Msg("No messages available")
	}
	return printJSON(res)
}

func runDelete(c *cli.Context) error {
	client, err := newQueueClient(c, appConfig(c))
	if err != nil {
		return err
	}
	return client.Delete(c.Context, c.String("queue"), c.String("receipt-handle"))
}

func runEnqueue(c *cli.Context) error {
	cfg := appConfig(c)

	client, err := newQueueClient(c, cfg)
	if err != nil {
		return err
	}

	concurrency := cfg.App.EnqueueConcurrency
	if c.IsSet("concurrency") {
		concurrency = c.Int("concurrency")
	}

	e := enqueue.New(ingest.NewCSVIngester(cfg.App.FilePathTemplate), client, concurrency)
	sent, err := e.Enqueue(c.Context, c.String("file"), c.String("queue"))
	if err != nil {
		return err
	}
	return printJSON(map[string]int{"sent": sent})
}
