package main

import (
	"os"

	"github.com/andresuchdata/cloudutil/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("Application failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cloudutil",
		Usage: "Keyword CSV ingestion, object storage and queue helpers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Optional .env file to load before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			{
				Name:  "keywords",
				Usage: "Print the lower-cased first column of a keyword file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "File name substituted into FILE_PATH_TEMPLATE", Required: true},
				},
				Action: runKeywords,
			},
			{
				Name:  "put",
				Usage: "Upload a payload to a bucket path",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "bucket", Required: true, EnvVars: []string{"S3_BUCKET"}},
					&cli.StringFlag{Name: "path", Usage: "Destination key", Required: true},
					&cli.StringFlag{Name: "source", Usage: "Payload source identifier; uploaded as the body when --file is not set"},
					&cli.StringFlag{Name: "file", Usage: "Local file whose contents are uploaded"},
					&cli.StringFlag{Name: "name", Usage: "Display name (defaults to the source)"},
					&cli.BoolFlag{Name: "ensure-bucket", Usage: "Create the bucket first when the backend supports it"},
				},
				Action: runPut,
			},
			{
				Name:  "list",
				Usage: "List up to 100 objects under a prefix",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "bucket", Required: true, EnvVars: []string{"S3_BUCKET"}},
					&cli.StringFlag{Name: "prefix"},
				},
				Action: runList,
			},
			{
				Name:  "send",
				Usage: "Send a JSON message to a queue",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "queue", Required: true, EnvVars: []string{"SQS_QUEUE_NAME"}},
					&cli.StringFlag{Name: "message", Usage: "JSON document to send", Required: true},
				},
				Action: runSend,
			},
			{
				Name:  "receive",
				Usage: "Receive at most one message without deleting it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "queue", Required: true, EnvVars: []string{"SQS_QUEUE_NAME"}},
				},
				Action: runReceive,
			},
			{
				Name:  "delete",
				Usage: "Delete a received message by receipt handle",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "queue", Required: true, EnvVars: []string{"SQS_QUEUE_NAME"}},
					&cli.StringFlag{Name: "receipt-handle", Required: true},
				},
				Action: runDelete,
			},
			{
				Name:  "enqueue",
				Usage: "Send one message per keyword in a keyword file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Required: true},
					&cli.StringFlag{Name: "queue", Required: true, EnvVars: []string{"SQS_QUEUE_NAME"}},
					&cli.IntFlag{Name: "concurrency", Usage: "Concurrent sends (defaults to ENQUEUE_CONCURRENCY)"},
				},
				Action: runEnqueue,
			},
		},
	}
}
