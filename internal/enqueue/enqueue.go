package enqueue

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/andresuchdata/cloudutil/internal/queue"
	"github.com/andresuchdata/cloudutil/pkg/logger"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// KeywordSource loads keywords for a file name.
type KeywordSource interface {
	Keywords(ctx context.Context, fileName string) ([]string, error)
}

// Sender publishes one payload to a named queue.
type Sender interface {
	Send(ctx context.Context, payload any, queueName string) (queue.SendResult, error)
}

// KeywordTask is the message body sent for each keyword.
type KeywordTask struct {
	ID      string `json:"id"`
	Keyword string `json:"keyword"`
	Source  string `json:"source"`
}

// Enqueuer turns a keyword file into one queue message per keyword.
type Enqueuer struct {
	source      KeywordSource
	sender      Sender
	concurrency int
}

func New(source KeywordSource, sender Sender, concurrency int) *Enqueuer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Enqueuer{source: source, sender: sender, concurrency: concurrency}
}

// Enqueue returns how many messages were sent. The first send failure stops
// the remaining sends; messages already sent stay on the queue.
func (e *Enqueuer) Enqueue(ctx context.Context, fileName, queueName string) (int, error) {
	keywords, err := e.source.Keywords(ctx, fileName)
	if err != nil {
		return 0, fmt.Errorf("failed to load keywords: %w", err)
	}

	var sent atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, keyword := range keywords {
		task := KeywordTask{
			ID:      xid.New().String(),
			Keyword: keyword,
			Source:  fileName,
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := e.sender.Send(gctx, task, queueName); err != nil {
				return fmt.Errorf("enqueue keyword %q: %w", task.Keyword, err)
			}
			sent.Add(1)
			return nil
		})
	}

	err = g.Wait()
	logger.Log.Info().
		Str("file", fileName).
		Str("queue", queueName).
		Int("keywords", len(keywords)).
		Int64("sent", sent.Load()).
		Msg("Keywords enqueued")

	return int(sent.Load()), err
}
