package enqueue

import (
	"context"
	"os"
	"testing"

	"github.com/andresuchdata/cloudutil/internal/ingest"
	"github.com/andresuchdata/cloudutil/internal/queue"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// we do not need logging during the tests
	zerolog.SetGlobalLevel(zerolog.Disabled)

	os.Exit(m.Run())
}

type MockKeywordSource struct {
	mock.Mock
}

func (m *MockKeywordSource) Keywords(ctx context.Context, fileName string) ([]string, error) {
	args := m.Called(ctx, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, payload any, queueName string) (queue.SendResult, error) {
	args := m.Called(ctx, payload, queueName)
	return args.Get(0).(queue.SendResult), args.Error(1)
}

func keywordIs(keyword string) any {
	return mock.MatchedBy(func(task KeywordTask) bool {
		return task.Keyword == keyword && task.Source == "seed" && task.ID != ""
	})
}

func TestEnqueueSendsOneMessagePerKeyword(t *testing.T) {
	source := new(MockKeywordSource)
	source.On("Keywords", mock.Anything, "seed").Return([]string{"foo", "bar", "baz"}, nil)

	sender := new(MockSender)
	for _, kw := range []string{"foo", "bar", "baz"} {
		sender.On("Send", mock.Anything, keywordIs(kw), "keywords").Return(queue.SendResult{MessageID: kw}, nil).Once()
	}

	sent, err := New(source, sender, 2).Enqueue(context.Background(), "seed", "keywords")

	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	sender.AssertExpectations(t)
}

func TestEnqueueUniqueTaskIDs(t *testing.T) {
	source := new(MockKeywordSource)
	source.On("Keywords", mock.Anything, "seed").Return([]string{"a", "a"}, nil)

	ids := make(chan string, 2)
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything, "keywords").
		Run(func(args mock.Arguments) { ids <- args.Get(1).(KeywordTask).ID }).
		Return(queue.SendResult{}, nil)

	_, err := New(source, sender, 1).Enqueue(context.Background(), "seed", "keywords")
	require.NoError(t, err)

	close(ids)
	first, second := <-ids, <-ids
	assert.NotEqual(t, first, second)
}

func TestEnqueueSourceFailure(t *testing.T) {
	source := new(MockKeywordSource)
	source.On("Keywords", mock.Anything, "absent").Return(nil, ingest.ErrNotFound)
	sender := new(MockSender)

	sent, err := New(source, sender, 0).Enqueue(context.Background(), "absent", "keywords")

	assert.Zero(t, sent)
	assert.ErrorIs(t, err, ingest.ErrNotFound)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnqueueSendFailure(t *testing.T) {
	source := new(MockKeywordSource)
	source.On("Keywords", mock.Anything, "seed").Return([]string{"foo"}, nil)

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything, "keywords").Return(queue.SendResult{}, queue.ErrQueue)

	sent, err := New(source, sender, 1).Enqueue(context.Background(), "seed", "keywords")

	assert.Zero(t, sent)
	assert.ErrorIs(t, err, queue.ErrQueue)
	assert.ErrorContains(t, err, `"foo"`)
}

func TestEnqueueEmptyFile(t *testing.T) {
	source := new(MockKeywordSource)
	source.On("Keywords", mock.Anything, "seed").Return([]string{}, nil)
	sender := new(MockSender)

	sent, err := New(source, sender, 1).Enqueue(context.Background(), "seed", "keywords")

	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestEnqueueRealIngester(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/seed.csv", []byte("keyword,location\nFoo,US\nBar,UK\n"), 0o644))

	sender := new(MockSender)
	sender.On("Send", mock.Anything, keywordIs("foo"), "keywords").Return(queue.SendResult{}, nil).Once()
	sender.On("Send", mock.Anything, keywordIs("bar"), "keywords").Return(queue.SendResult{}, nil).Once()

	sent, err := New(ingest.NewCSVIngester(dir+"/{}.csv"), sender, 2).Enqueue(context.Background(), "seed", "keywords")

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	sender.AssertExpectations(t)
}
