package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/cloudutil/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const (
	DefaultMaxMessages       int32 = 1
	DefaultWaitTime                = 20 * time.Second
	DefaultVisibilityTimeout       = 600 * time.Second
	DefaultOperationTimeout        = 30 * time.Second
)

// SQSAPI is the subset of *sqs.Client used by Client.
type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Client sends, receives and deletes messages. Queue URLs are looked up on
// every call and never cached.
type Client struct {
	api               SQSAPI
	accountID         string
	waitTime          time.Duration
	visibilityTimeout time.Duration
	operationTimeout  time.Duration
}

type Option func(*Client)

// WithOperationTimeout bounds each SQS round trip. Receive gets the long-poll
// wait on top of it.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Client) { c.operationTimeout = d }
}

func WithWaitTime(d time.Duration) Option {
	return func(c *Client) { c.waitTime = d }
}

func WithVisibilityTimeout(d time.Duration) Option {
	return func(c *Client) { c.visibilityTimeout = d }
}

// New creates a Client. accountID may be empty to use the caller's own account.
func New(api SQSAPI, accountID string, opts ...Option) *Client {
	c := &Client{
		api:               api,
		accountID:         accountID,
		waitTime:          DefaultWaitTime,
		visibilityTimeout: DefaultVisibilityTimeout,
		operationTimeout:  DefaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendResult holds the server-assigned id of a sent message.
type SendResult struct {
	MessageID string `json:"message_id"`
}

// Message is one delivery. ReceiptHandle identifies this delivery and is what
// Delete needs; it changes on every receive.
type Message struct {
	MessageID     string `json:"message_id"`
	ReceiptHandle string `json:"receipt_handle"`
	Body          string `json:"body"`
}

// Decode unmarshals the JSON body into v.
func (m *Message) Decode(v any) error {
	if err := json.Unmarshal([]byte(m.Body), v); err != nil {
		return fmt.Errorf("decode message %s: %w", m.MessageID, err)
	}
	return nil
}

// ReceiveResult is empty when the long poll ended without a message.
type ReceiveResult struct {
	Message *Message `json:"message,omitempty"`
}

func (r ReceiveResult) Empty() bool {
	return r.Message == nil
}

// Send JSON-encodes payload and submits it as the message body.
func (c *Client) Send(ctx context.Context, payload any, queueName string) (SendResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Error().Err(err).Str("queue", queueName).Msg("Failed to send message to sqs queue")
		return SendResult{}, newError(OpSend, queueName, fmt.Errorf("encode payload: %w", err))
	}

	queueURL, err := c.queueURL(ctx, queueName)
	if err != nil {
		return SendResult{}, err
	}

	ctx, cancel := c.withTimeout(ctx, 0)
	defer cancel()

	out, err := c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("queue", queueName).Msg("Failed to send message to sqs queue")
		return SendResult{}, newError(OpSend, queueName, err)
	}

	res := SendResult{MessageID: aws.ToString(out.MessageId)}
	logger.Log.Info().Str("queue", queueName).Str("message_id", res.MessageID).Msg("Message successfully sent to SQS")
	return res, nil
}

// Receive long-polls for at most one message. The message stays on the queue,
// hidden for the visibility timeout, until Delete is called.
func (c *Client) Receive(ctx context.Context, queueName string) (ReceiveResult, error) {
	queueURL, err := c.queueURL(ctx, queueName)
	if err != nil {
		return ReceiveResult{}, err
	}

	ctx, cancel := c.withTimeout(ctx, c.waitTime)
	defer cancel()

	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: DefaultMaxMessages,
		WaitTimeSeconds:     int32(c.waitTime / time.Second),
		VisibilityTimeout:   int32(c.visibilityTimeout / time.Second),
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("queue", queueName).Msg("Failed to retrieve message from SQS")
		return ReceiveResult{}, newError(OpReceive, queueName, err)
	}

	var res ReceiveResult
	if len(out.Messages) > 0 {
		m := out.Messages[0]
		res.Message = &Message{
			MessageID:     aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          aws.ToString(m.Body),
		}
	}

	logger.Log.Info().Str("queue", queueName).Bool("empty", res.Empty()).Msg("Message successfully read from SQS")
	return res, nil
}

// Delete removes the delivery identified by receiptHandle.
func (c *Client) Delete(ctx context.Context, queueName, receiptHandle string) error {
	queueURL, err := c.queueURL(ctx, queueName)
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx, 0)
	defer cancel()

	_, err = c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("queue", queueName).Msgf("Failed to delete message with ReceiptHandle %s", receiptHandle)
		return newError(OpDelete, queueName, err)
	}

	logger.Log.Info().Str("queue", queueName).Msgf("message successfully deleted with ReceiptHandle %s", receiptHandle)
	return nil
}

func (c *Client) queueURL(ctx context.Context, queueName string) (string, error) {
	if queueName == "" {
		return "", newError(OpResolve, queueName, errors.New("queue name is required"))
	}

	ctx, cancel := c.withTimeout(ctx, 0)
	defer cancel()

	in := &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)}
	if c.accountID != "" {
		in.QueueOwnerAWSAccountId = aws.String(c.accountID)
	}

	out, err := c.api.GetQueueUrl(ctx, in)
	if err != nil {
		logger.Log.Error().Err(err).Str("queue", queueName).Msg("Failed to resolve queue url")
		return "", newError(OpResolve, queueName, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

func (c *Client) withTimeout(ctx context.Context, extra time.Duration) (context.Context, context.CancelFunc) {
	if c.operationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.operationTimeout+extra)
}
