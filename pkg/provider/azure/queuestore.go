// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/platform-engineering-labs/cloudvault/pkg/client"
	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
)

const (
	// PropertyQueues lists queues to create right after the account is provisioned.
	PropertyQueues = "queues"

	defaultReceiveCount = 10
	maxReceiveCount     = 32
)

var queueNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

// QueueStore is a MessagingResource backed by a storage account and Azure Queue storage.
type QueueStore struct {
	*storageAccount

	client       *client.Client
	mu           sync.Mutex
	queues       queueServiceAPI
	pollInterval time.Duration
}

var (
	_ provider.MessagingResource = (*QueueStore)(nil)
	_ provider.Lister            = (*QueueStore)(nil)
)

// NewQueueStore creates a queue store adapter for the storage account called name.
func NewQueueStore(name string, cfg *config.Config, opts ...Option) (*QueueStore, error) {
	o := newOptions(opts)
	account, err := newStorageAccount(name, cfg, o, "azure-queuestore", "queue store", "queuestore")
	if err != nil {
		return nil, err
	}
	return &QueueStore{
		storageAccount: account,
		client:         o.client,
		queues:         o.queues,
		pollInterval:   o.pollInterval,
	}, nil
}

// Create provisions the storage account and then the queues listed in the "queues" property.
// When queue creation fails the account stays provisioned and its ID is returned
// along with the error.
func (q *QueueStore) Create(ctx context.Context, opts provider.CreateOptions) (string, error) {
	queues, err := stringList(opts.Properties, PropertyQueues)
	if err != nil {
		return "", fail(q.logger, opCreate, err)
	}
	for _, name := range queues {
		if err := validateQueueName(name); err != nil {
			return "", fail(q.logger, opCreate, err)
		}
	}

	id, err := q.storageAccount.Create(ctx, opts)
	if err != nil {
		return "", err
	}

	if len(queues) == 0 {
		return id, nil
	}
	svc, err := q.queueService()
	if err != nil {
		return id, fail(q.logger, opCreate, err)
	}
	if err := createAll(ctx, queues, svc.CreateQueue); err != nil {
		return id, fail(q.logger, opCreate, err)
	}
	q.logger.Info().Strs("queues", queues).Str("resource", q.Name()).Msg("created queues")
	return id, nil
}

// SendMessage enqueues message on queueName. Strings and byte slices are sent as-is;
// any other value is sent as JSON. Returns the message ID assigned by the service.
func (q *QueueStore) SendMessage(ctx context.Context, message any, queueName string) (string, error) {
	log := operationLogger(q.logger, opSendMessage, q.Name())

	if err := validateQueueName(queueName); err != nil {
		return "", fail(log, opSendMessage, err)
	}
	body, err := encodeMessage(message)
	if err != nil {
		return "", fail(log, opSendMessage, err)
	}

	svc, err := q.queueService()
	if err != nil {
		return "", fail(log, opSendMessage, err)
	}
	id, err := svc.Enqueue(ctx, queueName, body)
	if err != nil {
		return "", fail(log, opSendMessage, err)
	}

	log.Debug().Str("queue", queueName).Str("messageId", id).Msg("sent message")
	return id, nil
}

// ReceiveMessages takes up to maxMessages messages off queueName and deletes them.
// maxMessages outside 1..32 is clamped, with 0 or less meaning 10. If the queue is
// empty it is polled until wait elapses; an empty result is not an error. If deleting
// a message fails, the messages deleted before it are returned with the error.
func (q *QueueStore) ReceiveMessages(ctx context.Context, queueName string, maxMessages int, wait time.Duration) ([]provider.Message, error) {
	log := operationLogger(q.logger, opReceiveMessages, q.Name())

	if err := validateQueueName(queueName); err != nil {
		return nil, fail(log, opReceiveMessages, err)
	}
	count := clampReceiveCount(maxMessages)

	svc, err := q.queueService()
	if err != nil {
		return nil, fail(log, opReceiveMessages, err)
	}

	deadline := time.Now().Add(wait)
	for {
		if err := ctx.Err(); err != nil {
			return nil, fail(log, opReceiveMessages, err)
		}
		received, err := svc.Dequeue(ctx, queueName, count)
		if err != nil {
			return nil, fail(log, opReceiveMessages, err)
		}

		if len(received) > 0 {
			messages := make([]provider.Message, 0, len(received))
			for _, m := range received {
				if err := svc.DeleteMessage(ctx, queueName, m.ID, m.PopReceipt); err != nil {
					// Deleted messages are off the queue; return them with the error.
					return messages, fail(log, opReceiveMessages, fmt.Errorf("delete message %s: %w", m.ID, err))
				}
				messages = append(messages, provider.Message{
					ID:           m.ID,
					Body:         m.Text,
					InsertedAt:   m.InsertedAt,
					ExpiresAt:    m.ExpiresAt,
					DequeueCount: m.DequeueCount,
				})
			}
			log.Debug().Str("queue", queueName).Int("count", len(messages)).Msg("received messages")
			return messages, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return []provider.Message{}, nil
		}

		timer := time.NewTimer(min(q.pollInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fail(log, opReceiveMessages, ctx.Err())
		case <-timer.C:
		}
	}
}

func (q *QueueStore) queueService() (queueServiceAPI, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.queues != nil {
		return q.queues, nil
	}
	if q.client == nil {
		c, err := client.NewClient(q.Config())
		if err != nil {
			return nil, err
		}
		q.client = c
	}
	svc, err := q.client.NewQueueServiceClient(client.QueueServiceURL(q.Name()))
	if err != nil {
		return nil, err
	}
	q.queues = &queueServiceClientWrapper{client: svc}
	return q.queues, nil
}

func encodeMessage(message any) (string, error) {
	switch m := message.(type) {
	case string:
		return m, nil
	case []byte:
		return string(m), nil
	default:
		body, err := json.Marshal(m)
		if err != nil {
			return "", fmt.Errorf("encode message: %w", err)
		}
		return string(body), nil
	}
}

func clampReceiveCount(n int) int32 {
	switch {
	case n <= 0:
		return defaultReceiveCount
	case n > maxReceiveCount:
		return maxReceiveCount
	default:
		return int32(n)
	}
}

// validateQueueName checks Azure's queue naming rules.
func validateQueueName(name string) error {
	if !queueNamePattern.MatchString(name) || strings.Contains(name, "--") {
		return fmt.Errorf("invalid queue name %q: must be 3-63 lowercase letters, digits or single hyphens", name)
	}
	return nil
}
