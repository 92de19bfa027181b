package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"docdesigner/internal/storage"
)

var (
	ErrRejected        = errors.New("action rejected by user")
	ErrApprovalTimeout = errors.New("approval timed out")
)

// EventEmitter allows the approval queue to notify the console.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// ApprovalStore is the shared table a separate console process resolves
// approvals through.
type ApprovalStore interface {
	Create(a *storage.Approval) error
	Status(id string) (string, error)
	Delete(id string) error
}

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // JSON with extra context (e.g. component ids)
}

// ApprovalQueue manages human-in-the-loop approval for destructive MCP tool
// calls. It supports three modes:
//   - auto: every request is approved (trusted local use)
//   - in-process: channels, resolved by Approve/Reject
//   - store-based (standalone MCP): rows in mcp_approvals, polled until the
//     console resolves them
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]chan bool
	emitter EventEmitter
	logger  *log.Logger

	store        ApprovalStore
	autoApprove  bool
	timeout      time.Duration
	pollInterval time.Duration
}

// ApprovalOption configures an ApprovalQueue.
type ApprovalOption func(*ApprovalQueue)

// WithStore switches the queue to store-based mode.
func WithStore(s ApprovalStore) ApprovalOption {
	return func(q *ApprovalQueue) { q.store = s }
}

func WithAutoApprove(v bool) ApprovalOption {
	return func(q *ApprovalQueue) { q.autoApprove = v }
}

// WithTimeout bounds how long a request waits; zero keeps the default.
func WithTimeout(d time.Duration) ApprovalOption {
	return func(q *ApprovalQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithPollInterval(d time.Duration) ApprovalOption {
	return func(q *ApprovalQueue) {
		if d > 0 {
			q.pollInterval = d
		}
	}
}

func NewApprovalQueue(emitter EventEmitter, logger *log.Logger, opts ...ApprovalOption) *ApprovalQueue {
	q := &ApprovalQueue{
		pending:      make(map[string]chan bool),
		emitter:      emitter,
		logger:       logger,
		timeout:      120 * time.Second,
		pollInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Request asks for approval and blocks until it is given, refused, timed
// out or ctx is done. Anything but approval is returned as an error.
func (q *ApprovalQueue) Request(ctx context.Context, tool, description, metadata string) error {
	if q.autoApprove {
		q.logger.Debug("auto-approved", "tool", tool, "description", description)
		return nil
	}
	if metadata == "" {
		metadata = "{}"
	}
	id := uuid.New().String()
	if q.store != nil {
		return q.requestViaStore(ctx, id, tool, description, metadata)
	}
	return q.requestViaChannel(ctx, id, tool, description, metadata)
}

// requestViaStore writes a pending approval and polls until resolved.
func (q *ApprovalQueue) requestViaStore(ctx context.Context, id, tool, description, metadata string) error {
	err := q.store.Create(&storage.Approval{ID: id, Tool: tool, Description: description, Metadata: metadata})
	if err != nil {
		return fmt.Errorf("request approval: %w", err)
	}
	defer q.store.Delete(id)
	q.logger.Info("waiting for approval", "id", id, "tool", tool, "description", description)

	deadline := time.NewTimer(q.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status, err := q.store.Status(id)
			if err != nil {
				continue
			}
			switch status {
			case storage.ApprovalApproved:
				return nil
			case storage.ApprovalRejected:
				return fmt.Errorf("%w: %s", ErrRejected, tool)
			}
		case <-deadline.C:
			return fmt.Errorf("%w after %s: %s", ErrApprovalTimeout, q.timeout, tool)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *ApprovalQueue) requestViaChannel(ctx context.Context, id, tool, description, metadata string) error {
	ch := make(chan bool, 1)

	q.mu.Lock()
	q.pending[id] = ch
	q.mu.Unlock()
	defer q.cleanup(id)

	q.emitter.Emit(ctx, "mcp:approval-required", PendingAction{
		ID:          id,
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	})

	select {
	case approved := <-ch:
		if !approved {
			return fmt.Errorf("%w: %s", ErrRejected, tool)
		}
		return nil
	case <-time.After(q.timeout):
		q.emitter.Emit(ctx, "mcp:approval-dismissed", map[string]string{"id": id})
		return fmt.Errorf("%w after %s: %s", ErrApprovalTimeout, q.timeout, tool)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the ids of in-process requests still waiting.
func (q *ApprovalQueue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	return ids
}

// Approve marks a pending action as approved (in-process mode).
func (q *ApprovalQueue) Approve(actionID string) bool {
	return q.resolve(actionID, true)
}

// Reject marks a pending action as rejected (in-process mode).
func (q *ApprovalQueue) Reject(actionID string) bool {
	return q.resolve(actionID, false)
}

func (q *ApprovalQueue) resolve(actionID string, approved bool) bool {
	q.mu.Lock()
	ch, ok := q.pending[actionID]
	q.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- approved:
		return true
	default:
		return false
	}
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
