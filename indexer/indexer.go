package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"seedswap/core/events"
)

// Indexer appends committed events to the journal in the order they are
// received.
type Indexer struct {
	db     *gorm.DB
	logger *slog.Logger
	nowFn  func() time.Time

	mu   sync.Mutex
	next uint64
}

// New prepares an indexer that continues the sequence already stored in db.
func New(db *gorm.DB, logger *slog.Logger) (*Indexer, error) {
	if db == nil {
		return nil, errors.New("indexer: database required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	var last struct{ Max *uint64 }
	if err := db.Model(&EventRecord{}).Select("MAX(seq) AS max").Scan(&last).Error; err != nil {
		return nil, fmt.Errorf("indexer: load sequence: %w", err)
	}
	idx := &Indexer{db: db, logger: logger, nowFn: time.Now}
	if last.Max != nil {
		idx.next = *last.Max + 1
	}
	return idx, nil
}

// Run stores events from updates until the channel closes or ctx is done.
// A failed write is logged and the event is skipped.
func (i *Indexer) Run(ctx context.Context, updates <-chan events.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-updates:
			if !ok {
				return nil
			}
			if _, err := i.Record(ctx, evt); err != nil {
				i.logger.Warn("indexer: event dropped",
					slog.String("type", evt.EventType()),
					slog.Any("error", err))
			}
		}
	}
}

// Record persists a single event and returns the stored row.
func (i *Indexer) Record(ctx context.Context, evt events.Event) (*EventRecord, error) {
	if evt == nil {
		return nil, errors.New("indexer: nil event")
	}
	payload := evt.Event()
	if payload == nil {
		return nil, errors.New("indexer: empty event")
	}
	attrs, err := json.Marshal(payload.Attributes)
	if err != nil {
		return nil, fmt.Errorf("indexer: encode attributes: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	row := &EventRecord{
		ID:         uuid.New(),
		Seq:        i.next,
		Type:       payload.Type,
		Attributes: string(attrs),
		CreatedAt:  i.nowFn().UTC(),
	}
	if err := i.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("indexer: insert: %w", err)
	}
	i.next++
	return row, nil
}

// Query selects journal rows.
type Query struct {
	// Type filters by exact event type, or by prefix when it ends in ".".
	Type     string
	AfterSeq *uint64
	Limit    int
}

// Events returns journal rows ordered by sequence.
func (i *Indexer) Events(ctx context.Context, q Query) ([]EventRecord, error) {
	tx := i.db.WithContext(ctx).Model(&EventRecord{}).Order("seq ASC")
	if t := strings.TrimSpace(q.Type); t != "" {
		if strings.HasSuffix(t, ".") {
			tx = tx.Where("type LIKE ?", t+"%")
		} else {
			tx = tx.Where("type = ?", t)
		}
	}
	if q.AfterSeq != nil {
		tx = tx.Where("seq > ?", *q.AfterSeq)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var out []EventRecord
	if err := tx.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("indexer: query: %w", err)
	}
	return out, nil
}

// Decode returns the attribute map of a stored row.
func (r EventRecord) Decode() (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(r.Attributes) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(r.Attributes), &out); err != nil {
		return nil, err
	}
	return out, nil
}
