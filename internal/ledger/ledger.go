// Package ledger is the append only usage log used for cost accounting.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haojie06/dallebot/internal/logger"
)

// DefaultCostPerRun is the historical dollars-per-image ratio used for spend
// estimates.
const DefaultCostPerRun = 15.0 / 115.0

// URLSeparator cannot occur in a URL.
const URLSeparator = "|"

var ErrClosed = errors.New("ledger is closed")

type Entry struct {
	Author    string
	Prompt    string
	ImageURLs []string
	CreatedAt time.Time
}

type AuthorStats struct {
	Author string  `json:"author"`
	Runs   int     `json:"runs"`
	Spent  float64 `json:"spent"`
}

type Snapshot struct {
	Runs    int           `json:"runs"`
	Spent   float64       `json:"spent"`
	Authors []AuthorStats `json:"authors"`
}

// Store is one handle on the underlying database.
type Store interface {
	Insert(ctx context.Context, author, prompt, imageURLs string, createdAt time.Time) error
	Count(ctx context.Context) (int, error)
	Authors(ctx context.Context) ([]string, error)
	Close() error
}

// Connector opens a fresh Store, it is called once at startup and again after
// a failed write.
type Connector func(ctx context.Context) (Store, error)

// PersistenceError is returned when a write failed. The store has been
// reconnected (or the reconnect failed too) but the entry is lost.
type PersistenceError struct {
	Err          error
	ReconnectErr error
}

func (e *PersistenceError) Error() string {
	if e.ReconnectErr != nil {
		return fmt.Sprintf("ledger write failed: %s (reconnect failed: %s)", e.Err, e.ReconnectErr)
	}
	return fmt.Sprintf("ledger write failed: %s", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type Ledger struct {
	mu         sync.Mutex
	store      Store
	connect    Connector
	costPerRun float64
	logger     *logger.CustomLogger
}

func New(ctx context.Context, connect Connector, costPerRun float64) (*Ledger, error) {
	store, err := connect(ctx)
	if err != nil {
		return nil, err
	}
	if costPerRun <= 0 {
		costPerRun = DefaultCostPerRun
	}
	return &Ledger{
		store:      store,
		connect:    connect,
		costPerRun: costPerRun,
		logger:     logger.NewCustomLogger().With("component", "ledger"),
	}, nil
}

func SerializeURLs(urls []string) string {
	return strings.Join(urls, URLSeparator)
}

// Record appends one entry. A failed insert triggers exactly one reconnect;
// the insert itself is not repeated and a *PersistenceError is returned.
func (l *Ledger) Record(ctx context.Context, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return &PersistenceError{Err: ErrClosed}
	}
	urls := SerializeURLs(entry.ImageURLs)
	return reconnectOnFailure(
		func() error {
			return l.store.Insert(ctx, entry.Author, entry.Prompt, urls, entry.CreatedAt)
		},
		func() error {
			return l.reconnect(ctx)
		},
	)
}

// caller holds l.mu
func (l *Ledger) reconnect(ctx context.Context) error {
	if err := l.store.Close(); err != nil {
		l.logger.Warnf("failed to close ledger store: %s", err)
	}
	store, err := l.connect(ctx)
	if err != nil {
		l.store = brokenStore{err: err}
		return err
	}
	l.store = store
	return nil
}

func reconnectOnFailure(write func() error, reconnect func() error) error {
	err := write()
	if err == nil {
		return nil
	}
	logger.Warnf("ledger write failed, reconnecting: %s", err)
	return &PersistenceError{Err: err, ReconnectErr: reconnect()}
}

func (l *Ledger) Snapshot(ctx context.Context) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return Snapshot{}, ErrClosed
	}
	runs, err := l.store.Count(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	authors, err := l.store.Authors(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return buildSnapshot(runs, authors, l.costPerRun), nil
}

func buildSnapshot(runs int, authors []string, costPerRun float64) Snapshot {
	snapshot := Snapshot{
		Runs:    runs,
		Spent:   spend(runs, costPerRun),
		Authors: []AuthorStats{},
	}
	index := make(map[string]int)
	for _, author := range authors {
		i, ok := index[author]
		if !ok {
			i = len(snapshot.Authors)
			index[author] = i
			snapshot.Authors = append(snapshot.Authors, AuthorStats{Author: author})
		}
		snapshot.Authors[i].Runs++
	}
	for i := range snapshot.Authors {
		snapshot.Authors[i].Spent = spend(snapshot.Authors[i].Runs, costPerRun)
	}
	sort.SliceStable(snapshot.Authors, func(i, j int) bool {
		return snapshot.Authors[i].Runs > snapshot.Authors[j].Runs
	})
	return snapshot
}

func spend(runs int, costPerRun float64) float64 {
	return math.Round(float64(runs)*costPerRun*100) / 100
}

func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}

// brokenStore stands in after a failed reconnect so the next write tries
// connecting again.
type brokenStore struct {
	err error
}

func (b brokenStore) Insert(context.Context, string, string, string, time.Time) error {
	return b.err
}

func (b brokenStore) Count(context.Context) (int, error) {
	return 0, b.err
}

func (b brokenStore) Authors(context.Context) ([]string, error) {
	return nil, b.err
}

func (b brokenStore) Close() error {
	return nil
}
