package replication

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	hclog "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/repo"
)

const (
	defaultPushInterval = 10 * time.Second
	defaultBatchSize    = 100
)

type PusherConfig struct {
	Interval  time.Duration
	BatchSize int
}

// Pusher ships unpushed sync records to the central store, oldest first, and
// flips their pushed flag after confirmed delivery. Delivery is at least
// once: a crash between delivery and the flag flip replays the same batch on
// the next run, and the central store deduplicates.
type Pusher struct {
	store  *io.MemoryStore
	client CentralClient
	conf   PusherConfig
	logger hclog.Logger
}

func NewPusher(store *io.MemoryStore, client CentralClient, conf PusherConfig, parentLogger hclog.Logger) *Pusher {
	if conf.Interval <= 0 {
		conf.Interval = defaultPushInterval
	}
	if conf.BatchSize <= 0 {
		conf.BatchSize = defaultBatchSize
	}
	return &Pusher{
		store:  store,
		client: client,
		conf:   conf,
		logger: parentLogger.Named("Pusher"),
	}
}

// Run loops until the context is cancelled. Network failures back off
// exponentially and never lose records, the unpushed rows just wait for the
// next attempt.
func (p *Pusher) Run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // retry forever

	for {
		wait := p.conf.Interval

		pushed, err := p.PushOnce(ctx)
		switch {
		case err != nil:
			p.logger.Warn("push failed", "error", err)
			wait = bo.NextBackOff()
		case pushed > 0:
			p.logger.Info("pushed sync records", "count", pushed)
			bo.Reset()
			// drain the backlog without waiting out the full interval
			wait = 0
		default:
			bo.Reset()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// PushOnce delivers at most one batch and returns how many records were
// confirmed. Zero with a nil error means the outbox is drained.
func (p *Pusher) PushOnce(ctx context.Context) (int, error) {
	readTxn := p.store.Txn(false)
	records, err := repo.NewSyncRepository(readTxn).ListUnpushed(p.conf.BatchSize)
	readTxn.Abort()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := p.client.PushBatch(ctx, records); err != nil {
		return 0, err
	}

	txn := p.store.Txn(true)
	defer txn.Abort()

	syncRepo := repo.NewSyncRepository(txn)
	for _, record := range records {
		if err := syncRepo.MarkPushed(record.RecordID); err != nil {
			return 0, err
		}
	}
	if err := txn.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}
