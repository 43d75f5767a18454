// Package logsink moves request log entries from Kafka into a search index.
package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"spamguard/pkg/models"
)

var ErrIndexRejected = errors.New("index request rejected")

// Reader is the subset of *kafka.Reader the keeper uses.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Indexer interface {
	Index(ctx context.Context, entry models.LogEntry, raw []byte) error
}

// ElasticIndexer stores entries in one Elasticsearch index, keyed by service
// and request ID so redelivered messages overwrite instead of duplicating.
type ElasticIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewElasticIndexer(es *elasticsearch.Client, index string) *ElasticIndexer {
	return &ElasticIndexer{es: es, index: index}
}

func (i *ElasticIndexer) Index(ctx context.Context, entry models.LogEntry, raw []byte) error {
	res, err := i.es.Index(
		i.index,
		bytes.NewReader(raw),
		i.es.Index.WithDocumentID(entry.Service+entry.RequestID),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexRejected, res.Status())
	}
	return nil
}

type Keeper struct {
	r       Reader
	idx     Indexer
	workers int
}

func New(r Reader, idx Indexer, workers int) *Keeper {
	if workers < 1 {
		workers = 1
	}
	return &Keeper{r: r, idx: idx, workers: workers}
}

// Run reads messages until ctx is cancelled and hands them to a pool of
// index workers. It returns after every worker has stopped.
func (k *Keeper) Run(ctx context.Context) {
	jobs := make(chan kafka.Message, k.workers*5) // buffer is needed to increase throughput

	var wg sync.WaitGroup
	wg.Add(k.workers)
	for workerID := 0; workerID < k.workers; workerID++ {
		go func(id int) {
			defer wg.Done()
			k.worker(ctx, jobs, id)
		}(workerID)
	}

	log.Info("[logkeeper] accepting logs...")
	for {
		msg, err := k.r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				break
			}
			log.Errorf("[logkeeper] failed to read message from Kafka: %v", err)
			continue
		}
		log.Debugf("[logkeeper] received message: %s", string(msg.Value))

		select {
		case jobs <- msg:
		case <-ctx.Done():
		}
	}

	close(jobs)
	wg.Wait()
}

func (k *Keeper) worker(ctx context.Context, jobs <-chan kafka.Message, workerID int) {
	for {
		select {
		case <-ctx.Done():
			log.Infof("[logkeeper][workerID:%d] context cancelled, exiting worker", workerID)
			return

		case msg, ok := <-jobs:
			if !ok {
				log.Infof("[logkeeper][workerID:%d] jobs channel closed, exiting worker", workerID)
				return
			}

			var entry models.LogEntry
			if err := json.Unmarshal(msg.Value, &entry); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to unmarshal log entry: %v", workerID, err)
				continue
			}

			if err := k.idx.Index(ctx, entry, msg.Value); err != nil {
				log.Errorf("[logkeeper][workerID:%d] failed to index document: %v", workerID, err)
				continue
			}
			log.Infof("[logkeeper][workerID:%d][%s] log entry indexed", workerID, shorten(entry.RequestID))
		}
	}
}

func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
