package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/olivere/elastic/v7"
)

type ElasticConfig struct {
	URL           string
	Username      string
	Password      string
	Index         string
	BulkActions   int
	FlushInterval time.Duration
}

func (c *ElasticConfig) setDefaults() {
	if c.Index == "" {
		c.Index = "storefront-logs"
	}
	if c.BulkActions <= 0 {
		c.BulkActions = 500
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
}

// ElasticWriter is an io.Writer that indexes every log line into
// elasticsearch through a bulk processor. Write never waits on the cluster,
// failed bulks are only counted.
type ElasticWriter struct {
	bulk   *elastic.BulkProcessor
	index  string
	failed atomic.Int64
}

func NewElasticWriter(ctx context.Context, cfg ElasticConfig) (*ElasticWriter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("elastic url is empty")
	}
	cfg.setDefaults()

	opts := []elastic.ClientOptionFunc{elastic.SetURL(cfg.URL)}
	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}
	// simple client 不做 sniff 與 healthcheck, 叢集沒起來也能先建
	client, err := elastic.NewSimpleClient(opts...)
	if err != nil {
		return nil, err
	}

	w := &ElasticWriter{index: cfg.Index}
	bulk, err := client.BulkProcessor().
		Name("storefront-log").
		Workers(1).
		BulkActions(cfg.BulkActions).
		FlushInterval(cfg.FlushInterval).
		After(w.afterCommit).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	w.bulk = bulk
	return w, nil
}

func (w *ElasticWriter) afterCommit(_ int64, requests []elastic.BulkableRequest, res *elastic.BulkResponse, err error) {
	if err != nil {
		w.failed.Add(int64(len(requests)))
		return
	}
	if res != nil {
		w.failed.Add(int64(len(res.Failed())))
	}
}

func (w *ElasticWriter) Write(p []byte) (int, error) {
	if w == nil || w.bulk == nil {
		return 0, fmt.Errorf("elastic log writer is not init")
	}

	// zerolog reuses p after Write returns
	doc := bytes.TrimSpace(p)
	if json.Valid(doc) {
		doc = append([]byte(nil), doc...)
	} else {
		wrapped, err := json.Marshal(map[string]string{"message": string(doc)})
		if err != nil {
			return 0, err
		}
		doc = wrapped
	}

	w.bulk.Add(elastic.NewBulkIndexRequest().Index(w.index).Doc(json.RawMessage(doc)))
	return len(p), nil
}

// Failed is the number of log lines the cluster did not accept.
func (w *ElasticWriter) Failed() int64 {
	return w.failed.Load()
}

// Close flushes pending lines and stops the bulk workers.
func (w *ElasticWriter) Close() error {
	if w == nil || w.bulk == nil {
		return nil
	}
	return w.bulk.Close()
}
