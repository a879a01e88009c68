package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/game-herald/internal/domain"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/google/uuid"
)

// HistoryStore keeps reported announcements in an elasticsearch index keyed by announcement id.
type HistoryStore struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewHistoryStore(ctx context.Context, config ClientConfig) (*HistoryStore, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	indexName := config.IndexName
	if indexName == "" {
		indexName = DefaultIndexName
	}

	store := &HistoryStore{
		client:    client,
		indexName: indexName,
	}

	if err := store.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return store, nil
}

func (e *HistoryStore) Save(ctx context.Context, a domain.Announcement) (uuid.UUID, error) {
	doc := toDocument(a, time.Now())

	res, err := e.client.Index(e.indexName).Id(doc.ID).Document(doc).Do(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to index announcement: %w", err)
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse announcement ID: %w", err)
	}

	slog.Debug("announcement indexed", "id", doc.ID, "index", e.indexName, "result", res.Result)
	return id, nil
}

func (e *HistoryStore) SaveBulk(ctx context.Context, announcements []domain.Announcement) error {
	if len(announcements) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.indexName,
		Client:        e.client,
		NumWorkers:    2,
		FlushBytes:    1e+6,
		FlushInterval: 5 * time.Second,
		Refresh:       "wait_for",
	})
	if err != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	var successful, failed atomic.Int64
	now := time.Now()

	for _, a := range announcements {
		doc := toDocument(a, now)

		docBytes, err := json.Marshal(doc)
		if err != nil {
			slog.Error("failed to marshal announcement", "error", err, "id", doc.ID)
			failed.Add(1)
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       bytes.NewReader(docBytes),
			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				successful.Add(1)
			},
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				if err != nil {
					slog.Error("bulk index error", "error", err, "id", item.DocumentID)
				} else {
					slog.Error("bulk index error", "status", res.Status, "error", res.Error.Type, "reason", res.Error.Reason, "id", item.DocumentID)
				}
			},
		})
		if err != nil {
			failed.Add(1)
			slog.Error("failed to add announcement to bulk indexer", "error", err, "id", doc.ID)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("failed to close bulk indexer: %w", err)
	}

	slog.Info("history bulk indexing completed",
		"successful", successful.Load(),
		"failed", failed.Load(),
		"total", len(announcements),
		"index", e.indexName)

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("failed to index %d out of %d announcements", n, len(announcements))
	}
	return nil
}

func (e *HistoryStore) Seen(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	seen := make(map[uuid.UUID]struct{})
	if len(ids) == 0 {
		return seen, nil
	}

	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}

	res, err := e.client.Search().
		Index(e.indexName).
		Query(&types.Query{
			Ids: &types.IdsQuery{Values: values},
		}).
		Size(len(values)).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcement history: %w", err)
	}

	for _, hit := range res.Hits.Hits {
		if hit.Id_ == nil {
			continue
		}
		id, err := uuid.Parse(*hit.Id_)
		if err != nil {
			slog.Warn("skipping history document with invalid id", "id", *hit.Id_)
			continue
		}
		seen[id] = struct{}{}
	}
	return seen, nil
}

func (e *HistoryStore) Close() error {
	return nil
}

func (e *HistoryStore) Name() string {
	return "elasticsearch"
}

func (e *HistoryStore) Healthy(ctx context.Context) bool {
	ok, err := e.client.Ping().Do(ctx)
	if err != nil {
		slog.Warn("elasticsearch health check failed", "error", err)
		return false
	}
	return ok
}

func (e *HistoryStore) EnsureIndex(ctx context.Context) error {
	exists, err := e.client.Indices.Exists(e.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	if exists {
		slog.Info("history index already exists", "index", e.indexName)
		return nil
	}

	mappings := types.TypeMapping{
		Properties: map[string]types.Property{
			"id":           types.NewKeywordProperty(),
			"game":         types.NewKeywordProperty(),
			"title":        textWithKeyword(),
			"link":         types.NewKeywordProperty(),
			"source_label": types.NewKeywordProperty(),
			"is_official":  types.NewBooleanProperty(),
			"published_at": types.NewDateProperty(),
			"reported_at":  types.NewDateProperty(),
		},
	}

	createRes, err := e.client.Indices.Create(e.indexName).
		Mappings(&mappings).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if !createRes.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("history index created", "index", e.indexName)
	return nil
}

func textWithKeyword() types.Property {
	textProp := types.NewTextProperty()
	textProp.Fields = map[string]types.Property{
		"keyword": types.NewKeywordProperty(),
	}
	return textProp
}
