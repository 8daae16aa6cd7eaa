package property

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	platformes "estate_market_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// Indexer mirrors property writes into the search index.
type Indexer interface {
	Index(ctx context.Context, p *Property) error
	Remove(ctx context.Context, id uint) error
}

// NewIndexer returns an Elasticsearch backed indexer, or a no-op indexer when
// search is not configured.
func NewIndexer(client *platformes.ESClientWrapper, logger *zap.Logger) Indexer {
	if client == nil {
		return noopIndexer{}
	}
	return &esIndexer{client: client, logger: logger.Named("PropertyIndexer")}
}

type noopIndexer struct{}

func (noopIndexer) Index(context.Context, *Property) error { return nil }
func (noopIndexer) Remove(context.Context, uint) error     { return nil }

type esIndexer struct {
	client *platformes.ESClientWrapper
	logger *zap.Logger
}

func (i *esIndexer) Index(ctx context.Context, p *Property) error {
	doc, err := ToSearchDocument(p)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      platformes.PropertiesIndexName,
		DocumentID: strconv.FormatUint(uint64(p.ID), 10),
		Body:       strings.NewReader(doc),
	}
	res, err := req.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("failed to index property %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return platformes.ResponseError(res)
	}
	return nil
}

func (i *esIndexer) Remove(ctx context.Context, id uint) error {
	req := esapi.DeleteRequest{
		Index:      platformes.PropertiesIndexName,
		DocumentID: strconv.FormatUint(uint64(id), 10),
	}
	res, err := req.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("failed to remove property %d from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return platformes.ResponseError(res)
	}
	return nil
}

// ToSearchDocument converts a property to its Elasticsearch document.
func ToSearchDocument(p *Property) (string, error) {
	if p == nil {
		return "", errors.New("property cannot be nil")
	}
	doc := map[string]interface{}{
		"title":         p.Title,
		"slug":          p.Slug,
		"description":   p.Description,
		"price":         p.Price,
		"address":       p.Address,
		"city":          p.City,
		"state":         p.State,
		"zip_code":      p.ZipCode,
		"property_type": string(p.PropertyType),
		"bedrooms":      p.Bedrooms,
		"bathrooms":     p.Bathrooms,
		"parking":       p.Parking,
		"pool":          p.Pool,
		"gym":           p.Gym,
		"pet_friendly":  p.PetFriendly,
		"furnished":     p.Furnished,
		"available":     p.Available,
		"featured":      p.Featured,
		"owner_id":      p.OwnerID,
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	}
	if p.SquareFeet != nil {
		doc["square_feet"] = *p.SquareFeet
	}
	if p.YearBuilt != nil {
		doc["year_built"] = *p.YearBuilt
	}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling property to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}

// SyncResult counts the outcome of a bulk synchronization.
type SyncResult struct {
	Synced int
	Failed int
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string                 `json:"_id"`
			Status int                    `json:"status"`
			Error  map[string]interface{} `json:"error,omitempty"`
		} `json:"index"`
	} `json:"items"`
}

// BulkSync re-indexes every property through the bulk API, one batch at a time.
func BulkSync(ctx context.Context, repo Repository, client *platformes.ESClientWrapper, logger *zap.Logger, batchSize int, refresh string) (SyncResult, error) {
	var result SyncResult
	if client == nil {
		return result, errors.New("elasticsearch is not configured")
	}
	batchNumber := 0

	err := repo.FindInBatches(ctx, batchSize, func(batch []Property) error {
		batchNumber++
		var body strings.Builder
		documents := 0
		for i := range batch {
			p := &batch[i]
			doc, err := ToSearchDocument(p)
			if err != nil {
				logger.Error("Failed to convert property to search document", zap.Uint("propertyID", p.ID), zap.Error(err))
				result.Failed++
				continue
			}
			fmt.Fprintf(&body, `{ "index" : { "_index" : "%s", "_id" : "%d" } }%s`, platformes.PropertiesIndexName, p.ID, "\n")
			body.WriteString(doc)
			body.WriteString("\n")
			documents++
		}
		if documents == 0 {
			return nil
		}

		req := esapi.BulkRequest{Body: strings.NewReader(body.String()), Refresh: refresh}
		res, err := req.Do(ctx, client.Client)
		if err != nil {
			logger.Error("Failed to send bulk request", zap.Error(err), zap.Int("batchNumber", batchNumber))
			result.Failed += documents
			return nil
		}
		defer res.Body.Close()

		if res.IsError() {
			logger.Error("Elasticsearch bulk request returned an error", zap.String("status", res.Status()), zap.Int("batchNumber", batchNumber))
			result.Failed += documents
			return nil
		}

		var parsed bulkResponse
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			logger.Error("Failed to parse bulk response", zap.Error(err), zap.Int("batchNumber", batchNumber))
			result.Failed += documents
			return nil
		}
		for _, item := range parsed.Items {
			if item.Index.Error != nil {
				logger.Error("Failed to index document in bulk batch",
					zap.String("propertyID", item.Index.ID),
					zap.Any("error", item.Index.Error),
					zap.Int("status", item.Index.Status),
				)
				result.Failed++
			} else {
				result.Synced++
			}
		}
		logger.Info("Batch processed", zap.Int("batchNumber", batchNumber), zap.Int("documents", documents))
		return nil
	})
	if err != nil {
		return result, err
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("%d properties failed to sync", result.Failed)
	}
	return result, nil
}
