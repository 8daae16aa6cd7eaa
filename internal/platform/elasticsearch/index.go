package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const PropertiesIndexName = "properties"

func definePropertiesMapping() (string, error) {
	keyword := map[string]interface{}{"type": "keyword"}
	boolean := map[string]interface{}{"type": "boolean"}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":         map[string]interface{}{"type": "text"},
				"slug":          keyword,
				"description":   map[string]interface{}{"type": "text"},
				"price":         map[string]interface{}{"type": "scaled_float", "scaling_factor": 100},
				"address":       map[string]interface{}{"type": "text"},
				"city":          map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": keyword}},
				"state":         keyword,
				"zip_code":      keyword,
				"property_type": keyword,
				"bedrooms":      map[string]interface{}{"type": "integer"},
				"bathrooms":     map[string]interface{}{"type": "integer"},
				"square_feet":   map[string]interface{}{"type": "integer"},
				"year_built":    map[string]interface{}{"type": "integer"},
				"parking":       boolean,
				"pool":          boolean,
				"gym":           boolean,
				"pet_friendly":  boolean,
				"furnished":     boolean,
				"available":     boolean,
				"featured":      boolean,
				"owner_id":      keyword,
				"created_at":    map[string]interface{}{"type": "date"},
				"updated_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
	raw, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("failed to encode properties mapping: %w", err)
	}
	return string(raw), nil
}

// CreatePropertiesIndexIfNotExists makes sure the properties index exists with its
// mapping. An existing index is left alone, mapping included.
func CreatePropertiesIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	mapping, err := definePropertiesMapping()
	if err != nil {
		return err
	}
	return ensureIndex(ctx, client, PropertiesIndexName, mapping, logger.Named("IndexSetup"))
}

func ensureIndex(ctx context.Context, client *ESClientWrapper, name, mapping string, log *zap.Logger) error {
	exists, err := client.Indices.Exists([]string{name}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", name, err)
	}
	exists.Body.Close()

	switch exists.StatusCode {
	case http.StatusOK:
		log.Info("Index already exists", zap.String("index", name))
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("failed to check index %s: %s", name, exists.Status())
	}

	res, err := client.Indices.Create(name,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return ResponseError(res)
	}

	log.Info("Index created", zap.String("index", name))
	return nil
}

// ResponseError renders a failed esapi response, body included, as an error.
func ResponseError(res *esapi.Response) error {
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return fmt.Errorf("elasticsearch %s (body unreadable: %v)", res.Status(), err)
	}
	return fmt.Errorf("elasticsearch %s: %s", res.Status(), body)
}
