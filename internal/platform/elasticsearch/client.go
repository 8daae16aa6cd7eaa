package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"estate_market_backend/internal/config"
)

// ESClientWrapper is the process-wide search client. A nil wrapper means search
// indexing is switched off.
type ESClientWrapper struct {
	*elasticsearch.Client
}

// transportLogger sends round-trip traces to zap at debug level.
type transportLogger struct {
	logger *zap.Logger
}

var _ elastictransport.Logger = (*transportLogger)(nil)

func (l *transportLogger) LogRoundTrip(req *http.Request, res *http.Response, err error, _ time.Time, dur time.Duration) error {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Duration("took", dur),
	}
	if res != nil {
		fields = append(fields, zap.Int("status", res.StatusCode))
	}
	if err != nil {
		l.logger.Warn("Search request failed", append(fields, zap.Error(err))...)
		return nil
	}
	l.logger.Debug("Search request", fields...)
	return nil
}

func (l *transportLogger) RequestBodyEnabled() bool { return false }
func (l *transportLogger) ResponseBodyEnabled() bool { return false }

// NewClient connects to ELASTICSEARCH_URL and checks the cluster answers. With no URL
// configured it returns (nil, nil).
func NewClient(cfg *config.Config, logger *zap.Logger) (*ESClientWrapper, error) {
	if cfg.ElasticsearchURL == "" {
		logger.Info("ELASTICSEARCH_URL not set; property search indexing disabled")
		return nil, nil
	}

	retries := cfg.ElasticsearchMaxRetries
	if retries <= 0 {
		retries = 3
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.ElasticsearchURL},
		Username:      cfg.ElasticsearchUsername,
		Password:      cfg.ElasticsearchPassword,
		Logger:        &transportLogger{logger: logger.Named("Elasticsearch")},
		RetryOnStatus: []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		RetryBackoff:  func(attempt int) time.Duration { return time.Duration(attempt) * 200 * time.Millisecond },
		MaxRetries:    retries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	wrapper := &ESClientWrapper{Client: client}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := wrapper.Ping(ctx); err != nil {
		return nil, err
	}

	logger.Info("Elasticsearch connected", zap.String("url", cfg.ElasticsearchURL), zap.String("clientVersion", elasticsearch.Version))
	return wrapper, nil
}

// Ping asks the cluster for its info document. A nil receiver reports no error.
func (w *ESClientWrapper) Ping(ctx context.Context) error {
	if w == nil {
		return nil
	}
	res, err := w.Info(w.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to reach elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		var body struct {
			Error struct {
				Reason string `json:"reason"`
			} `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&body)
		return fmt.Errorf("elasticsearch responded %s: %s", res.Status(), body.Error.Reason)
	}
	return nil
}
