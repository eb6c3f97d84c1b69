package loki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ogero/subtitle-shots/pkg/transport"
	"go.opentelemetry.io/otel/trace"
)

// Log lines counted by the stats queries. They must match the messages logged by the game service.
const (
	GameGeneratedMessage = "Game generated"
	GameFailedMessage    = "Failed to GameService.Generate"
)

// Loki retrieves game statistics from the service logs.
type Loki interface {
	// GetGames24 returns the number of games generated in the last 24 hours.
	GetGames24(ctx context.Context) (int, error)
	// GetFailedGames24 returns the number of failed generations in the last 24 hours.
	GetFailedGames24(ctx context.Context) (int, error)
}

type loki struct {
	httpClient  *http.Client
	lokiHost    string
	serviceName string
}

// NewLoki returns a Loki client querying lokiHost for the logs of serviceName.
// opts are applied to every request, e.g. transport.WithScopeOrgID for multi-tenant deployments.
func NewLoki(lokiHost, serviceName string, opts ...transport.HeaderOption) Loki {
	return &loki{
		httpClient: &http.Client{
			Timeout:   time.Second * 30,
			Transport: transport.NewHeadersRoundTripper(http.DefaultTransport, opts...),
		},
		lokiHost:    lokiHost,
		serviceName: serviceName,
	}
}

func (l *loki) GetGames24(ctx context.Context) (int, error) {
	return l.countLogs(ctx, "loki.Loki.GetGames24", GameGeneratedMessage)
}

func (l *loki) GetFailedGames24(ctx context.Context) (int, error) {
	return l.countLogs(ctx, "loki.Loki.GetFailedGames24", GameFailedMessage)
}

func (l *loki) countLogs(ctx context.Context, spanName, search string) (int, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, spanName)
	defer span.End()

	query := fmt.Sprintf("sum(count_over_time({service_name=%q} |= `%s` [24h]))", l.serviceName, search)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.lokiHost+"/loki/api/v1/query", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to http.NewRequestWithContext: %w", err)
	}

	q := req.URL.Query()
	q.Add("query", query)
	req.URL.RawQuery = q.Encode()

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to http.Client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	var lokiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&lokiResp); err != nil {
		return 0, fmt.Errorf("failed to json.Decoder.Decode: %w", err)
	}

	if lokiResp.Status != "success" {
		return 0, fmt.Errorf("loki response status: %s", lokiResp.Status)
	}

	if lokiResp.Data.ResultType != "vector" {
		return 0, fmt.Errorf("loki response data result type: %s", lokiResp.Data.ResultType)
	}

	// Nothing logged in the window.
	if len(lokiResp.Data.Result) == 0 {
		return 0, nil
	}

	if len(lokiResp.Data.Result) != 1 {
		return 0, fmt.Errorf("loki response data result length: %d", len(lokiResp.Data.Result))
	}

	if len(lokiResp.Data.Result[0].Value) != 2 {
		return 0, fmt.Errorf("loki response data result value length: %d", len(lokiResp.Data.Result[0].Value))
	}

	value, ok := (lokiResp.Data.Result[0].Value[1]).(string)
	if !ok {
		return 0, fmt.Errorf("failed to assert value to string: %v", lokiResp.Data.Result[0].Value[1])
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to strconv.Atoi: %w", err)
	}

	return i, nil
}

// Response is the body of a Loki instant query.
type Response struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Metric map[string]string `json:"metric"`
			Value  []any             `json:"value"`
		} `json:"result"`
	} `json:"data"`
}
