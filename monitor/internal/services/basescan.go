package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Q872/base-sniper-monitor/shared/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBasescanAPI = "https://api.basescan.org/api"

type basescanSourceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		SourceCode   string `json:"SourceCode"`
		ContractName string `json:"ContractName"`
	} `json:"result"`
}

// BasescanClient checks contract verification on the Base block explorer.
type BasescanClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewBasescanClient(apiKey string, log *logger.Logger) *BasescanClient {
	return &BasescanClient{
		baseURL: defaultBasescanAPI,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(4), 2),
		log:     log,
	}
}

// IsVerified reports whether the contract source is published on BaseScan.
func (b *BasescanClient) IsVerified(ctx context.Context, contractAddress string) (bool, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("basescan rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getsourcecode")
	params.Set("address", contractAddress)
	if b.apiKey != "" {
		params.Set("apikey", b.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("build basescan request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("basescan request failed for %s: %w", contractAddress, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.log.Warn("BaseScan API non-OK status",
			zap.String("contract", contractAddress), zap.String("status", resp.Status))
		return false, fmt.Errorf("basescan API status %s for %s", resp.Status, contractAddress)
	}

	var parsed basescanSourceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("basescan JSON parsing failed for %s: %w", contractAddress, err)
	}

	if parsed.Status != "1" || len(parsed.Result) == 0 {
		return false, nil
	}
	return parsed.Result[0].SourceCode != "", nil
}
