package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Q872/base-sniper-monitor/shared/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultHoneypotAPI = "https://api.honeypot.is/v2/IsHoneypot"

// HoneypotResult carries the simulation verdict for one token.
type HoneypotResult struct {
	IsHoneypot bool
	BuyTaxPct  float64
	SellTaxPct float64
}

type honeypotResponse struct {
	HoneypotResult struct {
		IsHoneypot bool `json:"isHoneypot"`
	} `json:"honeypotResult"`
	SimulationResult struct {
		BuyTax      float64 `json:"buyTax"`
		SellTax     float64 `json:"sellTax"`
		TransferTax float64 `json:"transferTax"`
	} `json:"simulationResult"`
}

// HoneypotClient queries honeypot.is for Base-chain tokens.
type HoneypotClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewHoneypotClient(log *logger.Logger) *HoneypotClient {
	return &HoneypotClient{
		baseURL: defaultHoneypotAPI,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
		log:     log,
	}
}

// Check runs the honeypot simulation for the token. Failures surface as an
// error so the enricher can substitute the documented safe defaults.
func (h *HoneypotClient) Check(ctx context.Context, tokenAddress string) (HoneypotResult, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return HoneypotResult{}, fmt.Errorf("honeypot rate limiter wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s?address=%s&chain=base", h.baseURL, url.QueryEscape(tokenAddress))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return HoneypotResult{}, fmt.Errorf("build honeypot request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return HoneypotResult{}, fmt.Errorf("honeypot request failed for %s: %w", tokenAddress, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		h.log.Warn("Honeypot API non-OK status",
			zap.String("token", tokenAddress), zap.String("status", resp.Status), zap.ByteString("body", body))
		return HoneypotResult{}, fmt.Errorf("honeypot API status %s for %s", resp.Status, tokenAddress)
	}

	var parsed honeypotResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return HoneypotResult{}, fmt.Errorf("honeypot JSON parsing failed for %s: %w", tokenAddress, err)
	}

	return HoneypotResult{
		IsHoneypot: parsed.HoneypotResult.IsHoneypot,
		BuyTaxPct:  parsed.SimulationResult.BuyTax,
		SellTaxPct: parsed.SimulationResult.SellTax,
	}, nil
}
