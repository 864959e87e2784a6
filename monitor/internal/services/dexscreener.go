package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Q872/base-sniper-monitor/shared/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultDexScreenerAPI = "https://api.dexscreener.com/latest/dex/pairs/base"

// ErrRateLimited is returned when DexScreener answers 429; callers skip the
// cycle instead of hammering the API.
var ErrRateLimited = errors.New("rate limit exceeded (429)")

type Pair struct {
	ChainID       string             `json:"chainId"`
	DexID         string             `json:"dexId"`
	URL           string             `json:"url"`
	PairAddress   string             `json:"pairAddress"`
	BaseToken     Token              `json:"baseToken"`
	QuoteToken    Token              `json:"quoteToken"`
	PriceNative   string             `json:"priceNative"`
	PriceUsd      string             `json:"priceUsd"`
	Transactions  map[string]TxData  `json:"txns"`
	Volume        map[string]float64 `json:"volume"`
	PriceChange   map[string]float64 `json:"priceChange"`
	Liquidity     *Liquidity         `json:"liquidity"`
	FDV           float64            `json:"fdv"`
	MarketCap     float64            `json:"marketCap"`
	PairCreatedAt int64              `json:"pairCreatedAt"`
	Info          *TokenInfo         `json:"info"`
}

type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Liquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

type TxData struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

type WebsiteInfo struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type SocialInfo struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type TokenInfo struct {
	ImageURL  string        `json:"imageUrl"`
	Header    string        `json:"header"`
	OpenGraph string        `json:"openGraph"`
	Websites  []WebsiteInfo `json:"websites"`
	Socials   []SocialInfo  `json:"socials"`
}

type pairsResponse struct {
	Pairs []Pair `json:"pairs"`
}

// DexScreenerClient fetches the latest Base-chain pair listings.
type DexScreenerClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewDexScreenerClient(log *logger.Logger) *DexScreenerClient {
	return &DexScreenerClient{
		baseURL: defaultDexScreenerAPI,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(4.66), 5),
		log:     log,
	}
}

// LatestPairs returns the current batch of pair snapshots. A 404 means no
// listings right now and yields an empty batch, not an error.
func (d *DexScreenerClient) LatestPairs(ctx context.Context) ([]Pair, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("dexscreener rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build dexscreener request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dexscreener request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		d.log.Warn("Rate limit hit fetching DexScreener pairs", zap.Int("status", resp.StatusCode))
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusNotFound:
		d.log.Info("No pair listings returned by DexScreener", zap.Int("status", resp.StatusCode))
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		d.log.Error("DexScreener API non-OK status",
			zap.String("status", resp.Status), zap.ByteString("body", body))
		return nil, fmt.Errorf("dexscreener API request failed with status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dexscreener response: %w", err)
	}

	var parsed pairsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		d.log.Error("DexScreener JSON parsing failed", zap.Error(err))
		return nil, fmt.Errorf("dexscreener JSON parsing failed: %w", err)
	}
	if parsed.Pairs == nil {
		d.log.Warn("DexScreener response missing pairs field")
		return nil, nil
	}
	return parsed.Pairs, nil
}

// HasSocials reports whether the pair metadata carries any community link.
func (p *Pair) HasSocials() bool {
	if p.Info == nil {
		return false
	}
	return len(p.Info.Socials) > 0 || len(p.Info.Websites) > 0
}

// LiquidityUSD returns the pair's USD liquidity, zero when absent.
func (p *Pair) LiquidityUSD() float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.Usd
}

// PriceUSDFloat parses the string price field, zero when absent or malformed.
func (p *Pair) PriceUSDFloat() float64 {
	if p.PriceUsd == "" {
		return 0
	}
	price, err := strconv.ParseFloat(p.PriceUsd, 64)
	if err != nil {
		return 0
	}
	return price
}
