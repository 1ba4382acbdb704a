// Package fetcher retrieves Amazon product pages and extracts price data.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// Common fetch errors
var (
	ErrInvalidLink       = errors.New("no product id found in link")
	ErrTitleNotFound     = errors.New("product title not found")
	ErrPriceNotFound     = errors.New("product price not found")
	ErrRequestFailed     = errors.New("page request failed")
	ErrRateLimited       = errors.New("rate limited by marketplace")
	ErrSourceUnavailable = errors.New("marketplace unavailable")
	ErrBadStatus         = errors.New("unexpected response status")
)

// IsParseFailure reports whether err means the page or link could not be
// understood, as opposed to a transport problem. Parse failures earn the
// sender a corrective reply; transport failures are logged and retried.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrInvalidLink) ||
		errors.Is(err, ErrTitleNotFound) ||
		errors.Is(err, ErrPriceNotFound)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0 Safari/537.36"

var asinPattern = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)
var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// priceSelectors are tried in order; Amazon serves several page layouts.
var priceSelectors = []string{
	"span.a-price span.a-offscreen",
	"#priceblock_dealprice",
	"#priceblock_ourprice",
}

// Result is one successful page extraction.
type Result struct {
	ASIN       string
	Title      string
	URL        string
	Price      decimal.Decimal
	Currency   string
	InStock    bool
	Confidence string
}

// Fetcher fetches product pages over plain HTTP with browser-like headers.
type Fetcher struct {
	client *http.Client
}

func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// NewWithClient is used by tests to inject a client.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads a product page and extracts ASIN, title and price. The
// ASIN is matched against the final URL, after any shortener or search
// redirects have resolved.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	finalURL := resp.Request.URL.String()
	asin := extractASIN(finalURL)
	if asin == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLink, finalURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("#productTitle").First().Text())
	if title == "" {
		return nil, ErrTitleNotFound
	}

	priceText := findPriceText(doc)
	if priceText == "" {
		return nil, ErrPriceNotFound
	}
	price, err := cleanPrice(priceText)
	if err != nil {
		return nil, err
	}

	return &Result{
		ASIN:       asin,
		Title:      title,
		URL:        finalURL,
		Price:      price,
		Currency:   "INR",
		InStock:    true,
		Confidence: "high",
	}, nil
}

func statusError(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, code)
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrSourceUnavailable, code)
	default:
		return fmt.Errorf("%w: status %d", ErrBadStatus, code)
	}
}

func extractASIN(url string) string {
	match := asinPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}

func findPriceText(doc *goquery.Document) string {
	for _, selector := range priceSelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// cleanPrice strips thousand separators and currency decoration, leaving
// digits and the decimal point. "₹1,29,900.00" parses to 129900.00.
func cleanPrice(text string) (decimal.Decimal, error) {
	cleaned := nonPriceChars.ReplaceAllString(strings.ReplaceAll(text, ",", ""), "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrPriceNotFound, text)
	}

	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrPriceNotFound, text)
	}
	return price, nil
}
