// Package rates fetches official daily exchange rates from the National
// Bank of Ukraine and memoizes them in a JSON file so repeated runs over
// the same period stay offline.
package rates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// Currency is a valcode accepted by the NBU exchange endpoint.
type Currency string

// EUR is the only currency the importer converts today.
const EUR Currency = "eur"

// DefaultBaseURL is the NBU exchange endpoint.
const DefaultBaseURL = "https://bank.gov.ua"

const dayFormat = "2006-01-02"

// Cache is a file-backed store of daily rates for one currency.
type Cache struct {
	path     string
	currency Currency
	base     string
	hc       *http.Client
	rates    map[string]float64
}

// New creates a Cache persisting to path.
func New(path string, currency Currency) *Cache {
	return &Cache{
		path:     path,
		currency: currency,
		base:     DefaultBaseURL,
		hc:       &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithBaseURL creates a Cache against a non-default endpoint.
func NewWithBaseURL(path string, currency Currency, baseURL string) *Cache {
	c := New(path, currency)
	c.base = baseURL
	return c
}

// Load makes sure the cache covers [from, to]. Days already cached are not
// re-requested; a fetched span is merged in and persisted.
func (c *Cache) Load(from, to time.Time) error {
	if c.rates == nil {
		if err := c.read(); err != nil {
			return err
		}
	}

	_, haveFrom := c.rates[from.Format(dayFormat)]
	_, haveTo := c.rates[to.Format(dayFormat)]
	if haveFrom && haveTo {
		return nil
	}

	fetched, err := c.fetch(from, to)
	if err != nil {
		return err
	}
	for day, rate := range fetched {
		c.rates[day] = rate
	}
	return c.write()
}

// Rate returns the cached rate for a calendar day.
func (c *Cache) Rate(day time.Time) (float64, bool) {
	r, ok := c.rates[day.Format(dayFormat)]
	return r, ok
}

func (c *Cache) read() error {
	c.rates = make(map[string]float64)
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading rates cache: %w", err)
	}
	if err := json.Unmarshal(data, &c.rates); err != nil {
		return fmt.Errorf("parsing rates cache: %w", err)
	}
	return nil
}

func (c *Cache) write() error {
	data, err := json.Marshal(c.rates)
	if err != nil {
		return fmt.Errorf("marshaling rates cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing rates cache: %w", err)
	}
	return nil
}

type exchangeItem struct {
	Date string  `json:"exchangedate"` // dd.mm.yyyy
	Rate float64 `json:"rate_per_unit"`
}

func (c *Cache) fetch(from, to time.Time) (map[string]float64, error) {
	url := fmt.Sprintf(
		"%s/NBU_Exchange/exchange_site?start=%s&end=%s&valcode=%s&sort=exchangedate&order=desc&json",
		c.base, from.Format("20060102"), to.Format("20060102"), c.currency)

	resp, err := c.hc.Get(url)
	if err != nil {
		return nil, fmt.Errorf("requesting rates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading rates response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requesting rates: status %d: %s", resp.StatusCode, string(body))
	}

	var items []exchangeItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decoding rates response: %w", err)
	}

	out := make(map[string]float64, len(items))
	for _, item := range items {
		day, err := time.Parse("02.01.2006", item.Date)
		if err != nil {
			return nil, fmt.Errorf("decoding rate date %q: %w", item.Date, err)
		}
		out[day.Format(dayFormat)] = item.Rate
	}
	return out, nil
}
