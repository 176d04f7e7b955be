package budget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Cache keys. Each holds the full listing for this run's budget; every
// name lookup hits the cached listing instead of the API.
const (
	cacheKeyBudgetID   = "budget-id"
	cacheKeyAccounts   = "accounts"
	cacheKeyCategories = "categories"
)

type accountEntry struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	TransferPayeeID string `json:"transfer_payee_id"`
}

// budgetID resolves the configured budget name to its id, once per run.
func (c *Client) budgetID(ctx context.Context) (string, error) {
	if v, ok := c.cache.Get(cacheKeyBudgetID); ok {
		return v.(string), nil
	}

	var parsed struct {
		Data struct {
			Budgets []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"budgets"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/budgets", &parsed); err != nil {
		return "", fmt.Errorf("listing budgets: %w", err)
	}
	for _, b := range parsed.Data.Budgets {
		if b.Name == c.budgetName {
			c.cache.Set(cacheKeyBudgetID, b.ID, 1)
			c.cache.Wait()
			return b.ID, nil
		}
	}
	return "", &NotFoundError{Kind: "budget", Name: c.budgetName}
}

// accounts returns the budget's accounts keyed by display name.
func (c *Client) accounts(ctx context.Context) (map[string]accountEntry, error) {
	if v, ok := c.cache.Get(cacheKeyAccounts); ok {
		return v.(map[string]accountEntry), nil
	}

	budgetID, err := c.budgetID(ctx)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data struct {
			Accounts []accountEntry `json:"accounts"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/budgets/"+budgetID+"/accounts", &parsed); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	byName := make(map[string]accountEntry, len(parsed.Data.Accounts))
	for _, a := range parsed.Data.Accounts {
		byName[a.Name] = a
	}
	c.cache.Set(cacheKeyAccounts, byName, int64(len(byName)))
	c.cache.Wait()
	return byName, nil
}

// categories returns the budget's category ids keyed by group then name.
func (c *Client) categories(ctx context.Context) (map[string]map[string]string, error) {
	if v, ok := c.cache.Get(cacheKeyCategories); ok {
		return v.(map[string]map[string]string), nil
	}

	budgetID, err := c.budgetID(ctx)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data struct {
			CategoryGroups []struct {
				Name       string `json:"name"`
				Categories []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"categories"`
			} `json:"category_groups"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/budgets/"+budgetID+"/categories", &parsed); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	byGroup := make(map[string]map[string]string, len(parsed.Data.CategoryGroups))
	cost := int64(0)
	for _, g := range parsed.Data.CategoryGroups {
		names := make(map[string]string, len(g.Categories))
		for _, cat := range g.Categories {
			names[cat.Name] = cat.ID
			cost++
		}
		byGroup[g.Name] = names
	}
	c.cache.Set(cacheKeyCategories, byGroup, cost)
	c.cache.Wait()
	return byGroup, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}
