// Package budget is the client for the budgeting service the transactions
// are uploaded to. Name-to-id resolution (budget, accounts, categories,
// transfer payees) is cached for the lifetime of one run.
package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/budgetsync-dev/budgetsync/internal/id"
	"github.com/budgetsync-dev/budgetsync/internal/model"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.ynab.com/v1"

const (
	// payeeNameLimit is the service's payee field length limit.
	payeeNameLimit = 100
	// milliunitScale converts statement minor units (1/100) into the
	// service's milliunits (1/1000).
	milliunitScale = 10
)

// Client talks to the budgeting service for a single named budget.
type Client struct {
	token      string
	budgetName string
	base       string
	hc         *http.Client
	cache      *ristretto.Cache
}

// NewClient creates a Client for one budget. The budget id itself is
// resolved lazily on first use.
func NewClient(token, budgetName string) (*Client, error) {
	return NewClientWithBaseURL(token, budgetName, DefaultBaseURL)
}

// NewClientWithBaseURL creates a Client against a non-default endpoint.
func NewClientWithBaseURL(token, budgetName, baseURL string) (*Client, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     10000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing id cache: %w", err)
	}
	return &Client{
		token:      token,
		budgetName: budgetName,
		base:       baseURL,
		hc:         &http.Client{Timeout: 60 * time.Second},
		cache:      cache,
	}, nil
}

// Close releases the id cache. The cache is scoped to one run; nothing
// survives process exit.
func (c *Client) Close() { c.cache.Close() }

// NotFoundError reports a configured name the budgeting service does not
// know.
type NotFoundError struct {
	Kind string // "budget", "account", "category"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in the budgeting service", e.Kind, e.Name)
}

// SubmitResult is the outcome of one bulk submission. Duplicates are
// detected by the service from the import id, so resubmitting a window is
// safe.
type SubmitResult struct {
	Imported   int
	Duplicates int
}

// SubmissionError carries the rejected batch so the operator can retry it
// manually. Bulk submissions are not retried automatically.
type SubmissionError struct {
	Status int
	Body   string
	Batch  []SaveTransaction
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("bulk submit rejected with status %d: %s", e.Status, e.Body)
}

// SaveTransaction is the wire format of one submitted transaction.
type SaveTransaction struct {
	AccountID       string               `json:"account_id"`
	Date            string               `json:"date"`
	Amount          int64                `json:"amount"`
	PayeeName       string               `json:"payee_name,omitempty"`
	PayeeID         string               `json:"payee_id,omitempty"`
	CategoryID      string               `json:"category_id,omitempty"`
	Memo            string               `json:"memo,omitempty"`
	ImportID        string               `json:"import_id,omitempty"`
	Subtransactions []SaveSubtransaction `json:"subtransactions,omitempty"`
}

// SaveSubtransaction is one part of a split transaction.
type SaveSubtransaction struct {
	Amount     int64  `json:"amount"`
	PayeeID    string `json:"payee_id,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

// AccountID resolves an account display name to its service id.
func (c *Client) AccountID(ctx context.Context, name string) (string, error) {
	accounts, err := c.accounts(ctx)
	if err != nil {
		return "", err
	}
	a, ok := accounts[name]
	if !ok {
		return "", &NotFoundError{Kind: "account", Name: name}
	}
	return a.ID, nil
}

// TransferPayeeID resolves an account display name to the payee id the
// service uses to link a transfer to that account.
func (c *Client) TransferPayeeID(ctx context.Context, accountName string) (string, error) {
	accounts, err := c.accounts(ctx)
	if err != nil {
		return "", err
	}
	a, ok := accounts[accountName]
	if !ok {
		return "", &NotFoundError{Kind: "account", Name: accountName}
	}
	return a.TransferPayeeID, nil
}

// CategoryID resolves a category group+name pair to its service id. An
// unknown pair is not an error: the transaction is submitted uncategorized
// and surfaced through its memo instead.
func (c *Client) CategoryID(ctx context.Context, group, name string) (string, error) {
	categories, err := c.categories(ctx)
	if err != nil {
		return "", err
	}
	return categories[group][name], nil
}

// SubmitTransactions bulk-creates transactions and reports how many the
// service imported and how many it recognized as duplicates.
func (c *Client) SubmitTransactions(ctx context.Context, txns []model.CategorizedTransaction) (*SubmitResult, error) {
	if len(txns) == 0 {
		return &SubmitResult{}, nil
	}

	batch := make([]SaveTransaction, 0, len(txns))
	for _, t := range txns {
		st, err := c.saveTransaction(ctx, &t)
		if err != nil {
			return nil, err
		}
		batch = append(batch, st)
	}

	budgetID, err := c.budgetID(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(struct {
		Transactions []SaveTransaction `json:"transactions"`
	}{Transactions: batch})
	if err != nil {
		return nil, fmt.Errorf("marshaling batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/budgets/%s/transactions", c.base, budgetID), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitting transactions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading submit response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &SubmissionError{Status: resp.StatusCode, Body: string(body), Batch: batch}
	}

	var parsed struct {
		Data struct {
			TransactionIDs     []string `json:"transaction_ids"`
			DuplicateImportIDs []string `json:"duplicate_import_ids"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding submit response: %w", err)
	}
	return &SubmitResult{
		Imported:   len(parsed.Data.TransactionIDs),
		Duplicates: len(parsed.Data.DuplicateImportIDs),
	}, nil
}

// saveTransaction converts one categorized transaction into the wire
// format: amounts scaled to milliunits, payee clipped to the field limit,
// and a memo assigned only when neither a category nor a transfer payee
// resolved, so uncategorized entries keep an audit trail for manual review.
func (c *Client) saveTransaction(ctx context.Context, t *model.CategorizedTransaction) (SaveTransaction, error) {
	accountID, err := c.AccountID(ctx, t.Account.Name)
	if err != nil {
		return SaveTransaction{}, err
	}

	var categoryID, payeeID string
	if t.Category != nil {
		if categoryID, err = c.CategoryID(ctx, t.Category.Group, t.Category.Name); err != nil {
			return SaveTransaction{}, err
		}
	}
	if t.TransferAccount != nil {
		if payeeID, err = c.TransferPayeeID(ctx, t.TransferAccount.Name); err != nil {
			return SaveTransaction{}, err
		}
	}

	// A split parent is categorized through its parts, so it never needs
	// the unresolved-statement audit memo.
	memo := t.Comment
	if categoryID == "" && payeeID == "" && !t.IsSplit() {
		memo = fallbackMemo(memo, t.Description, t.MCC)
	}

	st := SaveTransaction{
		AccountID:  accountID,
		Date:       t.Time.Format("2006-01-02"),
		Amount:     t.Amount * milliunitScale,
		PayeeName:  clipPayee(t.Payee),
		PayeeID:    payeeID,
		CategoryID: categoryID,
		Memo:       memo,
	}
	if t.ID != "" {
		st.ImportID = id.ImportID(t.ID)
	}

	for i := range t.Parts {
		part := &t.Parts[i]
		sub := SaveSubtransaction{
			Amount: part.Amount * milliunitScale,
			Memo:   part.Comment,
		}
		if part.Category != nil {
			if sub.CategoryID, err = c.CategoryID(ctx, part.Category.Group, part.Category.Name); err != nil {
				return SaveTransaction{}, err
			}
		}
		if part.TransferAccount != nil {
			if sub.PayeeID, err = c.TransferPayeeID(ctx, part.TransferAccount.Name); err != nil {
				return SaveTransaction{}, err
			}
		}
		st.Subtransactions = append(st.Subtransactions, sub)
	}
	return st, nil
}

func fallbackMemo(comment, description string, mcc int) string {
	memo := comment
	if memo != "" {
		memo += " "
	}
	memo += description
	if mcc != 0 {
		memo += fmt.Sprintf(" %d", mcc)
	}
	return memo
}

func clipPayee(payee string) string {
	runes := []rune(payee)
	if len(runes) <= payeeNameLimit {
		return payee
	}
	return string(runes[:payeeNameLimit])
}
