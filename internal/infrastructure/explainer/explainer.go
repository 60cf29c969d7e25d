package explainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/domain/transaction"
	"github.com/vanshtarar4/predictive-transaction-backend/internal/service/decision"
)

// Client asks a generative-text API for a one-sentence compliance narrative
// about a fraud verdict. Strictly best-effort: the decision engine drops the
// narrative on any failure.
type Client struct {
	url    string
	apiKey string
	client *http.Client
}

// New creates an explainer client. url is the generateContent endpoint;
// apiKey is appended as the key query parameter.
func New(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Explain renders the prompt and extracts the first candidate text.
func (c *Client) Explain(ctx context.Context, tx *transaction.Transaction, verdict *decision.Verdict) (string, error) {
	if c.apiKey == "" {
		return "", errors.NewExternalError("explainer", "API key not configured")
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(tx, verdict)}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding explainer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building explainer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.NewExternalError("explainer", "request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewExternalError("explainer", fmt.Sprintf("status %d", resp.StatusCode))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.NewExternalError("explainer", "decoding response").WithCause(err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.NewExternalError("explainer", "empty response")
	}

	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

// buildPrompt summarizes the flagged transaction for a compliance officer.
func buildPrompt(tx *transaction.Transaction, verdict *decision.Verdict) string {
	rules := "None"
	if len(verdict.RuleReasons) > 0 {
		rules = strings.Join(verdict.RuleReasons, ", ")
	}
	return fmt.Sprintf(
		"Explain why this transaction is flagged as FRAUD.\n"+
			"- Amount: %.2f\n"+
			"- Channel: %s\n"+
			"- Hour: %02d:00\n"+
			"- Risk Score: %.2f\n"+
			"- Triggered Rules: %s\n"+
			"Provide a concise 1-sentence explanation for a compliance officer. "+
			"Focus on the most suspicious factors.",
		tx.TransactionAmount, tx.Channel, tx.Hour, verdict.RiskScore, rules,
	)
}
