package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

const extractionPrompt = `You are an expert cloth merchant accountant.
Extract the party/customer name and the grand total amount from this bill.
Also, extract a list of specific cloth items or descriptions (e.g., 'Cotton Silk', '2m Fabric').
If the handwriting is messy, make your best guess for the merchant's records.
Return a clean JSON object.`

// Gemini extracts bill fields with the Gemini vision API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini builds the adapter. The upstream service is untrusted, so every
// request runs under the given timeout (a hung call is treated as failure).
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

type wireResult struct {
	PartyName string   `json:"partyName"`
	Amount    *float64 `json:"amount"`
	LineItems []string `json:"lineItems"`
	Date      string   `json:"date"`
}

// Extract sends the image and the fixed instruction, expecting strict JSON
// back. Network failures, non-JSON responses, and schema violations all
// surface as *Error.
func (g *Gemini) Extract(ctx context.Context, image []byte, mimeType string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
				{Text: extractionPrompt},
			},
		},
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"partyName": {Type: genai.TypeString, Description: "The name of the party or customer."},
				"amount":    {Type: genai.TypeNumber, Description: "The final total bill amount."},
				"lineItems": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "List of items or fabric descriptions."},
				"date":      {Type: genai.TypeString, Description: "The date of transaction (YYYY-MM-DD)."},
			},
			Required: []string{"partyName", "amount"},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return Result{}, &Error{Reason: "model call", Cause: err}
	}
	return decodeResponse(resp.Text())
}

// decodeResponse parses and validates the model output.
func decodeResponse(raw string) (Result, error) {
	if strings.TrimSpace(raw) == "" {
		return Result{}, &Error{Reason: "empty response"}
	}
	var wire wireResult
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &wire); err != nil {
		return Result{}, &Error{Reason: "non-JSON response", Cause: err}
	}
	if strings.TrimSpace(wire.PartyName) == "" {
		return Result{}, &Error{Reason: "response missing partyName"}
	}
	if wire.Amount == nil {
		return Result{}, &Error{Reason: "response missing amount"}
	}
	amount := decimal.NewFromFloat(*wire.Amount)
	if amount.IsNegative() {
		return Result{}, &Error{Reason: "response amount is negative"}
	}
	date := strings.TrimSpace(wire.Date)
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			// A malformed date is not worth failing the whole bill over.
			date = ""
		}
	}
	return Result{
		PartyName: strings.TrimSpace(wire.PartyName),
		Amount:    amount,
		Items:     wire.LineItems,
		Date:      date,
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the strict-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
