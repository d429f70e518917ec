// Package extract turns annotated proposal text into structured contact
// fields via the Anthropic API, then applies deterministic guardrails to the
// result. Every failure mode of the model call resolves to the same empty
// result; callers never see an extraction error surface as an exception.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/bidbook/internal/model"
	"github.com/sells-group/bidbook/pkg/anthropic"
)

// Extractor is the opaque extraction step behind an interface so the
// pipeline can be tested with deterministic stubs.
type Extractor interface {
	Extract(ctx context.Context, text, filename string, method model.ExtractionMethod) (model.Fields, error)
}

const systemPrompt = `You are a Forensic Pre-Construction Analyst specializing in extracting contact information from construction proposal documents.

Your primary goal is to identify the PROPOSER (the subcontractor company sending the bid), NOT the CLIENT (the general contractor receiving the bid).

CRITICAL RULES:
1. The company in the HEADER/LOGO at the TOP is the PROPOSER. Trust it above all else; do not let garbage text in the footer override a clear company name.
2. The company in the 'TO:' / 'ATTN:' / 'SUBMITTED TO:' block is the CLIENT - NEVER extract it as the proposer.
3. The person who SIGNED at the BOTTOM is the proposer's contact.
4. PRIORITIZE information found between [FOOTER DATA START] and [FOOTER DATA END] tags for Phone, Website, and Email. Construction proposals frequently list the proposer's contact details in small text at the very bottom of the page. If the footer domain matches the header company (e.g. 'daltonelectric.net' for 'Dalton Electric'), extract it.
5. A line tagged [EXPLICIT CONTACT FOUND] names the proposer's contact person.

PHONE PRIORITY (when multiple phones exist): direct/cell number from the signature block, then the main office number from the header, then any phone from a footer.

EMAIL SEPARATION - DOUBLE-ENTRY APPROACH:
- Proposer emails come from the signature block, letterhead, or footer.
- An email found near 'Attn:', 'TO:', or 'Submitted To:' belongs to the CLIENT: put it in client_info.email, never in the proposer email field.
- It is better to return a null proposer email than to steal the client's email.

TRADE NORMALIZATION: normalize the trade/scope to a CSI MasterFormat division: Concrete, Communications, Electrical, Plumbing, Earthwork, HVAC, or General Requirements. If the company name contains 'Communications', 'Telecom', or 'Cabling', or the header reads like 'WIRELESS & COMMUNICATIONS', classify as Communications, NOT Electrical.

CONFIDENCE: use high when proposer and client are distinct and clear, medium when the contact name is missing but the company is clear, low when the email is missing. Allowed labels: high, medium, low, none.

Always return valid JSON with reasoning as the first field, followed by data.`

const userPromptTemplate = `Extract contact information from the following subcontractor proposal PDF text.

Filename: %s
%sExtraction Method: %s
%sPDF Text:
%s

Identify TWO distinct entities:
A. The PROPOSER (subcontractor) - look for the logo/header and the signature block.
B. The CLIENT (recipient) - look for 'To:', 'Attn:', or 'Submitted To'.

Return a JSON object with this EXACT structure:
{
    "reasoning": "which company is the proposer, which is the client, where each contact detail was found, and how confidence was calculated",
    "data": {
        "company_name": {"value": "...", "confidence": "high"},
        "contact_name": {"value": "...", "confidence": "medium"},
        "email": {"value": "...", "confidence": "high"},
        "phone": {"value": "...", "confidence": "low"},
        "website": {"value": "www.companyname.com", "confidence": "medium"},
        "trade": {"value": "Electrical", "confidence": "medium"},
        "client_info": {
            "company_name": "...",
            "contact_name": "...",
            "email": "..."
        }
    }
}

client_info is optional: include it when the client can be identified, otherwise omit it or set it to null. Use null for values that are not found. Do not include any additional text.`

const ocrNote = `NOTE: This text was extracted using OCR from a scanned PDF and may have spacing or character recognition mistakes. Pay extra attention to the letterhead at the TOP, the signature block at the BOTTOM, and PAGE FOOTERS (which may appear garbled or split across lines). Phone numbers may have inconsistent separators, and website URLs may have spaces inserted ("www. daltonelectric .net" means "www.daltonelectric.net"); normalize extracted URLs by removing spaces.

`

// unrelatedFilenameKeywords flag filenames that likely have nothing to do
// with the proposing company, so the model is told to ignore them.
var unrelatedFilenameKeywords = []string{
	"bank", "invoice", "receipt", "statement", "report", "summary",
}

// AnthropicExtractor implements Extractor against the Anthropic API.
type AnthropicExtractor struct {
	client  anthropic.Client
	model   string
	system  []anthropic.SystemBlock
	limiter *rate.Limiter
}

// NewAnthropicExtractor creates the production extractor. A nil client (no
// API key configured) is tolerated: every call resolves to the empty result.
// requestsPerSecond bounds the call rate; zero or negative means unlimited.
func NewAnthropicExtractor(client anthropic.Client, modelID string, requestsPerSecond float64) *AnthropicExtractor {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &AnthropicExtractor{
		client:  client,
		model:   modelID,
		system:  anthropic.BuildCachedSystemBlocks(systemPrompt),
		limiter: rate.NewLimiter(limit, 1),
	}
}

var _ Extractor = (*AnthropicExtractor)(nil)

// Extract runs the model call and guardrails for one document. It never
// returns a partial crash: malformed or unreachable responses yield the
// uniform empty result and a nil error.
func (e *AnthropicExtractor) Extract(ctx context.Context, text, filename string, method model.ExtractionMethod) (model.Fields, error) {
	if e.client == nil {
		zap.L().Warn("extract: no API client configured, returning empty result")
		return model.EmptyFields(), nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		zap.L().Warn("extract: rate limiter wait canceled", zap.Error(err))
		return model.EmptyFields(), nil
	}

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   2048,
		System:      e.system,
		Messages:    []anthropic.Message{{Role: "user", Content: buildPrompt(text, filename, method)}},
		Temperature: ptrFloat(0),
	})
	if err != nil {
		zap.L().Warn("extract: model call failed",
			zap.String("file", filename),
			zap.Error(err),
		)
		return model.EmptyFields(), nil
	}
	resp.Usage.LogCost(e.model, "extract")

	return ParseResponse(extractText(resp)), nil
}

func buildPrompt(text, filename string, method model.ExtractionMethod) string {
	filenameNote := ""
	lower := strings.ToLower(filename)
	for _, kw := range unrelatedFilenameKeywords {
		if strings.Contains(lower, kw) {
			filenameNote = fmt.Sprintf(
				"\nNOTE: The filename '%s' may be unrelated to the company. Rely ONLY on document contents, not the filename.\n",
				filename,
			)
			break
		}
	}

	note := ""
	if method == model.MethodOCR {
		note = ocrNote
	}

	return fmt.Sprintf(userPromptTemplate,
		filename,
		filenameNote,
		strings.ToUpper(string(method)),
		note,
		text,
	)
}

// rawField mirrors the expected {value, confidence} wire shape.
type rawField struct {
	Value      *string `json:"value"`
	Confidence string  `json:"confidence"`
}

type rawClientInfo struct {
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
}

type rawData struct {
	CompanyName *rawField      `json:"company_name"`
	ContactName *rawField      `json:"contact_name"`
	Email       *rawField      `json:"email"`
	Phone       *rawField      `json:"phone"`
	Website     *rawField      `json:"website"`
	Trade       *rawField      `json:"trade"`
	ClientInfo  *rawClientInfo `json:"client_info"`
}

type rawResult struct {
	Reasoning string   `json:"reasoning"`
	Data      *rawData `json:"data"`
}

// ParseResponse turns raw model output into guarded Fields. Structurally
// invalid output goes through the defensive fallback normalizer; output that
// is not JSON at all yields the uniform empty result.
func ParseResponse(text string) model.Fields {
	cleaned := cleanJSON(text)

	var result rawResult
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil && structurallyValid(result) {
		return applyGuardrails(fieldsFromResult(result))
	}

	// Shape validation failed: walk the raw map defensively and salvage what
	// types permit.
	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Warn("extract: unparseable model output")
		return model.EmptyFields()
	}
	return applyGuardrails(fallbackNormalize(raw))
}

// structurallyValid checks the response has the required shape: a data
// object with every proposer field present.
func structurallyValid(r rawResult) bool {
	d := r.Data
	return d != nil &&
		d.CompanyName != nil && d.ContactName != nil && d.Email != nil &&
		d.Phone != nil && d.Website != nil && d.Trade != nil
}

func fieldsFromResult(r rawResult) model.Fields {
	reasoning := r.Reasoning
	if reasoning == "" {
		reasoning = "Reasoning not provided"
	}

	f := model.Fields{
		CompanyName:    fieldFromRaw(r.Data.CompanyName),
		ContactName:    fieldFromRaw(r.Data.ContactName),
		Email:          fieldFromRaw(r.Data.Email),
		Phone:          fieldFromRaw(r.Data.Phone),
		Website:        fieldFromRaw(r.Data.Website),
		Trade:          fieldFromRaw(r.Data.Trade),
		LogicReasoning: model.NewField(reasoning, model.ConfidenceHigh),
	}
	if ci := r.Data.ClientInfo; ci != nil {
		f.Client = &model.ClientInfo{
			CompanyName: ci.CompanyName,
			ContactName: ci.ContactName,
			Email:       ci.Email,
		}
	}
	return f
}

func fieldFromRaw(rf *rawField) model.FieldValue {
	if rf == nil || rf.Value == nil || *rf.Value == "" {
		conf := model.ConfidenceNone
		if rf != nil {
			conf = model.NormalizeConfidence(rf.Confidence)
		}
		return model.FieldValue{Confidence: conf}
	}
	return model.FieldValue{
		Value:      rf.Value,
		Confidence: model.NormalizeConfidence(rf.Confidence),
	}
}

// fallbackNormalize salvages fields from a structurally invalid response.
// Unrecoverable fields default to absent with confidence none.
func fallbackNormalize(raw map[string]any) model.Fields {
	f := model.EmptyFields()

	reasoning, _ := raw["reasoning"].(string)
	if reasoning == "" {
		reasoning = "Reasoning not provided"
	}
	f.LogicReasoning = model.NewField(reasoning, model.ConfidenceHigh)

	data, _ := raw["data"].(map[string]any)
	if data == nil {
		return f
	}

	f.CompanyName = fallbackField(data, "company_name")
	f.ContactName = fallbackField(data, "contact_name")
	f.Email = fallbackField(data, "email")
	f.Phone = fallbackField(data, "phone")
	f.Website = fallbackField(data, "website")
	f.Trade = fallbackField(data, "trade")

	if ci, ok := data["client_info"].(map[string]any); ok {
		client := &model.ClientInfo{}
		client.CompanyName, _ = ci["company_name"].(string)
		client.ContactName, _ = ci["contact_name"].(string)
		client.Email, _ = ci["email"].(string)
		f.Client = client
	}

	return f
}

func fallbackField(data map[string]any, key string) model.FieldValue {
	entry, ok := data[key].(map[string]any)
	if !ok {
		return model.EmptyField()
	}
	conf, _ := entry["confidence"].(string)
	value, _ := entry["value"].(string)
	return model.NewField(value, model.NormalizeConfidence(conf))
}

// extractText concatenates text blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func ptrFloat(f float64) *float64 { return &f }
