package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/bidbook/internal/model"
)

// malformedWWW matches an OCR artifact where the dot after "www" was lost
// ("wwwdaltonelectric" instead of "www.daltonelectric").
var malformedWWW = regexp.MustCompile(`(?i)^www([a-z])`)

// fixWebsiteURL inserts the missing dot after a bare "www" prefix. This is
// the only URL transformation applied, and it is idempotent: a URL that
// already has the dot does not match.
func fixWebsiteURL(url string) string {
	fixed := malformedWWW.ReplaceAllString(url, "www.$1")
	if fixed != url {
		zap.L().Debug("extract: repaired malformed URL",
			zap.String("from", url),
			zap.String("to", fixed),
		)
	}
	return fixed
}

// domainStrip removes TLD fragments from an email domain before comparing it
// to a company name.
var domainStrip = strings.NewReplacer(".com", "", ".net", "", ".org", "")

// companyStrip removes separators from a company name before comparing it to
// an email domain.
var companyStrip = strings.NewReplacer(" ", "", "&", "", ",", "", ".", "")

// isClientEmail reports whether the proposer's extracted email actually
// belongs to the client: either an exact match on the client's own email, or
// a domain that lines up with the client's company name. The extraction step
// is known to occasionally hand the recipient's email to the sender; this is
// a deterministic safety net on top of it.
func isClientEmail(email string, client *model.ClientInfo) bool {
	if strings.TrimSpace(email) == "" || client == nil {
		return false
	}

	if client.Email != "" &&
		strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(client.Email)) {
		return true
	}

	if client.CompanyName != "" {
		lower := strings.ToLower(email)
		domain := ""
		if at := strings.Index(lower, "@"); at >= 0 {
			domain = lower[at+1:]
		}
		domainNorm := domainStrip.Replace(domain)
		companyNorm := companyStrip.Replace(strings.ToLower(client.CompanyName))
		if strings.Contains(domainNorm, companyNorm) || strings.Contains(companyNorm, domainNorm) {
			return true
		}
	}

	return false
}

// Closed trade vocabulary, keyed by keyword lists evaluated in order.
// Communications is checked before Electrical: telecom and cabling companies
// are routinely misclassified as electrical by the extraction step.
var tradeCategories = []struct {
	name     string
	keywords []string
}{
	{"Communications", []string{
		"communications", "communication", "telecom", "telecommunications",
		"wireless", "cabling", "data cabling", "low voltage",
		"structured cabling", "network cabling", "fiber", "fiber optic",
	}},
	{"Concrete", []string{
		"concrete", "foundation", "slab", "rebar", "reinforcement", "cement", "pouring",
	}},
	{"Electrical", []string{
		"electrical", "electric", "lighting", "conduit", "power", "wiring",
		"electrical installation",
	}},
	{"Plumbing", []string{
		"plumbing", "plumber", "pipe", "piping", "water heater", "fixture",
		"drain", "sewer", "water system",
	}},
	{"Earthwork", []string{
		"earthwork", "earth work", "grading", "excavation", "excavate",
		"sitework", "site work", "site prep", "site preparation", "dirt work",
		"clearing", "demolition",
	}},
	{"HVAC", []string{
		"hvac", "h.v.a.c", "heating", "ventilation", "air conditioning",
		"mechanical", "air handler", "ductwork", "duct work",
	}},
	{"General Requirements", []string{
		"general", "general contractor", "gc", "project management",
		"coordination", "site coordination", "general requirements",
	}},
}

// normalizeTrade maps a free-text trade description to the closed vocabulary.
// Returns ("", false) when no category keyword matches.
func normalizeTrade(value string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return "", false
	}

	if strings.Contains(lower, "wireless") && strings.Contains(lower, "communication") {
		return "Communications", true
	}

	for _, cat := range tradeCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.name, true
			}
		}
	}
	return "", false
}

// applyGuardrails runs the deterministic validators over raw extraction
// output: URL repair, email ownership cross-check, and trade normalization.
// The transient client identity is consumed here and cleared from the result.
func applyGuardrails(f model.Fields) model.Fields {
	if f.Website.Present() {
		f.Website = model.FieldValue{
			Value:      ptr(fixWebsiteURL(f.Website.String())),
			Confidence: f.Website.Confidence,
		}
	}

	if f.Email.Present() && isClientEmail(f.Email.String(), f.Client) {
		zap.L().Debug("extract: rejected client-owned email", zap.String("email", f.Email.String()))
		f.Email = model.FieldValue{Confidence: model.ConfidenceLow}
	}

	if f.Trade.Present() {
		if normalized, ok := normalizeTrade(f.Trade.String()); ok {
			f.Trade = model.FieldValue{Value: &normalized, Confidence: f.Trade.Confidence}
		} else {
			conf := f.Trade.Confidence
			if conf == model.ConfidenceHigh {
				conf = model.ConfidenceMedium
			}
			f.Trade = model.FieldValue{Confidence: conf}
		}
	}

	f.Client = nil
	return f
}

func ptr(s string) *string { return &s }
