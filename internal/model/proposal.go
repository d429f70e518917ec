package model

// Confidence is the coarse reliability label attached to each extracted field.
// It is not a calibrated probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// NormalizeConfidence coerces any out-of-range confidence label to "none".
func NormalizeConfidence(s string) Confidence {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceNone:
		return Confidence(s)
	default:
		return ConfidenceNone
	}
}

// FieldValue is a single extracted field: an optional value plus a confidence label.
type FieldValue struct {
	Value      *string    `json:"value"`
	Confidence Confidence `json:"confidence"`
}

// NewField builds a FieldValue from a non-empty value. An empty value yields
// a nil-valued field with the given confidence.
func NewField(value string, conf Confidence) FieldValue {
	fv := FieldValue{Confidence: NormalizeConfidence(string(conf))}
	if value != "" {
		v := value
		fv.Value = &v
	}
	return fv
}

// EmptyField is the zero extraction result for a field.
func EmptyField() FieldValue {
	return FieldValue{Confidence: ConfidenceNone}
}

// Present reports whether the field holds a non-empty value.
func (f FieldValue) Present() bool {
	return f.Value != nil && *f.Value != ""
}

// String returns the field value or "" when absent.
func (f FieldValue) String() string {
	if f.Value == nil {
		return ""
	}
	return *f.Value
}

// ExtractionMethod tags how a proposal's text was obtained.
type ExtractionMethod string

const (
	MethodTextExtraction ExtractionMethod = "text_extraction"
	MethodOCR            ExtractionMethod = "ocr"
	MethodError          ExtractionMethod = "error"
)

// ClientInfo holds the recipient (general contractor) identity extracted from
// a proposal. It only exists to validate proposer fields against and is never
// part of the returned record.
type ClientInfo struct {
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
}

// Fields is the validated output of the extraction step for one document:
// the proposer's fields plus the transient client identity.
type Fields struct {
	CompanyName    FieldValue
	ContactName    FieldValue
	Email          FieldValue
	Phone          FieldValue
	Website        FieldValue
	Trade          FieldValue
	LogicReasoning FieldValue

	// Client is discarded after guardrail validation.
	Client *ClientInfo
}

// EmptyFields is the uniform empty-result contract: every field absent with
// confidence "none" and a fixed failure reasoning string. All extraction
// failure modes resolve to this identically.
func EmptyFields() Fields {
	reason := "Extraction failed"
	return Fields{
		CompanyName:    EmptyField(),
		ContactName:    EmptyField(),
		Email:          EmptyField(),
		Phone:          EmptyField(),
		Website:        EmptyField(),
		Trade:          EmptyField(),
		LogicReasoning: FieldValue{Value: &reason, Confidence: ConfidenceNone},
	}
}

// Proposal is the unit of output per uploaded file. Post-reconciliation a
// single Proposal may represent several merged source files.
type Proposal struct {
	SourceFile       string           `json:"source_file"`
	ExtractionMethod ExtractionMethod `json:"extraction_method"`

	CompanyName    FieldValue `json:"company_name"`
	ContactName    FieldValue `json:"contact_name"`
	Email          FieldValue `json:"email"`
	Phone          FieldValue `json:"phone"`
	Website        FieldValue `json:"website"`
	Trade          FieldValue `json:"trade"`
	LogicReasoning FieldValue `json:"logic_reasoning"`

	Error string `json:"error,omitempty"`

	SourceFiles []string `json:"source_files,omitempty"`
	Merged      bool     `json:"_merged,omitempty"`
	MergeCount  int      `json:"_merge_count,omitempty"`
}

// NewProposal builds a Proposal from extraction output.
func NewProposal(sourceFile string, method ExtractionMethod, f Fields) Proposal {
	return Proposal{
		SourceFile:       sourceFile,
		ExtractionMethod: method,
		CompanyName:      f.CompanyName,
		ContactName:      f.ContactName,
		Email:            f.Email,
		Phone:            f.Phone,
		Website:          f.Website,
		Trade:            f.Trade,
		LogicReasoning:   f.LogicReasoning,
	}
}

// ErrorProposal builds the error-tagged record for a file that could not be
// processed. Every uploaded file yields exactly one record; failures are
// carried in-band, never as transport errors.
func ErrorProposal(sourceFile, message string) Proposal {
	return Proposal{
		SourceFile:       sourceFile,
		ExtractionMethod: MethodError,
		CompanyName:      EmptyField(),
		ContactName:      EmptyField(),
		Email:            EmptyField(),
		Phone:            EmptyField(),
		Website:          EmptyField(),
		Trade:            EmptyField(),
		LogicReasoning:   EmptyField(),
		Error:            message,
	}
}

// UploadResult is the batch upload response.
type UploadResult struct {
	Proposals      []Proposal `json:"proposals"`
	MergeCount     int        `json:"merge_count"`
	TotalProcessed int        `json:"total_processed"`
}

// ConfirmResult echoes confirmed proposals back under the ITB key.
type ConfirmResult struct {
	ITBData []Proposal `json:"itb_data"`
}
