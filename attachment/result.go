package attachment

// WarningType categorizes non-fatal parse outcomes.
type WarningType string

const (
	WarningMalformedPayload WarningType = "malformed_payload"
	WarningLegacyContent    WarningType = "legacy_content"
	WarningMissingContent   WarningType = "missing_content"
	WarningDefaultedField   WarningType = "defaulted_field"
)

// Warning represents a fallback taken while reading button content.
type Warning struct {
	Type    WarningType `json:"type"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}
