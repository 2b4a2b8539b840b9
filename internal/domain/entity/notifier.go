package entity

import "log/slog"

// ClientVersion is the notifier version reported with every notice.
const ClientVersion = "1.3.0"

// DefaultLanguage is the source-language tag used when none is configured.
const DefaultLanguage = "go"

// NotifierIdentity identifies the reporting client. It is fixed for the
// lifetime of a client and shared by every notice it sends.
type NotifierIdentity struct {
	APIKey   string `json:"api_key"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Language string `json:"language"`
}

// NewNotifierIdentity returns an identity with the fixed client version.
// An empty language falls back to DefaultLanguage.
func NewNotifierIdentity(apiKey, name, language string) NotifierIdentity {
	if language == "" {
		language = DefaultLanguage
	}
	return NotifierIdentity{
		APIKey:   apiKey,
		Name:     name,
		Version:  ClientVersion,
		Language: language,
	}
}

// LogValue implements slog.LogValuer. The API key is never logged.
func (n NotifierIdentity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", n.Name),
		slog.String("version", n.Version),
		slog.String("language", n.Language),
	)
}
