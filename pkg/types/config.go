package types

import (
	"strings"
	"time"
)

// AppConfig is the root configuration for emailreader
type AppConfig struct {
	DebugMode  bool        `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool        `key:"prettyLogs" json:"pretty_logs"`
	OAuth      OAuthConfig `key:"oauth" json:"oauth"`
	Mail       MailConfig  `key:"mail" json:"mail"`
	Model      ModelConfig `key:"model" json:"model"`
}

// ----------------------------------------------------------------------------
// OAuth Configuration
// ----------------------------------------------------------------------------

// OAuthConfig configures the Google desktop OAuth client
type OAuthConfig struct {
	ClientID       string `key:"clientId" json:"client_id"`
	ClientSecret   string `key:"clientSecret" json:"client_secret"`
	CallbackPath   string `key:"callbackPath" json:"callback_path"`     // e.g., /callback
	RedirectScheme string `key:"redirectScheme" json:"redirect_scheme"` // e.g., emailreader
}

// DeepLinkRedirectURI returns the redirect URI registered for the application scheme
func (c OAuthConfig) DeepLinkRedirectURI() string {
	return c.RedirectScheme + "://callback"
}

// ----------------------------------------------------------------------------
// Mail Configuration
// ----------------------------------------------------------------------------

type MailConfig struct {
	WindowDays       int    `key:"windowDays" json:"window_days"` // days listed, today included
	MaxResults       int    `key:"maxResults" json:"max_results"`
	Label            string `key:"label" json:"label"`
	FetchConcurrency int    `key:"fetchConcurrency" json:"fetch_concurrency"`
}

// ----------------------------------------------------------------------------
// Generative Model Configuration
// ----------------------------------------------------------------------------

// ModelConfig configures the OpenAI-compatible endpoint used for summaries
type ModelConfig struct {
	APIKey  string        `key:"apiKey" json:"api_key"`
	BaseURL string        `key:"baseUrl" json:"base_url"`
	Name    string        `key:"name" json:"name"`
	Timeout time.Duration `key:"timeout" json:"timeout"`
}

// Enabled returns true if a model credential is configured
func (c ModelConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Credentials builds the immutable credential value from the loaded configuration.
func (c *AppConfig) Credentials() (Credentials, error) {
	return NewCredentials(c.OAuth.ClientID, c.OAuth.ClientSecret, c.Model.APIKey)
}

// Credentials holds the static secrets handed to each component. It is constructed
// once at startup and never mutated.
type Credentials struct {
	clientID     string
	clientSecret string
	modelKey     string
}

// NewCredentials validates the required OAuth fields. A missing model key is allowed
// and only disables summarization.
func NewCredentials(clientID, clientSecret, modelKey string) (Credentials, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)

	var missing []string
	if clientID == "" {
		missing = append(missing, "oauth.clientId")
	}
	if clientSecret == "" {
		missing = append(missing, "oauth.clientSecret")
	}
	if len(missing) > 0 {
		return Credentials{}, &MissingCredentialError{Fields: missing}
	}

	return Credentials{
		clientID:     clientID,
		clientSecret: clientSecret,
		modelKey:     strings.TrimSpace(modelKey),
	}, nil
}

func (c Credentials) ClientID() string     { return c.clientID }
func (c Credentials) ClientSecret() string { return c.clientSecret }
func (c Credentials) ModelKey() string     { return c.modelKey }

// HasModelKey reports whether summarization can run
func (c Credentials) HasModelKey() bool {
	return c.modelKey != ""
}
