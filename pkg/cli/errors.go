package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beam-cloud/emailreader/pkg/types"
)

// FormatError converts an error to a human-readable message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var missing *types.MissingCredentialError
	var exchange *types.ExchangeError
	switch {
	case errors.As(err, &missing):
		return "OAuth client credentials are not configured"
	case errors.Is(err, types.ErrAuthorizationDenied):
		return "Google did not authorize the login"
	case errors.As(err, &exchange) && exchange.Stage == types.StageVerify:
		return "Could not verify the Google identity token"
	case errors.As(err, &exchange):
		return "Could not exchange the authorization code"
	case errors.Is(err, types.ErrMissingCode):
		return "The redirect URL carries no authorization code"
	case errors.Is(err, types.ErrModelDisabled):
		return "No generative model is configured"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out waiting for the login to finish"
	}

	return cleanErrorMessage(err.Error())
}

// GetErrorSuggestions returns helpful suggestions for an error
func GetErrorSuggestions(err error) []string {
	var missing *types.MissingCredentialError
	var exchange *types.ExchangeError
	switch {
	case errors.As(err, &missing):
		return []string{
			"Set " + CodeStyle.Render("oauth.clientId") + " and " + CodeStyle.Render("oauth.clientSecret") + " in " + CodeStyle.Render("~/.emailreader/config.yaml"),
			"Or export " + CodeStyle.Render("EMAILREADER_OAUTH__CLIENT_ID") + " and " + CodeStyle.Render("EMAILREADER_OAUTH__CLIENT_SECRET"),
		}
	case errors.Is(err, types.ErrAuthorizationDenied), errors.As(err, &exchange):
		return []string{"Run " + CodeStyle.Render("emailreader login") + " to start over"}
	case errors.Is(err, types.ErrModelDisabled):
		return []string{"Set " + CodeStyle.Render("EMAILREADER_MODEL__API_KEY") + " to enable summaries and reconciliation"}
	case errors.Is(err, context.DeadlineExceeded):
		return []string{"Raise " + CodeStyle.Render("--timeout") + " or set it to 0 to wait indefinitely"}
	}
	return nil
}

// cleanErrorMessage cleans up common error message patterns
func cleanErrorMessage(msg string) string {
	msg = strings.TrimPrefix(msg, "error: ")
	msg = strings.TrimPrefix(msg, "Error: ")

	// For deeply nested errors, just show the most relevant part
	if parts := strings.Split(msg, ": "); len(parts) > 3 {
		msg = parts[0] + ": " + parts[len(parts)-1]
	}
	return msg
}

// PrintFormattedError prints an error with styling and optional suggestions
func PrintFormattedError(err error) {
	fmt.Println()
	PrintErrorMsg(FormatError(err))

	if detail := cleanErrorMessage(err.Error()); detail != FormatError(err) {
		fmt.Printf("  %s\n", DimStyle.Render(detail))
	}
	if suggestions := GetErrorSuggestions(err); len(suggestions) > 0 {
		PrintSuggestions("Suggestions:", suggestions)
	}
	fmt.Println()
}
