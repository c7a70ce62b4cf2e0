package export

import (
	"errors"
	"strings"

	"alloia/internal/alloia"
)

// ErrExportInProgress is returned when an export is requested while
// another one holds the single-flight lock.
var ErrExportInProgress = errors.New("an export is already in progress")

// TranslatePreflightError maps a raw domain-validation failure to the
// fixed user-facing message shown before any catalog work happens.
func TranslatePreflightError(raw string) string {
	if strings.Contains(raw, "Invalid API key") {
		return "Invalid API key. Please check your AlloIA API key in the integration settings."
	}
	return "Domain validation required. Please verify your domain in the AlloIA dashboard: " + alloia.DashboardURL
}

// TranslateIngestError maps a raw ingest failure onto one of the fixed
// user-facing messages by substring match, or returns the raw message
// when no known code is present.
func TranslateIngestError(raw string) string {
	switch {
	case strings.Contains(raw, "DOMAIN_MISMATCH"),
		strings.Contains(raw, "Domain mismatch"),
		strings.Contains(raw, "domain does not match"):
		return "Domain mismatch: your store domain doesn't match the domain registered in your AlloIA account. " +
			"Please verify your domain in the AlloIA dashboard: " + alloia.DashboardURL
	case strings.Contains(raw, "EMAIL_NOT_VERIFIED"),
		strings.Contains(raw, "Email verification required"),
		strings.Contains(raw, "domain not verified"):
		return "Email verification required: please verify your domain email address in the AlloIA dashboard to sync products. " +
			"Visit: " + alloia.DashboardURL
	case strings.Contains(raw, "DOMAIN_NOT_SET"):
		return "Domain not configured: please set up your domain in the AlloIA dashboard first. " +
			"Visit: " + alloia.DashboardURL
	}
	return raw
}
