package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fieldquote/internal/domain"
)

const promptPreamble = "Photorealistic concept render of the finished work. " +
	"Clean professional result, natural lighting, no people, no text overlays."

// BuildPrompt assembles the generation prompt for a claimed job. The output is
// deterministic for a given claim: same snapshot, same prompt. The quote
// version number is embedded for traceability back to the assessment that the
// render illustrates.
func BuildPrompt(c domain.ClaimedRenderJob) string {
	var parts []string

	titler := cases.Title(language.English)
	trade := strings.TrimSpace(c.Tenant.Trade)
	business := strings.TrimSpace(c.Tenant.BusinessName)
	switch {
	case trade != "" && business != "":
		parts = append(parts, fmt.Sprintf("%s job by %s.", titler.String(trade), business))
	case trade != "":
		parts = append(parts, titler.String(trade)+" job.")
	}

	parts = append(parts, promptPreamble)
	parts = append(parts, fmt.Sprintf("Based on quote version %d.", c.VersionNumber))

	if notes := strings.TrimSpace(c.QuoteNotes); notes != "" {
		parts = append(parts, "Customer notes: "+notes)
	}
	if addendum := strings.TrimSpace(c.Tenant.PromptAddendum); addendum != "" {
		parts = append(parts, addendum)
	}
	if negative := strings.TrimSpace(c.Tenant.NegativeGuidance); negative != "" {
		parts = append(parts, "Do not include: "+negative)
	}
	if ref := referencePhotoURL(c.QuotePhotoURLs); ref != "" {
		// v1 is pure text-to-image; the reference is recorded for when
		// photo-conditioned generation lands.
		parts = append(parts, "A customer reference photo exists for this job.")
	}

	return strings.Join(parts, " ")
}

// referencePhotoURL returns the first usable photo URL from the quote input.
func referencePhotoURL(urls []string) string {
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			return u
		}
	}
	return ""
}
