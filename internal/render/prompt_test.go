package render

import (
	"strings"
	"testing"

	"fieldquote/internal/domain"
)

func claimFixture() domain.ClaimedRenderJob {
	return domain.ClaimedRenderJob{
		Job: domain.RenderJob{ID: "job-1", QuoteID: "quote-1"},
		Tenant: domain.TenantRenderSettings{
			RenderEnabled:    true,
			BusinessName:     "Harbor Decking Co",
			Trade:            "deck restoration",
			PromptAddendum:   "Always show composite boards in warm grey.",
			NegativeGuidance: "people, text, watermarks",
		},
		VersionNumber:  4,
		QuoteNotes:     "Back deck is weathered, about 30 square meters.",
		QuotePhotoURLs: []string{"https://photos.example.com/deck.jpg"},
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt(claimFixture())

	checks := []string{
		"Deck Restoration job by Harbor Decking Co.",
		"Photorealistic concept render",
		"quote version 4",
		"Customer notes: Back deck is weathered",
		"Always show composite boards in warm grey.",
		"Do not include: people, text, watermarks",
		"reference photo exists",
	}
	for _, expect := range checks {
		if !strings.Contains(got, expect) {
			t.Fatalf("prompt missing %q: %s", expect, got)
		}
	}
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	c := claimFixture()
	if BuildPrompt(c) != BuildPrompt(c) {
		t.Fatal("prompt must be identical for the same claim snapshot")
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	c := claimFixture()
	c.Tenant.PromptAddendum = ""
	c.Tenant.NegativeGuidance = "  "
	c.QuoteNotes = ""
	c.QuotePhotoURLs = nil

	got := BuildPrompt(c)

	if strings.Contains(got, "Customer notes:") {
		t.Fatalf("unexpected notes section: %s", got)
	}
	if strings.Contains(got, "Do not include:") {
		t.Fatalf("unexpected negative section: %s", got)
	}
	if strings.Contains(got, "reference photo") {
		t.Fatalf("unexpected photo note: %s", got)
	}
}

func TestReferencePhotoURLSkipsNonHTTP(t *testing.T) {
	if got := referencePhotoURL([]string{"", "file:///etc/passwd", "https://ok.example.com/a.jpg"}); got != "https://ok.example.com/a.jpg" {
		t.Fatalf("referencePhotoURL = %q", got)
	}
	if got := referencePhotoURL(nil); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
