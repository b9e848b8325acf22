// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assist

import (
	"strings"
	"testing"

	"mailcraft/internal/blocks"
)

func TestRoute(t *testing.T) {
	big := strings.Repeat("x", LargeDocumentChars+1)
	tests := []struct {
		name   string
		task   Task
		in     Input
		tier   Tier
		reason string
	}{
		{"short edit", TaskEditHTML, Input{Prompt: "make the button red", HTML: "<p>hi</p>"}, TierFast, "short edit"},
		{"subject lines", TaskSubjectLines, Input{HTML: "<p>sale</p>"}, TierFast, "short edit"},
		{"generate html", TaskGenerateHTML, Input{Prompt: "spring sale"}, TierSmart, "full design generation"},
		{"generate design", TaskGenerateDesign, Input{Prompt: "spring sale"}, TierSmart, "full design generation"},
		{"blog post", TaskBlogPost, Input{Prompt: "release notes"}, TierSmart, "full design generation"},
		{"images win", TaskEditHTML, Input{Prompt: "match this", HTML: "<p/>", ImageURLs: []string{"https://x/a.png"}}, TierSmart, "images attached"},
		{"long prompt", TaskEditHTML, Input{Prompt: strings.Repeat("a", LongPromptChars+1), HTML: "<p/>"}, TierSmart, "long prompt"},
		{"large html", TaskEditHTML, Input{Prompt: "tweak", HTML: big}, TierSmart, "large document"},
		{"small design", TaskEditDesign, Input{Prompt: "tweak", Design: blocks.Design{{ID: "a", Props: blocks.SpacerProps{Height: 10}}}}, TierFast, "short edit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.task, &tt.in)
			if got.Tier != tt.tier || got.Reason != tt.reason {
				t.Errorf("Route = %+v, want {%s %s}", got, tt.tier, tt.reason)
			}
		})
	}
}

func TestModelsForTier(t *testing.T) {
	m := Models{Fast: "small", Smart: "large"}
	if m.forTier(TierFast) != "small" || m.forTier(TierSmart) != "large" {
		t.Errorf("forTier mapped wrong: %+v", m)
	}
}
