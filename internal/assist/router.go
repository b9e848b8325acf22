// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assist

// Tier selects which model a request is sent to.
type Tier string

const (
	// TierFast is a cheap, low-latency model for small edits.
	TierFast Tier = "fast"
	// TierSmart is a stronger model for generation and large inputs.
	TierSmart Tier = "smart"
)

// Thresholds used by the routing rules.
const (
	LongPromptChars    = 400
	LargeDocumentChars = 6000
)

// Decision is the outcome of routing: the tier and the rule that chose it.
type Decision struct {
	Tier   Tier   `json:"tier"`
	Reason string `json:"reason"`
}

// rule maps a predicate over a request to a tier. Rules are evaluated in
// order and the first match wins.
type rule struct {
	reason string
	match  func(Task, *Input) bool
	tier   Tier
}

var rules = []rule{
	{"images attached", func(_ Task, in *Input) bool { return len(in.ImageURLs) > 0 }, TierSmart},
	{"full design generation", func(t Task, _ *Input) bool {
		return t == TaskGenerateHTML || t == TaskGenerateDesign || t == TaskBlogPost
	}, TierSmart},
	{"long prompt", func(_ Task, in *Input) bool { return len(in.Prompt) > LongPromptChars }, TierSmart},
	{"large document", func(_ Task, in *Input) bool { return in.documentSize() > LargeDocumentChars }, TierSmart},
}

// Route picks a tier for a task. Requests matching no rule go to the fast tier.
func Route(t Task, in *Input) Decision {
	for _, r := range rules {
		if r.match(t, in) {
			return Decision{Tier: r.tier, Reason: r.reason}
		}
	}
	return Decision{Tier: TierFast, Reason: "short edit"}
}
