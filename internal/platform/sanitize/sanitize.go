// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sanitize cleans user-supplied markup before it is stored.

Two policies are exposed:

  - HTML keeps the safe subset of user-generated content (links, emphasis,
    lists, quotes) and strips scripts, event handlers and inline styles.
  - Text strips every tag, for fields rendered as plain text.
*/
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are safe for concurrent use once built.
var (
	ugcPolicy    = newUGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// HTML returns s with only user-generated-content-safe markup left.
func HTML(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// Text returns s with every tag removed.
func Text(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
