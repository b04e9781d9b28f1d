package vanilla

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// helpSanitizer allows the inline markup help text needs (links, emphasis)
// and nothing else.
func helpSanitizer() *bluemonday.Policy {
	helpPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowAttrs("target").Matching(bluemonday.Paragraph).OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		policy.AllowElements("b", "strong", "em", "i", "br", "span", "code")
		helpPolicy = policy
	})
	return helpPolicy
}

func sanitizeHelp(value string) string {
	return strings.TrimSpace(helpSanitizer().Sanitize(value))
}

func classList(tokens ...string) string {
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			keep = append(keep, token)
		}
	}
	return strings.Join(keep, " ")
}
