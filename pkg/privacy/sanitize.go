package privacy

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	valuePolicyOnce sync.Once
	valuePolicy     *bluemonday.Policy
)

// SanitizeValue strips any markup from a free-text form value before it
// enters training state. Values originate in web pages and may carry
// injected HTML.
func SanitizeValue(raw string) string {
	valuePolicyOnce.Do(func() {
		valuePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(valuePolicy.Sanitize(raw))
}
