package format

import (
	"strings"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

// NormalizeCycle matches input case-insensitively against the gateway's cycle
// names. The second return value is false when nothing matched.
func NormalizeCycle(input string) (enums.BillingCycle, bool) {
	candidate := enums.BillingCycle(strings.ToUpper(strings.TrimSpace(input)))
	if candidate.IsValid() {
		return candidate, true
	}
	return "", false
}
