package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateTicketID builds the human-facing ticket id: two-digit year, month,
// day, then a three-digit suffix. Uniqueness is enforced by the caller against
// the store.
func GenerateTicketID(now time.Time) string {
	suffix := 100 + rand.Intn(900)
	return fmt.Sprintf("%02d%02d%02d%d", now.Year()%100, int(now.Month()), now.Day(), suffix)
}
