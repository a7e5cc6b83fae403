// Package voucher numbers fee vouchers and renders them as printable workbooks.
package voucher

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxSequence is the largest sequence that fits the 4-digit suffix
const maxSequence = 9999

// NumberPrefix returns the month prefix of voucher numbers, e.g. "FV-202403-"
func NumberPrefix(prefix string, month time.Time) string {
	return fmt.Sprintf("%s-%s-", prefix, month.Format("200601"))
}

// NextNumber returns the voucher number following last for the month prefix.
// An empty last starts the sequence at 0001.
func NextNumber(monthPrefix, last string) (string, error) {
	seq := 1
	if last != "" {
		if !strings.HasPrefix(last, monthPrefix) {
			return "", fmt.Errorf("%w: %q", ErrInvalidVoucherNumber, last)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(last, monthPrefix))
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidVoucherNumber, last)
		}
		seq = n + 1
	}

	if seq > maxSequence {
		return "", ErrSequenceExhausted
	}
	return fmt.Sprintf("%s%04d", monthPrefix, seq), nil
}
