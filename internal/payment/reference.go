package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidOrderReference = errors.New("invalid order reference")

// OrderReference forms the gateway-visible reference "{appName}-{orderID}"
// that correlates a webhook back to an internal order.
func OrderReference(appName string, orderID uint) string {
	return fmt.Sprintf("%s-%d", appName, orderID)
}

// ParseOrderReference strips the application-name prefix and parses the
// numeric order id. A mismatched prefix or non-numeric remainder is an
// invalid reference.
func ParseOrderReference(appName, ref string) (uint, error) {
	prefix := appName + "-"
	if !strings.HasPrefix(ref, prefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOrderReference, ref)
	}

	id, err := strconv.ParseUint(strings.TrimPrefix(ref, prefix), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOrderReference, ref)
	}

	return uint(id), nil
}
