// Package domain defines domain-level errors for the usage feature.
package domain

import "errors"

// ErrQuotaExceeded indicates that a Free plan user has used up the daily limit.
var ErrQuotaExceeded = errors.New("daily free limit reached")

// QuotaExceededMessage is shown to users who hit the daily limit.
const QuotaExceededMessage = "Daily free limit reached. Upgrade your plan to continue."
