package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a client address is exempt from rate limiting
type Checker struct {
	addresses []string
	logger    *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(addresses []string, logger *zap.Logger) *Checker {
	// Normalize addresses
	normalized := make([]string, len(addresses))
	for i, addr := range addresses {
		normalized[i] = strings.TrimSpace(addr)
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted address list", zap.Strings("addresses", normalized))
	}

	return &Checker{
		addresses: normalized,
		logger:    logger,
	}
}

// IsTrusted checks if the client address is in the whitelist
func (c *Checker) IsTrusted(addr string) bool {
	if len(c.addresses) == 0 {
		return false
	}

	for _, trusted := range c.addresses {
		if trusted == addr {
			if c.logger != nil {
				c.logger.Debug("Address is trusted, skipping rate limit",
					zap.String("address", addr))
			}
			return true
		}
	}

	return false
}
