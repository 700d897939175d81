package identify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"plant-care-api/internal/logger"
)

// Provider is a single identification capability with a uniform contract.
type Provider interface {
	Name() string
	Identify(ctx context.Context, in Input) (*Identification, error)
}

// ErrAllProvidersFailed is wrapped into the aggregate error the chain returns
// when no provider produced a result.
var ErrAllProvidersFailed = errors.New("all identification providers failed")

// Chain tries providers in order. The first source that answers is
// authoritative; later providers are never attempted after a success.
// Failures are collected for diagnostics.
type Chain struct {
	providers []Provider
}

// NewChain builds a provider chain; order is fallback order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Identify runs the chain. Provider errors are logged and folded into a
// single aggregate error when every provider fails; nothing is retried.
func (c *Chain) Identify(ctx context.Context, in Input) (*Identification, error) {
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", ErrAllProvidersFailed)
	}

	var failures []string
	for _, p := range c.providers {
		result, err := p.Identify(ctx, in)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"provider": p.Name(),
			}).Warn("Identification provider failed, trying next")
			failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		return result, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrAllProvidersFailed, strings.Join(failures, "; "))
}
