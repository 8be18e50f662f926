package config

import (
	"flag"
	"fmt"
	"strings"
)

// ForwardMode selects how /csr obtains a rating.
type ForwardMode string

const (
	// ForwardStub answers with a fixed placeholder and never calls Grunt.
	ForwardStub ForwardMode = "stub"
	// ForwardSingleHop calls Grunt's /spartan endpoint once.
	ForwardSingleHop ForwardMode = "single-hop"
	// ForwardTwoHop resolves the gamertag to an XUID, then calls Grunt's /csr endpoint.
	ForwardTwoHop ForwardMode = "two-hop"
)

var _ flag.Value = (*ForwardMode)(nil)

func (m *ForwardMode) Set(s string) error {
	switch ForwardMode(strings.ToLower(strings.TrimSpace(s))) {
	case ForwardStub:
		*m = ForwardStub
	case ForwardSingleHop, "singlehop", "single":
		*m = ForwardSingleHop
	case ForwardTwoHop, "twohop", "two":
		*m = ForwardTwoHop
	default:
		return fmt.Errorf("unknown forward mode %q (valid: %s, %s, %s)", s, ForwardStub, ForwardSingleHop, ForwardTwoHop)
	}
	return nil
}

func (m *ForwardMode) String() string {
	if m == nil || *m == "" {
		return string(ForwardSingleHop)
	}
	return string(*m)
}

// Forwards reports whether the mode calls the upstream service.
func (m ForwardMode) Forwards() bool {
	return m == ForwardSingleHop || m == ForwardTwoHop
}

// TierPolicy decides what to do when the upstream reply carries no tier.
type TierPolicy string

const (
	// TierDerive fills a missing tier from the CSR via the tier table.
	TierDerive TierPolicy = "derive"
	// TierUpstream passes the upstream tier through unchanged, null when absent.
	TierUpstream TierPolicy = "upstream"
)

var _ flag.Value = (*TierPolicy)(nil)

func (p *TierPolicy) Set(s string) error {
	switch TierPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case TierDerive:
		*p = TierDerive
	case TierUpstream:
		*p = TierUpstream
	default:
		return fmt.Errorf("unknown tier policy %q (valid: %s, %s)", s, TierDerive, TierUpstream)
	}
	return nil
}

func (p *TierPolicy) String() string {
	if p == nil || *p == "" {
		return string(TierDerive)
	}
	return string(*p)
}
