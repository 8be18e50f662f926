package relay

import (
	"context"
	"errors"
	"strings"

	"github.com/Halfdees/Halo-csr-wrapper/internal/config"
	"github.com/Halfdees/Halo-csr-wrapper/internal/constant"
	"github.com/Halfdees/Halo-csr-wrapper/internal/logger"
	"github.com/Halfdees/Halo-csr-wrapper/internal/tier"
	"github.com/Halfdees/Halo-csr-wrapper/internal/upstream"
)

// Options selects the lookup strategy.
type Options struct {
	Mode       config.ForwardMode
	TierPolicy config.TierPolicy
	// UpstreamConfigured is false when the Grunt URL or secret is missing.
	UpstreamConfigured bool
}

// Service answers CSR lookups according to the configured forward mode.
type Service struct {
	opts     Options
	upstream upstream.Client
	tiers    *tier.Table
	logger   *logger.Logger
}

// NewService creates a lookup service. client may be nil in stub mode or when
// the upstream is not configured; tiers defaults to tier.Default().
func NewService(log *logger.Logger, opts Options, client upstream.Client, tiers *tier.Table) *Service {
	if log == nil {
		log = logger.Production()
	}
	if tiers == nil {
		tiers = tier.Default()
	}
	if opts.Mode == "" {
		opts.Mode = config.ForwardSingleHop
	}
	if opts.TierPolicy == "" {
		opts.TierPolicy = config.TierDerive
	}
	return &Service{
		opts:     opts,
		upstream: client,
		tiers:    tiers,
		logger:   log,
	}
}

// Validate trims the request fields and rejects empty ones.
func (req *LookupRequest) Validate() error {
	req.Gamertag = strings.TrimSpace(req.Gamertag)
	req.Playlist = strings.TrimSpace(req.Playlist)
	if req.Gamertag == "" || req.Playlist == "" {
		return &Error{Kind: KindBadRequest, Message: msgMissingInput}
	}
	return nil
}

// Lookup validates req and resolves it to a CsrResult. Every returned error is an *Error.
func (s *Service) Lookup(ctx context.Context, req LookupRequest) (*CsrResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.opts.Mode == config.ForwardStub {
		return stubResult(), nil
	}

	if !s.opts.UpstreamConfigured || s.upstream == nil {
		s.logger.Error("Lookup refused, upstream is not configured",
			"forward_mode", s.opts.Mode,
		)
		return nil, &Error{Kind: KindConfiguration, Message: msgNotConfigured}
	}

	switch s.opts.Mode {
	case config.ForwardTwoHop:
		return s.lookupTwoHop(ctx, req)
	case config.ForwardSingleHop:
		return s.lookupSingleHop(ctx, req)
	default:
		return nil, &Error{Kind: KindInternal, Message: msgInternal}
	}
}

func stubResult() *CsrResult {
	csr := constant.StubCSR
	tierName := constant.StubTier
	return &CsrResult{CSR: &csr, Tier: &tierName}
}

// lookupSingleHop forwards to /spartan. Upstream status and body are passed
// back to the caller on non-2xx replies.
func (s *Service) lookupSingleHop(ctx context.Context, req LookupRequest) (*CsrResult, error) {
	rating, err := s.upstream.FetchSpartan(ctx, req.Gamertag, req.Playlist)
	if err != nil {
		s.logUpstreamFailure("/spartan", req, err)

		var statusErr *upstream.StatusError
		switch {
		case errors.As(err, &statusErr):
			return nil, &Error{
				Kind:           KindUpstream,
				Message:        msgUpstream,
				UpstreamStatus: statusErr.StatusCode,
				UpstreamBody:   statusErr.Body,
				Err:            err,
			}
		case errors.Is(err, upstream.ErrInvalidJSON):
			return nil, &Error{Kind: KindUpstream, Message: msgInvalidJSON, Err: err}
		default:
			return nil, &Error{Kind: KindUpstream, Message: msgUpstream, Err: err}
		}
	}

	return s.result(rating), nil
}

// lookupTwoHop resolves the gamertag to an XUID, then fetches the rating.
// Upstream bodies are never passed back.
func (s *Service) lookupTwoHop(ctx context.Context, req LookupRequest) (*CsrResult, error) {
	xuid, err := s.upstream.ResolveXUID(ctx, req.Gamertag)
	if err != nil {
		if errors.Is(err, upstream.ErrXUIDNotFound) {
			s.logger.Info("Gamertag could not be resolved",
				"gamertag", req.Gamertag,
			)
			return nil, &Error{Kind: KindNotFound, Message: msgGamertagUnknown, Err: err}
		}
		s.logUpstreamFailure("/xuid", req, err)
		return nil, &Error{Kind: KindUpstream, Message: msgUpstream, Err: err}
	}

	rating, err := s.upstream.FetchCSR(ctx, xuid, req.Playlist)
	if err != nil {
		s.logUpstreamFailure("/csr", req, err)
		return nil, &Error{Kind: KindUpstream, Message: msgUpstream, Err: err}
	}

	return s.result(rating), nil
}

// result applies the tier policy to an upstream rating.
func (s *Service) result(rating *upstream.Rating) *CsrResult {
	if rating == nil {
		rating = &upstream.Rating{}
	}

	out := &CsrResult{CSR: rating.CSR}
	if s.opts.TierPolicy == config.TierUpstream {
		out.Tier = rating.Tier
		return out
	}

	var name string
	switch {
	case rating.Tier != nil && strings.TrimSpace(*rating.Tier) != "":
		name = *rating.Tier
	case rating.CSR != nil:
		name = s.tiers.Lookup(*rating.CSR)
	default:
		name = tier.Unknown
	}
	out.Tier = &name
	return out
}

func (s *Service) logUpstreamFailure(endpoint string, req LookupRequest, err error) {
	fields := []any{
		"endpoint", endpoint,
		"gamertag", req.Gamertag,
		"playlist", req.Playlist,
		"error", err,
	}
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		fields = append(fields, "status", statusErr.StatusCode, "body", statusErr.Body)
	}
	s.logger.Error("Grunt upstream call failed", fields...)
}
