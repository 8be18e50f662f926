package relay_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Halfdees/Halo-csr-wrapper/internal/config"
	"github.com/Halfdees/Halo-csr-wrapper/internal/logger"
	"github.com/Halfdees/Halo-csr-wrapper/internal/relay"
	"github.com/Halfdees/Halo-csr-wrapper/internal/tier"
	"github.com/Halfdees/Halo-csr-wrapper/internal/upstream"
)

func newService(mode config.ForwardMode, policy config.TierPolicy, client upstream.Client) *relay.Service {
	return relay.NewService(logger.Nop(), relay.Options{
		Mode:               mode,
		TierPolicy:         policy,
		UpstreamConfigured: true,
	}, client, nil)
}

func requireKind(t *testing.T, err error, kind relay.Kind) *relay.Error {
	t.Helper()
	var relayErr *relay.Error
	require.ErrorAs(t, err, &relayErr)
	require.Equal(t, kind, relayErr.Kind, "unexpected kind for %v", err)
	return relayErr
}

func TestLookup_MissingInput_NoUpstreamCall(t *testing.T) {
	inputs := []relay.LookupRequest{
		{},
		{Gamertag: "Foo123"},
		{Playlist: "ranked_arena"},
		{Gamertag: "   ", Playlist: "ranked_arena"},
		{Gamertag: "Foo123", Playlist: "\t\n"},
	}

	for _, mode := range []config.ForwardMode{config.ForwardStub, config.ForwardSingleHop, config.ForwardTwoHop} {
		for i, in := range inputs {
			t.Run(fmt.Sprintf("%s/%d", mode, i), func(t *testing.T) {
				client := &fakeClient{}
				svc := newService(mode, config.TierDerive, client)

				result, err := svc.Lookup(t.Context(), in)
				assert.Nil(t, result)
				relayErr := requireKind(t, err, relay.KindBadRequest)
				assert.Equal(t, http.StatusBadRequest, relayErr.Kind.HTTPStatus())
				assert.Equal(t, "Missing gt or playlist", relayErr.Message)
				assert.Empty(t, client.Calls())
			})
		}
	}
}

func TestLookup_Stub(t *testing.T) {
	client := &fakeClient{}
	svc := newService(config.ForwardStub, config.TierDerive, client)

	result, err := svc.Lookup(t.Context(), relay.LookupRequest{Gamertag: "any", Playlist: "any"})
	require.NoError(t, err)

	assert.Equal(t, &relay.CsrResult{CSR: intPtr(1450), Tier: strPtr("Diamond 2")}, result)
	assert.Empty(t, client.Calls())
}

func TestLookup_NotConfigured(t *testing.T) {
	for _, mode := range []config.ForwardMode{config.ForwardSingleHop, config.ForwardTwoHop} {
		t.Run(string(mode), func(t *testing.T) {
			svc := relay.NewService(logger.Nop(), relay.Options{Mode: mode}, nil, nil)

			_, err := svc.Lookup(t.Context(), relay.LookupRequest{Gamertag: "Foo", Playlist: "ranked"})
			relayErr := requireKind(t, err, relay.KindConfiguration)
			assert.Equal(t, http.StatusInternalServerError, relayErr.Kind.HTTPStatus())
			assert.Contains(t, relayErr.Message, "GRUNT_URL")
		})
	}
}

func TestLookup_SingleHop(t *testing.T) {
	tests := []struct {
		name   string
		policy config.TierPolicy
		rating upstream.Rating
		want   relay.CsrResult
	}{
		{
			name:   "upstream tier is kept",
			policy: config.TierDerive,
			rating: upstream.Rating{CSR: intPtr(1620), Tier: strPtr("Diamond 4")},
			want:   relay.CsrResult{CSR: intPtr(1620), Tier: strPtr("Diamond 4")},
		},
		{
			name:   "missing tier derived from csr",
			policy: config.TierDerive,
			rating: upstream.Rating{CSR: intPtr(1100)},
			want:   relay.CsrResult{CSR: intPtr(1100), Tier: strPtr("Gold")},
		},
		{
			name:   "blank tier derived from csr",
			policy: config.TierDerive,
			rating: upstream.Rating{CSR: intPtr(899), Tier: strPtr(" ")},
			want:   relay.CsrResult{CSR: intPtr(899), Tier: strPtr("Bronze")},
		},
		{
			name:   "nothing to derive from",
			policy: config.TierDerive,
			rating: upstream.Rating{},
			want:   relay.CsrResult{Tier: strPtr(tier.Unknown)},
		},
		{
			name:   "upstream policy passes tier through",
			policy: config.TierUpstream,
			rating: upstream.Rating{CSR: intPtr(1620), Tier: strPtr("Diamond 4")},
			want:   relay.CsrResult{CSR: intPtr(1620), Tier: strPtr("Diamond 4")},
		},
		{
			name:   "upstream policy leaves missing tier null",
			policy: config.TierUpstream,
			rating: upstream.Rating{CSR: intPtr(1620)},
			want:   relay.CsrResult{CSR: intPtr(1620)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rating := tt.rating
			client := &fakeClient{
				spartan: func(gamertag, playlist string) (*upstream.Rating, error) {
					return &rating, nil
				},
			}
			svc := newService(config.ForwardSingleHop, tt.policy, client)

			result, err := svc.Lookup(t.Context(), relay.LookupRequest{Gamertag: " Foo123 ", Playlist: "ranked_arena"})
			require.NoError(t, err)
			assert.Equal(t, &tt.want, result)
			assert.Equal(t, []string{"spartan:Foo123:ranked_arena"}, client.Calls())
		})
	}
}

func TestLookup_SingleHop_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantMsg    string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "non-2xx passes status and body through",
			err:        &upstream.StatusError{Endpoint: "/spartan", StatusCode: http.StatusForbidden, Body: "bad secret"},
			wantMsg:    "Grunt upstream error",
			wantStatus: http.StatusForbidden,
			wantBody:   "bad secret",
		},
		{
			name:    "invalid json",
			err:     fmt.Errorf("decode: %w", upstream.ErrInvalidJSON),
			wantMsg: "Invalid JSON from Grunt",
		},
		{
			name:    "transport failure",
			err:     errors.New("dial tcp: connection refused"),
			wantMsg: "Grunt upstream error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{
				spartan: func(string, string) (*upstream.Rating, error) {
					return nil, tt.err
				},
			}
			svc := newService(config.ForwardSingleHop, config.TierDerive, client)

			result, err := svc.Lookup(t.Context(), relay.LookupRequest{Gamertag: "Foo", Playlist: "ranked"})
			assert.Nil(t, result)

			relayErr := requireKind(t, err, relay.KindUpstream)
			assert.Equal(t, http.StatusBadGateway, relayErr.Kind.HTTPStatus())
			assert.Equal(t, tt.wantMsg, relayErr.Message)
			assert.Equal(t, tt.wantStatus, relayErr.UpstreamStatus)
			assert.Equal(t, tt.wantBody, relayErr.UpstreamBody)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLookup_TwoHop(t *testing.T) {
	tests := []struct {
		name   string
		rating upstream.Rating
		want   relay.CsrResult
	}{
		{
			name:   "tier derived from csr",
			rating: upstream.Rating{CSR: intPtr(1620)},
			want:   relay.CsrResult{CSR: intPtr(1620), Tier: strPtr("Diamond")},
		},
		{
			name:   "upstream tier wins",
			rating: upstream.Rating{CSR: intPtr(1620), Tier: strPtr("Onyx")},
			want:   relay.CsrResult{CSR: intPtr(1620), Tier: strPtr("Onyx")},
		},
		{
			name:   "no csr gives Unknown",
			rating: upstream.Rating{},
			want:   relay.CsrResult{Tier: strPtr("Unknown")},
		},
		{
			name:   "top boundary",
			rating: upstream.Rating{CSR: intPtr(1800)},
			want:   relay.CsrResult{CSR: intPtr(1800), Tier: strPtr("Onyx")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rating := tt.rating
			client := &fakeClient{
				xuid: func(gamertag string) (string, error) {
					return "2535405290989773", nil
				},
				csr: func(xuid, playlist string) (*upstream.Rating, error) {
					return &rating, nil
				},
			}
			svc := newService(config.ForwardTwoHop, config.TierDerive, client)

			result, err := svc.Lookup(t.Context(), relay.LookupRequest{Gamertag: "Foo123", Playlist: "ranked_arena"})
			require.NoError(t, err)
			assert.Equal(t, &tt.want, result)
			assert.Equal(t, []string{
				"xuid:Foo123",
				"csr:2535405290989773:ranked_arena",
			}, client.Calls())
		})
	}
}

func TestLookup_TwoHop_Failures(t *testing.T) {
	resolved := func(string) (string, error) { return "2535", nil }

	tests := []struct {
		name      string
		xuid      func(string) (string, error)
		csr       func(string, string) (*upstream.Rating, error)
		wantKind  relay.Kind
		wantCalls int
	}{
		{
			name:      "gamertag not found",
			xuid:      func(string) (string, error) { return "", upstream.ErrXUIDNotFound },
			wantKind:  relay.KindNotFound,
			wantCalls: 1,
		},
		{
			name: "xuid lookup fails",
			xuid: func(string) (string, error) {
				return "", &upstream.StatusError{Endpoint: "/xuid", StatusCode: http.StatusInternalServerError, Body: "boom"}
			},
			wantKind:  relay.KindUpstream,
			wantCalls: 1,
		},
		{
			name: "csr lookup fails",
			xuid: resolved,
			csr: func(string, string) (*upstream.Rating, error) {
				return nil, &upstream.StatusError{Endpoint: "/csr", StatusCode: http.StatusBadGateway, Body: "secret stuff"}
			},
			wantKind:  relay.KindUpstream,
			wantCalls: 2,
		},
		{
			name: "csr reply not json",
			xuid: resolved,
			csr: func(string, string) (*upstream.Rating, error) {
				return nil, upstream.ErrInvalidJSON
			},
			wantKind:  relay.KindUpstream,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{xuid: tt.xuid, csr: tt.csr}
			svc := newService(config.ForwardTwoHop, config.TierDerive, client)

			result, err := svc.Lookup(t.Context(), relay.LookupRequest{Gamertag: "Foo123", Playlist: "ranked_arena"})
			assert.Nil(t, result)

			relayErr := requireKind(t, err, tt.wantKind)
			assert.Zero(t, relayErr.UpstreamStatus, "two-hop never passes upstream replies through")
			assert.Empty(t, relayErr.UpstreamBody)
			assert.Len(t, client.Calls(), tt.wantCalls)
		})
	}
}

func TestLookup_CustomTierTable(t *testing.T) {
	table, err := tier.Parse([]byte("floor: Unranked\ntiers:\n- name: Ranked\n  min: 1\n"))
	require.NoError(t, err)

	client := &fakeClient{
		spartan: func(string, string) (*upstream.Rating, error) {
			return &upstream.Rating{CSR: intPtr(0)}, nil
		},
	}
	svc := relay.NewService(logger.Nop(), relay.Options{
		Mode:               config.ForwardSingleHop,
		UpstreamConfigured: true,
	}, client, table)

	result, err := svc.Lookup(t.Context(), relay.LookupRequest{Gamertag: "Foo", Playlist: "ranked"})
	require.NoError(t, err)
	assert.Equal(t, "Unranked", *result.Tier)
}

func TestError_Response(t *testing.T) {
	withBody := &relay.Error{Kind: relay.KindUpstream, Message: "Grunt upstream error", UpstreamStatus: 503, UpstreamBody: ""}
	resp := withBody.Response()
	require.NotNil(t, resp.Status)
	require.NotNil(t, resp.Body)
	assert.Equal(t, 503, *resp.Status)
	assert.Equal(t, "", *resp.Body)

	plain := &relay.Error{Kind: relay.KindNotFound, Message: "Gamertag not found"}
	assert.Equal(t, relay.ErrorResponse{Error: "Gamertag not found"}, plain.Response())
	assert.Equal(t, "not_found: Gamertag not found", plain.Error())
}
