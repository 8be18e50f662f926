package relay_test

import (
	"context"
	"sync"

	"github.com/Halfdees/Halo-csr-wrapper/internal/upstream"
)

// fakeClient is a deterministic upstream.Client. Unset funcs fail the call.
type fakeClient struct {
	spartan func(gamertag, playlist string) (*upstream.Rating, error)
	xuid    func(gamertag string) (string, error)
	csr     func(xuid, playlist string) (*upstream.Rating, error)

	mu    sync.Mutex
	calls []string
}

var _ upstream.Client = (*fakeClient)(nil)

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) FetchSpartan(_ context.Context, gamertag, playlist string) (*upstream.Rating, error) {
	f.record("spartan:" + gamertag + ":" + playlist)
	if f.spartan == nil {
		return nil, &upstream.StatusError{Endpoint: "/spartan", StatusCode: 599, Body: "unexpected call"}
	}
	return f.spartan(gamertag, playlist)
}

func (f *fakeClient) ResolveXUID(_ context.Context, gamertag string) (string, error) {
	f.record("xuid:" + gamertag)
	if f.xuid == nil {
		return "", &upstream.StatusError{Endpoint: "/xuid", StatusCode: 599, Body: "unexpected call"}
	}
	return f.xuid(gamertag)
}

func (f *fakeClient) FetchCSR(_ context.Context, xuid, playlist string) (*upstream.Rating, error) {
	f.record("csr:" + xuid + ":" + playlist)
	if f.csr == nil {
		return nil, &upstream.StatusError{Endpoint: "/csr", StatusCode: 599, Body: "unexpected call"}
	}
	return f.csr(xuid, playlist)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
