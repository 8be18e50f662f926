package fixtures

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/Halfdees/Halo-csr-wrapper/internal/constant"
)

const TestGruntSecret = "grunt-test-secret"

// GruntReply is a canned reply for one Grunt endpoint.
type GruntReply struct {
	Status int
	Body   string
}

// GruntCall records a request received by the fake Grunt server.
type GruntCall struct {
	Path   string
	Query  url.Values
	Secret string
}

// FakeGrunt is an httptest server standing in for the Grunt upstream.
// Replies are keyed by path ("/spartan", "/xuid", "/csr"); unknown paths get 404.
type FakeGrunt struct {
	*httptest.Server

	mu      sync.Mutex
	replies map[string]GruntReply
	calls   []GruntCall
}

// NewFakeGrunt starts a fake Grunt server closed automatically with the test.
func NewFakeGrunt(t *testing.T, replies map[string]GruntReply) *FakeGrunt {
	t.Helper()

	g := &FakeGrunt{replies: replies}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.Close)
	return g
}

func (g *FakeGrunt) serve(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.calls = append(g.calls, GruntCall{
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Secret: r.Header.Get(constant.HeaderUpstreamAuth),
	})
	reply, ok := g.replies[r.URL.Path]
	g.mu.Unlock()

	if !ok {
		reply = GruntReply{Status: http.StatusNotFound, Body: `{"error":"no such route"}`}
	}
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_, _ = w.Write([]byte(reply.Body))
}

// Calls returns a copy of the requests received so far.
func (g *FakeGrunt) Calls() []GruntCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GruntCall(nil), g.calls...)
}
