package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	"adsmanager/internal/channels"
)

type apiCall struct {
	Method string
	Path   string
	Params any
}

// fakeAPI records calls and answers with generated ids: a POST to
// "act_1/campaigns" returns {"id":"campaigns-1"}, and so on per edge.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []apiCall
	counts map[string]int
	fail   map[string]error
	get    map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{counts: map[string]int{}, fail: map[string]error{}, get: map[string]string{}}
}

// failOn makes every call to "METHOD path" fail.
func (f *fakeAPI) failOn(method, p string) {
	f.fail[method+" "+p] = &channels.UpstreamError{Provider: "facebook", Op: method + " " + p, StatusCode: 400, Body: []byte(`{"error":{"message":"rejected"}}`)}
}

func (f *fakeAPI) Get(_ context.Context, p string, _ url.Values, out any) ([]byte, error) {
	return f.record("GET", p, nil, out)
}

func (f *fakeAPI) Post(_ context.Context, p string, params any, out any) ([]byte, error) {
	return f.record("POST", p, params, out)
}

func (f *fakeAPI) Delete(_ context.Context, p string, params any, out any) ([]byte, error) {
	return f.record("DELETE", p, params, out)
}

func (f *fakeAPI) record(method, p string, params any, out any) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Path: p, Params: params})
	if err, ok := f.fail[method+" "+p]; ok {
		f.mu.Unlock()
		return nil, err
	}
	raw := f.respond(method, p)
	f.mu.Unlock()

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// respond must be called with mu held.
func (f *fakeAPI) respond(method, p string) []byte {
	if body, ok := f.get[p]; ok && method == "GET" {
		return []byte(body)
	}
	edge := path.Base(p)
	switch {
	case method == "DELETE" && edge == "users":
		return []byte(`{"audience_id":"aud","num_received":1}`)
	case method == "DELETE":
		return []byte(`{"success":true}`)
	case method == "GET":
		return []byte(fmt.Sprintf(`{"id":%q}`, p))
	case edge == "adimages":
		f.counts[edge]++
		return []byte(fmt.Sprintf(`{"images":{"image.png":{"hash":"hash-%d"}}}`, f.counts[edge]))
	case edge == "users":
		return []byte(`{"audience_id":"aud","num_received":1,"num_invalid_entries":0}`)
	case strings.HasPrefix(p, "act_"):
		f.counts[edge]++
		return []byte(fmt.Sprintf(`{"id":"%s-%d"}`, edge, f.counts[edge]))
	default:
		return []byte(`{"success":true}`)
	}
}

func (f *fakeAPI) snapshot() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) callsTo(method, p string) []apiCall {
	var out []apiCall
	for _, c := range f.snapshot() {
		if c.Method == method && c.Path == p {
			out = append(out, c)
		}
	}
	return out
}

type fakeFetcher struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, u)
	return []byte("png-bytes"), nil
}
