package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"adsmanager/internal/channels"
)

type apiCall struct {
	Method string
	Path   string
	Params url.Values
	Body   any
}

// fakeAPI records calls and answers creations with ids of the form
// "<edge>-<n>". Uploads return "media-<n>" ids and "key-<n>" media keys.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []apiCall
	counts   map[string]int
	get      map[string]any
	fail     map[string]error
	uploads  int
	audience audienceResponse
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		counts:   map[string]int{},
		get:      map[string]any{},
		fail:     map[string]error{},
		audience: audienceResponse{ID: "aud-1", Targetable: true},
	}
}

// failOn makes every call to method and a path ending with suffix fail.
func (f *fakeAPI) failOn(method, suffix string) {
	f.fail[method+" "+suffix] = &channels.UpstreamError{
		Provider:   "twitter",
		Op:         method + " " + suffix,
		StatusCode: 400,
		Body:       []byte(`{"errors":[{"code":"INVALID_PARAMETER","message":"bad"}]}`),
	}
}

func (f *fakeAPI) record(method, path string, params url.Values, body any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{Method: method, Path: path, Params: params, Body: body})
	for key, err := range f.fail {
		m, suffix, _ := strings.Cut(key, " ")
		if m == method && strings.HasSuffix(path, suffix) {
			return nil, err
		}
	}

	switch method {
	case "GET":
		if strings.Contains(path, "/custom_audiences/") {
			return f.audience, nil
		}
		if v, ok := f.get[path]; ok {
			return v, nil
		}
		return map[string]any{}, nil
	case "POST":
		edge := path[strings.LastIndex(path, "/")+1:]
		f.counts[edge]++
		n := f.counts[edge]
		switch edge {
		case "tweet":
			return map[string]any{"id": 1000 + n, "id_str": fmt.Sprintf("tweet-%d", n)}, nil
		case "website":
			return map[string]string{"card_uri": fmt.Sprintf("card://%d", n)}, nil
		case "users":
			return map[string]int{"success_count": 1, "total_count": 1}, nil
		}
		return idResponse{ID: fmt.Sprintf("%s-%d", edge, n)}, nil
	case "UPLOAD":
		switch params.Get("command") {
		case "INIT":
			f.uploads++
			return mediaResponse{MediaIDString: fmt.Sprintf("media-%d", f.uploads)}, nil
		case "FINALIZE":
			id := params.Get("media_id")
			return mediaResponse{MediaIDString: id, MediaKey: "key-" + strings.TrimPrefix(id, "media-")}, nil
		}
		return nil, nil
	}
	return map[string]any{"id": path[strings.LastIndex(path, "/")+1:]}, nil
}

func (f *fakeAPI) respond(method, path string, params url.Values, body any, out any) ([]byte, error) {
	resp, err := f.record(method, path, params, body)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	if out != nil && resp != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (f *fakeAPI) Get(_ context.Context, path string, query url.Values, out any) ([]byte, error) {
	return f.respond("GET", path, query, nil, out)
}

func (f *fakeAPI) Post(_ context.Context, path string, params url.Values, out any) ([]byte, error) {
	return f.respond("POST", path, params, nil, out)
}

func (f *fakeAPI) PostJSON(_ context.Context, path string, body any, out any) ([]byte, error) {
	return f.respond("POST", path, nil, body, out)
}

func (f *fakeAPI) Put(_ context.Context, path string, params url.Values, out any) ([]byte, error) {
	return f.respond("PUT", path, params, nil, out)
}

func (f *fakeAPI) Delete(_ context.Context, path string, out any) ([]byte, error) {
	return f.respond("DELETE", path, nil, nil, out)
}

func (f *fakeAPI) Upload(_ context.Context, params url.Values, out any) ([]byte, error) {
	return f.respond("UPLOAD", "media/upload", params, nil, out)
}

func (f *fakeAPI) snapshot() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

// filter returns the recorded calls of method whose path ends with suffix.
func (f *fakeAPI) filter(method, suffix string) []apiCall {
	var out []apiCall
	for _, c := range f.snapshot() {
		if c.Method == method && strings.HasSuffix(c.Path, suffix) {
			out = append(out, c)
		}
	}
	return out
}

type fakeFetcher struct {
	mu   sync.Mutex
	urls []string
	fail bool
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, u)
	if f.fail {
		return nil, &channels.UpstreamError{Provider: "media", Op: "fetch " + u, StatusCode: 404}
	}
	return []byte("jpeg-bytes"), nil
}
