package googleads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"adsmanager/internal/channels"
)

type apiCall struct {
	Path string
	Body any
}

// fakeAPI answers mutate batches by echoing each created resource name with
// its temporary id made positive, and answers GAQL searches from canned rows
// keyed by the FROM resource.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []apiCall
	search map[string][]searchRow
	fail   map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{search: map[string][]searchRow{}, fail: map[string]error{}}
}

// failOn makes every call whose path ends with suffix fail.
func (f *fakeAPI) failOn(suffix string) {
	f.fail[suffix] = &channels.UpstreamError{Provider: "google", Op: "POST " + suffix, StatusCode: 400, Body: []byte(`{"error":{"status":"INVALID_ARGUMENT"}}`)}
}

var fromClause = regexp.MustCompile(`FROM (\w+)`)

func (f *fakeAPI) Post(_ context.Context, path string, body any, out any) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Path: path, Body: body})
	for suffix, err := range f.fail {
		if strings.HasSuffix(path, suffix) {
			f.mu.Unlock()
			return nil, err
		}
	}

	var resp any
	switch {
	case strings.HasSuffix(path, ":mutate"):
		resp = mutateResult(body.(mutateRequest))
	case strings.HasSuffix(path, ":search"):
		m := fromClause.FindStringSubmatch(body.(searchRequest).Query)
		if m == nil {
			f.mu.Unlock()
			return nil, errors.New("query has no FROM clause")
		}
		resp = searchResponse{Results: f.search[m[1]]}
	case strings.HasSuffix(path, "offlineUserDataJobs:create"):
		resp = resourceRef{ResourceName: "customers/123/offlineUserDataJobs/77"}
	case strings.HasSuffix(path, ":run"):
		resp = map[string]string{"name": "customers/123/operations/9"}
	default:
		resp = map[string]any{}
	}
	f.mu.Unlock()

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func mutateResult(req mutateRequest) mutateResponse {
	var resp mutateResponse
	for i, op := range req.MutateOperations {
		kind, inner := operationOf(op)
		name := fmt.Sprintf("customers/123/%s/%d", strings.TrimSuffix(kind, "Operation"), 500+i)
		switch {
		case inner.Remove != "":
			name = inner.Remove
		case resourceNameOf(inner.Create) != "":
			name = strings.Replace(resourceNameOf(inner.Create), "/-", "/", 1)
		case resourceNameOf(inner.Update) != "":
			name = strings.Replace(resourceNameOf(inner.Update), "/-", "/", 1)
		}
		resp.MutateOperationResponses = append(resp.MutateOperationResponses, mutateOperationResponse{
			strings.TrimSuffix(kind, "Operation") + "Result": {ResourceName: name},
		})
	}
	return resp
}

// operationOf returns the JSON key and payload of the single set operation.
func operationOf(op mutateOperation) (string, *operation) {
	b, _ := json.Marshal(op)
	var m map[string]json.RawMessage
	_ = json.Unmarshal(b, &m)
	for k := range m {
		switch k {
		case "campaignBudgetOperation":
			return k, op.CampaignBudgetOperation
		case "campaignOperation":
			return k, op.CampaignOperation
		case "campaignCriterionOperation":
			return k, op.CampaignCriterionOperation
		case "adGroupOperation":
			return k, op.AdGroupOperation
		case "adGroupCriterionOperation":
			return k, op.AdGroupCriterionOperation
		case "assetOperation":
			return k, op.AssetOperation
		case "adGroupAdOperation":
			return k, op.AdGroupAdOperation
		case "userListOperation":
			return k, op.UserListOperation
		}
	}
	return "", &operation{}
}

func resourceNameOf(v any) string {
	if v == nil {
		return ""
	}
	b, _ := json.Marshal(v)
	var r resourceRef
	_ = json.Unmarshal(b, &r)
	return r.ResourceName
}

func (f *fakeAPI) snapshot() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) mutates() []mutateRequest {
	var out []mutateRequest
	for _, c := range f.snapshot() {
		if strings.HasSuffix(c.Path, ":mutate") {
			out = append(out, c.Body.(mutateRequest))
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
	return []byte("img:" + u), nil
}
