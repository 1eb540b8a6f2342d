package googleads

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Resource collections that can be created under a temporary id.
const (
	collectionBudgets   = "campaignBudgets"
	collectionCampaigns = "campaigns"
	collectionAdGroups  = "adGroups"
	collectionAssets    = "assets"
)

// handle identifies a resource reserved in an arena.
type handle int

type pendingResource struct {
	collection string
	tempID     int64
	op         int
	name       string
}

// arena hands out the negative temporary ids a batch mutation uses to
// reference resources created earlier in the same batch. Ids strictly
// decrease from start in reservation order. Once the batch succeeds, resolve
// maps every handle to its real resource name through the index of the
// operation bound to it.
type arena struct {
	customerID string
	next       int64
	pending    []pendingResource
}

// randomStart returns a randomized negative starting id so that concurrent
// batches of the same customer do not reuse temporary ids.
func randomStart() int64 {
	return -(rand.Int64N(1_000_000) + 1_000)
}

func newArena(customerID string, start int64) *arena {
	if start >= 0 {
		start = -1
	}
	return &arena{customerID: customerID, next: start}
}

func (a *arena) reserve(collection string) handle {
	a.pending = append(a.pending, pendingResource{collection: collection, tempID: a.next, op: -1})
	a.next--
	return handle(len(a.pending) - 1)
}

func (a *arena) reserveN(collection string, n int) []handle {
	hs := make([]handle, n)
	for i := range hs {
		hs[i] = a.reserve(collection)
	}
	return hs
}

// name renders the temporary resource name, e.g. customers/1/campaigns/-1001.
func (a *arena) name(h handle) string {
	p := a.pending[h]
	return fmt.Sprintf("customers/%s/%s/%d", a.customerID, p.collection, p.tempID)
}

func (a *arena) names(hs []handle) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = a.name(h)
	}
	return out
}

// bind records that operation op of the batch creates h.
func (a *arena) bind(h handle, op int) {
	a.pending[h].op = op
}

// resolve stores the real resource names from a batch response, where
// results[i] is the resource name returned for operation i.
func (a *arena) resolve(results []string) error {
	for i := range a.pending {
		p := &a.pending[i]
		if p.op < 0 {
			return fmt.Errorf("resource %s/%d was never bound to an operation", p.collection, p.tempID)
		}
		if p.op >= len(results) || results[p.op] == "" {
			return errors.New("mutate response is missing results")
		}
		p.name = results[p.op]
	}
	return nil
}

// resolved returns the real resource name of h after resolve.
func (a *arena) resolved(h handle) string {
	return a.pending[h].name
}
