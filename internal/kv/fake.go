package kv

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Fake is an in-memory stand-in for Store used by tests. It supports the
// same Get/Set contract, including TTL expiry, without a real Redis
// connection, following the teacher's clock.Mock pattern of a deterministic
// substitute driven by an explicit clock rather than wall time.
type Fake struct {
	mu     sync.Mutex
	data   map[string][]byte
	expiry map[string]time.Time
	now    func() time.Time
}

// NewFake creates a Fake store. now defaults to time.Now if nil.
func NewFake(now func() time.Time) *Fake {
	if now == nil {
		now = time.Now
	}
	return &Fake{
		data:   make(map[string][]byte),
		expiry: make(map[string]time.Time),
		now:    now,
	}
}

func (f *Fake) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if exp, ok := f.expiry[key]; ok && f.now().After(exp) {
		delete(f.data, key)
		delete(f.expiry, key)
		return false, nil
	}
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (f *Fake) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = data
	if ttl > 0 {
		f.expiry[key] = f.now().Add(ttl)
	} else {
		delete(f.expiry, key)
	}
	return nil
}

func (f *Fake) Delete(ctx context.Context, keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
		delete(f.expiry, k)
	}
}

func (f *Fake) HSet(ctx context.Context, key, field string, value interface{}) {
	// A no-op: the Fake keeps no hashes. order.Service's tests reach it
	// through Submit, and no test checks hash contents.
}
