package db

import (
	"log"
	"strings"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Cache keys are tracked per concern so writes can invalidate every lookup
// touching the same vendor text or category tree without flushing the rest.
var (
	Cache           *ristretto.Cache
	VendorCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	CategoryCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Vendor mapping lookup cache. Keys are "vm:<user_id>:<normalized_text>".

func SetVendorCache(cacheKey string, value interface{}) {
	VendorCacheKeys.Lock()
	VendorCacheKeys.m[cacheKey] = struct{}{}
	VendorCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

// ClearVendorCacheForText drops every cached lookup for a normalized vendor
// text, across all user scopes. A write to one scope can change what another
// scope's lookup would return, so all of them go.
func ClearVendorCacheForText(normalizedText string) {
	suffix := ":" + normalizedText
	VendorCacheKeys.Lock()
	for key := range VendorCacheKeys.m {
		if strings.HasSuffix(key, suffix) {
			Cache.Del(key)
			delete(VendorCacheKeys.m, key)
		}
	}
	VendorCacheKeys.Unlock()
}

func ClearAllVendorCaches() {
	VendorCacheKeys.Lock()
	for key := range VendorCacheKeys.m {
		Cache.Del(key)
	}
	VendorCacheKeys.m = make(map[string]struct{})
	VendorCacheKeys.Unlock()
}

// Category tree cache. Keys are "cat:<user_id>".

func SetCategoryCache(cacheKey string, value interface{}) {
	CategoryCacheKeys.Lock()
	CategoryCacheKeys.m[cacheKey] = struct{}{}
	CategoryCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func ClearAllCategoryCaches() {
	CategoryCacheKeys.Lock()
	for key := range CategoryCacheKeys.m {
		Cache.Del(key)
	}
	CategoryCacheKeys.m = make(map[string]struct{})
	CategoryCacheKeys.Unlock()
}
