// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dashboard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/KodiakSystems/KodiakAML/services/normalizer"
)

// =============================================================================
// Analysis Cache
// =============================================================================

// defaultCacheTTL bounds how long a cached analysis stays servable. Risk
// scores move slowly; five minutes keeps repeat lookups cheap without
// hiding fresh escalations for long.
const defaultCacheTTL = 5 * time.Minute

// AnalysisCache is a BadgerDB-backed TTL cache of normalized analysis
// results keyed by customer id. A nil *AnalysisCache is valid and behaves
// as a cache that never hits, so callers need no nil checks beyond using
// the returned value.
type AnalysisCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenAnalysisCache opens the cache at dir. An empty dir, or a failure to
// open the store, disables caching with a warning rather than failing the
// caller.
func OpenAnalysisCache(dir string) *AnalysisCache {
	if dir == "" {
		slog.Info("Analysis cache disabled, no cache directory configured")
		return nil
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		slog.Warn("Analysis cache disabled, cannot open store",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		return nil
	}
	slog.Info("Analysis cache opened", slog.String("dir", dir))
	return &AnalysisCache{db: db, ttl: defaultCacheTTL}
}

// Get returns the cached result for customerID, or (nil, false) on miss,
// expiry, or any read problem.
func (c *AnalysisCache) Get(customerID string) (*normalizer.AnalysisResult, bool) {
	if c == nil || c.db == nil {
		return nil, false
	}

	var result normalizer.AnalysisResult
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(customerID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			slog.Warn("Analysis cache read failed",
				slog.String("customer_id", customerID),
				slog.String("error", err.Error()))
		}
		return nil, false
	}
	return &result, true
}

// Put stores a result under customerID with the cache TTL. Write failures
// are logged and swallowed.
func (c *AnalysisCache) Put(customerID string, result *normalizer.AnalysisResult) {
	if c == nil || c.db == nil {
		return
	}

	buf, err := json.Marshal(result)
	if err != nil {
		slog.Warn("Analysis cache encode failed", slog.String("error", err.Error()))
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(customerID), buf).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		slog.Warn("Analysis cache write failed",
			slog.String("customer_id", customerID),
			slog.String("error", err.Error()))
	}
}

// Close releases the underlying store. Safe on nil.
func (c *AnalysisCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func cacheKey(customerID string) []byte {
	return []byte(fmt.Sprintf("analysis/%s", customerID))
}
