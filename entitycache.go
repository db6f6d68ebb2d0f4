// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mediarc

import (
	"context"
	"strings"

	"go.mau.fi/util/exsync"

	"go.mau.fi/mediarc/types"
)

// entityCache memoizes entity resolution for one run. It is read-mostly:
// writes only happen on a cache miss, and concurrent misses for the same
// identifier just resolve twice and agree on the result.
type entityCache struct {
	entities *exsync.Map[string, *types.Entity]
	source   Source
}

func newEntityCache(source Source) *entityCache {
	return &entityCache{
		entities: exsync.NewMap[string, *types.Entity](),
		source:   source,
	}
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (ec *entityCache) Resolve(ctx context.Context, identifier string) (*types.Entity, error) {
	key := normalizeIdentifier(identifier)
	if entity, ok := ec.entities.Get(key); ok {
		return entity, nil
	}
	entity, err := ec.source.ResolveEntity(ctx, identifier)
	if err != nil {
		return nil, err
	}
	ec.entities.Set(key, entity)
	return entity, nil
}
