// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/jeranaias/quocli/internal/spec"
	"github.com/jeranaias/quocli/internal/util"
)

// coalescer deduplicates concurrent parses of the same help text. Keyed
// by fingerprint: two callers with identical help text share one parse.
type coalescer struct {
	group singleflight.Group
}

// ParseFunc produces a spec from raw help text; in practice this is the
// LLM parser. It is only invoked on a cache miss.
type ParseFunc func(ctx context.Context, helpText string) (*spec.CommandSpec, error)

// GetOrParse resolves help text to a spec: fingerprint, cache lookup, and
// on miss a single coalesced parse whose result is stored before being
// returned. A broken store degrades to always-miss rather than failing
// the session.
func (s *Store) GetOrParse(ctx context.Context, helpText string, parse ParseFunc) (*spec.CommandSpec, bool, error) {
	fp := Fingerprint(helpText)

	if cs, err := s.Lookup(ctx, fp); err == nil && cs != nil {
		return cs, true, nil
	} else if err != nil && !errors.Is(err, ErrUnavailable) {
		return nil, false, err
	}

	v, err, _ := s.coalescer.group.Do(fp, func() (any, error) {
		cs, err := parse(ctx, helpText)
		if err != nil {
			return nil, err
		}
		if err := cs.Validate(); err != nil {
			return nil, err
		}
		// Best effort: a store failure must not discard a good parse,
		// but the user should know the next run will parse again.
		if err := s.Store(ctx, fp, cs); err != nil {
			util.Warnf("spec cache store: %v", err)
		}
		return cs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*spec.CommandSpec), false, nil
}
