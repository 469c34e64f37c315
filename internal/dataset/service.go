package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pitchdata/pitchdata/internal/provider/fpl"
	"github.com/pitchdata/pitchdata/internal/provider/understat"
	"github.com/pitchdata/pitchdata/internal/tabular"
)

// Options carry the per-request knobs a resource build accepts. Zero values
// fall back to the service defaults.
type Options struct {
	League string
	Season int
	Limit  int
}

// Service dispatches resource builds for callers that address datasets by
// name (the HTTP API). Clients are shared across builds so connection pools
// and pacing state persist.
type Service struct {
	FPL       *fpl.Client
	Understat *understat.Client

	FPLPacing     time.Duration
	DefaultLeague string
	DefaultSeason int
}

// Result is the outcome of a resource build: raw JSON for the passthrough
// resources, a canonical table for everything else. Exactly one field is
// set.
type Result struct {
	Raw   json.RawMessage
	Table *tabular.Table
}

// MarshalJSON serializes whichever side of the result is populated.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return r.Raw, nil
	}
	return json.Marshal(r.Table)
}

// Build produces the named resource. Unknown names are an error, not a 404
// stand-in — the caller owns the mapping to user-visible behavior.
func (s *Service) Build(ctx context.Context, resource string, opts Options) (Result, error) {
	league := opts.League
	if league == "" {
		league = s.DefaultLeague
	}
	season := opts.Season
	if season == 0 {
		season = s.DefaultSeason
	}

	switch resource {
	case ResourceFPLBootstrap:
		raw, err := s.FPL.Bootstrap(ctx)
		return Result{Raw: raw}, err
	case ResourceFPLFixtures:
		raw, err := s.FPL.Fixtures(ctx)
		return Result{Raw: raw}, err
	case ResourceFPLHistories:
		t, err := FPLPlayerGameweeks(ctx, s.FPL, opts.Limit, s.FPLPacing)
		return Result{Table: t}, err
	case ResourceUnderstatPlayers:
		t, err := UnderstatPlayers(ctx, s.Understat, league, season)
		return Result{Table: t}, err
	case ResourceUnderstatMatches:
		t, err := UnderstatMatches(ctx, s.Understat, league, season)
		return Result{Table: t}, err
	default:
		return Result{}, fmt.Errorf("unknown resource %q", resource)
	}
}
