// Package dataset builds the named resources this engine knows how to
// produce, combining the source clients with the tabular normalizer.
package dataset

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/pitchdata/pitchdata/internal/provider/fpl"
	"github.com/pitchdata/pitchdata/internal/provider/understat"
	"github.com/pitchdata/pitchdata/internal/tabular"
)

// Resource names, one per buildable dataset.
const (
	ResourceFPLBootstrap     = "fpl_bootstrap"
	ResourceFPLFixtures      = "fpl_fixtures"
	ResourceFPLHistories     = "fpl_histories"
	ResourceUnderstatPlayers = "understat_players"
	ResourceUnderstatMatches = "understat_matches"
)

// Resources lists all buildable resource names in a stable order.
func Resources() []string {
	return []string{
		ResourceFPLBootstrap,
		ResourceFPLFixtures,
		ResourceFPLHistories,
		ResourceUnderstatPlayers,
		ResourceUnderstatMatches,
	}
}

// Numeric column sets per resource. Values in these columns are coerced to
// float64 during normalization; everything else passes through unchanged.
var (
	FPLHistoryNumericCols = []string{
		"round", "total_points", "minutes", "goals_scored", "assists",
		"clean_sheets", "goals_conceded", "own_goals", "penalties_saved",
		"penalties_missed", "yellow_cards", "red_cards", "saves", "bonus",
		"bps", "influence", "creativity", "threat", "ict_index",
	}

	UnderstatPlayersNumericCols = []string{
		"games", "time", "goals", "xG", "assists", "xA", "shots",
		"key_passes", "xGChain", "xGBuildup",
	}

	UnderstatMatchesNumericCols = []string{
		"xG_home", "xG_away", "forecast_win", "forecast_draw", "forecast_lose",
	}
)

// FetchFunc returns the raw records for one entity in a fan-out build.
type FetchFunc func(ctx context.Context, entity int) ([]map[string]interface{}, error)

// BuildCombined fans out one fetch per entity, in input order, tags every
// returned record with its originating entity under tagColumn, and
// normalizes the accumulated records into one table.
//
// pacing is the minimum interval between successive fetches (the first runs
// immediately). Any fetch error aborts the whole build; fan-out has no
// per-item isolation, so a partial table is never returned.
func BuildCombined(
	ctx context.Context,
	entities []int,
	fetchOne FetchFunc,
	pacing time.Duration,
	tagColumn string,
	numericCols []string,
) (*tabular.Table, error) {
	limit := rate.Inf
	if pacing > 0 {
		limit = rate.Every(pacing)
	}
	limiter := rate.NewLimiter(limit, 1)

	var records []map[string]interface{}
	for _, entity := range entities {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("pacing wait: %w", err)
		}
		recs, err := fetchOne(ctx, entity)
		if err != nil {
			return nil, fmt.Errorf("fetch entity %d: %w", entity, err)
		}
		for _, rec := range recs {
			rec[tagColumn] = entity
			records = append(records, rec)
		}
	}

	return tabular.Normalize(records, numericCols), nil
}

// FPLPlayerGameweeks builds the combined per-player gameweek history table:
// bootstrap for the element ids, then one element-summary call per player.
// limit > 0 restricts the build to the first limit players (useful for
// samples); 0 means all.
func FPLPlayerGameweeks(ctx context.Context, c *fpl.Client, limit int, pacing time.Duration) (*tabular.Table, error) {
	bootstrap, err := c.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := fpl.ElementIDs(bootstrap)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return BuildCombined(ctx, ids, c.PlayerHistory, pacing, "element", FPLHistoryNumericCols)
}

// UnderstatPlayers builds the per-player season stats table for a league.
func UnderstatPlayers(ctx context.Context, c *understat.Client, league string, season int) (*tabular.Table, error) {
	v, err := c.LeagueVar(ctx, league, season, understat.PlayersMarker, "playersData")
	if err != nil {
		return nil, err
	}
	records, err := asRecords(v)
	if err != nil {
		return nil, fmt.Errorf("playersData: %w", err)
	}
	return tabular.Normalize(records, UnderstatPlayersNumericCols), nil
}

// UnderstatMatches builds the fixtures/results table for a league. The raw
// matchesData entries nest xG and forecast under objects; those are lifted
// into the flat columns the numeric set declares before normalization.
func UnderstatMatches(ctx context.Context, c *understat.Client, league string, season int) (*tabular.Table, error) {
	v, err := c.LeagueVar(ctx, league, season, understat.MatchesMarker, "matchesData")
	if err != nil {
		return nil, err
	}
	records, err := asRecords(v)
	if err != nil {
		return nil, fmt.Errorf("matchesData: %w", err)
	}
	flattenMatchRecords(records)
	return tabular.Normalize(records, UnderstatMatchesNumericCols), nil
}

// asRecords converts a decoded JSON array of objects into raw records.
func asRecords(v interface{}) ([]map[string]interface{}, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected JSON array, got %T", v)
	}
	records := make([]map[string]interface{}, 0, len(arr))
	for i, elem := range arr {
		rec, ok := elem.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("element %d: expected JSON object, got %T", i, elem)
		}
		records = append(records, rec)
	}
	return records, nil
}

// flattenMatchRecords lifts the nested xG and forecast objects of a raw
// matchesData entry into flat home/away and win/draw/lose columns.
func flattenMatchRecords(records []map[string]interface{}) {
	for _, rec := range records {
		if xg, ok := rec["xG"].(map[string]interface{}); ok {
			rec["xG_home"] = xg["h"]
			rec["xG_away"] = xg["a"]
			delete(rec, "xG")
		}
		if forecast, ok := rec["forecast"].(map[string]interface{}); ok {
			rec["forecast_win"] = forecast["w"]
			rec["forecast_draw"] = forecast["d"]
			rec["forecast_lose"] = forecast["l"]
			delete(rec, "forecast")
		}
	}
}
