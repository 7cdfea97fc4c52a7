// Package stats maintains the daily block counters. Counters reset lazily:
// the store clears them on the first read of a new calendar day.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/focusshield/focusshield/internal/domain"
)

// topSites caps the per-document and per-zone blocked-site lists.
const topSites = 10

// Recorder applies block events to the statistics document using a
// read-modify-write against the store. Each call reads the latest snapshot
// immediately before writing; the store serializes per-key access.
type Recorder struct {
	store domain.StatisticsStore
}

// NewRecorder creates a statistics recorder.
func NewRecorder(store domain.StatisticsStore) *Recorder {
	return &Recorder{store: store}
}

// RecordBlock counts one blocked navigation. zoneID attributes the block to
// a zone ("" for timer blocks); fromTimer increments the focus-session
// counter. now is Unix milliseconds.
func (r *Recorder) RecordBlock(ctx context.Context, domainName, zoneID string, fromTimer bool, now int64) error {
	s, err := r.store.Load(ctx, now)
	if err != nil {
		return fmt.Errorf("load statistics: %w", err)
	}

	s.BlockedSites = bumpSite(s.BlockedSites, domainName, zoneID, now)
	s.TotalBlocked++
	s.LastUpdated = now

	if zoneID != "" {
		if s.ZoneStats == nil {
			s.ZoneStats = map[string]domain.ZoneStatistics{}
		}
		zs := s.ZoneStats[zoneID]
		zs.BlockedCount++
		zs.BlockedSites = bumpSite(zs.BlockedSites, domainName, zoneID, now)
		s.ZoneStats[zoneID] = zs
	}

	if fromTimer {
		s.TimerStats.BlockedDuringFocus++
	}

	if err := r.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save statistics: %w", err)
	}
	return nil
}

// Current returns the statistics as of now.
func (r *Recorder) Current(ctx context.Context, now int64) (domain.Statistics, error) {
	return r.store.Load(ctx, now)
}

// Reset replaces the statistics with an empty document anchored at now.
func (r *Recorder) Reset(ctx context.Context, now int64) error {
	return r.store.Save(ctx, domain.NewStatistics(now))
}

// bumpSite increments the counter for domainName, creating the entry when
// missing, then re-sorts by count and truncates to the top entries.
func bumpSite(sites []domain.BlockedSite, domainName, zoneID string, now int64) []domain.BlockedSite {
	idx := -1
	for i := range sites {
		if sites[i].Domain == domainName {
			idx = i
			break
		}
	}
	if idx == -1 {
		sites = append(sites, domain.BlockedSite{Domain: domainName, ZoneID: zoneID})
		idx = len(sites) - 1
	}
	sites[idx].Count++
	sites[idx].LastBlocked = now
	if zoneID != "" {
		sites[idx].ZoneID = zoneID
	}

	sort.SliceStable(sites, func(i, j int) bool {
		return sites[i].Count > sites[j].Count
	})
	if len(sites) > topSites {
		sites = sites[:topSites]
	}
	return sites
}
