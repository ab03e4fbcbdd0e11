// Package medinfo resolves medicine names to normalised drug-label entries.
// Lookups go to the local label cache first and fall through to the openFDA
// drug/label API; successful API hits are cached so repeat questions about
// the same medicine work offline.
package medinfo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/internal/store"
	"github.com/MKhiriev/health-companion/models"
)

// medicinesCacheKey stores the cached label entries as one JSON list.
const medicinesCacheKey = "health_companion_medicines"

// LabelFetcher is the remote label lookup the service falls back to when the
// cache misses.
type LabelFetcher interface {
	FetchLabel(ctx context.Context, term string) (*models.Medicine, error)
}

// Service answers medicine lookups cache-first.
type Service struct {
	kv     store.KeyValueStore
	labels LabelFetcher
	log    *logger.Logger
}

func NewService(kv store.KeyValueStore, labels LabelFetcher, log *logger.Logger) *Service {
	return &Service{kv: kv, labels: labels, log: log}
}

// Search resolves term against the cached entries first, then the FDA label
// API. An API hit is appended to the cache before being returned. Returns
// ErrMedicineNotFound when both sources miss.
//
// Cache matching is deliberately loose, mirroring how users type medicine
// names: a cached entry matches when its name contains the query, or when
// the query contains one of its aliases, both case-insensitive. Short
// aliases can false-positive on longer queries; the match is a convenience
// heuristic, not an identifier lookup.
func (s *Service) Search(ctx context.Context, term string) (*models.Medicine, error) {
	normalized := strings.ToLower(strings.TrimSpace(term))
	if normalized == "" {
		return nil, ErrMedicineNotFound
	}

	cached := s.loadCache()
	for i := range cached {
		if matches(&cached[i], normalized) {
			med := cached[i]
			med.Source = models.MedicineSourceCache
			return &med, nil
		}
	}

	med, err := s.labels.FetchLabel(ctx, term)
	if err != nil {
		if errors.Is(err, ErrMedicineNotFound) {
			return nil, err
		}
		s.log.Err(err).Str("func", "Service.Search").Str("term", term).
			Msg("fda label lookup failed")
		return nil, err
	}

	s.storeCache(append(cached, *med))
	return med, nil
}

func matches(med *models.Medicine, normalizedQuery string) bool {
	if strings.Contains(strings.ToLower(med.Name), normalizedQuery) {
		return true
	}
	for _, alias := range med.Aliases {
		if alias != "" && strings.Contains(normalizedQuery, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}

// loadCache returns the cached label entries; absent or corrupt data yields
// an empty list.
func (s *Service) loadCache() []models.Medicine {
	raw, ok, err := s.kv.Get(medicinesCacheKey)
	if err != nil || !ok || raw == "" {
		if err != nil {
			s.log.Err(err).Str("func", "Service.loadCache").Msg("failed to read label cache")
		}
		return nil
	}

	var meds []models.Medicine
	if err = json.Unmarshal([]byte(raw), &meds); err != nil {
		s.log.Err(err).Str("func", "Service.loadCache").Msg("label cache is corrupt, returning empty")
		return nil
	}
	return meds
}

// storeCache persists the label entries; failures (quota, substrate) are
// logged and swallowed, the cache is an optimisation only.
func (s *Service) storeCache(meds []models.Medicine) {
	payload, err := json.Marshal(meds)
	if err != nil {
		s.log.Err(err).Str("func", "Service.storeCache").Msg("failed to encode label cache")
		return
	}
	if err = s.kv.Set(medicinesCacheKey, string(payload)); err != nil {
		s.log.Err(err).Str("func", "Service.storeCache").Msg("failed to persist label cache")
	}
}
