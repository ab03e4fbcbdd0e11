package medinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/models"
)

// Caps applied while transforming an FDA label into a Medicine. Label texts
// are long regulatory prose; the app only needs the leading portion.
const (
	maxAliases        = 5
	maxUses           = 10
	maxWarnings       = 10
	maxSideEffects    = 10
	maxOverviewLen    = 500
	maxUseLen         = 200
	maxDosageLen      = 1000
	maxWarningLen     = 300
	maxSideEffectLen  = 200
	fallbackName      = "Unknown Medicine"
	fallbackOverview  = "No description available."
	fallbackDosage    = "Dosage information not available. Please consult your healthcare provider."
	partialMatchLimit = 5
)

// FDAClient queries the openFDA drug/label API. The API is public and needs
// no key.
type FDAClient struct {
	client *resty.Client
	log    *logger.Logger
}

// NewFDAClient builds a client against baseURL, normally https://api.fda.gov.
func NewFDAClient(baseURL string, timeout time.Duration, log *logger.Logger) *FDAClient {
	if baseURL == "" {
		baseURL = "https://api.fda.gov"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)

	return &FDAClient{client: cli, log: log}
}

// fdaLabel is the subset of an openFDA drug label the transform reads. Every
// field arrives as a list of free-text sections.
type fdaLabel struct {
	BrandName               []string `json:"brand_name"`
	GenericName             []string `json:"generic_name"`
	Description             []string `json:"description"`
	Purpose                 []string `json:"purpose"`
	IndicationsAndUsage     []string `json:"indications_and_usage"`
	DosageAndAdministration []string `json:"dosage_and_administration"`
	Warnings                []string `json:"warnings"`
	WarningsAndCautions     []string `json:"warnings_and_cautions"`
	Contraindications       []string `json:"contraindications"`
	AdverseReactions        []string `json:"adverse_reactions"`
	OpenFDA                 struct {
		BrandName   []string `json:"brand_name"`
		GenericName []string `json:"generic_name"`
	} `json:"openfda"`
}

type fdaLabelResponse struct {
	Results []fdaLabel `json:"results"`
}

// FetchLabel resolves term against the label API, trying exact brand name,
// exact generic name, exact active ingredient, then a partial brand-name
// match, in that order. Returns ErrMedicineNotFound when every strategy
// comes up empty.
func (c *FDAClient) FetchLabel(ctx context.Context, term string) (*models.Medicine, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrMedicineNotFound
	}

	for _, field := range []string{"brand_name", "generic_name", "active_ingredient"} {
		labels, err := c.query(ctx, fmt.Sprintf("%s:%q", field, term), 1)
		if err != nil {
			return nil, err
		}
		if len(labels) > 0 {
			return transformLabel(labels[0]), nil
		}
	}

	// last resort: a wider brand-name query, picking the first result whose
	// brand name actually contains the term
	labels, err := c.query(ctx, fmt.Sprintf("brand_name:%q", term), partialMatchLimit)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, ErrMedicineNotFound
	}

	lower := strings.ToLower(term)
	best := labels[0]
	for _, l := range labels {
		brands := append(append([]string{}, l.BrandName...), l.OpenFDA.BrandName...)
		for _, b := range brands {
			if strings.Contains(strings.ToLower(b), lower) {
				best = l
				break
			}
		}
	}

	return transformLabel(best), nil
}

// query runs one label search. openFDA answers a no-match query with 404,
// which is reported as an empty result set rather than an error.
func (c *FDAClient) query(ctx context.Context, search string, limit int) ([]fdaLabel, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("search", search).
		SetQueryParam("limit", fmt.Sprint(limit)).
		Get("/drug/label.json")
	if err != nil {
		return nil, fmt.Errorf("fda label request: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fda label request: http %d", resp.StatusCode())
	}

	var parsed fdaLabelResponse
	if err = json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("decode fda label response: %w", err)
	}

	return parsed.Results, nil
}

// transformLabel reduces a raw label to the Medicine shape: pick a display
// name, collect distinct aliases, and trim the long prose sections.
func transformLabel(l fdaLabel) *models.Medicine {
	name := firstNonEmpty(
		first(l.BrandName),
		first(l.GenericName),
		first(l.OpenFDA.BrandName),
		first(l.OpenFDA.GenericName),
		fallbackName,
	)

	var aliases []string
	seen := map[string]struct{}{strings.ToLower(name): {}}
	for _, a := range concat(l.BrandName, l.GenericName, l.OpenFDA.BrandName, l.OpenFDA.GenericName) {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		aliases = append(aliases, a)
		if len(aliases) == maxAliases {
			break
		}
	}

	overview := firstNonEmpty(first(l.Description), first(l.Purpose), first(l.IndicationsAndUsage), fallbackOverview)
	dosage := firstNonEmpty(first(l.DosageAndAdministration), fallbackDosage)

	return &models.Medicine{
		Name:        strings.TrimSpace(name),
		Aliases:     aliases,
		Overview:    truncate(strings.TrimSpace(overview), maxOverviewLen),
		Uses:        dedupeTrim(concat(l.IndicationsAndUsage, l.Purpose), maxUses, maxUseLen),
		Dosage:      truncate(strings.TrimSpace(dosage), maxDosageLen),
		Warnings:    dedupeTrim(concat(l.Warnings, l.WarningsAndCautions, l.Contraindications), maxWarnings, maxWarningLen),
		SideEffects: dedupeTrim(l.AdverseReactions, maxSideEffects, maxSideEffectLen),
		Source:      models.MedicineSourceFDA,
	}
}

func first(ss []string) string {
	if len(ss) > 0 {
		return ss[0]
	}
	return ""
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func dedupeTrim(ss []string, maxItems, maxLen int) []string {
	var out []string
	seen := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		s = truncate(strings.TrimSpace(s), maxLen)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == maxItems {
			break
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
