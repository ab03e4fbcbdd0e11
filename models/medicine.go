package models

// Medicine data sources.
const (
	MedicineSourceCache = "cache"
	MedicineSourceFDA   = "fda"
)

// Medicine is a normalised drug-label entry assembled from the openFDA
// drug/label API or from the local label cache.
type Medicine struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	Uses        []string `json:"uses,omitempty"`
	Dosage      string   `json:"dosage,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	SideEffects []string `json:"sideEffects,omitempty"`
	// Source records where the entry came from: "cache" or "fda".
	Source string `json:"source,omitempty"`
}
