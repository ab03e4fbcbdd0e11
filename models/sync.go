package models

import "time"

// StatusSnapshot is a point-in-time view of the sync layer, computed by
// scanning the local cache. No counters are maintained between snapshots.
type StatusSnapshot struct {
	Online               bool                 `json:"online"`
	PendingPrescriptions int                  `json:"pendingPrescriptions"`
	PendingReminders     int                  `json:"pendingReminders"`
	TotalPending         int                  `json:"totalPending"`
	LastSync             map[string]time.Time `json:"lastSync"`
}

// CollectionOutcome tallies push results for one collection during a forced
// sync. Failures are counted, never raised.
type CollectionOutcome struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SyncOutcome is the per-collection result of ForceSyncAll.
type SyncOutcome struct {
	Prescriptions CollectionOutcome `json:"prescriptions"`
	Reminders     CollectionOutcome `json:"reminders"`
}
