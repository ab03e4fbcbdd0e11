package models

// ReminderFields is the domain payload of a medication reminder record.
type ReminderFields struct {
	MedicineName string `json:"medicineName"`
	Dosage       string `json:"dosage,omitempty"`
	// Frequency is a human-readable schedule like "daily" or "twice a day".
	Frequency string `json:"frequency,omitempty"`
	// Times lists the clock times the reminder fires at, "HH:MM".
	Times     []string `json:"times,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	// Active is a pointer so a partial update can explicitly disable a
	// reminder; nil means "not specified" and defaults to enabled.
	Active *bool `json:"active,omitempty"`
}

// Reminder is a reminder record with its sync envelope.
type Reminder = Record[ReminderFields]
