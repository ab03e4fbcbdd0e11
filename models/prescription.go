package models

// PrescriptionFields is the domain payload of a prescription record.
type PrescriptionFields struct {
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage"`
	PrescribedBy   string `json:"prescribedBy,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
	// Status is "active" unless the prescription was archived.
	Status    string `json:"status,omitempty"`
	DateAdded string `json:"dateAdded,omitempty"`
}

// Prescription is a prescription record with its sync envelope.
type Prescription = Record[PrescriptionFields]
