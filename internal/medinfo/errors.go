package medinfo

import "errors"

// ErrMedicineNotFound is returned when neither the local cache nor the FDA
// label API knows the requested medicine.
var ErrMedicineNotFound = errors.New("medicine not found")
