package service

import "errors"

// ErrOffline is returned by ForceSyncAll when no network connectivity is
// available at call time. It is the only error the sync layer surfaces
// synchronously to a caller; background sync failures are visible solely
// through record sync statuses and the status snapshot.
var ErrOffline = errors.New("cannot sync while offline")
