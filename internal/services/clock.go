package services

import "time"

// nowUTC is a package-level hook so day-bucket behavior can be pinned in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }
