//go:build race

package cache

// boltdb/bolt v1.3.1 trips checkptr, which -race enables.
const raceEnabled = true
