// Package cache provides a generic least-recently-used cache.
//
// [LRU] holds at most a fixed number of entries. Reading or writing an
// entry makes it the most recent one; inserting past the limit evicts the
// least recent entry and reports it to an optional callback.
//
//	c := cache.NewLRU[string, *image.Buf](64)
//	c.Set("tiles.png", buf)
//	buf, ok := c.Get("tiles.png")
//
// LRU is safe for concurrent use and must not be copied after creation.
package cache
