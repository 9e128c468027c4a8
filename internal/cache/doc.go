// Package cache implements the disk-backed response memo that sits in front
// of upstream lookup requests. Bodies are stored content-addressed: the sha1
// hex digest of a request's canonical identity names the entry file, and the
// first three digest characters name its shard directory, so the filesystem
// tree itself is the index and no auxiliary bookkeeping exists. Eviction is a
// total sweep of the cache root, triggered after any request once the disk
// quota is exceeded or the sweep interval recorded in the marker file has
// elapsed. The quota monitor, sweep scheduler, and sweep executor are
// injected interfaces so the facade can be exercised with test doubles.
//
// A single process serializes writers per entry and sweeps behind a mutex;
// multiple processes sharing one cache root are not coordinated, and a sweep
// racing a foreign reader or writer has undefined results.
package cache
