// Package statestore persists the current state of each (resource, domain)
// pair and lets callers replace it with compare-and-swap semantics.
//
// Backends:
//
//	MemoryStore   – in-process map, tests and local runs
//	BoltStore     – single-file bbolt database
//	PostgresStore – volume_states table, schema applied by MigratePostgres
//	RedisStore    – one string key per record, Lua script for the swap
//	MongoStore    – one document per record, filtered UpdateOne for the swap
//	S3Store       – one object per record, If-Match on the ETag for the swap
//
// Every backend returns ErrNotFound, ErrConflict and ErrAlreadyExists for the
// same situations, so code above the store never inspects driver errors.
// Stored values are raw, metadata suffix included.
package statestore
