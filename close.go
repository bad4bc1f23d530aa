package sigsearch

import "context"

// Close releases the memory reserved for the store with the resource
// controller. Queries after Close fail with ErrClosed.
func (db *DB) Close() error {
	if db == nil || !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	db.opts.resource.ReleaseMemory(db.reserved)
	db.opts.logger.LogClose(context.Background(), db.store.Len(), db.reserved)
	return nil
}
