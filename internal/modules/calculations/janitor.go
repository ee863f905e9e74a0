package calculations

// PruneJob drops expired cache entries; schedule it hourly.
type PruneJob struct {
	cache *Cache
}

// NewPruneJob creates the cache janitor job.
func NewPruneJob(cache *Cache) *PruneJob {
	return &PruneJob{cache: cache}
}

// Name returns the job identifier for scheduler logs.
func (j *PruneJob) Name() string {
	return "calculations:prune"
}

// Run removes expired cache entries.
func (j *PruneJob) Run() error {
	_, err := j.cache.PruneExpired()
	return err
}
