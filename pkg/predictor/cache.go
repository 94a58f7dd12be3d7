package predictor

// defaultCacheCapacity bounds the prediction cache when the caller does not
// configure one.
const defaultCacheCapacity = 100

// anonymousFieldKey stands in when a prediction request carries no field
// identity.
const anonymousFieldKey = "anonymous-field"

// predictionCache is a bounded key to prediction store with insertion-order
// eviction: inserting into a full cache drops the single oldest-inserted
// entry, and reads do not protect an entry from eviction.
type predictionCache struct {
	capacity int
	entries  map[string]Prediction
	order    []string
}

func newPredictionCache(capacity int) *predictionCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &predictionCache{
		capacity: capacity,
		entries:  make(map[string]Prediction, capacity),
	}
}

func (c *predictionCache) get(key string) (Prediction, bool) {
	prediction, ok := c.entries[key]
	return prediction, ok
}

func (c *predictionCache) set(key string, prediction Prediction) {
	if _, exists := c.entries[key]; exists {
		c.entries[key] = prediction
		return
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = prediction
	c.order = append(c.order, key)
}

func (c *predictionCache) len() int {
	return len(c.entries)
}

// cacheKey joins the field identity with the deterministic bundle
// serialization.
func cacheKey(fieldName, bundleKey string) string {
	if fieldName == "" {
		fieldName = anonymousFieldKey
	}
	return fieldName + "::" + bundleKey
}
