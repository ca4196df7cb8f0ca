package llm

// Classification describes how executors must react to a failed model call.
//
// Permanent means the (key, model) pair must not be retried for the rest of
// the request. EvictKey removes the credential from the pool globally.
// DropModel marks the model task failed without further attempts.
type Classification struct {
	Permanent bool
	EvictKey  bool
	DropModel bool
}

// Classify maps an upstream HTTP status to its handling policy.
//
//	401, 403           → permanent, evict key
//	404                → permanent, drop model
//	other 4xx (not 429) → permanent, drop model
//	429, 5xx, network  → transient, retry
func Classify(status int) Classification {
	switch {
	case status == 401 || status == 403:
		return Classification{Permanent: true, EvictKey: true}
	case status == 404:
		return Classification{Permanent: true, DropModel: true}
	case status == 429:
		return Classification{}
	case status >= 400 && status < 500:
		return Classification{Permanent: true, DropModel: true}
	default:
		return Classification{}
	}
}
