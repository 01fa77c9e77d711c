package domain

// NoticeKind explains why a list result may be empty or partial.
type NoticeKind string

const (
	NoticeEmpty            NoticeKind = "empty"
	NoticeStoreUnavailable NoticeKind = "store_unavailable"
	NoticeQueryFailed      NoticeKind = "query_failed"
	NoticeNoRecommendation NoticeKind = "no_recommendation"
)

// Notice accompanies a list result. Statement is set only for query failures
// outside production.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Statement string     `json:"statement,omitempty"`
}

// EmptyNotice is attached to results with zero rows.
func EmptyNotice(message string) *Notice {
	return &Notice{Kind: NoticeEmpty, Message: message}
}
