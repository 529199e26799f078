package domain

// BroadcastResult tally of a broadcast job, per target errors are not reported
type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// BulkResult tally of a bulk operation over applications
type BulkResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
