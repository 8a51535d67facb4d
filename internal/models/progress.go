package models

type ProgressEventType string

const (
	ProgressBranchesListed ProgressEventType = "branches_listed"
	ProgressBranchStarted  ProgressEventType = "branch_started"
	ProgressFilesMatched   ProgressEventType = "files_matched"
	ProgressTreeTruncated  ProgressEventType = "tree_truncated"
	ProgressBranchBuilt    ProgressEventType = "branch_built"
	ProgressBranchFailed   ProgressEventType = "branch_failed"
	ProgressCacheSaved     ProgressEventType = "cache_saved"
	ProgressExecuteStarted ProgressEventType = "execute_started"
	ProgressExecuteDone    ProgressEventType = "execute_done"
	ProgressExecuteFailed  ProgressEventType = "execute_failed"
)

type ProgressEvent struct {
	Type    ProgressEventType
	Branch  string
	Message string
	Data    map[string]interface{}
}

// ProgressFunc receives pipeline events. A nil ProgressFunc is valid.
type ProgressFunc func(ProgressEvent)

// Emit calls fn when it is set.
func (fn ProgressFunc) Emit(event ProgressEvent) {
	if fn != nil {
		fn(event)
	}
}
