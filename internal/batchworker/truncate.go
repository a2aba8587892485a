package batchworker

import "github.com/oai-harvest/harvester/internal/errutil"

const (
	messageHead = 200
	messageTail = 200
)

// truncateForStorage bounds a work error's message before it is handed to
// MarkFailure, applying the 200/200 rule (§7). This is the only place the
// rule is applied: the record store's failure transitions persist the
// message as given.
func truncateForStorage(msg string) string {
	return errutil.TruncateMiddle(msg, messageHead, messageTail)
}
