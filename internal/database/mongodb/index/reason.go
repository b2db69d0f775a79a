package index

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Reason 只用於 log 與 metric 標籤，不影響流程：所有失敗一律記錄後繼續
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonDuplicateKey    Reason = "duplicate_key"
	ReasonOptionsConflict Reason = "options_conflict"
	ReasonTimeout         Reason = "timeout"
	ReasonNetwork         Reason = "network"
	ReasonNotConnected    Reason = "not_connected"
	ReasonOther           Reason = "other"
)

// server error codes: IndexOptionsConflict / IndexKeySpecsConflict
const (
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

// ErrNotConnected 由 Creator 在連線已關閉時回傳
var ErrNotConnected = errors.New("mongo client is not connected")

func Classify(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	if errors.Is(err, ErrNotConnected) {
		return ReasonNotConnected
	}
	if mongo.IsDuplicateKeyError(err) {
		return ReasonDuplicateKey
	}
	var commandErr mongo.CommandError
	if errors.As(err, &commandErr) &&
		(commandErr.Code == codeIndexOptionsConflict || commandErr.Code == codeIndexKeySpecsConflict) {
		return ReasonOptionsConflict
	}
	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if mongo.IsNetworkError(err) {
		return ReasonNetwork
	}
	return ReasonOther
}
