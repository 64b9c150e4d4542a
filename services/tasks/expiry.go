package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeSessionExpire = "session:expire"

// SessionExpirePayload identifies the pending session to release.
type SessionExpirePayload struct {
	SessionID string `json:"sessionId"`
}

// NewSessionExpireTask builds the delayed task that releases a pending
// session if it is still unconfirmed when the hold runs out.
func NewSessionExpireTask(sessionID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(SessionExpirePayload{SessionID: sessionID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSessionExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
