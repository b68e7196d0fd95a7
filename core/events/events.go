package events

import (
	"time"

	"github.com/chargenet/roaming/core/model"
)

// Event is the union of payloads published on the dispatch bus. Class names
// the event family and doubles as the per-class delivery key for transports.
type Event interface {
	Class() string
}

// Event classes.
const (
	ClassOperation     = "operation"
	ClassAuthorization = "authorization"
	ClassCDR           = "cdr"
)

// Operation names a dispatch entry point.
type Operation string

const (
	OpReserve           Operation = "reserve"
	OpCancelReservation Operation = "cancel_reservation"
	OpRemoteStart       Operation = "remote_start"
	OpRemoteStop        Operation = "remote_stop"
	OpAuthorizeStart    Operation = "authorize_start"
	OpAuthorizeStop     Operation = "authorize_stop"
)

// OperationEvent is published after every reserve/cancel/start/stop dispatch.
type OperationEvent struct {
	Operation Operation
	Kind      model.ResultKind
	Location  string
	SessionID model.SessionID
	Backend   string
	Runtime   time.Duration
}

// AuthEvent is published after every authorize start/stop request, including
// ones answered from the cache or rejected by the rate limiter.
type AuthEvent struct {
	Operation Operation
	Token     model.AuthToken
	Decision  model.AuthDecision
	Cached    bool
	Backend   string
	Runtime   time.Duration
}

// CDREvent is published after every charge detail record routing pass.
type CDREvent struct {
	Overall  model.CDROutcomeKind
	Records  int
	Outcomes map[model.CDROutcomeKind]int
	Runtime  time.Duration
}

func (OperationEvent) Class() string { return ClassOperation }

func (AuthEvent) Class() string { return ClassAuthorization }

func (CDREvent) Class() string { return ClassCDR }
