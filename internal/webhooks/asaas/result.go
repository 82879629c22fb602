package asaaswebhook

// Outcome labels how a delivery was handled. It is also the metrics label.
type Outcome string

const (
	OutcomeProcessed    Outcome = "processed"
	OutcomeNoop         Outcome = "noop"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeUnhandled    Outcome = "unhandled"
	OutcomeUnassociated Outcome = "unassociated"
	OutcomeIgnored      Outcome = "ignored"
	OutcomeFailed       Outcome = "failed"
)

// Result is returned for every delivery. Failures are reported here and never
// as an HTTP error to the gateway.
type Result struct {
	Handled bool    `json:"handled"`
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
}

func processed(message string) Result {
	return Result{Handled: true, Outcome: OutcomeProcessed, Message: message}
}

func unassociated(message string) Result {
	return Result{Outcome: OutcomeUnassociated, Message: message}
}
