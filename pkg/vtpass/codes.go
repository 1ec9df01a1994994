package vtpass

// Response codes.
const (
	CodeProcessed          = "000"
	CodeProcessing         = "099"
	CodeRequestProcessing  = "089"
	CodeInvalidArguments   = "011"
	CodeProductNotFound    = "012"
	CodeDuplicateRequest   = "014"
	CodeFailed             = "016"
	CodeLowBalance         = "018"
	CodeLikelyDuplicate    = "019"
	CodeBillerUnreachable  = "030"
	CodeReversal           = "040"
	CodeInvalidCredentials = "087"
)

// Transaction statuses inside a processed reply.
const (
	StatusDelivered = "delivered"
	StatusPending   = "pending"
	StatusInitiated = "initiated"
	StatusFailed    = "failed"
	StatusReversed  = "reversed"
)

// Outcome is the classified result of a VTpass call.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSuccess
	OutcomePending
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePending:
		return "pending"
	default:
		return "failed"
	}
}

// Classify maps a response code and transaction status to an Outcome.
// A processed reply is only a success once the transaction is delivered.
func Classify(code, status string) Outcome {
	switch code {
	case CodeProcessed:
		switch status {
		case StatusDelivered:
			return OutcomeSuccess
		case StatusPending, StatusInitiated, "":
			return OutcomePending
		default:
			return OutcomeFailed
		}
	case CodeProcessing, CodeRequestProcessing:
		return OutcomePending
	default:
		return OutcomeFailed
	}
}
