package subscription

import (
	"net/url"

	"github.com/threateye/threateye-cli/internal/errors"
)

// CallbackResult is the terminal state of a payment-provider redirect. Both
// fields are display-only: the transaction id and error text come straight
// from the redirect query and are not re-verified client-side.
type CallbackResult struct {
	Success bool
	TxnID   string
	ErrMsg  string
}

// ParseCallback extracts the outcome from the redirect URL the payment
// provider sent the user back to. A `txn` parameter marks success, an
// `error` parameter carries the failure text; a URL with neither is a
// failure (the provider redirects without a query when its own lookup of
// the payment did not confirm completion).
func ParseCallback(rawURL string) (*CallbackResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSubCallbackBad, "invalid redirect URL", err)
	}

	query := u.Query()

	if txn := query.Get("txn"); txn != "" {
		return &CallbackResult{Success: true, TxnID: txn}, nil
	}

	if errMsg := query.Get("error"); errMsg != "" {
		return &CallbackResult{Success: false, ErrMsg: errMsg}, nil
	}

	return &CallbackResult{
		Success: false,
		ErrMsg:  "We were unable to process your payment. Please try again or contact support if the problem persists.",
	}, nil
}
