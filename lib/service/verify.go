package service

import (
	"context"
	"fmt"

	"github.com/satstacker/satstacker.go/lnd"
)

// CheckSettlement asks the node whether the invoice behind rHash (or
// paymentRequest) has been paid. A negative answer is a valid "ask again
// later" state, not a failure; only a missing identifier or a demo-mode
// misuse surfaces as an error to the caller.
func (svc *SatstackerService) CheckSettlement(ctx context.Context, rHash string, paymentRequest string) (*lnd.LookupResult, error) {
	if rHash == "" && paymentRequest == "" {
		return nil, fmt.Errorf("payment hash or payment request is required")
	}
	result, err := svc.LndClient.Lookup(ctx, rHash, paymentRequest)
	if err != nil {
		return nil, err
	}
	if result.Settled {
		svc.Logger.Infof("Settlement confirmed: r_hash:%s amount:%v", rHash, result.AmountPaidSat)
	}
	return result, nil
}
