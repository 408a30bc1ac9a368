// FILE: internal/pkg/payment/midtrans_gateway.go
// Midtrans charge gateway for subscription renewals. Checkout-flow payments
// go through Snap in the controller layer; this package only handles
// server-initiated charges against a stored card token.
package payment

import (
	"context"
	"fmt"
	"time"

	"rentora-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

type MidtransGateway struct {
	client coreapi.Client
	logger logger.ILogger
}

func NewMidtransGateway(serverKey string, production bool, log logger.ILogger) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var client coreapi.Client
	client.New(serverKey, env)
	return &MidtransGateway{
		client: client,
		logger: log,
	}
}

// Charge runs one renewal charge. The order id embeds the subscription id
// and a timestamp so Midtrans never rejects a retry as a duplicate.
func (g *MidtransGateway) Charge(ctx context.Context, subscriptionId uuid.UUID, amount float64, currency string, paymentMethodRef string) (string, error) {
	orderId := fmt.Sprintf("renew-%s-%d", subscriptionId, time.Now().Unix())

	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeCreditCard,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId,
			GrossAmt: int64(amount),
		},
		CreditCard: &coreapi.CreditCardDetails{
			TokenID: paymentMethodRef,
		},
	}

	resp, chargeErr := g.client.ChargeTransaction(req)
	if chargeErr != nil {
		g.logger.Warn("MidtransGateway", "Charge rejected", map[string]interface{}{
			"order_id":        orderId,
			"subscription_id": subscriptionId.String(),
			"error":           chargeErr.GetMessage(),
		})
		return "", fmt.Errorf("midtrans charge failed: %v", chargeErr.GetMessage())
	}

	switch resp.TransactionStatus {
	case "capture", "settlement":
		g.logger.Info("MidtransGateway", "Charge settled", map[string]interface{}{
			"order_id":       orderId,
			"transaction_id": resp.TransactionID,
		})
		return resp.TransactionID, nil
	default:
		return "", fmt.Errorf("midtrans charge not settled: status %s", resp.TransactionStatus)
	}
}
