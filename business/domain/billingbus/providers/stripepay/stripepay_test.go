package stripepay_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/billingbus"
	"github.com/jcpaschoal/jhgestor/business/domain/billingbus/providers/stripepay"
	"github.com/jcpaschoal/jhgestor/business/types/plan"
	"github.com/stripe/stripe-go/v76/webhook"
)

const secret = "whsec_test"

func sign(t *testing.T, payload string) (body []byte, header string) {
	t.Helper()

	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})

	return sp.Payload, sp.Header
}

func Test_ParseEvent(t *testing.T) {
	userID := uuid.MustParse("5cf37266-3473-4006-984f-9325122678b7")
	p := stripepay.New(stripepay.Config{SecretKey: "sk_test", WebhookSecret: secret})

	table := []struct {
		name    string
		payload string
		exp     billingbus.Event
	}{
		{
			name: "checkout",
			payload: `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{
				"id":"cs_1","object":"checkout.session","customer":"cus_1","subscription":"sub_1",
				"metadata":{"userId":"5cf37266-3473-4006-984f-9325122678b7","plan":"ENTERPRISE"}}}}`,
			exp: billingbus.Event{
				ID:             "evt_1",
				Type:           billingbus.EventCheckoutCompleted,
				UserID:         userID,
				Plan:           plan.Enterprise,
				CustomerID:     "cus_1",
				SubscriptionID: "sub_1",
			},
		},
		{
			name: "deleted",
			payload: `{"id":"evt_2","object":"event","type":"customer.subscription.deleted","data":{"object":{
				"id":"sub_1","object":"subscription","customer":"cus_1"}}}`,
			exp: billingbus.Event{
				ID:             "evt_2",
				Type:           billingbus.EventSubscriptionDeleted,
				CustomerID:     "cus_1",
				SubscriptionID: "sub_1",
			},
		},
		{
			name: "payment-failed",
			payload: `{"id":"evt_3","object":"event","type":"invoice.payment_failed","data":{"object":{
				"id":"in_1","object":"invoice","customer":"cus_1"}}}`,
			exp: billingbus.Event{
				ID:         "evt_3",
				Type:       billingbus.EventPaymentFailed,
				CustomerID: "cus_1",
			},
		},
		{
			name:    "other",
			payload: `{"id":"evt_4","object":"event","type":"customer.created","data":{"object":{"id":"cus_2","object":"customer"}}}`,
			exp: billingbus.Event{
				ID:   "evt_4",
				Type: "customer.created",
			},
		},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			body, header := sign(t, tt.payload)

			evt, err := p.ParseEvent(body, header)
			if err != nil {
				t.Fatalf("Should be able to parse the event: %s", err)
			}

			if diff := cmp.Diff(tt.exp, evt); diff != "" {
				t.Errorf("Should get the expected event:\n%s", diff)
			}
		})
	}
}

func Test_ParseEventBadSignature(t *testing.T) {
	p := stripepay.New(stripepay.Config{SecretKey: "sk_test", WebhookSecret: secret})

	_, err := p.ParseEvent([]byte(`{"id":"evt_1","type":"invoice.payment_failed"}`), "t=1,v1=deadbeef")
	if !errors.Is(err, stripepay.ErrSignature) {
		t.Fatalf("Should reject the payload, got %v", err)
	}
}
