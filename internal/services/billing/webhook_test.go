package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func TestVerifySignature_RoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()
	header := SignPayload(payload, testSecret, now)

	assert.NoError(t, VerifySignature(payload, header, testSecret, now))
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := SignPayload(payload, testSecret, now)

	err := VerifySignature([]byte(`{"id":"evt_2"}`), header, testSecret, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	header := SignPayload(payload, "whsec_other", now)

	err := VerifySignature(payload, header, testSecret, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_StaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	signedAt := time.Now().Add(-DefaultTolerance - time.Minute)
	header := SignPayload(payload, testSecret, signedAt)

	err := VerifySignature(payload, header, testSecret, time.Now())
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignature_MalformedHeader(t *testing.T) {
	payload := []byte(`{}`)
	for _, header := range []string{"", "t=123", "v1=abc", "nonsense"} {
		assert.ErrorIs(t, VerifySignature(payload, header, testSecret, time.Now()), ErrInvalidSignature, header)
	}
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_123","payment_intent":"pi_1"}}}`)
	header := SignPayload(payload, testSecret, time.Now())

	event, err := ParseEvent(payload, header, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Contains(t, string(event.Data.Object), "cs_123")
}

func TestParseEvent_BadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	_, err := ParseEvent(payload, "t=0,v1=deadbeef", testSecret)
	assert.Error(t, err)
}
