package event

import (
	"testing"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializer_RoundTrip(t *testing.T) {
	s := NewSerializer()
	RegisterDomainEvents(s)

	original := newClientCreatedEvent(t)

	data, err := s.Serialize(original)
	require.NoError(t, err)

	decoded, err := s.Deserialize("ClientCreated", data)
	require.NoError(t, err)

	created, ok := decoded.(*client.ClientCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), created.EventID())
	assert.Equal(t, original.CompanyID(), created.CompanyID())
	assert.Equal(t, original.Name, created.Name)
}

func TestSerializer_UnregisteredType(t *testing.T) {
	s := NewSerializer()

	_, err := s.Deserialize("ClientCreated", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered event type")
}

func TestRegisterDomainEvents(t *testing.T) {
	s := NewSerializer()
	RegisterDomainEvents(s)

	for _, eventType := range []string{
		"CompanyCreated",
		"ClientCreated", "ClientUpdated", "ClientStatusChanged", "ClientCreditAlert",
		"InvoiceCreated", "InvoiceSent", "InvoicePaid", "InvoicePartiallyPaid",
		"PaymentRefunded", "InvoiceVoided", "InvoiceOverdue",
		"ExpenseCreated", "ExpenseApproved",
	} {
		assert.True(t, s.IsRegistered(eventType), eventType)
	}
}
