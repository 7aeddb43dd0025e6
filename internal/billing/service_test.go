package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabhwebdev/clinicflowpronextmongo-sub000/internal/platform/httpx"
)

type mockRepo struct {
	invoices map[int64]Invoice
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{invoices: make(map[int64]Invoice), nextID: 1}
}

func (m *mockRepo) List(ctx context.Context, filter Filter) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, httpx.ErrNotFound
	}
	return inv, nil
}

func (m *mockRepo) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	inv.ID = m.nextID
	m.nextID++
	m.invoices[inv.ID] = inv
	return inv, nil
}

var _ RepositoryPort = (*mockRepo)(nil)

func TestCreateComputesTotal(t *testing.T) {
	svc := NewService(newMockRepo(), nil)

	inv, err := svc.Create(context.Background(), Invoice{
		PatientID: 1,
		Currency:  "usd",
		Items: []LineItem{
			{Description: "Consultation", Quantity: 1, UnitCents: 15000},
			{Description: "Blood panel", Quantity: 2, UnitCents: 4500},
		},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(24000), inv.TotalCents)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, StatusPending, inv.Status)
	assert.NotEmpty(t, inv.Display)
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	_, err := svc.Create(context.Background(), Invoice{PatientID: 1}, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsUnknownCurrency(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	_, err := svc.Create(context.Background(), Invoice{
		PatientID: 1,
		Currency:  "ZZZ",
		Items:     []LineItem{{Description: "x", Quantity: 1, UnitCents: 100}},
	}, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsInvalidQuantity(t *testing.T) {
	svc := NewService(newMockRepo(), nil)
	_, err := svc.Create(context.Background(), Invoice{
		PatientID: 1,
		Items:     []LineItem{{Description: "x", Quantity: 0, UnitCents: 100}},
	}, "")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestFormatAmountFallsBackToUSD(t *testing.T) {
	out := FormatAmount("not-a-code", 500)
	assert.NotEmpty(t, out)
}
