package usecase

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/infrastructure/repo"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newCartFixture(t *testing.T) (*CartService, *repo.MemoryStore) {
	t.Helper()
	store := repo.NewMemoryStore()
	require.NoError(t, store.SaveProduct(&domain.Product{ID: "p1", Name: "Masala Chai", Price: 120, Stock: 10, Active: true}))
	require.NoError(t, store.SaveProduct(&domain.Product{ID: "p2", Name: "Jhal Muri", Price: 80.50, Stock: 5, Active: true}))
	require.NoError(t, store.SaveProduct(&domain.Product{ID: "p3", Name: "Retired Snack", Price: 99, Active: false}))
	return &CartService{Carts: store, Products: store, Log: testLogger()}, store
}

func TestAddItemCreatesLineAtLivePrice(t *testing.T) {
	svc, _ := newCartFixture(t)

	cart, err := svc.AddItem("u1", "p1", 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Masala Chai", cart.Items[0].ProductName)
	assert.Equal(t, 120.0, cart.Items[0].Price)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 240.0, cart.TotalPrice)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.AddItem("u1", "p1", 2)
	require.NoError(t, err)
	cart, err := svc.AddItem("u1", "p1", 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, 600.0, cart.TotalPrice)
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.AddItem("u1", "p1", 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestAddItemRejectsUnknownOrInactiveProduct(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.AddItem("u1", "missing", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.AddItem("u1", "p3", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdateQuantitySetsLine(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.AddItem("u1", "p2", 1)
	require.NoError(t, err)
	cart, err := svc.UpdateQuantity("u1", "p2", 4)
	require.NoError(t, err)

	assert.Equal(t, 4, cart.Items[0].Quantity)
	assert.Equal(t, 322.0, cart.TotalPrice)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.AddItem("u1", "p1", 2)
	require.NoError(t, err)
	cart, err := svc.UpdateQuantity("u1", "p1", 0)
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalPrice)
}

func TestRemoveItemMissingLine(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.RemoveItem("u1", "p1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetCartLazilyCreatesEmptyCart(t *testing.T) {
	svc, store := newCartFixture(t)

	cart := svc.GetCart("new-user")
	assert.NotEmpty(t, cart.ID)
	assert.Empty(t, cart.Items)

	stored, ok := store.CartByUser("new-user")
	require.True(t, ok)
	assert.Equal(t, cart.ID, stored.ID)
}

func TestTotalAlwaysMatchesLines(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.AddItem("u1", "p1", 2)
	require.NoError(t, err)
	_, err = svc.AddItem("u1", "p2", 3)
	require.NoError(t, err)
	cart, err := svc.RemoveItem("u1", "p1")
	require.NoError(t, err)

	var sum float64
	for _, it := range cart.Items {
		sum += it.Price * float64(it.Quantity)
	}
	assert.Equal(t, sum, cart.TotalPrice)
}
