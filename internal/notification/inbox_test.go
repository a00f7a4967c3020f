package notification

import (
	"fmt"
	"testing"

	"github.com/makahco2025-svg/test3/internal/cart"
	"github.com/makahco2025-svg/test3/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ cart.Notifier = (*Inbox)(nil)

func TestInbox_DrainOldestFirst(t *testing.T) {
	inbox := NewInbox(5)
	inbox.Notify("first", "a")
	inbox.Notify("second", "b")

	got := inbox.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, "a", got[0].Description)
	assert.Equal(t, "second", got[1].Title)
	assert.False(t, got[0].CreatedAt.IsZero())

	assert.Empty(t, inbox.Drain())
	assert.Equal(t, 0, inbox.Len())
}

func TestInbox_DropsOldestWhenFull(t *testing.T) {
	inbox := NewInbox(3)
	for i := 1; i <= 5; i++ {
		inbox.Notify(fmt.Sprintf("n%d", i), "")
	}

	got := inbox.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, "n3", got[0].Title)
	assert.Equal(t, "n5", got[2].Title)
}

func TestInbox_DefaultCapacity(t *testing.T) {
	inbox := NewInbox(0)
	for i := 0; i < DefaultCapacity+1; i++ {
		inbox.Notify("n", "")
	}
	assert.Equal(t, DefaultCapacity, inbox.Len())
}

func TestInbox_DrainIsDetached(t *testing.T) {
	inbox := NewInbox(2)
	inbox.Notify("one", "")
	got := inbox.Drain()
	inbox.Notify("two", "")

	assert.Equal(t, "one", got[0].Title)
}

func TestInbox_ReceivesCartNotifications(t *testing.T) {
	inbox := NewInbox(5)
	store := cart.NewStore(inbox)
	store.AddToCart(testProduct())

	got := inbox.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "تمت الإضافة إلى السلة", got[0].Title)
	assert.Equal(t, `تمت إضافة "Argan Oil" إلى سلة التسوق.`, got[0].Description)
}

func testProduct() domain.Product {
	return domain.Product{ID: 1, Name: "Argan Oil", Price: decimal.NewFromInt(100)}
}
