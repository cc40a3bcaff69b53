package orders

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rgastelum/supplyline-backend/internal/catalog"
	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
)

func TestCreateOrderMergesIntoOpenOrder(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Tomatoes", enums.ProductUnitKg, "2.50", "100")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	first, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-01",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("2")}},
	})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.Merged {
		t.Fatal("first order should not be a merge")
	}

	second, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-01",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("3")}},
	})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if !second.Merged {
		t.Fatal("expected second request to merge into the open order")
	}
	if second.Order.ID != first.Order.ID {
		t.Fatal("merge should land on the same order")
	}
	if len(second.Order.Items) != 2 {
		t.Fatalf("expected 2 items after merge, got %d", len(second.Order.Items))
	}
	// 2 kg + 3 kg at 2.50
	if !second.Order.TotalAmount.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("expected total 12.50, got %s", second.Order.TotalAmount)
	}

	logs, err := svc.ListChangeLogs(context.Background(), first.Order.ID, customerID, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("list change logs failed: %v", err)
	}
	var mergedLogs int
	for _, log := range logs {
		if log.Type == enums.ChangeLogMergedOrderUpdate {
			mergedLogs++
		}
	}
	if mergedLogs != 1 {
		t.Fatalf("expected one merged-order log entry, got %d", mergedLogs)
	}
}

func TestCreateOrderMergeIntoConfirmedFlagsReview(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Onions", enums.ProductUnitKg, "1.00", "50")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	first, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-02",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	repo.orders[first.Order.ID].Status = enums.OrderStatusConfirmed

	second, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-02",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("merge create failed: %v", err)
	}
	if !second.Merged {
		t.Fatal("expected merge into confirmed order")
	}
	if !second.Order.PendingReview {
		t.Fatal("merging into a confirmed order must flag it for review")
	}
}

func TestCreateOrderAdminNeverMerges(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	adminID := uuid.New()
	product := seedProduct("Rice", enums.ProductUnitBag, "18.00", "40")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-03",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("customer create failed: %v", err)
	}

	result, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    adminID,
		ActorRole:  enums.UserRoleAdmin,
		Delivery:   "2026-09-03",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("2")}},
	})
	if err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
	if result.Merged {
		t.Fatal("admin-created orders must never merge")
	}
	if len(repo.orders) != 2 {
		t.Fatalf("expected two distinct orders, got %d", len(repo.orders))
	}
}

func TestCreateOrderRejectsInvalidDeliveryDate(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Carrots", enums.ProductUnitKg, "1.20", "80")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "not-a-date",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err == nil {
		t.Fatal("expected an unparseable delivery date to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatal("rejected create must not persist an order")
	}
}

func TestCreateOrderNormalizesDeliveryDate(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Leeks", enums.ProductUnitKg, "2.00", "40")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	first, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-04T10:00:00Z",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("timestamped create failed: %v", err)
	}
	if first.Order.DeliveryDate != "2026-09-04" {
		t.Fatalf("expected the stored date truncated to 2026-09-04, got %q", first.Order.DeliveryDate)
	}

	// the plain calendar date lands on the same order
	second, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-04",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("2")}},
	})
	if err != nil {
		t.Fatalf("plain-date create failed: %v", err)
	}
	if !second.Merged || second.Order.ID != first.Order.ID {
		t.Fatal("same-day requests must merge regardless of input date format")
	}
}

func TestCreateOrderSetsPendingReview(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Parsley", enums.ProductUnitKg, "0.80", "10")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-14",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !created.Order.PendingReview {
		t.Fatal("a fresh order must surface for review")
	}

	second, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-14",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("merge create failed: %v", err)
	}
	if !second.Merged || !second.Order.PendingReview {
		t.Fatal("a merge-append must surface for review too")
	}
}

func TestMergeWritesOneLogEntryListingItems(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	apples := seedProduct("Apples", enums.ProductUnitKg, "3.00", "50")
	pears := seedProduct("Pears", enums.ProductUnitKg, "3.50", "50")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, apples, pears)

	if _, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-15",
		Items:      []NewOrderItemInput{{ProductID: apples.ID, Quantity: decimal.RequireFromString("1")}},
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-15",
		Items: []NewOrderItemInput{
			{ProductID: apples.ID, Quantity: decimal.RequireFromString("2")},
			{ProductID: pears.ID, Quantity: decimal.RequireFromString("3")},
		},
	}); err != nil {
		t.Fatalf("merge create failed: %v", err)
	}

	var merged []models.OrderChangeLog
	for _, log := range repo.logs {
		if log.Type == enums.ChangeLogMergedOrderUpdate {
			merged = append(merged, log)
		}
	}
	if len(merged) != 1 {
		t.Fatalf("a multi-line merge is one event, expected one log entry, got %d", len(merged))
	}
	var detail struct {
		Items []struct {
			ProductName string `json:"productName"`
		} `json:"items"`
	}
	if err := json.Unmarshal(merged[0].Detail, &detail); err != nil {
		t.Fatalf("unmarshal detail: %v", err)
	}
	if len(detail.Items) != 2 {
		t.Fatalf("expected both appended lines in the detail, got %d", len(detail.Items))
	}
}

func TestListPendingChangesFreshestFirst(t *testing.T) {
	t.Parallel()

	product := seedProduct("Eggs", enums.ProductUnitBox, "6.00", "200")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	older, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: uuid.New(),
		ActorID:    uuid.New(),
		ActorRole:  enums.UserRoleAdmin,
		Delivery:   "2026-09-16",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	newer, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: uuid.New(),
		ActorID:    uuid.New(),
		ActorRole:  enums.UserRoleAdmin,
		Delivery:   "2026-09-16",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	base := time.Now()
	repo.orders[older.Order.ID].LastModifiedAt = base.Add(-time.Hour)
	repo.orders[newer.Order.ID].LastModifiedAt = base

	pending, err := svc.ListPendingChanges(context.Background())
	if err != nil {
		t.Fatalf("list pending changes failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected both flagged orders, got %d", len(pending))
	}
	if pending[0].Order.ID != newer.Order.ID {
		t.Fatal("most recently modified order must come first")
	}
	if pending[0].ChangeCount != 1 || len(pending[0].Logs) != 1 {
		t.Fatalf("expected the creation log annotated, got count %d with %d logs",
			pending[0].ChangeCount, len(pending[0].Logs))
	}

	acked, err := svc.AcknowledgeReview(context.Background(), newer.Order.ID)
	if err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if acked.PendingReview {
		t.Fatal("acknowledgement must clear the flag")
	}
	pending, err = svc.ListPendingChanges(context.Background())
	if err != nil {
		t.Fatalf("list pending changes failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Order.ID != older.Order.ID {
		t.Fatal("acknowledged orders must drop out of the pending listing")
	}
}

func TestUpdateTripWithoutTransition(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Yogurt", enums.ProductUnitBucket, "4.00", "30")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-17",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	trip := "T-12"
	updated, err := svc.UpdateTrip(context.Background(), created.Order.ID, &trip)
	if err != nil {
		t.Fatalf("trip update failed: %v", err)
	}
	if updated.TripNumber == nil || *updated.TripNumber != "T-12" {
		t.Fatalf("expected trip T-12, got %v", updated.TripNumber)
	}
	if updated.Status != enums.OrderStatusCreated {
		t.Fatal("trip updates must not move the order through its lifecycle")
	}

	cleared, err := svc.UpdateTrip(context.Background(), created.Order.ID, nil)
	if err != nil {
		t.Fatalf("trip clear failed: %v", err)
	}
	if cleared.TripNumber != nil {
		t.Fatalf("expected the trip cleared, got %v", cleared.TripNumber)
	}
}

func TestPickingUpdateIgnoresOrderLock(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Bread", enums.ProductUnitBox, "11.00", "25")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-18",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("2")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	repo.orders[created.Order.ID].Status = enums.OrderStatusShipped
	baselineLogs := len(repo.logs)
	baselineTotal := repo.orders[created.Order.ID].TotalAmount

	picked := true
	item, err := svc.UpdateItemPicking(context.Background(), PickingInput{
		ItemID: created.Order.Items[0].ID,
		Picked: &picked,
	})
	if err != nil {
		t.Fatalf("picking update failed: %v", err)
	}
	if !item.Picked || item.Status != enums.OrderItemStatusPicked {
		t.Fatalf("expected the item flagged picked, got %+v", item)
	}
	if len(repo.logs) != baselineLogs {
		t.Fatal("picking updates stay out of the change feed")
	}
	if !repo.orders[created.Order.ID].TotalAmount.Equal(baselineTotal) {
		t.Fatal("picking updates must not touch the order total")
	}

	outOfStock := true
	item, err = svc.UpdateItemPicking(context.Background(), PickingInput{
		ItemID:     created.Order.Items[0].ID,
		OutOfStock: &outOfStock,
	})
	if err != nil {
		t.Fatalf("out-of-stock update failed: %v", err)
	}
	if !item.OutOfStock || item.Status != enums.OrderItemStatusOutOfStock {
		t.Fatalf("expected the item flagged out of stock, got %+v", item)
	}
}

func TestAddItemOnLockedOrderRedirects(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Flour", enums.ProductUnitBag, "22.00", "30")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-04",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	repo.orders[created.Order.ID].Status = enums.OrderStatusCancelled

	result, err := svc.AddItem(context.Background(), AddItemInput{
		OrderID:   created.Order.ID,
		ActorID:   customerID,
		ActorRole: enums.UserRoleCustomer,
		ProductID: product.ID,
		Quantity:  decimal.RequireFromString("2"),
	})
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if result.RedirectedOrderID == nil {
		t.Fatal("expected the line to be redirected into a follow-up order")
	}
	if *result.RedirectedOrderID == created.Order.ID {
		t.Fatal("follow-up order must be distinct from the locked order")
	}
	if result.Order.ID != created.Order.ID {
		t.Fatal("the locked order itself should come back, unchanged")
	}
	if len(result.Order.Items) != 1 || len(repo.itemsFor(created.Order.ID)) != 1 {
		t.Fatal("locked order must not gain items")
	}
	if len(repo.itemsFor(*result.RedirectedOrderID)) != 1 {
		t.Fatal("expected the new line on the follow-up order")
	}
}

func TestUpdateItemOnLockedOrderRejected(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Butter", enums.ProductUnitBox, "45.00", "20")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-05",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	repo.orders[created.Order.ID].Status = enums.OrderStatusShipped

	qty := decimal.RequireFromString("2")
	_, err = svc.UpdateItem(context.Background(), UpdateItemInput{
		ItemID:     created.Order.Items[0].ID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		QtyOrdered: &qty,
	})
	if err == nil {
		t.Fatal("expected locked order to reject item edits")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestAdminItemEditsSkipChangeLog(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	adminID := uuid.New()
	product := seedProduct("Milk", enums.ProductUnitBucket, "8.00", "60")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-06",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("4")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	baseline := len(repo.logs)

	adminQty := decimal.RequireFromString("3")
	if _, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ItemID:     created.Order.Items[0].ID,
		ActorID:    adminID,
		ActorRole:  enums.UserRoleAdmin,
		QtyOrdered: &adminQty,
	}); err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if len(repo.logs) != baseline {
		t.Fatal("routine admin corrections must not appear in the change feed")
	}

	qty := decimal.RequireFromString("5")
	if _, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ItemID:     created.Order.Items[0].ID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		QtyOrdered: &qty,
	}); err != nil {
		t.Fatalf("customer update failed: %v", err)
	}
	if len(repo.logs) != baseline+1 {
		t.Fatal("customer edits must be recorded in the change feed")
	}
}

func TestUpdateItemQtyPickedFollowsOrderedUntilPicked(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Sugar", enums.ProductUnitBag, "30.00", "25")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-07",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("2")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	itemID := created.Order.Items[0].ID

	qty := decimal.RequireFromString("4")
	updated, err := svc.UpdateItem(context.Background(), UpdateItemInput{
		ItemID:     itemID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		QtyOrdered: &qty,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Items[0].QtyPicked.Equal(qty) {
		t.Fatalf("qty picked should follow ordered before picking, got %s", updated.Items[0].QtyPicked)
	}

	// once the line is picked, ordered-qty edits leave the picked qty alone
	repo.items[itemID].Picked = true
	qty2 := decimal.RequireFromString("6")
	updated, err = svc.UpdateItem(context.Background(), UpdateItemInput{
		ItemID:     itemID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		QtyOrdered: &qty2,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Items[0].QtyPicked.Equal(qty) {
		t.Fatalf("qty picked should stay at %s after picking, got %s", qty, updated.Items[0].QtyPicked)
	}
}

func TestTransitionDeductsStockExactlyOnce(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	adminID := uuid.New()
	product := seedProduct("Oil", enums.ProductUnitBucket, "15.00", "10")
	repo := newStubOrderRepo()
	inventory := &stubInventory{}
	svc := newTestServiceWithInventory(t, repo, inventory, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-08",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("3")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	shipped, err := svc.Transition(context.Background(), TransitionInput{
		OrderID:   created.Order.ID,
		ActorID:   adminID,
		ActorRole: enums.UserRoleAdmin,
		Status:    enums.OrderStatusShipped,
	})
	if err != nil {
		t.Fatalf("transition to shipped failed: %v", err)
	}
	if !shipped.StockDeducted {
		t.Fatal("shipped order should be marked stock-deducted")
	}
	if len(inventory.debits) != 1 {
		t.Fatalf("expected one debit, got %d", len(inventory.debits))
	}
	if !inventory.debits[0].Quantity.Equal(decimal.RequireFromString("3")) {
		t.Fatalf("unexpected debit quantity %s", inventory.debits[0].Quantity)
	}

	if _, err := svc.Transition(context.Background(), TransitionInput{
		OrderID:   created.Order.ID,
		ActorID:   adminID,
		ActorRole: enums.UserRoleAdmin,
		Status:    enums.OrderStatusCompleted,
	}); err != nil {
		t.Fatalf("transition to completed failed: %v", err)
	}
	if len(inventory.debits) != 1 {
		t.Fatalf("completed transition must not debit again, got %d debits", len(inventory.debits))
	}
}

func TestTransitionInsufficientStockEnumeratesEveryShortLine(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	adminID := uuid.New()
	short1 := seedProduct("Cheese", enums.ProductUnitKg, "12.00", "1")
	short2 := seedProduct("Ham", enums.ProductUnitKg, "14.00", "0.5")
	repo := newStubOrderRepo()
	inventory := &stubInventory{}
	svc := newTestServiceWithInventory(t, repo, inventory, short1, short2)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-09",
		Items: []NewOrderItemInput{
			{ProductID: short1.ID, Quantity: decimal.RequireFromString("2")},
			{ProductID: short2.ID, Quantity: decimal.RequireFromString("1")},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Transition(context.Background(), TransitionInput{
		OrderID:   created.Order.ID,
		ActorID:   adminID,
		ActorRole: enums.UserRoleAdmin,
		Status:    enums.OrderStatusShipped,
	})
	if err == nil {
		t.Fatal("expected insufficient stock to block the transition")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error code: %v", err)
	}
	insufficient, ok := typed.Details().([]InsufficientItem)
	if !ok {
		t.Fatalf("expected insufficient item details, got %T", typed.Details())
	}
	if len(insufficient) != 2 {
		t.Fatalf("expected both short lines enumerated, got %d", len(insufficient))
	}
	if len(inventory.debits) != 0 {
		t.Fatal("failed deduction must not debit any line")
	}
	if repo.orders[created.Order.ID].Status != enums.OrderStatusCreated {
		t.Fatal("failed transition must leave the order status unchanged")
	}
}

func TestTransitionSkipsOutOfStockLines(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	adminID := uuid.New()
	inStock := seedProduct("Beans", enums.ProductUnitBag, "20.00", "10")
	gone := seedProduct("Lentils", enums.ProductUnitBag, "19.00", "0")
	repo := newStubOrderRepo()
	inventory := &stubInventory{}
	svc := newTestServiceWithInventory(t, repo, inventory, inStock, gone)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-10",
		Items: []NewOrderItemInput{
			{ProductID: inStock.ID, Quantity: decimal.RequireFromString("2")},
			{ProductID: gone.ID, Quantity: decimal.RequireFromString("1")},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, item := range repo.itemsFor(created.Order.ID) {
		if item.ProductID == gone.ID {
			repo.items[item.ID].OutOfStock = true
		}
	}

	if _, err := svc.Transition(context.Background(), TransitionInput{
		OrderID:   created.Order.ID,
		ActorID:   adminID,
		ActorRole: enums.UserRoleAdmin,
		Status:    enums.OrderStatusShipped,
	}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(inventory.debits) != 1 {
		t.Fatalf("expected only the in-stock line debited, got %d debits", len(inventory.debits))
	}
	if inventory.debits[0].ProductID != inStock.ID {
		t.Fatal("debit should target the in-stock product")
	}
}

func TestTransitionSkipsZeroPickedLines(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	adminID := uuid.New()
	picked := seedProduct("Flour", enums.ProductUnitBag, "9.00", "10")
	unpicked := seedProduct("Sugar", enums.ProductUnitBag, "8.00", "10")
	repo := newStubOrderRepo()
	inventory := &stubInventory{}
	svc := newTestServiceWithInventory(t, repo, inventory, picked, unpicked)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-11",
		Items: []NewOrderItemInput{
			{ProductID: picked.ID, Quantity: decimal.RequireFromString("2")},
			{ProductID: unpicked.ID, Quantity: decimal.RequireFromString("5")},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, item := range repo.itemsFor(created.Order.ID) {
		if item.ProductID == unpicked.ID {
			repo.items[item.ID].QtyPicked = decimal.Zero
		}
	}

	if _, err := svc.Transition(context.Background(), TransitionInput{
		OrderID:   created.Order.ID,
		ActorID:   adminID,
		ActorRole: enums.UserRoleAdmin,
		Status:    enums.OrderStatusShipped,
	}); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(inventory.debits) != 1 {
		t.Fatalf("expected one debit for the picked line, got %d", len(inventory.debits))
	}
	if inventory.debits[0].ProductID != picked.ID ||
		!inventory.debits[0].Quantity.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("unexpected debit %+v", inventory.debits[0])
	}
}

func TestTransitionRequiresAdmin(t *testing.T) {
	t.Parallel()

	repo := newStubOrderRepo()
	svc := newTestService(t, repo)

	_, err := svc.Transition(context.Background(), TransitionInput{
		OrderID:   uuid.New(),
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleCustomer,
		Status:    enums.OrderStatusConfirmed,
	})
	if err == nil {
		t.Fatal("expected customer transition to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestAcknowledgeReviewClearsFlag(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	product := seedProduct("Salt", enums.ProductUnitBag, "5.00", "100")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-11",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	repo.orders[created.Order.ID].PendingReview = true

	updated, err := svc.AcknowledgeReview(context.Background(), created.Order.ID)
	if err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if updated.PendingReview {
		t.Fatal("acknowledgement must clear the pending review flag")
	}
	if updated.LastReviewedAt == nil {
		t.Fatal("acknowledgement must stamp the review time")
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	stranger := uuid.New()
	product := seedProduct("Pepper", enums.ProductUnitBag, "9.00", "15")
	repo := newStubOrderRepo()
	svc := newTestService(t, repo, product)

	created, err := svc.Create(context.Background(), CreateOrderInput{
		CustomerID: customerID,
		ActorID:    customerID,
		ActorRole:  enums.UserRoleCustomer,
		Delivery:   "2026-09-12",
		Items:      []NewOrderItemInput{{ProductID: product.ID, Quantity: decimal.RequireFromString("1")}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), created.Order.ID, stranger, enums.UserRoleCustomer); err == nil {
		t.Fatal("expected another customer's order to be hidden")
	}
	if _, err := svc.Get(context.Background(), created.Order.ID, stranger, enums.UserRoleAdmin); err != nil {
		t.Fatalf("admins should see every order: %v", err)
	}
}

// --- test fixtures ---

func seedProduct(name string, unit enums.ProductUnit, price, stock string) *models.Product {
	return &models.Product{
		ID:        uuid.New(),
		Name:      name,
		Unit:      unit,
		Category:  enums.ProductCategoryDry,
		Price:     decimal.RequireFromString(price),
		Stock:     decimal.RequireFromString(stock),
		Available: true,
	}
}

func newTestService(t *testing.T, repo *stubOrderRepo, products ...*models.Product) Service {
	t.Helper()
	return newTestServiceWithInventory(t, repo, &stubInventory{}, products...)
}

func newTestServiceWithInventory(t *testing.T, repo *stubOrderRepo, inventory *stubInventory, products ...*models.Product) Service {
	t.Helper()
	catalogRepo := &stubCatalogRepo{products: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		catalogRepo.products[p.ID] = p
	}
	svc, err := NewService(repo, catalogRepo, inventory, stubTxRunner{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (stubTxRunner) WithWriteTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubInventory struct {
	debits []catalog.StockChange
}

func (s *stubInventory) DebitStock(ctx context.Context, tx *gorm.DB, change catalog.StockChange) error {
	s.debits = append(s.debits, change)
	return nil
}

type stubCatalogRepo struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubCatalogRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubCatalogRepo) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (s *stubCatalogRepo) FindProductForUpdate(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return s.FindProduct(ctx, productID)
}

func (s *stubCatalogRepo) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	for _, product := range s.products {
		if product.Name == name {
			clone := *product
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) ListProducts(ctx context.Context, filters catalog.ProductFilters) ([]models.Product, error) {
	out := make([]models.Product, 0, len(s.products))
	for _, product := range s.products {
		out = append(out, *product)
	}
	return out, nil
}

func (s *stubCatalogRepo) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubCatalogRepo) CreateStockMovement(ctx context.Context, movement *models.StockMovement) error {
	return nil
}

func (s *stubCatalogRepo) ListStockMovements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	return nil, nil
}

type stubOrderRepo struct {
	orders map[uuid.UUID]*models.Order
	items  map[uuid.UUID]*models.OrderItem
	logs   []models.OrderChangeLog
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders: map[uuid.UUID]*models.Order{},
		items:  map[uuid.UUID]*models.OrderItem{},
	}
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	clone := *order
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	s.orders[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (s *stubOrderRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	for _, item := range items {
		clone := item
		if clone.ID == uuid.Nil {
			clone.ID = uuid.New()
		}
		s.items[clone.ID] = &clone
	}
	return nil
}

func (s *stubOrderRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *order
	clone.Items = s.itemsFor(orderID)
	return &clone, nil
}

func (s *stubOrderRepo) FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, orderID)
}

func (s *stubOrderRepo) FindOpenOrder(ctx context.Context, customerID uuid.UUID, deliveryDate string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.CustomerID != customerID || order.DeliveryDate != deliveryDate {
			continue
		}
		if order.Status != enums.OrderStatusCreated && order.Status != enums.OrderStatusConfirmed {
			continue
		}
		return s.FindOrder(ctx, order.ID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) FindOrderItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (s *stubOrderRepo) FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return s.itemsFor(orderID), nil
}

func (s *stubOrderRepo) ListOrders(ctx context.Context, filters OrderFilters) ([]models.Order, error) {
	out := []models.Order{}
	for _, order := range s.orders {
		if filters.CustomerID != nil && order.CustomerID != *filters.CustomerID {
			continue
		}
		if filters.DeliveryDate != nil && order.DeliveryDate != *filters.DeliveryDate {
			continue
		}
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		clone := *order
		clone.Items = s.itemsFor(order.ID)
		out = append(out, clone)
	}
	return out, nil
}

func (s *stubOrderRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			order.Status = value.(enums.OrderStatus)
		case "total_amount":
			order.TotalAmount = value.(decimal.Decimal)
		case "pending_review":
			order.PendingReview = value.(bool)
		case "stock_deducted":
			order.StockDeducted = value.(bool)
		case "trip_number":
			switch trip := value.(type) {
			case string:
				order.TripNumber = &trip
			case *string:
				order.TripNumber = trip
			}
		case "last_modified_at":
			order.LastModifiedAt = value.(time.Time)
		case "last_reviewed_at":
			reviewed := value.(time.Time)
			order.LastReviewedAt = &reviewed
		}
	}
	return nil
}

func (s *stubOrderRepo) UpdateOrderItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	item, ok := s.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "qty_ordered":
			item.QtyOrdered = value.(decimal.Decimal)
		case "qty_picked":
			item.QtyPicked = value.(decimal.Decimal)
		case "picked":
			item.Picked = value.(bool)
		case "out_of_stock":
			item.OutOfStock = value.(bool)
		case "status":
			item.Status = value.(enums.OrderItemStatus)
		}
	}
	return nil
}

func (s *stubOrderRepo) DeleteOrderItem(ctx context.Context, itemID uuid.UUID) error {
	delete(s.items, itemID)
	return nil
}

func (s *stubOrderRepo) CreateChangeLog(ctx context.Context, log *models.OrderChangeLog) error {
	clone := *log
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	s.logs = append(s.logs, clone)
	return nil
}

func (s *stubOrderRepo) ListChangeLogs(ctx context.Context, orderID uuid.UUID) ([]models.OrderChangeLog, error) {
	out := []models.OrderChangeLog{}
	for _, log := range s.logs {
		if log.OrderID == orderID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) ListPendingReview(ctx context.Context) ([]models.Order, error) {
	out := []models.Order{}
	for _, order := range s.orders {
		if !order.PendingReview {
			continue
		}
		clone := *order
		clone.Items = s.itemsFor(order.ID)
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastModifiedAt.After(out[j].LastModifiedAt)
	})
	return out, nil
}

func (s *stubOrderRepo) itemsFor(orderID uuid.UUID) []models.OrderItem {
	out := []models.OrderItem{}
	for _, item := range s.items {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out
}
