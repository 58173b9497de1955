package trade

import (
	"strings"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is known
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// OrderItem is one line of an order. TotalPrice is always derived as
// Quantity * UnitPrice rounded to two places; it is stored so that
// persisted history survives later price edits.
type OrderItem struct {
	shared.BaseEntity
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CatalogItemID *uuid.UUID      `gorm:"type:uuid;index"`
	Description   string          `gorm:"type:varchar(500);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Order is the composite write aggregate: a header plus line items that
// must commit together. Monetary fields keep the invariants
// total == subtotal + tax + shipping and subtotal == sum of line totals;
// the aggregate recalculates them on every item mutation.
type Order struct {
	shared.FarmAggregateRoot
	OrderNumber           string      `gorm:"type:varchar(50);not null;index:idx_order_farm_number"`
	PartyRoleID           uuid.UUID   `gorm:"type:uuid;not null;index"`
	CounterpartyName      string      `gorm:"type:varchar(200);not null"`
	Status                OrderStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	OrderDate             time.Time   `gorm:"not null"`
	RequestedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
	Subtotal              decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Tax                   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	ShippingCost          decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Total                 decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Notes                 string          `gorm:"type:text"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new draft order for a farm
func NewOrder(farmID uuid.UUID, orderNumber string, partyRoleID uuid.UUID, counterpartyName string, orderDate time.Time) (*Order, error) {
	if farmID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FARM", "Farm ID cannot be empty")
	}
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if partyRoleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty role ID cannot be empty")
	}
	if counterpartyName == "" {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty name cannot be empty")
	}
	if orderDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Order date cannot be empty")
	}

	return &Order{
		FarmAggregateRoot: shared.NewFarmAggregateRoot(farmID),
		OrderNumber:       orderNumber,
		PartyRoleID:       partyRoleID,
		CounterpartyName:  counterpartyName,
		Status:            OrderStatusDraft,
		OrderDate:         orderDate,
		Subtotal:          decimal.Zero,
		Tax:               decimal.Zero,
		ShippingCost:      decimal.Zero,
		Total:             decimal.Zero,
		Items:             make([]OrderItem, 0),
	}, nil
}

// AddItem appends a line item and recalculates totals
func (o *Order) AddItem(catalogItemID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to draft orders")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_ITEM", "Quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_ITEM", "Unit price cannot be negative")
	}

	item := OrderItem{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       o.ID,
		CatalogItemID: catalogItemID,
		Description:   description,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		TotalPrice:    quantity.Mul(unitPrice).Round(2),
	}

	o.Items = append(o.Items, item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return nil
}

// RemoveItem removes a line item by ID and recalculates totals
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be removed from draft orders")
	}

	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetCharges sets tax and shipping and recalculates the grand total
func (o *Order) SetCharges(tax, shipping decimal.Decimal) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Charges can only be changed on draft orders")
	}
	if tax.IsNegative() || shipping.IsNegative() {
		return shared.NewDomainError("INVALID_CHARGES", "Tax and shipping cannot be negative")
	}

	o.Tax = tax.Round(2)
	o.ShippingCost = shipping.Round(2)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return nil
}

// SetRequestedDeliveryDate sets the requested delivery date, which may
// not precede the order date
func (o *Order) SetRequestedDeliveryDate(date time.Time) error {
	if date.Before(o.OrderDate) {
		return shared.NewDomainError("INVALID_DATE", "Requested delivery date cannot be before order date")
	}

	o.RequestedDeliveryDate = &date
	o.UpdatedAt = time.Now()

	return nil
}

// Confirm transitions a draft order with at least one item to confirmed
func (o *Order) Confirm() error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be confirmed")
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot confirm an order without items")
	}

	o.Status = OrderStatusConfirmed
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// Fulfill marks a confirmed order delivered
func (o *Order) Fulfill(deliveredAt time.Time) error {
	if o.Status != OrderStatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Only confirmed orders can be fulfilled")
	}
	if deliveredAt.Before(o.OrderDate) {
		return shared.NewDomainError("INVALID_DATE", "Delivery date cannot be before order date")
	}
	if o.RequestedDeliveryDate != nil && deliveredAt.Before(*o.RequestedDeliveryDate) {
		return shared.NewDomainError("INVALID_DATE", "Delivery date cannot be before requested delivery date")
	}

	o.Status = OrderStatusFulfilled
	o.ActualDeliveryDate = &deliveredAt
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// Cancel terminates an order; fulfilled orders cannot be cancelled
func (o *Order) Cancel() error {
	if o.Status == OrderStatusFulfilled {
		return shared.NewDomainError("INVALID_STATE", "Fulfilled orders cannot be cancelled")
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Order is already cancelled")
	}

	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal.Round(2)
	o.Total = o.Subtotal.Add(o.Tax).Add(o.ShippingCost).Round(2)
}
