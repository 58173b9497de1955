package trade

import (
	"time"

	"github.com/farmops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemInput is one candidate line of a composite order write. The
// client submits its own computed line total; the validator checks it
// against quantity * unit_price before anything is persisted.
type OrderItemInput struct {
	CatalogItemID *uuid.UUID      `json:"catalog_item_id"`
	Description   string          `json:"description" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price" binding:"required"`
	TotalPrice    decimal.Decimal `json:"total_price" binding:"required"`
}

// CreateOrderInput is the composite order write: header, claimed totals,
// and all line items in one request
type CreateOrderInput struct {
	OrderNumber           string           `json:"order_number"`
	PartyRoleID           uuid.UUID        `json:"party_role_id" binding:"required"`
	OrderDate             time.Time        `json:"order_date" binding:"required"`
	RequestedDeliveryDate *time.Time       `json:"requested_delivery_date"`
	Subtotal              decimal.Decimal  `json:"subtotal"`
	Tax                   decimal.Decimal  `json:"tax"`
	ShippingCost          decimal.Decimal  `json:"shipping_cost"`
	Total                 decimal.Decimal  `json:"total"`
	Notes                 string           `json:"notes"`
	Items                 []OrderItemInput `json:"items" binding:"required"`
	IdempotencyKey        string           `json:"-"`
}

// OrderItemView is the read view of one persisted line item
type OrderItemView struct {
	ID            uuid.UUID       `json:"id"`
	CatalogItemID *uuid.UUID      `json:"catalog_item_id,omitempty"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// OrderView is the read view of an order
type OrderView struct {
	ID                    uuid.UUID         `json:"id"`
	OrderNumber           string            `json:"order_number"`
	PartyRoleID           uuid.UUID         `json:"party_role_id"`
	CounterpartyName      string            `json:"counterparty_name"`
	Status                trade.OrderStatus `json:"status"`
	OrderDate             time.Time         `json:"order_date"`
	RequestedDeliveryDate *time.Time        `json:"requested_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time        `json:"actual_delivery_date,omitempty"`
	Subtotal              decimal.Decimal   `json:"subtotal"`
	Tax                   decimal.Decimal   `json:"tax"`
	ShippingCost          decimal.Decimal   `json:"shipping_cost"`
	Total                 decimal.Decimal   `json:"total"`
	Notes                 string            `json:"notes,omitempty"`
	Items                 []OrderItemView   `json:"items"`
	CreatedAt             time.Time         `json:"created_at"`
}

// CreateCatalogItemInput contains catalog item creation data
type CreateCatalogItemInput struct {
	Code      string          `json:"code" binding:"required"`
	Name      string          `json:"name" binding:"required"`
	Unit      string          `json:"unit"`
	ListPrice decimal.Decimal `json:"list_price"`
	Currency  string          `json:"currency"`
}

// CatalogItemView is the read view of a catalog item
type CatalogItemView struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	ListPrice decimal.Decimal `json:"list_price"`
	Currency  string          `json:"currency"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

func toOrderView(o *trade.Order) OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemView{
			ID:            item.ID,
			CatalogItemID: item.CatalogItemID,
			Description:   item.Description,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
		})
	}

	return OrderView{
		ID:                    o.ID,
		OrderNumber:           o.OrderNumber,
		PartyRoleID:           o.PartyRoleID,
		CounterpartyName:      o.CounterpartyName,
		Status:                o.Status,
		OrderDate:             o.OrderDate,
		RequestedDeliveryDate: o.RequestedDeliveryDate,
		ActualDeliveryDate:    o.ActualDeliveryDate,
		Subtotal:              o.Subtotal,
		Tax:                   o.Tax,
		ShippingCost:          o.ShippingCost,
		Total:                 o.Total,
		Notes:                 o.Notes,
		Items:                 items,
		CreatedAt:             o.CreatedAt,
	}
}

func toCatalogItemView(c *trade.CatalogItem) CatalogItemView {
	return CatalogItemView{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Unit:      c.Unit,
		ListPrice: c.ListPrice.Amount(),
		Currency:  string(c.ListPrice.Currency()),
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
	}
}
