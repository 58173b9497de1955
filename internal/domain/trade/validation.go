package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tolerance is the rounding slack allowed on monetary equality checks,
// one cent per comparison. Line-total drift may additionally accumulate
// up to Tolerance * lineCount across the whole order.
var Tolerance = decimal.NewFromFloat(0.01)

// Violation describes one failed integrity rule with enough structure
// for the caller to render a corrective message.
type Violation struct {
	Field    string `json:"field"`
	Rule     string `json:"rule"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (expected %s, got %s)", v.Field, v.Rule, v.Expected, v.Actual)
}

// ValidationResult is the outcome of ValidateOrder. Every rule is
// evaluated; the violation list is never truncated to the first failure.
type ValidationResult struct {
	Violations []Violation
}

// Valid returns true when no rule was violated
func (r ValidationResult) Valid() bool {
	return len(r.Violations) == 0
}

func (r *ValidationResult) add(field, rule, expected, actual string) {
	r.Violations = append(r.Violations, Violation{Field: field, Rule: rule, Expected: expected, Actual: actual})
}

// ValidationError carries the full violation list across the error
// boundary so handlers can return it intact.
type ValidationError struct {
	Violations []Violation
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "order validation failed: " + strings.Join(msgs, "; ")
}

// NewValidationError wraps a failed result into an error
func NewValidationError(result ValidationResult) *ValidationError {
	return &ValidationError{Violations: result.Violations}
}

// OrderItemPayload is one candidate line item of a composite write
type OrderItemPayload struct {
	CatalogItemID *uuid.UUID
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
}

// OrderPayload is the candidate composite write: header plus all lines
type OrderPayload struct {
	FarmID                uuid.UUID
	PartyRoleID           uuid.UUID
	OrderDate             time.Time
	RequestedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
	Subtotal              decimal.Decimal
	Tax                   decimal.Decimal
	ShippingCost          decimal.Decimal
	Total                 decimal.Decimal
	Items                 []OrderItemPayload
}

// CounterpartyRef is the caller-resolved counterparty row used for the
// referential checks.
type CounterpartyRef struct {
	ID     uuid.UUID
	FarmID uuid.UUID
}

// ReferenceSet carries the already-loaded rows the referential rules
// check against. The caller resolves them with tenant-scoped queries;
// the validator itself never touches storage.
type ReferenceSet struct {
	Counterparty *CounterpartyRef
	CatalogItems map[uuid.UUID]*CatalogItem
}

// ValidateOrder checks every numeric and referential invariant on a
// composite order payload and collects all violations. It is pure: no
// I/O, no mutation of its inputs.
//
// Payload-supplied IDs are not trusted even though the request was
// already tenant-authorized; a reference resolving to another farm's row
// is reported the same way as a missing one, so the response never
// reveals cross-farm existence.
func ValidateOrder(payload OrderPayload, refs ReferenceSet) ValidationResult {
	var result ValidationResult

	lineSum := decimal.Zero
	accumulatedDrift := decimal.Zero

	for i, item := range payload.Items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		if item.Quantity.IsNegative() {
			result.add(field("quantity"), "non_negative", ">= 0", item.Quantity.String())
		}
		if item.UnitPrice.IsNegative() {
			result.add(field("unit_price"), "non_negative", ">= 0", item.UnitPrice.String())
		}

		expected := item.Quantity.Mul(item.UnitPrice)
		drift := item.TotalPrice.Sub(expected).Abs()
		if drift.GreaterThan(Tolerance) {
			result.add(field("total_price"), "line_total", expected.Round(2).String(), item.TotalPrice.String())
		} else {
			// Only in-tolerance lines count toward the drift budget; a
			// line already reported as line_total is not reported twice.
			accumulatedDrift = accumulatedDrift.Add(drift)
		}

		lineSum = lineSum.Add(item.TotalPrice)

		if item.CatalogItemID != nil {
			ref, ok := refs.CatalogItems[*item.CatalogItemID]
			if !ok || ref.FarmID != payload.FarmID {
				result.add(field("catalog_item_id"), "tenant_reference", "catalog item owned by order's farm", item.CatalogItemID.String())
			}
		}
	}

	if n := len(payload.Items); n > 0 {
		budget := Tolerance.Mul(decimal.NewFromInt(int64(n)))
		if accumulatedDrift.GreaterThan(budget) {
			result.add("items", "accumulated_line_total", "total drift <= "+budget.String(), accumulatedDrift.String())
		}
	}

	if payload.Subtotal.Sub(lineSum).Abs().GreaterThan(Tolerance) {
		result.add("subtotal", "sum_of_lines", lineSum.Round(2).String(), payload.Subtotal.String())
	}

	expectedTotal := payload.Subtotal.Add(payload.Tax).Add(payload.ShippingCost)
	if payload.Total.Sub(expectedTotal).Abs().GreaterThan(Tolerance) {
		result.add("total", "subtotal_plus_charges", expectedTotal.Round(2).String(), payload.Total.String())
	}

	if payload.Tax.IsNegative() {
		result.add("tax", "non_negative", ">= 0", payload.Tax.String())
	}
	if payload.ShippingCost.IsNegative() {
		result.add("shipping_cost", "non_negative", ">= 0", payload.ShippingCost.String())
	}

	if payload.RequestedDeliveryDate != nil && payload.RequestedDeliveryDate.Before(payload.OrderDate) {
		result.add("requested_delivery_date", "not_before_order_date",
			">= "+payload.OrderDate.Format("2006-01-02"), payload.RequestedDeliveryDate.Format("2006-01-02"))
	}
	if payload.ActualDeliveryDate != nil && payload.RequestedDeliveryDate != nil &&
		payload.ActualDeliveryDate.Before(*payload.RequestedDeliveryDate) {
		result.add("actual_delivery_date", "not_before_requested_delivery_date",
			">= "+payload.RequestedDeliveryDate.Format("2006-01-02"), payload.ActualDeliveryDate.Format("2006-01-02"))
	}

	if refs.Counterparty == nil || refs.Counterparty.ID != payload.PartyRoleID || refs.Counterparty.FarmID != payload.FarmID {
		result.add("party_role_id", "tenant_reference", "counterparty role owned by order's farm", payload.PartyRoleID.String())
	}

	return result
}
