package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agrilinkhq/agrilink-backend/pkg/db/models"
	"github.com/agrilinkhq/agrilink-backend/pkg/enums"
	"github.com/agrilinkhq/agrilink-backend/pkg/types"
)

// Line pairs a live listing with the quantity being purchased. Both checkout
// and direct order creation reduce their inputs to lines before building
// ledger entries.
type Line struct {
	Product  *models.Product
	Quantity int
}

// OrderHeader carries the per-order fields shared by every partition.
type OrderHeader struct {
	ConsumerID      uuid.UUID
	PaymentMethod   enums.PaymentMethod
	ShippingDetails types.ShippingDetails
	Notes           *string
}

// BuildFarmerOrders partitions lines by owning farmer and freezes one order
// per farmer. Partitions come out in first-occurrence order of the input.
// Totals and item snapshots are computed here, not by the database.
func BuildFarmerOrders(header OrderHeader, lines []Line) []models.Order {
	farmerOrder := make([]uuid.UUID, 0)
	grouped := make(map[uuid.UUID][]Line)
	for _, line := range lines {
		farmerID := line.Product.FarmerID
		if _, seen := grouped[farmerID]; !seen {
			farmerOrder = append(farmerOrder, farmerID)
		}
		grouped[farmerID] = append(grouped[farmerID], line)
	}

	out := make([]models.Order, 0, len(farmerOrder))
	for _, farmerID := range farmerOrder {
		group := grouped[farmerID]
		items := make([]models.OrderItem, len(group))
		total := decimal.Zero
		for i, line := range group {
			items[i] = models.OrderItem{
				ProductID:   line.Product.ID,
				ProductName: line.Product.Name,
				UnitPrice:   line.Product.Price,
				Quantity:    line.Quantity,
			}
			total = total.Add(line.Product.Price.Mul(decimalFromInt(line.Quantity)))
		}
		out = append(out, models.Order{
			ConsumerID:      header.ConsumerID,
			FarmerID:        farmerID,
			Items:           items,
			TotalAmount:     total,
			Status:          enums.OrderStatusPending,
			PaymentMethod:   header.PaymentMethod,
			ShippingDetails: header.ShippingDetails,
			Notes:           header.Notes,
		})
	}
	return out
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}
