package domain

import "github.com/shopspring/decimal"

// Quote 是订单的报价结果。
type Quote struct {
	Subtotal     decimal.Decimal
	ShippingCost decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
}

// QuoteOrder 计算订单总价：
//
//	total = Σ(price × quantity) + shipping − (callerDiscount + Σ shop platform discounts)
//
// shops 只应包含订单实际涉及的店铺。
func QuoteOrder(items []OrderItem, shipping, callerDiscount decimal.Decimal, shops []*Shop) (Quote, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	shipping = RoundMoney(shipping)
	discount := RoundMoney(callerDiscount)
	for _, s := range shops {
		discount = discount.Add(RoundMoney(s.PlatformDiscountTotal()))
	}

	total := subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		return Quote{}, Invalidf("Discount %s exceeds order amount %s", discount.String(), subtotal.Add(shipping).String())
	}
	return Quote{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Discount:     discount,
		Total:        total,
	}, nil
}
