package checkout

import "storefront/domain/shared"

// Pricing is the policy the summary derivation runs under. It is injected at
// initialization so the derivation itself stays a pure function.
type Pricing struct {
	// FreeShippingThreshold is the subtotal at or above which shipping is
	// free.
	FreeShippingThreshold shared.Money

	// ShippingFee is the flat fee charged below the threshold.
	ShippingFee shared.Money

	// TaxRatePercent is the tax rate applied to the subtotal, in whole
	// percent.
	TaxRatePercent int64
}

// Summary is the order summary derived from the cart contents. It is never
// mutated independently: always recomputed as a pure function of the items.
type Summary struct {
	Subtotal shared.Money
	Shipping shared.Money
	Tax      shared.Money
	Total    shared.Money
}

// RecomputeSummary derives the summary from the items under the given
// pricing policy. The subtotal is computed first; shipping, tax and total are
// each derived from it in independent single-pass arithmetic so rounding
// never compounds across steps.
func RecomputeSummary(items []Item, pricing Pricing) (Summary, error) {
	currency := pricing.ShippingFee.Currency()
	if len(items) > 0 {
		currency = items[0].UnitPrice().Currency()
	}

	subtotal := shared.NewMoney(0, currency)
	for _, item := range items {
		var err error
		subtotal, err = subtotal.Add(item.LineTotal())
		if err != nil {
			return Summary{}, err
		}
	}

	shipping := *shared.NewMoney(0, currency)
	if !subtotal.IsGreaterThanOrEqual(pricing.FreeShippingThreshold) {
		shipping = pricing.ShippingFee
	}

	tax, err := subtotal.Percent(pricing.TaxRatePercent)
	if err != nil {
		return Summary{}, err
	}

	total, err := subtotal.Add(shipping)
	if err != nil {
		return Summary{}, err
	}
	total, err = total.Add(*tax)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Subtotal: *subtotal,
		Shipping: shipping,
		Tax:      *tax,
		Total:    *total,
	}, nil
}
