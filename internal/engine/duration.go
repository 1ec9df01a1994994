package engine

// DiscountTable maps a subscription length in months to a whole percentage off
// the naive monthly*months price. Month counts not in the table get no discount.
type DiscountTable map[int]int

// DefaultDiscounts is the cable subscription discount ladder.
var DefaultDiscounts = DiscountTable{
	1:  0,
	3:  5,
	6:  10,
	12: 15,
}

// Percent returns the discount percentage for months.
func (t DiscountTable) Percent(months int) int {
	return t[months]
}

// Price returns the discounted total, floored to whole Naira.
func (t DiscountTable) Price(monthly, months int) int {
	naive := monthly * months
	return naive * (100 - t.Percent(months)) / 100
}

// Savings returns how much the discount takes off the naive total.
func (t DiscountTable) Savings(monthly, months int) int {
	return monthly*months - t.Price(monthly, months)
}

// SavingsPercent returns the savings as a rounded share of the naive total.
func (t DiscountTable) SavingsPercent(monthly, months int) int {
	naive := monthly * months
	if naive <= 0 {
		return 0
	}
	return (t.Savings(monthly, months)*200 + naive) / (2 * naive)
}

// PriceForDuration prices months of a monthly amount with DefaultDiscounts.
func PriceForDuration(monthly, months int) int {
	return DefaultDiscounts.Price(monthly, months)
}

// Savings is DefaultDiscounts.Savings.
func Savings(monthly, months int) int {
	return DefaultDiscounts.Savings(monthly, months)
}
