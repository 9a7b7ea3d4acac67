package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateAllocation checks that class percentages are within [0, 100] and total exactly 100.
func ValidateAllocation(name string, classes Allocation) error {
	for id, p := range classes {
		if p.IsNegative() || p.GreaterThan(hundred) {
			return Errorf("%s: allocation of class %d must be between 0 and 100, got %s", name, id, p)
		}
	}
	if total := classes.Total(); !total.Equal(hundred) {
		return Errorf("%s: asset class allocations must sum to 100%%, got %s%%", name, total)
	}
	return nil
}

// ValidateAsset checks the invariants of an asset before it enters a store.
func ValidateAsset(a Asset) error {
	if strings.TrimSpace(a.Name) == "" {
		return Errorf("asset name must not be empty")
	}
	if !ValidCurrency(a.Currency) {
		return Errorf("asset %s: unknown currency %q", a.Name, a.Currency)
	}
	if a.ShareBased && strings.TrimSpace(a.Ticker) == "" {
		return Errorf("asset %s: share-based assets need a ticker", a.Name)
	}
	if a.PortfolioAlloc.IsNegative() || a.PortfolioAlloc.GreaterThan(hundred) {
		return Errorf("asset %s: portfolio allocation must be between 0 and 100, got %s", a.Name, a.PortfolioAlloc)
	}
	return ValidateAllocation(a.Name, a.Classes)
}

// ValidateLiability checks the invariants of a liability before it enters a store.
func ValidateLiability(l Liability) error {
	if strings.TrimSpace(l.Name) == "" {
		return Errorf("liability name must not be empty")
	}
	if !ValidCurrency(l.Currency) {
		return Errorf("liability %s: unknown currency %q", l.Name, l.Currency)
	}
	return ValidateAllocation(l.Name, l.Classes)
}

// ValidatePortfolioTargets checks that the target allocations of portfolio assets do not exceed 100%.
func ValidatePortfolioTargets(assets []Asset) error {
	total := decimal.Zero
	for _, a := range assets {
		if a.Portfolio {
			total = total.Add(a.PortfolioAlloc)
		}
	}
	if total.GreaterThan(hundred) {
		return Errorf("portfolio allocations sum to %s%%, more than 100%%", total)
	}
	return nil
}
