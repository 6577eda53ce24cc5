// Package pricing combines configured unit prices with a tariff
// classification.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/sitariff/sitariff/pkg/types"
)

const (
	// UnitPricePlaces is the number of decimals unit prices are shown with.
	UnitPricePlaces = 6
	// CostPlaces is the number of decimals costs are shown with.
	CostPlaces = 2
)

// Breakdown is the per-kWh price in effect for one classification, split into
// its components. All values are EUR/kWh.
type Breakdown struct {
	EnergyTariff  types.EnergyTariff `json:"energyTariff"`
	NetworkBlock  types.NetworkBlock `json:"networkBlock"`
	Energy        decimal.Decimal    `json:"energy"`
	Network       decimal.Decimal    `json:"network"`
	Contributions decimal.Decimal    `json:"contributions"`
	Excise        decimal.Decimal    `json:"excise"`
	Total         decimal.Decimal    `json:"total"`
}

// Rounded returns a copy with every component rounded for display.
func (b Breakdown) Rounded() Breakdown {
	b.Energy = b.Energy.Round(UnitPricePlaces)
	b.Network = b.Network.Round(UnitPricePlaces)
	b.Contributions = b.Contributions.Round(UnitPricePlaces)
	b.Excise = b.Excise.Round(UnitPricePlaces)
	b.Total = b.Total.Round(UnitPricePlaces)
	return b
}

// NewBreakdown looks up every component that applies to cl. Any missing
// component fails the whole breakdown.
func NewBreakdown(cl types.Classification, prices types.PriceConfiguration) (Breakdown, error) {
	energy, err := prices.Energy(cl.EnergyTariff)
	if err != nil {
		return Breakdown{}, err
	}
	network, err := prices.Network(cl.NetworkBlock)
	if err != nil {
		return Breakdown{}, err
	}
	contributions, err := prices.Get(types.PriceComponentContributions)
	if err != nil {
		return Breakdown{}, err
	}
	excise, err := prices.Get(types.PriceComponentExcise)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		EnergyTariff:  cl.EnergyTariff,
		NetworkBlock:  cl.NetworkBlock,
		Energy:        energy,
		Network:       network,
		Contributions: contributions,
		Excise:        excise,
		Total:         decimal.Sum(energy, network, contributions, excise),
	}, nil
}

// TotalUnitPrice returns the EUR/kWh price in effect for cl.
func TotalUnitPrice(cl types.Classification, prices types.PriceConfiguration) (decimal.Decimal, error) {
	b, err := NewBreakdown(cl, prices)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return b.Total, nil
}

// Cost returns the EUR cost of consuming kwh at the price in effect for cl.
func Cost(cl types.Classification, prices types.PriceConfiguration, kwh decimal.Decimal) (decimal.Decimal, error) {
	e, err := NewEstimate(cl, prices, kwh)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return e.Cost, nil
}

// CheckConsumption rejects consumption that is negative or outside the
// decimal bounds.
func CheckConsumption(kwh decimal.Decimal) error {
	if !types.DecimalInBounds(kwh) || kwh.IsNegative() {
		return types.NewError(types.ErrorKindInvalidConsumption, "consumptionKWH", types.DecimalLabel(kwh))
	}
	return nil
}

// Estimate is the result of a cost calculation.
type Estimate struct {
	Classification types.Classification `json:"classification"`
	Breakdown      Breakdown            `json:"breakdown"`
	ConsumptionKWH decimal.Decimal      `json:"consumptionKWH"`
	UnitPrice      decimal.Decimal      `json:"unitPrice"`
	Cost           decimal.Decimal      `json:"cost"`
}

// NewEstimate computes the cost of kwh at cl with the breakdown it was derived
// from. The returned values are exact; use Rounded for display.
func NewEstimate(cl types.Classification, prices types.PriceConfiguration, kwh decimal.Decimal) (Estimate, error) {
	if err := CheckConsumption(kwh); err != nil {
		return Estimate{}, err
	}
	b, err := NewBreakdown(cl, prices)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		Classification: cl,
		Breakdown:      b,
		ConsumptionKWH: kwh,
		UnitPrice:      b.Total,
		Cost:           b.Total.Mul(kwh),
	}, nil
}

// Rounded returns a copy rounded for display.
func (e Estimate) Rounded() Estimate {
	e.Breakdown = e.Breakdown.Rounded()
	e.UnitPrice = e.UnitPrice.Round(UnitPricePlaces)
	e.Cost = e.Cost.Round(CostPlaces)
	return e
}
