package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceComponent names one of the nine configured unit prices.
type PriceComponent string

const (
	PriceComponentVT            PriceComponent = "vt"
	PriceComponentMT            PriceComponent = "mt"
	PriceComponentBlock1        PriceComponent = "block1"
	PriceComponentBlock2        PriceComponent = "block2"
	PriceComponentBlock3        PriceComponent = "block3"
	PriceComponentBlock4        PriceComponent = "block4"
	PriceComponentBlock5        PriceComponent = "block5"
	PriceComponentContributions PriceComponent = "contributions"
	PriceComponentExcise        PriceComponent = "excise"
)

// PriceComponents lists every component in display order.
var PriceComponents = []PriceComponent{
	PriceComponentVT,
	PriceComponentMT,
	PriceComponentBlock1,
	PriceComponentBlock2,
	PriceComponentBlock3,
	PriceComponentBlock4,
	PriceComponentBlock5,
	PriceComponentContributions,
	PriceComponentExcise,
}

// legacyPriceKeys maps the field names used by earlier integrations.
var legacyPriceKeys = map[PriceComponent]string{
	PriceComponentVT:            "energy_vt_price",
	PriceComponentMT:            "energy_mt_price",
	PriceComponentBlock1:        "block_1_price",
	PriceComponentBlock2:        "block_2_price",
	PriceComponentBlock3:        "block_3_price",
	PriceComponentBlock4:        "block_4_price",
	PriceComponentBlock5:        "block_5_price",
	PriceComponentContributions: "contributions_price",
	PriceComponentExcise:        "excise_tax",
}

// BlockComponent returns the price component for a network block.
func BlockComponent(b NetworkBlock) (PriceComponent, bool) {
	if !b.Valid() {
		return "", false
	}
	return PriceComponent(fmt.Sprintf("block%d", int(b))), true
}

// PriceConfiguration holds the operator-entered unit prices in EUR/kWh. A
// component that was never set is not Valid; nothing substitutes a default for
// it.
type PriceConfiguration struct {
	VT            decimal.NullDecimal `json:"vt"`
	MT            decimal.NullDecimal `json:"mt"`
	Block1        decimal.NullDecimal `json:"block1"`
	Block2        decimal.NullDecimal `json:"block2"`
	Block3        decimal.NullDecimal `json:"block3"`
	Block4        decimal.NullDecimal `json:"block4"`
	Block5        decimal.NullDecimal `json:"block5"`
	Contributions decimal.NullDecimal `json:"contributions"`
	Excise        decimal.NullDecimal `json:"excise"`
}

func (p *PriceConfiguration) field(c PriceComponent) *decimal.NullDecimal {
	switch c {
	case PriceComponentVT:
		return &p.VT
	case PriceComponentMT:
		return &p.MT
	case PriceComponentBlock1:
		return &p.Block1
	case PriceComponentBlock2:
		return &p.Block2
	case PriceComponentBlock3:
		return &p.Block3
	case PriceComponentBlock4:
		return &p.Block4
	case PriceComponentBlock5:
		return &p.Block5
	case PriceComponentContributions:
		return &p.Contributions
	case PriceComponentExcise:
		return &p.Excise
	}
	return nil
}

// Get returns the configured value of a component. A value outside the
// decimal bounds is an InvalidPrice so it never reaches any arithmetic.
func (p PriceConfiguration) Get(c PriceComponent) (decimal.Decimal, error) {
	f := p.field(c)
	if f == nil || !f.Valid {
		return decimal.Decimal{}, NewError(ErrorKindIncompletePriceConfiguration, string(c), nil)
	}
	if !DecimalInBounds(f.Decimal) {
		return decimal.Decimal{}, NewError(ErrorKindInvalidPrice, string(c), DecimalLabel(f.Decimal))
	}
	return f.Decimal, nil
}

// Set assigns a component. Unknown components are ignored.
func (p *PriceConfiguration) Set(c PriceComponent, v decimal.Decimal) {
	if f := p.field(c); f != nil {
		*f = decimal.NewNullDecimal(v)
	}
}

// Energy returns the energy price for the tariff.
func (p PriceConfiguration) Energy(t EnergyTariff) (decimal.Decimal, error) {
	switch t {
	case EnergyTariffVT:
		return p.Get(PriceComponentVT)
	case EnergyTariffMT:
		return p.Get(PriceComponentMT)
	}
	return decimal.Decimal{}, NewError(ErrorKindIncompletePriceConfiguration, "energyTariff", string(t))
}

// Network returns the network charge for the block.
func (p PriceConfiguration) Network(b NetworkBlock) (decimal.Decimal, error) {
	c, ok := BlockComponent(b)
	if !ok {
		return decimal.Decimal{}, NewError(ErrorKindIncompletePriceConfiguration, "networkBlock", int(b))
	}
	return p.Get(c)
}

// IsSet returns true if at least one component has been configured.
func (p PriceConfiguration) IsSet() bool {
	for _, c := range PriceComponents {
		if p.field(c).Valid {
			return true
		}
	}
	return false
}

// Validate checks that all nine components are configured, within the decimal
// bounds and not negative.
func (p PriceConfiguration) Validate() error {
	for _, c := range PriceComponents {
		f := p.field(c)
		if !f.Valid {
			return NewError(ErrorKindIncompletePriceConfiguration, string(c), nil)
		}
		if !DecimalInBounds(f.Decimal) || f.Decimal.IsNegative() {
			return NewError(ErrorKindInvalidPrice, string(c), DecimalLabel(f.Decimal))
		}
	}
	return nil
}

// Map returns the configured components keyed by name.
func (p PriceConfiguration) Map() map[PriceComponent]decimal.Decimal {
	m := make(map[PriceComponent]decimal.Decimal, len(PriceComponents))
	for _, c := range PriceComponents {
		if f := p.field(c); f.Valid {
			m[c] = f.Decimal
		}
	}
	return m
}

// ParsePriceConfiguration builds a validated configuration from loosely typed
// input such as a decoded JSON object. Both the canonical names (vt, block1,
// ...) and the legacy names (energy_vt_price, block_1_price, ...) are accepted;
// the canonical name wins if both are present. Keys that are not price
// components are ignored.
func ParsePriceConfiguration(fields map[string]any) (PriceConfiguration, error) {
	var p PriceConfiguration
	for _, c := range PriceComponents {
		key := string(c)
		raw, ok := fields[key]
		if !ok {
			key = legacyPriceKeys[c]
			raw, ok = fields[key]
		}
		if !ok || raw == nil {
			return PriceConfiguration{}, NewError(ErrorKindIncompletePriceConfiguration, string(c), nil)
		}
		v, err := parseDecimal(raw)
		if err != nil {
			return PriceConfiguration{}, NewError(ErrorKindIncompletePriceConfiguration, key, raw)
		}
		p.Set(c, v)
	}
	if err := p.Validate(); err != nil {
		return PriceConfiguration{}, err
	}
	return p, nil
}

func parseDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	return decimal.Decimal{}, fmt.Errorf("unsupported price value type %T", raw)
}

// DefaultPrices returns example 2025 prices for the Slovenian market. They are
// suggestions for an operator filling in a new configuration and are never
// applied implicitly.
func DefaultPrices() PriceConfiguration {
	var p PriceConfiguration
	for c, v := range map[PriceComponent]string{
		PriceComponentVT:            "0.1199",
		PriceComponentMT:            "0.0979",
		PriceComponentBlock1:        "0.01998",
		PriceComponentBlock2:        "0.01833",
		PriceComponentBlock3:        "0.01809",
		PriceComponentBlock4:        "0.01855",
		PriceComponentBlock5:        "0.01873",
		PriceComponentContributions: "0.000930",
		PriceComponentExcise:        "0.001530",
	} {
		p.Set(c, decimal.RequireFromString(v))
	}
	return p
}
