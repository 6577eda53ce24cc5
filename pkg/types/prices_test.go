package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPriceFields() map[string]any {
	return map[string]any{
		"vt":            "0.1199",
		"mt":            "0.0979",
		"block1":        "0.01998",
		"block2":        "0.01833",
		"block3":        "0.01809",
		"block4":        "0.01855",
		"block5":        "0.01873",
		"contributions": "0.000930",
		"excise":        "0.001530",
	}
}

func TestParsePriceConfiguration(t *testing.T) {
	t.Run("canonical keys", func(t *testing.T) {
		p, err := ParsePriceConfiguration(validPriceFields())
		require.NoError(t, err)
		assert.Equal(t, DefaultPrices().Map(), p.Map())
	})

	t.Run("legacy keys", func(t *testing.T) {
		p, err := ParsePriceConfiguration(map[string]any{
			"energy_vt_price":     0.12,
			"energy_mt_price":     0.09,
			"block_1_price":       0.02,
			"block_2_price":       0.02,
			"block_3_price":       0.02,
			"block_4_price":       0.02,
			"block_5_price":       0.02,
			"contributions_price": 0.001,
			"excise_tax":          0.0015,
		})
		require.NoError(t, err)
		vt, err := p.Get(PriceComponentVT)
		require.NoError(t, err)
		assert.True(t, vt.Equal(decimal.RequireFromString("0.12")))
	})

	t.Run("canonical wins over legacy", func(t *testing.T) {
		fields := validPriceFields()
		fields["energy_vt_price"] = "9"
		p, err := ParsePriceConfiguration(fields)
		require.NoError(t, err)
		vt, _ := p.Get(PriceComponentVT)
		assert.Equal(t, "0.1199", vt.String())
	})

	t.Run("json numbers", func(t *testing.T) {
		dec := json.NewDecoder(strings.NewReader(`{"vt":0.123456,"mt":0.1,"block1":0.1,"block2":0.1,"block3":0.1,"block4":0.1,"block5":0.1,"contributions":0,"excise":0}`))
		dec.UseNumber()
		var fields map[string]any
		require.NoError(t, dec.Decode(&fields))
		p, err := ParsePriceConfiguration(fields)
		require.NoError(t, err)
		vt, _ := p.Get(PriceComponentVT)
		assert.Equal(t, "0.123456", vt.String())
	})

	t.Run("missing field", func(t *testing.T) {
		fields := validPriceFields()
		delete(fields, "block3")
		_, err := ParsePriceConfiguration(fields)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIncompletePriceConfiguration))
		var terr *Error
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, "block3", terr.Field)
	})

	t.Run("null field", func(t *testing.T) {
		fields := validPriceFields()
		fields["excise"] = nil
		_, err := ParsePriceConfiguration(fields)
		assert.ErrorIs(t, err, ErrIncompletePriceConfiguration)
	})

	t.Run("non-numeric field", func(t *testing.T) {
		fields := validPriceFields()
		fields["mt"] = "cheap"
		_, err := ParsePriceConfiguration(fields)
		assert.ErrorIs(t, err, ErrIncompletePriceConfiguration)

		fields["mt"] = true
		_, err = ParsePriceConfiguration(fields)
		assert.ErrorIs(t, err, ErrIncompletePriceConfiguration)
	})

	t.Run("negative field", func(t *testing.T) {
		fields := validPriceFields()
		fields["block5"] = "-0.01"
		_, err := ParsePriceConfiguration(fields)
		assert.ErrorIs(t, err, ErrInvalidPrice)
		assert.NotErrorIs(t, err, ErrIncompletePriceConfiguration)
	})

	t.Run("out of range field", func(t *testing.T) {
		for _, raw := range []any{
			"1e-2000000000",
			"1e-2147483648",
			"1e999999999",
			"-1e999999999",
			"0.0000000000000000001",
			json.Number("1e300"),
			1e300,
			"123456789012345678901234567890",
		} {
			fields := validPriceFields()
			fields["block2"] = raw
			_, err := ParsePriceConfiguration(fields)
			require.ErrorIs(t, err, ErrInvalidPrice, "%v", raw)
			var terr *Error
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, "block2", terr.Field)
			assert.Less(t, len(err.Error()), 64, "%v", raw)
		}
	})

	t.Run("smallest accepted field", func(t *testing.T) {
		fields := validPriceFields()
		fields["excise"] = "0.000000000000000001"
		_, err := ParsePriceConfiguration(fields)
		assert.NoError(t, err)
	})
}

func TestPriceConfigurationAccessors(t *testing.T) {
	p := DefaultPrices()

	e, err := p.Energy(EnergyTariffMT)
	require.NoError(t, err)
	assert.Equal(t, "0.0979", e.String())

	n, err := p.Network(NetworkBlock4)
	require.NoError(t, err)
	assert.Equal(t, "0.01855", n.String())

	_, err = p.Network(NetworkBlock(6))
	assert.ErrorIs(t, err, ErrIncompletePriceConfiguration)

	p.Set(PriceComponentExcise, decimal.RequireFromString("1e-2147483648"))
	_, err = p.Get(PriceComponentExcise)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.ErrorIs(t, p.Validate(), ErrInvalidPrice)

	var empty PriceConfiguration
	assert.False(t, empty.IsSet())
	_, err = empty.Get(PriceComponentExcise)
	assert.ErrorIs(t, err, ErrIncompletePriceConfiguration)
	assert.ErrorIs(t, empty.Validate(), ErrIncompletePriceConfiguration)
}

func TestPriceConfigurationJSON(t *testing.T) {
	var p PriceConfiguration
	p.Set(PriceComponentVT, decimal.RequireFromString("0.1"))
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var out PriceConfiguration
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, out.VT.Valid)
	assert.False(t, out.MT.Valid)
	assert.True(t, out.VT.Decimal.Equal(p.VT.Decimal))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "InvalidPrice: vt=-1", NewError(ErrorKindInvalidPrice, "vt", "-1").Error())
	assert.Equal(t, "IncompletePriceConfiguration: mt", NewError(ErrorKindIncompletePriceConfiguration, "mt", nil).Error())
	assert.Equal(t, "InvalidTime: 25h0m0s", NewError(ErrorKindInvalidTime, "", "25h0m0s").Error())
	assert.Equal(t, "UnmappedSchedule", ErrUnmappedSchedule.Error())
	assert.False(t, errors.Is(ErrInvalidDate, ErrInvalidTime))
}

func TestIsTariffError(t *testing.T) {
	assert.True(t, IsTariffError(NewError(ErrorKindInvalidPrice, "vt", "-1")))
	assert.True(t, IsTariffError(fmt.Errorf("wrapped: %w", ErrInvalidDate)))
	assert.False(t, IsTariffError(errors.New("storage down")))
	assert.False(t, IsTariffError(nil))
}
