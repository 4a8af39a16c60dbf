package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBreakdown(t *testing.T) {
	t.Run("TaxOnly", func(t *testing.T) {
		cfg := Config{TaxRate: 0.09}

		b, err := ComputeBreakdown(26.00, cfg)

		assert.NoError(t, err)
		assert.Equal(t, 26.00, b.Subtotal)
		assert.Equal(t, 2.34, b.SalesTax)
		assert.Equal(t, 0.0, b.ServiceFee)
		assert.Equal(t, 0.0, b.ProcessorFee)
		assert.Equal(t, 28.34, b.Total)
	})

	t.Run("WithServiceFee", func(t *testing.T) {
		cfg := Config{TaxRate: 0.09, ServiceFeeRate: 0.05}

		b, err := ComputeBreakdown(100.00, cfg)

		assert.NoError(t, err)
		assert.Equal(t, 9.00, b.SalesTax)
		assert.Equal(t, 5.00, b.ServiceFee)
		assert.Equal(t, 114.00, b.Total)
	})

	t.Run("PassThroughProcessorFee", func(t *testing.T) {
		cfg := Config{
			TaxRate:                 0.09,
			PassThroughProcessorFee: true,
			ProcessorPercentFee:     0.029,
			ProcessorFixedFee:       0.30,
		}

		b, err := ComputeBreakdown(26.00, cfg)

		assert.NoError(t, err)
		assert.InDelta(t, 28.34, b.SalesTax+b.Subtotal, 0.0001)

		// The merchant nets subtotal + tax after the processor takes its cut
		// of the grossed-up total.
		processorCut := b.Total*cfg.ProcessorPercentFee + cfg.ProcessorFixedFee
		assert.InDelta(t, 28.34, b.Total-processorCut, 0.01)
		assert.InDelta(t, b.Total-28.34, b.ProcessorFee, 0.001)
		assert.Greater(t, b.Total, 28.34)
	})

	t.Run("EveryStageRounded", func(t *testing.T) {
		cfg := Config{TaxRate: 0.0825}

		b, err := ComputeBreakdown(10.10, cfg)

		assert.NoError(t, err)
		// 10.10 * 0.0825 = 0.83325 -> rounds to 0.83, not carried raw into
		// the total.
		assert.Equal(t, 0.83, b.SalesTax)
		assert.Equal(t, 10.93, b.Total)
	})

	t.Run("ZeroSubtotal", func(t *testing.T) {
		b, err := ComputeBreakdown(0, Config{TaxRate: 0.09})

		assert.NoError(t, err)
		assert.Equal(t, 0.0, b.Total)
	})

	t.Run("NegativeSubtotal", func(t *testing.T) {
		_, err := ComputeBreakdown(-1, Config{TaxRate: 0.09})

		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("Deterministic", func(t *testing.T) {
		cfg := Config{
			TaxRate:                 0.09,
			ServiceFeeRate:          0.02,
			PassThroughProcessorFee: true,
			ProcessorPercentFee:     0.029,
			ProcessorFixedFee:       0.30,
		}

		a, err := ComputeBreakdown(57.25, cfg)
		assert.NoError(t, err)
		b, err := ComputeBreakdown(57.25, cfg)
		assert.NoError(t, err)

		assert.Equal(t, a, b)
	})
}
