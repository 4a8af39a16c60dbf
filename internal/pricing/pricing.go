package pricing

import (
	"errors"

	"lunchbox-be/internal/utils"
)

var ErrInvalidAmount = errors.New("invalid amount")

type Config struct {
	TaxRate        float64
	ServiceFeeRate float64

	// When true, the processor fee is passed through to the payer so the
	// merchant still nets subtotal + tax + service fee after the processor
	// deducts its cut.
	PassThroughProcessorFee bool
	ProcessorPercentFee     float64
	ProcessorFixedFee       float64
}

type Breakdown struct {
	Subtotal     float64 `json:"subtotal"`
	SalesTax     float64 `json:"salesTax"`
	ServiceFee   float64 `json:"serviceFee"`
	ProcessorFee float64 `json:"processorFee"`
	Total        float64 `json:"total"`
}

// ComputeBreakdown is a pure function: same inputs, same breakdown. Every
// stage is rounded half-up to 2 decimals, not only the end result.
func ComputeBreakdown(subtotal float64, cfg Config) (Breakdown, error) {
	if subtotal < 0 {
		return Breakdown{}, ErrInvalidAmount
	}

	b := Breakdown{
		Subtotal:   utils.Round2(subtotal),
		SalesTax:   utils.Round2(subtotal * cfg.TaxRate),
		ServiceFee: utils.Round2(subtotal * cfg.ServiceFeeRate),
	}

	net := b.Subtotal + b.SalesTax + b.ServiceFee

	if !cfg.PassThroughProcessorFee {
		b.ProcessorFee = 0
		b.Total = utils.Round2(net)
		return b, nil
	}

	// Inverse of the processor's fee formula: after the processor takes
	// percentage*total + fixed, the merchant nets exactly `net`.
	total := utils.Round2((net + cfg.ProcessorFixedFee) / (1 - cfg.ProcessorPercentFee))
	b.ProcessorFee = utils.Round2(total - net)
	b.Total = total

	return b, nil
}
