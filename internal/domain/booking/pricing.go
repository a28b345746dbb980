package booking

import (
	"errors"

	"rentops/internal/domain/shared/money"
)

var (
	ErrNegativeComponent = errors.New("booking: price components cannot be negative")
	ErrCurrencyUnset     = errors.New("booking: currency must be defined")
)

type Fee struct {
	Name   string
	Amount money.Money
}

// Pricing is a snapshot taken at creation or edit time. It is never
// recomputed on its own; callers reprice when nights change.
type Pricing struct {
	NightlyRate money.Money
	Nights      int
	Fees        []Fee
	Total       money.Money
}

func (p *Pricing) Currency() string {
	return p.NightlyRate.Currency
}

func (p *Pricing) Recalculate() error {
	if p.NightlyRate.Currency == "" {
		return ErrCurrencyUnset
	}
	if p.Nights <= 0 {
		return Invalid("nights", "must be at least 1")
	}
	if p.NightlyRate.Amount < 0 {
		return ErrNegativeComponent
	}
	total, err := p.NightlyRate.Multiply(int64(p.Nights))
	if err != nil {
		return err
	}
	for _, fee := range p.Fees {
		if fee.Amount.Amount < 0 {
			return ErrNegativeComponent
		}
		sum, err := total.Add(fee.Amount)
		if err != nil {
			return err
		}
		total = sum
	}
	p.Total = total
	return nil
}

func (p Pricing) Copy() Pricing {
	clone := p
	clone.Fees = append([]Fee(nil), p.Fees...)
	return clone
}
