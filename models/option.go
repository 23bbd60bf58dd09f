package models

// OptionParams is the caller-facing description of a contract. The barrier
// fields are read only when Kind is Barrier.
type OptionParams struct {
	Kind       OptionKind        `json:"kind"`
	Right      Right             `json:"right"`
	Spot       float64           `json:"spot"`
	Strike     float64           `json:"strike"`
	Expiry     float64           `json:"expiry"`
	Barrier    float64           `json:"barrier,omitempty"`
	Direction  BarrierDirection  `json:"direction,omitempty"`
	Activation BarrierActivation `json:"activation,omitempty"`
	Rebate     float64           `json:"rebate,omitempty"`
}

// OptionContract is a validated, immutable contract.
type OptionContract struct {
	p OptionParams
}

func NewOptionContract(p OptionParams) (*OptionContract, error) {
	const fn = "NewOptionContract"

	if !p.Kind.Valid() {
		return nil, invalid(fn, "kind", p.Kind, "unsupported")
	}
	if !p.Right.Valid() {
		return nil, invalid(fn, "right", p.Right, "unsupported")
	}
	if !finite(p.Spot) || p.Spot <= 0 {
		return nil, invalid(fn, "spot", p.Spot, "must be positive")
	}
	if !finite(p.Strike) || p.Strike <= 0 {
		return nil, invalid(fn, "strike", p.Strike, "must be positive")
	}
	if !finite(p.Expiry) || p.Expiry < 0 {
		return nil, invalid(fn, "expiry", p.Expiry, "must be non-negative")
	}

	if p.Kind == Barrier {
		if !finite(p.Barrier) || p.Barrier <= 0 {
			return nil, invalid(fn, "barrier", p.Barrier, "must be positive")
		}
		if !p.Direction.Valid() {
			return nil, invalid(fn, "direction", p.Direction, "unsupported")
		}
		if !p.Activation.Valid() {
			return nil, invalid(fn, "activation", p.Activation, "unsupported")
		}
		if !finite(p.Rebate) || p.Rebate < 0 {
			return nil, invalid(fn, "rebate", p.Rebate, "must be non-negative")
		}
	} else {
		p.Barrier, p.Direction, p.Activation, p.Rebate = 0, 0, 0, 0
	}

	return &OptionContract{p: p}, nil
}

func (o *OptionContract) Kind() OptionKind              { return o.p.Kind }
func (o *OptionContract) Right() Right                  { return o.p.Right }
func (o *OptionContract) IsCall() bool                  { return o.p.Right == Call }
func (o *OptionContract) Spot() float64                 { return o.p.Spot }
func (o *OptionContract) Strike() float64               { return o.p.Strike }
func (o *OptionContract) Expiry() float64               { return o.p.Expiry }
func (o *OptionContract) Barrier() float64              { return o.p.Barrier }
func (o *OptionContract) Direction() BarrierDirection   { return o.p.Direction }
func (o *OptionContract) Activation() BarrierActivation { return o.p.Activation }
func (o *OptionContract) Rebate() float64               { return o.p.Rebate }
func (o *OptionContract) Params() OptionParams          { return o.p }

// Intrinsic is the immediate exercise value at underlying level s.
func (o *OptionContract) Intrinsic(s float64) float64 {
	if o.p.Right == Call {
		if s > o.p.Strike {
			return s - o.p.Strike
		}
		return 0
	}
	if o.p.Strike > s {
		return o.p.Strike - s
	}
	return 0
}

// Breached reports whether level s is on or past the barrier.
func (o *OptionContract) Breached(s float64) bool {
	if o.p.Direction == Up {
		return s >= o.p.Barrier
	}
	return s <= o.p.Barrier
}

// WithKind returns a validated copy of o with a different kind. Switching a
// barrier contract to European drops its barrier terms.
func (o *OptionContract) WithKind(k OptionKind) (*OptionContract, error) {
	p := o.p
	p.Kind = k
	return NewOptionContract(p)
}
