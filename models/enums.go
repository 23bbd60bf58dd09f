package models

import (
	"fmt"
	"strings"
)

// ModelKind identifies the dynamics of the underlying.
type ModelKind int

const (
	Lognormal ModelKind = iota
)

// OptionKind identifies the exercise style of a contract.
type OptionKind int

const (
	European OptionKind = iota
	American
	Barrier
)

// Right is the put/call flag.
type Right int

const (
	Put Right = iota
	Call
)

// Method selects the numerical technique used to price a contract.
type Method int

const (
	ClosedForm Method = iota
	Tree
	PDE
	MonteCarlo
)

// BarrierDirection says from which side the barrier is approached.
type BarrierDirection int

const (
	Down BarrierDirection = iota
	Up
)

// BarrierActivation says whether touching the barrier creates or kills the option.
type BarrierActivation int

const (
	Out BarrierActivation = iota
	In
)

var (
	modelKindNames  = []string{"lognormal"}
	optionKindNames = []string{"european", "american", "barrier"}
	rightNames      = []string{"put", "call"}
	methodNames     = []string{"closed_form", "tree", "pde", "monte_carlo"}
	directionNames  = []string{"down", "up"}
	activationNames = []string{"out", "in"}
)

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func parseEnum(names []string, kind, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	for i, n := range names {
		if n == s || strings.ReplaceAll(n, "_", "") == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("models: unknown %s %q", kind, s)
}

func (k ModelKind) String() string  { return enumName(modelKindNames, int(k)) }
func (k OptionKind) String() string { return enumName(optionKindNames, int(k)) }
func (r Right) String() string      { return enumName(rightNames, int(r)) }
func (m Method) String() string     { return enumName(methodNames, int(m)) }
func (d BarrierDirection) String() string {
	return enumName(directionNames, int(d))
}
func (a BarrierActivation) String() string {
	return enumName(activationNames, int(a))
}

func (k ModelKind) Valid() bool         { return k >= 0 && int(k) < len(modelKindNames) }
func (k OptionKind) Valid() bool        { return k >= 0 && int(k) < len(optionKindNames) }
func (r Right) Valid() bool             { return r >= 0 && int(r) < len(rightNames) }
func (m Method) Valid() bool            { return m >= 0 && int(m) < len(methodNames) }
func (d BarrierDirection) Valid() bool  { return d >= 0 && int(d) < len(directionNames) }
func (a BarrierActivation) Valid() bool { return a >= 0 && int(a) < len(activationNames) }

// ParseMethod accepts names like "pde", "monte_carlo" or "montecarlo".
func ParseMethod(s string) (Method, error) {
	v, err := parseEnum(methodNames, "method", s)
	return Method(v), err
}

func ParseOptionKind(s string) (OptionKind, error) {
	v, err := parseEnum(optionKindNames, "option kind", s)
	return OptionKind(v), err
}

func ParseRight(s string) (Right, error) {
	v, err := parseEnum(rightNames, "right", s)
	return Right(v), err
}

func ParseBarrierDirection(s string) (BarrierDirection, error) {
	v, err := parseEnum(directionNames, "barrier direction", s)
	return BarrierDirection(v), err
}

func ParseBarrierActivation(s string) (BarrierActivation, error) {
	v, err := parseEnum(activationNames, "barrier activation", s)
	return BarrierActivation(v), err
}

func ParseModelKind(s string) (ModelKind, error) {
	v, err := parseEnum(modelKindNames, "model kind", s)
	return ModelKind(v), err
}

func (k ModelKind) MarshalText() ([]byte, error)  { return []byte(k.String()), nil }
func (k OptionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (r Right) MarshalText() ([]byte, error)      { return []byte(r.String()), nil }
func (m Method) MarshalText() ([]byte, error)     { return []byte(m.String()), nil }
func (d BarrierDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
func (a BarrierActivation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (k *ModelKind) UnmarshalText(b []byte) (err error) {
	*k, err = ParseModelKind(string(b))
	return err
}

func (k *OptionKind) UnmarshalText(b []byte) (err error) {
	*k, err = ParseOptionKind(string(b))
	return err
}

func (r *Right) UnmarshalText(b []byte) (err error) {
	*r, err = ParseRight(string(b))
	return err
}

func (m *Method) UnmarshalText(b []byte) (err error) {
	*m, err = ParseMethod(string(b))
	return err
}

func (d *BarrierDirection) UnmarshalText(b []byte) (err error) {
	*d, err = ParseBarrierDirection(string(b))
	return err
}

func (a *BarrierActivation) UnmarshalText(b []byte) (err error) {
	*a, err = ParseBarrierActivation(string(b))
	return err
}
