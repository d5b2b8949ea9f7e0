package domain

type ID string

func ValidateID(id string) bool {
	return len(id) == 24
}

// Amount is a monetary value in integer cents. Every price comparison and
// total in the engine is computed on cents; conversion to currency units
// happens only at the HTTP boundary.
type Amount int64

func NewAmountFromCents(cents int64) Amount {
	return Amount(cents)
}

func NewAmountFromValue(value int64) Amount {
	return Amount(value * 100)
}

func (a Amount) Add(b Amount) Amount {
	return a + b
}

func (a Amount) Multiply(qty int) Amount {
	return a * Amount(qty)
}

// MarkupHalf returns the amount increased by 50%, rounded half-up to the cent.
func (a Amount) MarkupHalf() Amount {
	return (a*3 + 1) / 2
}

func (a Amount) ToValue() int64 {
	return int64(a) / 100
}

func MaxAmount(a, b Amount) Amount {
	if a > b {
		return a
	}
	return b
}

type Event interface {
	GetName() string
	GetEntityName() string
}
