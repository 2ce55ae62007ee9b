package engine

// seedWrap bounds the advancing seed so repeated runs never overflow the
// integer range of any benchmarked runtime.
const seedWrap = 1 << 31

// Accumulator defeats dead-code elimination: every value a benchmark
// function returns is folded into its counter, so the call has an
// observable side effect no optimizer may remove. It also hands out a
// monotonically advancing seed so repeated calls are not trivially
// identical. One Accumulator is created per benchmark run and discarded
// after aggregation; its value carries no semantic meaning.
type Accumulator struct {
	counter uint64
	seed    int64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// NextSeed returns the current seed and advances it by one, wrapping
// below seedWrap.
func (a *Accumulator) NextSeed() int64 {
	s := a.seed
	a.seed = (a.seed + 1) % seedWrap

	return s
}

// Fold mixes a benchmark return value into the counter. Numbers add
// their value, strings add their length, any other non-nil value adds a
// constant. Unsigned arithmetic wraps on overflow by definition, so the
// fold can never fail.
func (a *Accumulator) Fold(v any) {
	switch x := v.(type) {
	case nil:
	case int:
		a.counter += uint64(x)
	case int32:
		a.counter += uint64(x)
	case int64:
		a.counter += uint64(x)
	case uint:
		a.counter += uint64(x)
	case uint32:
		a.counter += uint64(x)
	case uint64:
		a.counter += x
	case float32:
		a.counter += uint64(int64(x))
	case float64:
		a.counter += uint64(int64(x))
	case string:
		a.counter += uint64(len(x))
	case bool:
		if x {
			a.counter++
		}
	default:
		a.counter++
	}
}

// Value returns the current counter. Callers may observe that it changed
// (the non-elision side effect) but must not depend on the exact number.
func (a *Accumulator) Value() uint64 {
	return a.counter
}
