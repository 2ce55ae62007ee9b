package catalogue

// Declared inner-operation counts per benchmark call. totalOps in the
// result record is innerIterations * batchSize * measuredIterations, so
// these must match the loop bounds below.
const (
	arithInner  = 1000
	arrayInner  = 256
	callsInner  = 1000
	fibInner    = 1
	sieveInner  = 4096
	stringInner = 64
)

// builtins returns the standard CPU-bound benchmark set. Every function
// consumes the seed and returns a value so the accumulator fold is
// load-bearing and no call can be eliminated.
func builtins() []Entry {
	return []Entry{
		{
			Name:            "arith",
			Description:     "integer arithmetic and bit operations",
			InnerIterations: arithInner,
			Run:             benchArith,
			Source:          arithSource,
		},
		{
			Name:            "array_sum",
			Description:     "sequential array fill and sum",
			InnerIterations: arrayInner,
			Run:             benchArraySum,
			Source:          arraySumSource,
		},
		{
			Name:            "calls",
			Description:     "function call overhead",
			InnerIterations: callsInner,
			Run:             benchCalls,
			Source:          callsSource,
		},
		{
			Name:            "fib",
			Description:     "recursive fibonacci(20)",
			InnerIterations: fibInner,
			Run:             benchFib,
			Source:          fibSource,
		},
		{
			Name:            "sieve",
			Description:     "prime sieve to 4096",
			InnerIterations: sieveInner,
			Run:             benchSieve,
			Source:          sieveSource,
		},
		{
			Name:            "string_build",
			Description:     "byte-wise string construction",
			InnerIterations: stringInner,
			Run:             benchStringBuild,
			Source:          stringBuildSource,
		},
	}
}

func benchArith(seed int64) any {
	a := seed + 1
	b := seed + 2
	c := seed + 3

	for i := 0; i < arithInner; i++ {
		a += b
		b = (b * 3) & 0xFFFF
		c -= a
		a ^= c
		b |= 1
		c += a % 17
	}

	return a + b + c
}

func benchArraySum(seed int64) any {
	var arr [arrayInner]int64
	for i := range arr {
		arr[i] = seed + int64(i)
	}

	var sum int64
	for _, v := range arr {
		sum += v
	}

	return sum
}

//go:noinline
func addPair(a, b int64) int64 {
	return a + b
}

func benchCalls(seed int64) any {
	sum := seed
	for i := int64(0); i < callsInner; i++ {
		sum = addPair(sum, i)
	}

	return sum
}

func fibRec(n int64) int64 {
	if n <= 1 {
		return n
	}

	return fibRec(n-1) + fibRec(n-2)
}

func benchFib(seed int64) any {
	return fibRec(20) + seed
}

func benchSieve(seed int64) any {
	sieve := make([]bool, sieveInner)
	count := seed & 1

	for i := 2; i < sieveInner; i++ {
		if sieve[i] {
			continue
		}

		count++
		for j := i * i; j < sieveInner; j += i {
			sieve[j] = true
		}
	}

	return count
}

func benchStringBuild(seed int64) any {
	buf := make([]byte, 0, stringInner)
	for i := int64(0); i < stringInner; i++ {
		buf = append(buf, byte('a'+(seed+i)%26))
	}

	return string(buf)
}

// Interpreted-runtime sources. Loop bounds must stay in sync with the
// native implementations above.
const (
	arithSource = `
func arithBench(seed int64) int64 {
	a := seed + 1
	b := seed + 2
	c := seed + 3
	for i := 0; i < 1000; i++ {
		a += b
		b = (b * 3) & 0xFFFF
		c -= a
		a ^= c
		b |= 1
		c += a % 17
	}
	return a + b + c
}
arithBench
`

	arraySumSource = `
func arraySumBench(seed int64) int64 {
	arr := make([]int64, 256)
	for i := range arr {
		arr[i] = seed + int64(i)
	}
	var sum int64
	for _, v := range arr {
		sum += v
	}
	return sum
}
arraySumBench
`

	callsSource = `
func callsAdd(a, b int64) int64 {
	return a + b
}
func callsBench(seed int64) int64 {
	sum := seed
	for i := int64(0); i < 1000; i++ {
		sum = callsAdd(sum, i)
	}
	return sum
}
callsBench
`

	fibSource = `
func fibRec(n int64) int64 {
	if n <= 1 {
		return n
	}
	return fibRec(n-1) + fibRec(n-2)
}
func fibBench(seed int64) int64 {
	return fibRec(20) + seed
}
fibBench
`

	sieveSource = `
func sieveBench(seed int64) int64 {
	sieve := make([]bool, 4096)
	count := seed & 1
	for i := 2; i < 4096; i++ {
		if sieve[i] {
			continue
		}
		count++
		for j := i * i; j < 4096; j += i {
			sieve[j] = true
		}
	}
	return count
}
sieveBench
`

	stringBuildSource = `
func stringBuildBench(seed int64) string {
	buf := make([]byte, 0, 64)
	for i := int64(0); i < 64; i++ {
		buf = append(buf, byte('a'+(seed+i)%26))
	}
	return string(buf)
}
stringBuildBench
`
)
