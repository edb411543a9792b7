package inference

import "math"

// lanczosG is the g parameter the coefficient table below was computed for.
const lanczosG = 7

// lanczosCoefficients is the standard 9-term table for g = 7.
var lanczosCoefficients = [...]float64{
	0.99999999999980993,
	676.5203681218851,
	-1259.1392167224028,
	771.32342877765313,
	-176.61502916214059,
	12.507343278686905,
	-0.13857109526572012,
	9.9843695780195716e-6,
	1.5056327351493116e-7,
}

var logSqrt2Pi = math.Log(math.Sqrt(2 * math.Pi))

// LogGamma returns log(Γ(z)) using the Lanczos approximation, with the
// reflection formula below 0.5. Γ itself is never formed, so the result stays
// finite for shapes far beyond where Γ overflows a float64 (z > ~171).
//
// Zero is a pole and yields +Inf; arguments where Γ is negative yield NaN.
// Callers exponentiating the result must handle both.
func LogGamma(z float64) float64 {
	if z < 0.5 {
		return math.Log(math.Pi) - math.Log(math.Sin(math.Pi*z)) - LogGamma(1-z)
	}

	z--
	x := lanczosCoefficients[0]
	for i := 1; i < len(lanczosCoefficients); i++ {
		x += lanczosCoefficients[i] / (z + float64(i))
	}

	t := z + lanczosG + 0.5
	return logSqrt2Pi + (z+0.5)*math.Log(t) - t + math.Log(x)
}
