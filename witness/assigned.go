package witness

import "github.com/sure2web3/plonkish/field"

// Assigned is a field value that may be represented as a numerator/denominator
// pair, deferring its division so many evaluations can share one batched
// inversion. The trivial form carries a plain field element and is what most
// assignments produce; the rational form appears once a circuit divides.
//
// The zero Assigned is the trivial zero.
type Assigned struct {
	num, den field.Element
	rational bool
}

// Trivial wraps a concrete field element.
func Trivial(v field.Element) Assigned {
	return Assigned{num: v}
}

// Rational wraps the quotient num/den without performing the division.
func Rational(num, den field.Element) Assigned {
	return Assigned{num: num, den: den, rational: true}
}

// Numerator returns the numerator of the deferred quotient.
func (a Assigned) Numerator() field.Element {
	return a.num
}

// Denominator returns the denominator of the deferred quotient; it is one for
// trivial values.
func (a Assigned) Denominator() field.Element {
	if !a.rational {
		return field.One()
	}
	return a.den
}

// IsZero reports whether the value evaluates to zero. A rational with a zero
// denominator evaluates to zero under the 1/0 = 0 convention.
func (a Assigned) IsZero() bool {
	return a.num.IsZero() || (a.rational && a.den.IsZero())
}

// Neg returns -a.
func (a Assigned) Neg() Assigned {
	var n field.Element
	n.Neg(&a.num)
	a.num = n
	return a
}

// Double returns 2a.
func (a Assigned) Double() Assigned {
	var n field.Element
	n.Double(&a.num)
	a.num = n
	return a
}

// Add returns a+b.
func (a Assigned) Add(b Assigned) Assigned {
	if !a.rational && !b.rational {
		var n field.Element
		n.Add(&a.num, &b.num)
		return Trivial(n)
	}
	ad, bd := a.Denominator(), b.Denominator()
	var l, r, n, d field.Element
	l.Mul(&a.num, &bd)
	r.Mul(&b.num, &ad)
	n.Add(&l, &r)
	d.Mul(&ad, &bd)
	return Rational(n, d)
}

// Sub returns a-b.
func (a Assigned) Sub(b Assigned) Assigned {
	return a.Add(b.Neg())
}

// Mul returns a*b.
func (a Assigned) Mul(b Assigned) Assigned {
	var n field.Element
	n.Mul(&a.num, &b.num)
	if !a.rational && !b.rational {
		return Trivial(n)
	}
	ad, bd := a.Denominator(), b.Denominator()
	var d field.Element
	d.Mul(&ad, &bd)
	return Rational(n, d)
}

// Square returns a^2.
func (a Assigned) Square() Assigned {
	return a.Mul(a)
}

// Cube returns a^3.
func (a Assigned) Cube() Assigned {
	return a.Square().Mul(a)
}

// Invert returns 1/a by swapping numerator and denominator; no field inversion
// happens until Evaluate.
func (a Assigned) Invert() Assigned {
	return Rational(a.Denominator(), a.num)
}

// Evaluate performs the deferred division, with 0 inverting to 0.
func (a Assigned) Evaluate() field.Element {
	if !a.rational {
		return a.num
	}
	var inv field.Element
	inv.Inverse(&a.den) // gnark-crypto maps 1/0 to 0
	var res field.Element
	res.Mul(&a.num, &inv)
	return res
}

// BatchEvaluate evaluates many deferred quotients with one batched inversion.
func BatchEvaluate(vals []Assigned) []field.Element {
	dens := make([]field.Element, 0, len(vals))
	for _, v := range vals {
		if v.rational {
			dens = append(dens, v.den)
		}
	}
	invs := field.BatchInvert(dens)
	res := make([]field.Element, len(vals))
	j := 0
	for i, v := range vals {
		if !v.rational {
			res[i] = v.num
			continue
		}
		res[i].Mul(&v.num, &invs[j])
		j++
	}
	return res
}
