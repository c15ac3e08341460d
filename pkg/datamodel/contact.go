package datamodel

import "fmt"

// a closed contact window between two nodes
type ContactInterval struct {
	Start float64
	End   float64
}

// length of the contact
func (c ContactInterval) Duration() float64 {
	return c.End - c.Start
}

func (c ContactInterval) String() string {
	return fmt.Sprintf("[%v,%v]", c.Start, c.End)
}

// PairKey is an unordered pair of nodes.  Low is always the smaller address,
// so (a,b) and (b,a) produce the same key.
type PairKey struct {
	Low  NodeId
	High NodeId
}

func MakePairKey(a, b NodeId) PairKey {
	if a < b {
		return PairKey{Low: a, High: b}
	}
	return PairKey{Low: b, High: a}
}

// returns the other end of the pair, and false if n is not a member
func (p PairKey) Other(n NodeId) (NodeId, bool) {
	switch n {
	case p.Low:
		return p.High, true
	case p.High:
		return p.Low, true
	}
	return 0, false
}

func (p PairKey) String() string {
	return fmt.Sprintf("%v-%v", p.Low, p.High)
}
