package watermark

import (
	"github.com/reelmark/reelmark/internal/bitcodec"
	"github.com/reelmark/reelmark/internal/dctcodec"
)

// Extraction accumulates majority-vote bit estimates across one or more
// frames for a known expected bit count.
type Extraction struct {
	n      int
	params Params
	q      float64
	acc    *bitcodec.AccumulatorSet
	buf    []uint8
}

// NewExtraction creates an Extraction expecting n payload bits.
func NewExtraction(n int, p Params) *Extraction {
	return &Extraction{
		n:      n,
		params: p,
		q:      dctcodec.QuantStep(p.Strength),
		acc:    bitcodec.NewAccumulatorSet(n),
	}
}

// Observe recovers one vote per block from a single frame (up to
// Redundancy votes per accumulator) and folds them into the running tally. It is safe to call repeatedly across a
// sequence of frames; accumulators persist between calls.
func (e *Extraction) Observe(fp *FramePlanes) {
	if e.n == 0 {
		return
	}
	h, w := fp.Y.H, fp.Y.W
	wk := newWalker(h, w, e.params.Carriers)
	capacity := wk.total()
	need := e.params.Redundancy * e.n
	limit := need
	if capacity < limit {
		limit = capacity
	}

	for i := 0; i < limit; i++ {
		channel, br, bc := wk.resolve(i)
		plane := fp.Channel(channel)
		e.buf = readBlock(plane, br, bc, e.buf)

		block := dctcodec.NewBlock(e.buf)
		coeffs := dctcodec.Forward2D(block)
		bit := dctcodec.ExtractBit(coeffs, e.params.CoeffRow, e.params.CoeffCol, e.q)
		e.acc.Vote(i%e.n, bit)
	}
}

// Resolve returns the majority-vote bit stream and mean per-bit agreement
// across all accumulated votes.
func (e *Extraction) Resolve() (bits []int, agreement float64) {
	return e.acc.Resolve()
}

// FoldResolve folds the accumulated votes onto an n-bit message period and
// resolves the folded majority. Callers that observed with Redundancy 1 and
// one accumulator per block index use this once the message period has been
// discovered, e.g. by locating the end-of-message sentinel.
func (e *Extraction) FoldResolve(n int) (bits []int, agreement float64) {
	return e.acc.Fold(n).Resolve()
}

// Converged reports whether every accumulator has reached the early-
// termination threshold for multi-frame extraction.
func (e *Extraction) Converged(minVotes int, minAgreement float64) bool {
	return e.acc.AllConverged(minVotes, minAgreement)
}
