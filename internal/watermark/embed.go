package watermark

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/reelmark/reelmark/internal/dctcodec"
)

// blockPassConcurrency bounds the number of goroutines that process disjoint
// block ranges concurrently during an embed pass.
const blockPassConcurrency = 8

// Params bundles the codec knobs an embed/extract call needs, mirroring
// config.Config's codec fields without importing the config package (keeps
// watermark free of CLI/config concerns).
type Params struct {
	Strength   float32
	Redundancy int
	CoeffRow   int
	CoeffCol   int
	Carriers   []string // e.g. {"Y"} or {"Y", "Cr", "Cb"}
}

// walker resolves a global block-visiting index (channel-major, then
// row-major within a channel) to a (channel, row, col) position.
type walker struct {
	carriers   []string
	rowsPerCh  int
	colsPerCh  int
	perChannel int
}

func newWalker(h, w int, carriers []string) *walker {
	rows, cols := BlockCounts(h, w)
	return &walker{carriers: carriers, rowsPerCh: rows, colsPerCh: cols, perChannel: rows * cols}
}

func (wk *walker) total() int {
	return wk.perChannel * len(wk.carriers)
}

func (wk *walker) resolve(i int) (channel string, br, bc int) {
	chIdx := i / wk.perChannel
	within := i % wk.perChannel
	row, col := blockIndexToRasterPos(within, wk.colsPerCh)
	return wk.carriers[chIdx], row, col
}

// Embed applies the block DCT engine across fp's selected carrier channels,
// tiling bits Redundancy times across the available blocks so each logical
// bit lands in well-separated blocks. It mutates fp's planes in place.
func Embed(fp *FramePlanes, bits []int, p Params) error {
	n := len(bits)
	if n == 0 {
		return nil
	}
	h, w := fp.Y.H, fp.Y.W
	wk := newWalker(h, w, p.Carriers)
	capacity := wk.total()
	need := p.Redundancy * n
	if capacity < need {
		return fmt.Errorf("%w: have %d blocks, need %d (redundancy %d x %d bits)",
			ErrCapacityInsufficient, capacity, need, p.Redundancy, n)
	}

	q := dctcodec.QuantStep(p.Strength)
	workers := blockPassConcurrency
	if workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if need < workers {
		workers = need
	}

	var g errgroup.Group
	chunk := (need + workers - 1) / workers
	for start := 0; start < need; start += chunk {
		end := start + chunk
		if end > need {
			end = need
		}
		start, end := start, end
		g.Go(func() error {
			var buf []uint8
			for i := start; i < end; i++ {
				channel, br, bc := wk.resolve(i)
				plane := fp.Channel(channel)
				buf = readBlock(plane, br, bc, buf)

				block := dctcodec.NewBlock(buf)
				coeffs := dctcodec.Forward2D(block)
				dctcodec.EmbedBit(coeffs, p.CoeffRow, p.CoeffCol, bits[i%n], q)
				spatial := dctcodec.Inverse2D(coeffs)

				writeBlock(plane, br, bc, dctcodec.BlockSamples(spatial))
			}
			return nil
		})
	}
	return g.Wait()
}
