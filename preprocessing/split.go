package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/eclyon/frame"
	"github.com/YuminosukeSato/eclyon/pkg/errors"
)

// SplitRows は cutoff 行目で分割した [0, cutoff) と [cutoff, n) のコピーを返す
// 行の並べ替えは行わない
func SplitRows(ds *frame.Dataset, cutoff int) (head, tail *frame.Dataset, err error) {
	n := ds.NumRows()
	if cutoff < 0 || cutoff > n {
		return nil, nil, errors.NewValidationError("cutoff", fmt.Sprintf("must be in [0, %d]", n), cutoff)
	}
	if head, err = ds.SliceRows(0, cutoff); err != nil {
		return nil, nil, err
	}
	if tail, err = ds.SliceRows(cutoff, n); err != nil {
		return nil, nil, err
	}
	return head, tail, nil
}
