package ui

import "fmt"

// Progress renders a single-line in-place progress counter for the
// detail resolution phase.
type Progress struct {
	total     int
	processed int
}

// NewProgress creates a progress counter over total items
func NewProgress(total int) *Progress {
	return &Progress{total: total}
}

// Advance records n more processed items and redraws the line
func (p *Progress) Advance(n int) {
	p.processed += n
	if quietMode || p.total == 0 {
		return
	}

	percentage := float64(p.processed) / float64(p.total) * 100
	fmt.Printf("\rProgress: %.2f%% - Processed %d of %d followers", percentage, p.processed, p.total)
}

// Done finishes the progress line
func (p *Progress) Done() {
	if quietMode {
		return
	}
	if p.total > 0 {
		fmt.Println()
	}
}
