package ui

import "fmt"

// DownloadProgress renders a single-line percentage readout for one file as
// its chunks arrive. When the server did not report a content length the line
// shows a byte count instead of a percentage.
type DownloadProgress struct {
	name     string
	total    int64
	received int64
	depth    int
}

// NewDownloadProgress starts a progress line for a file. A total of zero means
// the content length is unknown.
func NewDownloadProgress(depth int, name string, total int64) *DownloadProgress {
	p := &DownloadProgress{name: name, total: total, depth: depth}
	p.render()
	return p
}

// Add records n more received bytes and redraws the line
func (p *DownloadProgress) Add(n int64) {
	p.received += n
	p.render()
}

// Finish terminates the progress line
func (p *DownloadProgress) Finish() {
	if quietMode {
		return
	}
	fmt.Println()
}

func (p *DownloadProgress) render() {
	if quietMode {
		return
	}
	if p.total > 0 {
		perc := float64(p.received) / float64(p.total) * 100
		fmt.Printf("\r%s%s", pad(p.depth), Green(fmt.Sprintf("+ %3.0f%% | %s", perc, p.name)))
		return
	}
	fmt.Printf("\r%s%s", pad(p.depth), Green(fmt.Sprintf("+ %d bytes | %s", p.received, p.name)))
}
