package certcrawl

import (
	"fmt"
	"io"
)

// Progress observes a crawl, it has no influence on the result.
type Progress interface {
	// called after every attempted page
	Update(done, total int)
	// called once the crawl completed
	Done(errorPages []string)
	// called instead of Done when the crawl stops on an error
	Abort()
}

type NopProgress struct{}

func (NopProgress) Update(int, int) {}
func (NopProgress) Done([]string)   {}
func (NopProgress) Abort()          {}

// ConsoleProgress rewrites a single progress line in place and lists the
// pages that could not be parsed once the crawl is over.
type ConsoleProgress struct {
	out     io.Writer
	started bool
}

func NewConsoleProgress(out io.Writer) *ConsoleProgress {
	return &ConsoleProgress{out: out}
}

func (p *ConsoleProgress) Update(done, total int) {
	p.started = true
	fmt.Fprintf(p.out, "\rprocessing... %d/%d (%d%%)", done, total, done*100/total)
}

func (p *ConsoleProgress) endLine() {
	if p.started {
		fmt.Fprintln(p.out)
		p.started = false
	}
}

// Abort ends the progress line so later output starts on its own line.
func (p *ConsoleProgress) Abort() {
	p.endLine()
}

func (p *ConsoleProgress) Done(errorPages []string) {
	p.endLine()
	if len(errorPages) == 0 {
		return
	}
	fmt.Fprintln(p.out, "[+]error pages.")
	for _, page := range errorPages {
		fmt.Fprintln(p.out, page)
	}
}
