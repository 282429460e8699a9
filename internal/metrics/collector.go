// Package metrics tracks byte, token, and line counts for the documents a
// run emits. Counting happens on a small worker pool so tiktoken encoding
// never blocks the output stream; the collector is drained with Wait before
// any totals are read.
package metrics

import (
	"encoding/json"
	"sync"
)

// Item holds the counts for a single document.
type Item struct {
	Bytes  int `json:"bytes"`
	Tokens int `json:"tokens"`
	Lines  int `json:"lines"`
}

// add accumulates other into the item.
func (it *Item) add(other Item) {
	it.Bytes += other.Bytes
	it.Tokens += other.Tokens
	it.Lines += other.Lines
}

// job is a pending count of one document's content.
type job struct {
	path    string
	content []byte
}

// Collector accumulates per-document metrics keyed by path.
type Collector struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	jobs  chan job
	items map[string]Item
	ctr   Counter
}

// NewCollector creates a Collector that counts with ctr on the given number
// of background workers.
func NewCollector(ctr Counter, workers int) *Collector {
	if workers < 1 {
		workers = 1
	}

	c := &Collector{
		jobs:  make(chan job, workers*2),
		items: make(map[string]Item),
		ctr:   ctr,
	}

	c.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go c.worker()
	}
	return c
}

func (c *Collector) worker() {
	defer c.wg.Done()

	for j := range c.jobs {
		b, tokens, lines := c.ctr.Count(string(j.content))

		c.mu.Lock()
		item := c.items[j.path]
		item.add(Item{Bytes: b, Tokens: tokens, Lines: lines})
		c.items[j.path] = item
		c.mu.Unlock()
	}
}

// Add queues the content of one emitted document for counting.
func (c *Collector) Add(path string, content []byte) {
	c.jobs <- job{path: path, content: content}
}

// Wait drains the pending jobs and stops the workers. It is idempotent.
func (c *Collector) Wait() {
	c.mu.Lock()
	if c.jobs != nil {
		close(c.jobs)
		c.jobs = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// Items returns a snapshot of the per-document counts. Call Wait first to
// make sure every queued document has been counted.
func (c *Collector) Items() map[string]Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Item, len(c.items))
	for k, v := range c.items {
		out[k] = v
	}
	return out
}

// Total returns the sum over all counted documents.
func (c *Collector) Total() Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum Item
	for _, v := range c.items {
		sum.add(v)
	}
	return sum
}

// Len returns the number of counted documents.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// report is the JSON shape written by MarshalJSON.
type report struct {
	Files map[string]Item `json:"files"`
	Total Item            `json:"total"`
	Count int             `json:"count"`
}

// MarshalJSON renders the collected metrics as a single JSON object with
// per-file counts, the run total, and the document count.
func (c *Collector) MarshalJSON() ([]byte, error) {
	return json.Marshal(report{
		Files: c.Items(),
		Total: c.Total(),
		Count: c.Len(),
	})
}
