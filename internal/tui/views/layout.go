package views

// DefaultChrome is the number of rows outside the editor and the response
// slot: the tab bar with its rule and the two footer lines.
const DefaultChrome = 4

// Coordinator caches the response height of each tab.
type Coordinator struct {
	chrome  int
	heights map[string]int
}

// NewCoordinator creates a coordinator that reserves chrome rows.
func NewCoordinator(chrome int) *Coordinator {
	if chrome < 0 {
		chrome = 0
	}
	return &Coordinator{
		chrome:  chrome,
		heights: make(map[string]int),
	}
}

// Report records a new editor height for key and reports whether the
// cached response height changed. Reports without a container or with a
// non-positive editor height are ignored.
func (c *Coordinator) Report(key string, containerHeight int, hasContainer bool, editorHeight int) bool {
	if !hasContainer || editorHeight <= 0 {
		return false
	}
	h := containerHeight - editorHeight - c.chrome
	if cur, ok := c.heights[key]; ok && cur == h {
		return false
	}
	c.heights[key] = h
	return true
}

// Height returns the cached response height for key.
func (c *Coordinator) Height(key string) (int, bool) {
	h, ok := c.heights[key]
	return h, ok
}

// Forget drops the cached height for key.
func (c *Coordinator) Forget(key string) {
	delete(c.heights, key)
}

// Chrome returns the reserved rows.
func (c *Coordinator) Chrome() int {
	return c.chrome
}
