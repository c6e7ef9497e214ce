package content

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed intro.yaml
var introYAML []byte

var (
	introOnce sync.Once
	intro     *Adventure
	introErr  error
)

// Default returns the built-in starter adventure.
func Default() (*Adventure, error) {
	introOnce.Do(func() {
		intro, introErr = Parse(introYAML)
		if introErr != nil {
			introErr = fmt.Errorf("embedded adventure: %w", introErr)
			return
		}
		if err := intro.Validate(); err != nil {
			intro, introErr = nil, fmt.Errorf("embedded adventure: %w", err)
		}
	})
	return intro, introErr
}
