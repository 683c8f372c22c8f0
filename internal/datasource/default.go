package datasource

import (
	_ "embed"
	"fmt"
)

//go:embed default.yaml
var builtinScenario []byte

// Default returns the built-in scenario used when no file is discovered.
func Default() *Scenario {
	s, err := Parse(builtinScenario)
	if err != nil {
		panic(fmt.Sprintf("datasource: built-in scenario: %v", err))
	}
	return s
}
