package orchestrator

import "fmt"

func errUnknownCapability(name string) error {
	return fmt.Errorf("orchestrator: unknown capability %q", name)
}
