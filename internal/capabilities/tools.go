package capabilities

import (
	"context"
	"fmt"

	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
)

// listContainersTool lets the reasoner enumerate every container the runtime
// reports (running or not, whether or not it is in the topology), along with
// its current runtime status.
func listContainersTool(deps *Deps) reasoner.Tool {
	return reasoner.Tool{
		Name:        "list_containers",
		Description: "List every container the runtime reports and its current runtime status.",
		Parameters:  objectSchema(map[string]any{}),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			if deps.Runtime == nil {
				return map[string]any{"error": "container runtime unavailable"}, nil
			}
			containers, err := deps.Runtime.ListContainers(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]map[string]any, len(containers))
			for i, c := range containers {
				out[i] = map[string]any{"name": c.Name, "image": c.Image, "status": c.Status, "state": c.State}
			}
			return map[string]any{"containers": out}, nil
		},
	}
}

// inspectContainerTool lets the reasoner check a single container's current
// health, the mechanism a stale incident (one whose failure has already
// self-healed) is discarded by.
func inspectContainerTool(deps *Deps) reasoner.Tool {
	return reasoner.Tool{
		Name:        "inspect_container",
		Description: "Inspect one container by name and report its current status and state.",
		Parameters:  objectSchema(map[string]any{"name": stringProp()}, "name"),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			if deps.Runtime == nil {
				return map[string]any{"error": "container runtime unavailable"}, nil
			}
			name := getString(args, "name")
			c, err := deps.Runtime.InspectContainer(ctx, name)
			if err != nil {
				return map[string]any{"error": err.Error()}, nil
			}
			return map[string]any{"name": c.Name, "image": c.Image, "status": c.Status, "state": c.State}, nil
		},
	}
}

// askUserTool lets the reasoner ask the operator a single clarifying
// question during feasibility assessment. The answer is persisted to the
// knowledge store so later incidents are asked less.
func askUserTool(deps *Deps) reasoner.Tool {
	return reasoner.Tool{
		Name:        "ask_user",
		Description: "Ask the operator one clarifying question needed to assess feasibility, and return their answer.",
		Parameters:  objectSchema(map[string]any{"question": stringProp()}, "question"),
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			question := getString(args, "question")
			if question == "" {
				return map[string]any{"error": "question must not be empty"}, nil
			}
			answer, err := deps.Human.AskFeasibility(question)
			if err != nil {
				return nil, err
			}
			if deps.Knowledge != nil {
				if err := deps.Knowledge.Append(question, answer); err != nil {
					return nil, fmt.Errorf("persisting answer: %w", err)
				}
			}
			return map[string]any{"answer": answer}, nil
		},
	}
}

// inspectionTools is the set every analysis-adjacent capability offers so
// the reasoner can ground its judgment in current container state rather
// than the logs alone.
func inspectionTools(deps *Deps) []reasoner.Tool {
	return []reasoner.Tool{listContainersTool(deps), inspectContainerTool(deps)}
}
