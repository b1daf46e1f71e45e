package program

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/inercia/go-llm-programs/pkg/llm"
	"github.com/inercia/go-llm-programs/pkg/signature"
	"github.com/inercia/go-llm-programs/pkg/tools"
)

const (
	// DefaultMaxIters bounds the ReAct loop when no limit is given.
	DefaultMaxIters = 5
	// FinishTool is the pseudo tool that ends the ReAct loop.
	FinishTool = "finish"
	// TrajectoryField is the input carrying the formatted trajectory.
	TrajectoryField = "trajectory"
)

var reactInstructions = llm.MustPromptTemplate(`{{if .Base}}{{.Base}}

{{end}}You are an Agent. In each episode, you will be given the fields {{join .Inputs ", "}} as input. And you can see your past trajectory so far.
Your goal is to use one or more of the supplied tools to collect any necessary information for producing {{join .Outputs ", "}}.

To do this, you will interleave next_thought, next_tool_name, and next_tool_args in each turn, and also when finishing the task.
After each tool call, you receive a resulting observation, which gets appended to your trajectory.

When writing next_thought, you may reason about the current situation and plan for future steps.
When selecting the next_tool_name and its next_tool_args, the tool must be one of:
{{range $i, $t := .Tools}}
({{add $i 1}}) {{$t.Name}}, whose description is <desc>{{$t.Description}}</desc>. It takes arguments {{$t.Args}}.{{end}}
When providing ` + "`next_tool_args`" + `, the value inside the field must be in JSON format`)

type toolView struct {
	Name        string
	Description string
	Args        string
}

// ReAct alternates model-chosen tool calls with observations, then extracts
// the final outputs from the trajectory
type ReAct struct {
	cfg      Config
	sig      signature.Signature
	tools    map[string]tools.Tool
	maxIters int
	step     *Predict
	extract  *ChainOfThought
}

// NewReAct creates a tool-using agent for sig. maxIters <= 0 means DefaultMaxIters.
func NewReAct(cfg Config, sig signature.Signature, toolset []tools.Tool, maxIters int) (*ReAct, error) {
	if maxIters <= 0 {
		maxIters = DefaultMaxIters
	}

	byName := make(map[string]tools.Tool, len(toolset))
	views := make([]toolView, 0, len(toolset)+1)
	for _, t := range toolset {
		if t.Name() == FinishTool {
			return nil, fmt.Errorf("tool name %q is reserved", FinishTool)
		}
		if _, dup := byName[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name())
		}
		byName[t.Name()] = t
		args, err := jsonCompact(toolProperties(t))
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name(), err)
		}
		views = append(views, toolView{Name: t.Name(), Description: t.Description(), Args: args})
	}

	outputs := quoted(sig.OutputNames())
	views = append(views, toolView{
		Name: FinishTool,
		Description: "Marks the task as complete. That is, signals that all information for producing the outputs, i.e. " +
			strings.Join(outputs, ", ") + ", are now available to be extracted.",
		Args: "{}",
	})

	instructions, err := reactInstructions.Render(map[string]any{
		"Base":    sig.Instructions,
		"Inputs":  quoted(sig.InputNames()),
		"Outputs": outputs,
		"Tools":   views,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering agent instructions: %w", err)
	}

	stepSig, err := signature.New(instructions,
		append(append([]signature.Field(nil), sig.Inputs...), signature.Field{Name: TrajectoryField}),
		[]signature.Field{
			{Name: "next_thought"},
			{Name: "next_tool_name", Description: "one of " + strings.Join(toolNames(views), ", ")},
			{Name: "next_tool_args", Type: signature.TypeDict, Annotation: "dict[str, Any]"},
		})
	if err != nil {
		return nil, err
	}

	return &ReAct{
		cfg:      cfg,
		sig:      sig,
		tools:    byName,
		maxIters: maxIters,
		step:     NewPredict(cfg, stepSig),
		extract:  NewChainOfThought(cfg, sig.AppendInput(signature.Field{Name: TrajectoryField})),
	}, nil
}

// Forward implements Module. The returned prediction carries the trajectory.
func (r *ReAct) Forward(ctx context.Context, inputs Inputs) (*Prediction, error) {
	if r.cfg.Client == nil {
		return nil, ErrNoClient
	}
	if err := checkInputs(r.sig, inputs); err != nil {
		return nil, err
	}
	logger := r.cfg.logger()

	var (
		trajectory []Step
		usage      llm.Usage
	)
	for i := 0; i < r.maxIters; i++ {
		stepInputs := withInput(inputs, TrajectoryField, formatTrajectory(trajectory))
		pred, err := r.step.Forward(ctx, stepInputs)
		var perr *ParseError
		if errors.As(err, &perr) {
			logger.Warn("agent step could not be parsed, ending the loop", "iteration", i, "error", err)
			break
		}
		if err != nil {
			return nil, err
		}
		usage = usage.Add(pred.Usage)

		step := Step{
			Thought:  pred.String("next_thought"),
			ToolName: strings.TrimSpace(pred.String("next_tool_name")),
		}
		if args, ok := pred.Fields["next_tool_args"].(map[string]any); ok {
			step.ToolArgs = args
		}
		if step.ToolArgs == nil {
			step.ToolArgs = map[string]any{}
		}

		if step.ToolName == FinishTool {
			step.Observation = "Completed."
			trajectory = append(trajectory, step)
			break
		}
		step.Observation = r.runTool(ctx, step.ToolName, step.ToolArgs)
		logger.Debug("agent step", "iteration", i, "tool", step.ToolName, "observation", step.Observation)
		trajectory = append(trajectory, step)
	}

	final, err := r.extract.Forward(ctx, withInput(inputs, TrajectoryField, formatTrajectory(trajectory)))
	if err != nil {
		return nil, err
	}
	final.Trajectory = trajectory
	final.Usage = final.Usage.Add(usage)
	return final, nil
}

func (r *ReAct) runTool(ctx context.Context, name string, args map[string]any) string {
	t, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Execution error in %s: unknown tool", name)
	}
	result, err := t.Call(ctx, args)
	if err != nil {
		return fmt.Sprintf("Execution error in %s: %v", name, err)
	}
	return FormatValue(result)
}

func formatTrajectory(steps []Step) string {
	var sb strings.Builder
	for i, s := range steps {
		args, err := json.Marshal(s.ToolArgs)
		if err != nil {
			args = []byte("{}")
		}
		fmt.Fprintf(&sb, "[[ ## thought_%d ## ]]\n%s\n\n", i, s.Thought)
		fmt.Fprintf(&sb, "[[ ## tool_name_%d ## ]]\n%s\n\n", i, s.ToolName)
		fmt.Fprintf(&sb, "[[ ## tool_args_%d ## ]]\n%s\n\n", i, args)
		fmt.Fprintf(&sb, "[[ ## observation_%d ## ]]\n%s\n\n", i, s.Observation)
	}
	return strings.TrimSpace(sb.String())
}

func toolProperties(t tools.Tool) any {
	if props, ok := t.Schema()["properties"]; ok {
		return props
	}
	return map[string]any{}
}

func toolNames(views []toolView) []string {
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = quoteName(v.Name)
	}
	return names
}

func quoted(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteName(n)
	}
	return out
}

func quoteName(n string) string { return "`" + n + "`" }

func withInput(inputs Inputs, name string, value any) Inputs {
	out := make(Inputs, len(inputs)+1)
	for k, v := range inputs {
		out[k] = v
	}
	out[name] = value
	return out
}
