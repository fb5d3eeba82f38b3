package domain

// StepID names one screen in the experience.
type StepID string

// Step is the graph-facing description of a screen. The content table owns
// the full definition (prompts, rules, mini-game params); Step is what the
// view model and the graph tools need.
type Step struct {
	ID    StepID   `json:"id" yaml:"id"`
	Kind  StepKind `json:"kind" yaml:"kind"`
	Title string   `json:"title,omitempty" yaml:"title,omitempty"`
	Body  string   `json:"body,omitempty" yaml:"body,omitempty"`

	// Button and Placeholder label the main control of the screen.
	Button      string `json:"button,omitempty" yaml:"button,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`

	// Node is the map node this step belongs to, if any.
	Node StepID `json:"node,omitempty" yaml:"node,omitempty"`

	// Edges lists the possible paths out of this step.
	Edges []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Node is a visitable unit of content on the map.
type Node struct {
	ID    StepID `json:"id" yaml:"id" mapstructure:"id"`
	Order int    `json:"order" yaml:"order" mapstructure:"order"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty" mapstructure:"icon"`
}

// NodeStatus is a Node with its derived state for one Progress.
type NodeStatus struct {
	Node
	Unlocked  bool `json:"unlocked"`
	Completed bool `json:"completed"`
	Active    bool `json:"active"`
}

// StatusOf derives the node's state from a progress snapshot.
func StatusOf(n Node, p *Progress) NodeStatus {
	return NodeStatus{
		Node:      n,
		Unlocked:  n.Order <= p.HighestUnlocked,
		Completed: p.HasCompleted(n.ID),
		Active:    n.Order == p.HighestUnlocked,
	}
}
