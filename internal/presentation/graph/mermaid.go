package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/heartsquest/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps   []domain.StepID
	CompletedNodes []domain.StepID
	CurrentStep    domain.StepID
}

// OverlayFrom builds the overlay of one session snapshot.
func OverlayFrom(p *domain.Progress) *GraphOverlay {
	if p == nil {
		return nil
	}
	return &GraphOverlay{
		VisitedSteps:   p.History,
		CompletedNodes: p.Completed,
		CurrentStep:    p.CurrentStep,
	}
}

// GenerateMermaid produces a Mermaid flowchart syntax string from the step graph.
// It applies semantic styling:
// - Intro/Final: ((Circle))
// - Hub: {{Hexagon}}
// - Trivia: [/Parallelogram/]
// - Mini-games: [[Subroutine]]
// - Calculating: ([Stadium])
// - Default: [Rectangle]
// It also applies overlay styles (Visited/Completed/Current) if provided.
func GenerateMermaid(steps []domain.Step, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range steps {
		safeID := sanitizeMermaidID(string(step.ID))

		opener, closer := "[", "]"
		switch {
		case step.Kind == domain.KindIntro || step.Kind == domain.KindFinal:
			opener, closer = "((", "))"
		case step.Kind == domain.KindHub:
			opener, closer = "{{", "}}"
		case step.Kind == domain.KindTrivia:
			opener, closer = "[/", "/]"
		case step.Kind == domain.KindCalculating:
			opener, closer = "([", "])"
		case step.Kind.IsGame():
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, step.ID, closer)

		for _, e := range step.Edges {
			safeTo := sanitizeMermaidID(string(e.To))
			var arrow string
			switch e.On {
			case domain.TriggerContinue:
				arrow = "-->"
			case domain.TriggerTimer:
				arrow = "-. \"⏱️ timer\" .->"
			case domain.TriggerReset:
				arrow = "-. \"reset\" .->"
			default:
				arrow = fmt.Sprintf("-- \"%s\" -->", e.On)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, safeTo)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef completed fill:#fce4ec,stroke:#c2185b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		apply := func(ids []domain.StepID, class string) {
			for _, id := range ids {
				safeID := sanitizeMermaidID(string(id))
				if safeID == "" || styled[safeID] || id == overlay.CurrentStep {
					continue
				}
				styled[safeID] = true
				fmt.Fprintf(&sb, "    class %s %s;\n", safeID, class)
			}
		}
		// Completed wins over visited.
		apply(overlay.CompletedNodes, "completed")
		apply(overlay.VisitedSteps, "visited")

		if overlay.CurrentStep != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
