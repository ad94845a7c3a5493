package export

import (
	"fmt"
	"strings"

	"github.com/repoatlas/repoatlas/internal/workflow"
)

// GenerateMermaid produces Mermaid "graph TD" source from a workflow.
// Clustered nodes render inside subgraphs; edges carry their labels.
func GenerateMermaid(wf *workflow.RepositoryWorkflow) string {
	// Stable alphanumeric ids keyed by first appearance.
	ids := make(map[string]string, len(wf.Nodes))
	next := 0
	getID := func(nodeID string) string {
		if id, ok := ids[nodeID]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", next)
		next++
		ids[nodeID] = id
		return id
	}

	clustered := make(map[string]bool)
	for _, c := range wf.Clusters {
		for _, id := range c.NodeIDs {
			clustered[id] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, c := range wf.Clusters {
		fmt.Fprintf(&sb, "    subgraph C%d[%q]\n", i, c.Name)
		for _, id := range c.NodeIDs {
			fmt.Fprintf(&sb, "        %s[%q]\n", getID(id), id)
		}
		sb.WriteString("    end\n")
	}

	for _, n := range wf.Nodes {
		if !clustered[n.ID] {
			fmt.Fprintf(&sb, "    %s[%q]\n", getID(n.ID), n.ID)
		}
	}

	for _, e := range wf.Edges {
		if e.Label != "" {
			fmt.Fprintf(&sb, "    %s -->|%s| %s\n", getID(e.Source), e.Label, getID(e.Target))
		} else {
			fmt.Fprintf(&sb, "    %s --> %s\n", getID(e.Source), getID(e.Target))
		}
	}

	return sb.String()
}
