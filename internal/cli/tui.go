package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/inkog-io/dashboard-sub000/pkg/detail"
	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var findingsPath string

	cmd := &cobra.Command{
		Use:   "inspect <topology.json>",
		Short: "Browse the render model interactively",
		Long: `Inspect computes the render model for a topology and opens an
interactive browser over its nodes. Selecting a node shows the same detail
content the dashboard panel would display.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			t, err := readTopologyArg(args[0])
			if err != nil {
				return err
			}

			var findings []topology.Finding
			if findingsPath != "" {
				findings, err = topology.ReadFindingsFile(findingsPath)
				if err != nil {
					return err
				}
			}

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			opts := c.pipelineOptions()
			opts.Topology = t
			model, report, err := runner.ComputeModel(ctx, opts)
			if err != nil {
				return err
			}
			reportDegradations(report)

			p := tea.NewProgram(NewNodeListModel(model, findings))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&findingsPath, "findings", "", "Path to the scanner findings JSON")

	return cmd
}

// =============================================================================
// NodeListModel - Interactive node browser
// =============================================================================

// NodeListModel is the bubbletea model for browsing render nodes. Enter
// opens the detail view for the highlighted node; esc returns to the list.
type NodeListModel struct {
	Nodes    []render.Node
	Findings []topology.Finding
	Cursor   int
	Height   int
	Offset   int
	Detail   *render.Node
}

// NewNodeListModel creates a new node browser over the render model.
func NewNodeListModel(m render.Model, findings []topology.Finding) NodeListModel {
	return NodeListModel{
		Nodes:    m.Nodes,
		Findings: findings,
		Height:   15,
	}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Detail != nil {
				m.Detail = nil
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Detail == nil && m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Detail == nil && m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if m.Detail == nil && len(m.Nodes) > 0 {
				node := m.Nodes[m.Cursor]
				m.Detail = &node
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m NodeListModel) View() string {
	if m.Detail != nil {
		return m.detailView()
	}
	return m.listView()
}

func (m NodeListModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Topology Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  (empty model)"))
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Nodes) {
		end = len(m.Nodes)
	}

	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s %-32s %-10s %s",
			cursor, riskBadge(n.RiskLevel), n.Label, n.Kind, listDimStyle.Render(nodeAnnotation(n)))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if n.Kind == render.KindGhost {
			b.WriteString(listDimStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))

	return b.String()
}

func (m NodeListModel) detailView() string {
	n := *m.Detail
	d := detail.Resolve(n, m.Findings)

	var b strings.Builder
	b.WriteString(StyleTitle.Render(n.Label))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  kind  %s\n", StyleValue.Render(string(n.Kind))))
	b.WriteString(fmt.Sprintf("  risk  %s\n", riskBadge(n.RiskLevel)+" "+string(n.RiskLevel)))
	if n.Location != nil && n.Location.File != "" {
		b.WriteString(fmt.Sprintf("  at    %s:%d\n", n.Location.File, n.Location.Line))
	}
	for _, reason := range n.RiskReasons {
		b.WriteString("  " + listDimStyle.Render("- "+reason) + "\n")
	}

	if len(d.MergedMembers) > 0 {
		b.WriteString("\n" + StyleHighlight.Render("Merged members") + "\n")
		for _, ref := range d.MergedMembers {
			b.WriteString("  " + ref.ID + "\n")
		}
	}

	if len(d.Findings) > 0 {
		b.WriteString("\n" + StyleHighlight.Render("Findings") + "\n")
		for _, f := range d.Findings {
			b.WriteString(fmt.Sprintf("  %s %s\n", riskBadge(f.Severity), f.Title))
		}
	}

	if d.Remediation != nil {
		b.WriteString("\n" + StyleHighlight.Render(d.Remediation.Title) + "\n")
		for i, step := range d.Remediation.Steps {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	return b.String()
}

// riskBadge returns a colored marker for a risk level.
func riskBadge(level topology.RiskLevel) string {
	switch level {
	case topology.RiskCritical, topology.RiskHigh:
		return styleRiskHigh.Render("●")
	case topology.RiskMedium:
		return styleRiskMed.Render("●")
	default:
		return styleRiskLow.Render("●")
	}
}

// nodeAnnotation summarizes kind-specific extras for the list line.
func nodeAnnotation(n render.Node) string {
	switch n.Kind {
	case render.KindSupernode:
		return fmt.Sprintf("x%d", n.MergedCount)
	case render.KindGhost:
		return "missing " + string(n.MissingControl)
	case render.KindGroup:
		return "scope"
	default:
		return ""
	}
}
