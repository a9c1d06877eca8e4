package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/layerview/layerview/pkg/layers"
	"github.com/layerview/layerview/pkg/view"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(paletteAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(paletteValue)
	listDimStyle      = lipgloss.NewStyle().Foreground(paletteMuted)
)

// newInspectCmd creates the inspect command, an interactive browser over the
// configured layer stack.
func newInspectCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Interactively browse and toggle layers",
		Long: `Inspect builds the configured layer stack and opens an interactive list.
Layers can be toggled visible/hidden, promoted to main, or reordered; the
final option state is printed on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			spin := newSpinnerWithContext(ctx, "Building layer stack...")
			spin.Start()
			v, err := cfg.buildView(ctx, view.NoopStateSink{})
			spin.Stop()
			if err != nil {
				return err
			}
			if spin.Cancelled() {
				return ctx.Err()
			}

			model := newLayerListModel(v)
			prog := tea.NewProgram(model, tea.WithContext(ctx))
			final, err := prog.Run()
			if err != nil {
				return err
			}

			m := final.(layerListModel)
			if m.dirty {
				printNewline()
				printSuccess("Final layer state")
				for _, alias := range m.view.Aliases() {
					layer, err := m.view.Layer(alias)
					if err != nil {
						continue
					}
					visible, _ := layer.Option("visible").(bool)
					state := "hidden"
					if visible {
						state = "visible"
					}
					printKeyValue(alias, fmt.Sprintf("%s, %s", layer.Kind(), state))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "layerview.toml", "path to the TOML config file")

	return cmd
}

// layerListModel is the bubbletea model for interactive layer inspection.
type layerListModel struct {
	view   *view.View2D
	Cursor int
	Height int
	Offset int
	dirty  bool
	errMsg string
}

func newLayerListModel(v *view.View2D) layerListModel {
	return layerListModel{
		view:   v,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m layerListModel) Init() tea.Cmd {
	return nil
}

func (m layerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.view.Len()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			m.toggleVisible()
		case "m":
			m.promoteMain()
		case "f":
			m.toggleForeground()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m *layerListModel) currentLayer() layers.Layer {
	layer, err := m.view.Layer(m.Cursor)
	if err != nil {
		return nil
	}
	return layer
}

func (m *layerListModel) toggleVisible() {
	layer := m.currentLayer()
	if layer == nil {
		return
	}
	visible, _ := layer.Option("visible").(bool)
	if err := layer.SetOptions(layers.Options{"visible": !visible}, true); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.dirty = true
	m.errMsg = ""
}

func (m *layerListModel) toggleForeground() {
	layer := m.currentLayer()
	if layer == nil {
		return
	}
	fg, _ := layer.Option("foreground").(bool)
	if err := layer.SetOptions(layers.Options{"foreground": !fg}, true); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.dirty = true
	m.errMsg = ""
}

func (m *layerListModel) promoteMain() {
	layer := m.currentLayer()
	if layer == nil {
		return
	}
	if err := m.view.SetMainLayer(layer); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.dirty = true
	m.errMsg = ""
}

func (m layerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layers"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  m main  f foreground  q quit"))
	b.WriteString("\n\n")

	all := m.view.Layers()
	main := m.view.MainLayer()

	end := m.Offset + m.Height
	if end > len(all) {
		end = len(all)
	}

	for i := m.Offset; i < end; i++ {
		layer := all[i]
		alias, _ := m.view.AliasOf(layer)

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		visible, _ := layer.Option("visible").(bool)
		eye := " "
		if visible {
			eye = "●"
		}

		mainMark := " "
		if layer == main {
			mainMark = StyleHighlight.Render("M")
		}

		shape := layer.Shape()
		domain := layer.Domain()
		line := fmt.Sprintf("%s%s %s %-20s %-10s %4.0fx%-4.0f dom %.0fx%.0f",
			cursor, eye, mainMark, alias, layer.Kind(), shape.H, shape.W, domain.H, domain.W)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case !visible:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(StyleWarning.Render("  " + m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(all))))

	return b.String()
}
