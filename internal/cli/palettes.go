package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dailyart/pkg/palette"
)

// palettesCommand creates the palettes command.
func (c *CLI) palettesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "palettes",
		Short: "List the available palettes",
		Long: `List the palettes a date can draw from, in draw order.

Custom palettes from the config file are appended after the built-in ones.
Adding one changes which palette existing dates draw.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			fmt.Fprintln(uiOut, paletteTable(reg.All()))
			return nil
		},
	}
}

// paletteTable renders palettes as a table with color swatches.
func paletteTable(ps []palette.Palette) string {
	rows := make([][]string, len(ps))
	for i, p := range ps {
		lines := make([]string, len(p.Lines))
		for j, l := range p.Lines {
			lines[j] = swatch(l)
		}
		rows[i] = []string{
			fmt.Sprint(i),
			p.Name,
			swatch(p.BgStart) + " " + swatch(p.BgEnd),
			strings.Join(lines, " "),
			swatch(p.Grid),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Name", "Background", "Lines", "Grid").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleDim
			case col == 1:
				return StyleValue
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
