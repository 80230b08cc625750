package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dailyart/pkg/gallery"
)

// galleryCommand creates the gallery command.
func (c *CLI) galleryCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Inspect previously generated images",
	}
	cmd.PersistentFlags().StringVarP(&out, "out", "o", "", "output directory holding the gallery (default from config)")

	cmd.AddCommand(c.galleryListCommand(&out))
	cmd.AddCommand(c.galleryShowCommand(&out))
	cmd.AddCommand(c.galleryBrowseCommand(&out))
	return cmd
}

// openGallery resolves the output directory and opens its store.
func (c *CLI) openGallery(cmd *cobra.Command, out string) (gallery.Store, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	return c.newGallery(cmd.Context(), pick(out, cfg.OutputDir))
}

func (c *CLI) galleryListCommand(out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List generated images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openGallery(cmd, *out)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("Gallery is empty")
				printNextStep("Start with", appName+" generate")
				return nil
			}
			fmt.Fprintln(uiOut, galleryTable(entries))
			printDetail("%s images", StyleNumber.Render(fmt.Sprint(len(entries))))
			return nil
		},
	}
}

func (c *CLI) galleryShowCommand(out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <date>",
		Short: "Show the gallery entry for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openGallery(cmd, *out)
			if err != nil {
				return err
			}
			defer store.Close()

			e, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEntry(e)
			return nil
		},
	}
}

func (c *CLI) galleryBrowseCommand(out *string) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse generated images interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openGallery(cmd, *out)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("Gallery is empty")
				return nil
			}

			p := tea.NewProgram(NewGalleryListModel(entries), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("gallery browser: %w", err)
			}
			if m, ok := final.(GalleryListModel); ok && m.Selected != nil {
				printEntry(*m.Selected)
			}
			return nil
		},
	}
}

// printEntry prints every field of a gallery entry.
func printEntry(e gallery.Entry) {
	fmt.Fprintln(uiOut, StyleTitle.Render(e.Date))
	printKeyValue("Seed", e.Seed)
	printKeyValue("Palette", e.Palette)
	printKeyValue("Style", e.Style)
	printKeyValue("Size", fmt.Sprintf("%dx%d %s", e.Width, e.Height, e.Format))
	printFile(e.Path)
	if e.Thumb != "" {
		printFile(e.Thumb)
	}
}

// galleryTable renders entries as a static table.
func galleryTable(entries []gallery.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Date, e.Palette, e.Style, fmt.Sprintf("%dx%d", e.Width, e.Height), e.Path}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Date", "Palette", "Style", "Size", "Path").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col >= 3:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
