package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/gusta765/portfolio/internal/assets"
	"github.com/gusta765/portfolio/internal/config"
	"github.com/gusta765/portfolio/internal/content"
)

var (
	projectsFile string
	projectsJSON bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Parse the content file and list the projects it publishes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(v)
		if err != nil {
			return err
		}
		path := projectsFile
		if path == "" {
			path = cfg.Content.Path
		}

		var text string
		if cfg.Content.URL != "" && projectsFile == "" {
			text, err = content.Fetch(cmd.Context(), nil, cfg.Content.URL)
		} else {
			text, err = content.LoadFile(path)
		}
		if err != nil {
			return err
		}

		doc := content.Parse(text)
		listing := projectListing{
			Projects: content.ExtractProjects(doc),
			Profile:  content.ExtractProfile(doc),
			Sections: doc.Names(),
		}

		images := scanListingImages(os.DirFS(cfg.Assets.Root), cfg.Assets, cmd.ErrOrStderr())

		if projectsJSON {
			return writeListingJSON(cmd.OutOrStdout(), listing)
		}
		writeListing(cmd.OutOrStdout(), listing, images)
		return nil
	},
}

func init() {
	projectsCmd.Flags().StringVarP(&projectsFile, "file", "f", "", "content file (default content.path)")
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "print JSON instead of a table")
}

// scanListingImages builds the image table for the listing. A failed scan
// prints a warning to errOut and falls back to unresolved paths.
func scanListingImages(fsys fs.FS, cfg config.AssetsConfig, errOut io.Writer) *assets.Table {
	images, err := assets.Scan(fsys, cfg.Dir, cfg.Prefix)
	if err != nil {
		fmt.Fprintln(errOut, dimStyle.Render("warning: image scan failed, using fallback paths: "+err.Error()))
		return nil
	}
	return images
}

type projectListing struct {
	Projects []content.Project `json:"projects"`
	Profile  *content.Profile  `json:"profile"`
	Sections []string          `json:"sections"`
}

func writeListingJSON(w io.Writer, l projectListing) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// writeListing prints the projects as a table with their resolved image URLs.
func writeListing(w io.Writer, l projectListing, images *assets.Table) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d projects", len(l.Projects))))

	rows := make([][]string, 0, len(l.Projects))
	for _, p := range l.Projects {
		rows = append(rows, []string{
			p.ID,
			p.Title,
			images.Resolve(p.ImagePath),
			strings.Join(p.Tags, ", "),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "IMAGE", "TAGS").
		Rows(rows...)
	fmt.Fprintln(w, t.String())

	if l.Profile != nil {
		fmt.Fprintf(w, "profile photo: %s\n", images.Resolve(l.Profile.PhotoPath))
	}
	fmt.Fprintln(w, dimStyle.Render("sections: "+strings.Join(l.Sections, ", ")))
}
