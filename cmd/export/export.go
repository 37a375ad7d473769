// Package export implements the CSV and HTML report commands.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/butterfly-go/internal/bootstrap"
	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/export"
)

// Command creates the export command tree.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a survey list as CSV or HTML",
	}

	cmd.AddCommand(
		csvCommand(settings),
		htmlCommand(settings),
	)

	cmd.PersistentFlags().StringVar(&settings.Export.Path, "out", viper.GetString("export.path"), "Directory for exported files")

	return cmd
}

func csvCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "csv <list-id>",
		Short: "Export one row per observation as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(settings, args[0], "csv")
		},
	}
}

func htmlCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "html <list-id>",
		Short: "Export a self-contained HTML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(settings, args[0], "html")
		},
	}
}

func runExport(settings *conf.Settings, arg, format string) error {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid list id %q", arg)
	}

	service, closeStore, err := bootstrap.NewService(settings)
	if err != nil {
		return err
	}
	defer bootstrap.Shutdown(closeStore)

	list, err := service.GetList(uint(id))
	if err != nil {
		return err
	}
	observations, err := service.Observations(list.ID)
	if err != nil {
		return err
	}

	var content string
	switch format {
	case "csv":
		content, err = export.ToCSV(&list, observations, service.Taxonomy())
	case "html":
		// The CLI has no canvas to raster charts from, so the report
		// takes the table fallback path.
		content, err = export.ToHTMLReport(&list, observations, service.Taxonomy(), nil)
	}
	if errors.Is(err, export.ErrNoObservations) {
		fmt.Printf("List %d has no observations, nothing to export\n", list.ID)
		return nil
	}
	if err != nil {
		return err
	}

	outDir := conf.GetBasePath(settings.Export.Path)
	fileName := fmt.Sprintf("list-%d-%s.%s", list.ID, list.Date, format)
	outPath := filepath.Join(outDir, fileName)

	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return errors.Newf("writing export file: %v", err).
			Category(errors.CategoryFileIO).
			Component("export").
			Context("path", outPath).
			Build()
	}

	fmt.Println("Output written to", outPath)
	return nil
}
