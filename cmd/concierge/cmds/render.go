package cmds

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-go-golems/concierge/pkg/render"
	"github.com/go-go-golems/concierge/pkg/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewRenderCommand(app *App) *cobra.Command {
	var (
		format string
		width  int
	)
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Parse an assistant reply (file or stdin) into blocks and suggestions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open input")
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return errors.Wrap(err, "read input")
			}
			res := render.Render(string(raw))
			out := cmd.OutOrStdout()

			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(res); err != nil {
					return errors.Wrap(err, "encode yaml")
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			case "text":
				if _, err := fmt.Fprintln(out, ui.RenderNodes(res.Nodes, width)); err != nil {
					return err
				}
				for i, s := range res.Suggestions {
					if _, err := fmt.Fprintf(out, "[%d] %s\n", i+1, s); err != nil {
						return err
					}
				}
				return nil
			default:
				return errors.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, json, text)")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width for text output")
	return cmd
}
