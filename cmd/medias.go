package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smart-prospective/spctl/spapi"
)

var mediaColumns = []column{
	{"CODE", "code"},
	{"NAME", "name"},
	{"CATEGORY", "category"},
	{"TAGS", "tags"},
}

var (
	mediaParams  paramFlags
	mediaFile    string
	mediaYes     bool
	downloadKind string
	downloadMat  string
	downloadOut  string
)

var mediasCmd = &cobra.Command{
	Use:   "medias",
	Short: "Manage medias",
}

var mediasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List medias",
	Example: `  spctl medias list
  spctl medias list -f 'category == "file" and icontains(tags, "promo")'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		medias, err := client.GetMedias(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get medias: %w", err)
		}
		return listRecords(cmd, medias, mediaColumns)
	},
}

var mediasAddCmd = &cobra.Command{
	Use:   "add CATEGORY",
	Short: "Create a media (file, audio, web, youtube, banner, template...)",
	Example: `  spctl medias add file --file ./promo.mp4 --set name=Promo --list tags=sale,summer
  spctl medias add web --set name=Weather --set url=https://example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := mediaParamsWithFile()
		if err != nil {
			return err
		}
		media, err := client.AddMedia(cmd.Context(), args[0], params)
		if err != nil {
			return fmt.Errorf("failed to add media: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), media)
	},
}

var mediasEditCmd = &cobra.Command{
	Use:     "edit CODE",
	Short:   "Update fields of a media",
	Example: `  spctl medias edit M1 --set name="Summer promo" --list tags=summer`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := mediaParamsWithFile()
		if err != nil {
			return err
		}
		media, err := client.EditMedia(cmd.Context(), args[0], params)
		if err != nil {
			return fmt.Errorf("failed to edit media: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), media)
	},
}

var mediasEnableCmd = &cobra.Command{
	Use:   "enable CODE...",
	Short: "Allow medias to be played",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mediaToggle(cmd, args, "enabled", client.EnableMedia)
	},
}

var mediasDisableCmd = &cobra.Command{
	Use:   "disable CODE...",
	Short: "Stop medias from being played",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mediaToggle(cmd, args, "disabled", client.DisableMedia)
	},
}

var mediasDeleteCmd = &cobra.Command{
	Use:   "delete CODE",
	Short: "Delete a media",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, mediaYes, "Delete media %s?", args[0]) {
			logger.Info().Msg("Deletion cancelled")
			return nil
		}
		if err := client.DeleteMedia(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete media: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Media %s deleted\n", args[0])
		return nil
	},
}

var mediasDownloadCmd = &cobra.Command{
	Use:   "download CODE",
	Short: "Download the source, converted or final file of a media",
	Long: `Download a media file.

  --kind src      the file originally uploaded (default)
  --kind convert  the file converted to a playable format, once conversion is done
  --kind final    the file a material actually plays (requires --material)

--output has no extension; the served one is appended. Without --output the
served name is used. Relative names are written under download.dir.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

var mediasUploadTemplateCmd = &cobra.Command{
	Use:   "upload-template PATH",
	Short: "Upload a file for a template media and print its URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := client.UploadMediaTemplateFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to upload template file: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), file)
		}
		fmt.Fprintln(cmd.OutOrStdout(), file.String("url"))
		return nil
	},
}

func mediaParamsWithFile() (spapi.Params, error) {
	params, err := mediaParams.params()
	if err != nil {
		return nil, err
	}
	if mediaFile != "" {
		if _, dup := params["file"]; dup {
			return nil, fmt.Errorf("parameter file given more than once")
		}
		params["file"] = mediaFile
	}
	return params, nil
}

func mediaToggle(cmd *cobra.Command, codes []string, state string, run func(context.Context, string) (bool, error)) error {
	out := cmd.OutOrStdout()
	for _, code := range codes {
		ok, err := run(cmd.Context(), code)
		if err != nil {
			return fmt.Errorf("media %s: %w", code, err)
		}
		if ok {
			fmt.Fprintf(out, "%s: %s\n", code, state)
		} else {
			fmt.Fprintf(out, "%s: unchanged\n", code)
		}
	}
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	code := args[0]

	var (
		path string
		err  error
	)
	switch downloadKind {
	case "src":
		path, err = client.DownloadSrcMedia(ctx, code, downloadOut)
	case "convert":
		path, err = client.DownloadConvertedMedia(ctx, code, downloadOut)
	case "final":
		if downloadMat == "" {
			return fmt.Errorf("--material is required with --kind final")
		}
		path, err = client.DownloadFinalMedia(ctx, code, downloadMat, downloadOut)
	default:
		return fmt.Errorf("invalid --kind %q (must be src, convert or final)", downloadKind)
	}
	if err != nil {
		return fmt.Errorf("failed to download media %s: %w", code, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func init() {
	mediaParams.register(mediasAddCmd)
	mediaParams.register(mediasEditCmd)
	mediasAddCmd.Flags().StringVar(&mediaFile, "file", "", "local file to upload as the media source")
	mediasEditCmd.Flags().StringVar(&mediaFile, "file", "", "local file replacing the media source")
	mediasDeleteCmd.Flags().BoolVarP(&mediaYes, "yes", "y", false, "skip confirmation prompt")

	mediasDownloadCmd.Flags().StringVar(&downloadKind, "kind", "src", "file to download: src, convert or final")
	mediasDownloadCmd.Flags().StringVar(&downloadMat, "material", "", "material code, for --kind final")
	mediasDownloadCmd.Flags().StringVarP(&downloadOut, "output", "o", "", "local name without extension")

	mediasCmd.AddCommand(
		mediasListCmd,
		mediasAddCmd,
		mediasEditCmd,
		mediasEnableCmd,
		mediasDisableCmd,
		mediasDeleteCmd,
		mediasDownloadCmd,
		mediasUploadTemplateCmd,
	)
	rootCmd.AddCommand(mediasCmd)
}
