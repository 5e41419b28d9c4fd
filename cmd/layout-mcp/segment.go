package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/layout-tools-mcp/internal/books"
	"github.com/ironsheep/layout-tools-mcp/internal/facade"
	"github.com/ironsheep/layout-tools-mcp/internal/model"
)

type segmentOptions struct {
	out          string
	version      string
	settingsFile string
	noCache      bool
}

func newSegmentCmd(a *app) *cobra.Command {
	var opts segmentOptions

	cmd := &cobra.Command{
		Use:   "segment BOOK_ID PAGE",
		Short: "Segment one page and print its PAGE XML",
		Long: `Segments page PAGE (0-based) of book BOOK_ID and writes the result as a
PAGE XML document to stdout, or into the --out directory.

A result cached next to the page image is used unless --no-cache is set
or allow_local_results is disabled in the configuration.`,
		Example: `  # Print the layout of the first page of book 0
  layout-mcp segment 0 0

  # Use exported settings and write 0001.xml into ./out
  layout-mcp segment 0 0 --settings settings_b.xml --out ./out`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			pageNr, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid page %q", args[1])
			}
			return a.segment(cmd, bookID, pageNr, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the document into this directory instead of stdout")
	cmd.Flags().StringVar(&opts.version, "page-version", "", "PAGE schema version (default from config)")
	cmd.Flags().StringVar(&opts.settingsFile, "settings", "", "settings XML document to segment with")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always run the segmentation engine")

	return cmd
}

func (a *app) segment(cmd *cobra.Command, bookID, pageNr int, opts segmentOptions) error {
	cfg := a.mgr.Get()
	entry, err := books.NewStore(cfg.ResourcePath).Get(bookID)
	if err != nil {
		return err
	}

	f := facade.New(
		facade.WithLogger(a.logger),
		facade.WithDesiredImageHeight(cfg.DesiredImageHeight),
	)
	f.Init(entry.Book, entry.Dir)
	defer f.Clear()

	settings := f.DefaultSettings(entry.Book)
	if opts.settingsFile != "" {
		data, err := os.ReadFile(opts.settingsFile)
		if err != nil {
			return err
		}
		if settings, err = f.ReadSettings(data); err != nil {
			return err
		}
	}

	seg, err := f.SegmentPage(cmd.Context(), settings, pageNr, cfg.AllowLocalResults && !opts.noCache)
	if err != nil {
		return err
	}
	if seg.Status == model.StatusMissingFile {
		return fmt.Errorf("%w: page %d of book %d", facade.ErrMissingImage, pageNr, bookID)
	}
	a.logger.Info("page segmented", "book", bookID, "page", pageNr, "status", seg.Status, "regions", len(seg.Segments))

	if err := f.PrepareExport(seg); err != nil {
		return err
	}

	version := opts.version
	if version == "" {
		version = cfg.PageXMLVersion
	}

	if opts.out != "" {
		path, err := f.SavePageXMLLocal(opts.out, version)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}

	exp, err := f.PageXML(version)
	if err != nil {
		return err
	}
	if exp.Data == nil {
		return fmt.Errorf("failed to encode %s", exp.FileName)
	}
	_, err = cmd.OutOrStdout().Write(exp.Data)
	return err
}
