package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/leapstack-labs/wadocs/internal/cli/output"
	"github.com/leapstack-labs/wadocs/internal/publish"
	"github.com/spf13/cobra"
)

// PublishOptions holds options for the publish command.
type PublishOptions struct {
	Bucket string
	Prefix string
	DryRun bool
	Prune  bool
	Build  bool
}

// NewPublishCommand creates the publish command.
func NewPublishCommand() *cobra.Command {
	opts := &PublishOptions{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the built site to S3",
		Long: `Upload the output directory to an S3 bucket. Files whose content has not
changed since the last publish to the same bucket are skipped.

With --prune, objects under the prefix that are no longer part of the site
are deleted. AWS credentials come from the usual SDK sources (environment,
shared config, instance roles).`,
		Example: `  # Build then publish to the configured bucket
  wadocs publish --build

  # Preview what would change
  wadocs publish --bucket my-docs --prefix wa --prune --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Bucket, "bucket", "", "Target bucket (default from publish.bucket)")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Key prefix (default from publish.prefix)")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Report uploads and deletions without changing the bucket")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Delete remote objects that are not part of the site")
	cmd.Flags().BoolVar(&opts.Build, "build", false, "Run an incremental build first")

	return cmd
}

// PublishOutput is the JSON output of the publish command.
type PublishOutput struct {
	Bucket    string   `json:"bucket"`
	Prefix    string   `json:"prefix,omitempty"`
	DryRun    bool     `json:"dry_run"`
	Uploaded  []string `json:"uploaded"`
	Unchanged int      `json:"unchanged"`
	Deleted   []string `json:"deleted"`
	Bytes     int64    `json:"bytes"`
}

func runPublish(cmd *cobra.Command, opts *PublishOptions) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	pub := cfg.Publish
	if opts.Bucket != "" {
		pub.Bucket = opts.Bucket
	}
	if opts.Prefix != "" {
		pub.Prefix = opts.Prefix
	}
	if pub.Bucket == "" {
		return fmt.Errorf("%w: set publish.bucket or pass --bucket", publish.ErrNoBucket)
	}

	store, closeStore, err := cmdCtx.OpenState(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.Build {
		if err := cfg.ValidateDirectories(); err != nil {
			return err
		}
		res, err := buildSite(ctx, cmdCtx, store, &BuildOptions{Incremental: true})
		if err != nil {
			return err
		}
		cmdCtx.Logger.Info("site built", "pages", res.Pages, "rendered", res.Rendered)
	}
	if _, err := os.Stat(cfg.OutputDir); err != nil {
		return fmt.Errorf("output directory not found: %s (run 'wadocs build' first)", cfg.OutputDir)
	}

	client, err := publish.NewS3Client(ctx, publish.ClientOptions{
		Region:   pub.Region,
		Profile:  pub.Profile,
		Endpoint: pub.Endpoint,
	})
	if err != nil {
		return err
	}

	report, err := publish.New(client, store, publish.Config{
		Bucket:       pub.Bucket,
		Prefix:       pub.Prefix,
		CacheControl: pub.CacheControl,
		Prune:        pub.Prune || opts.Prune,
		DryRun:       opts.DryRun,
		Logger:       cmdCtx.Logger,
	}).Publish(ctx, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	return renderPublish(r, pub.Bucket, pub.Prefix, report)
}

func renderPublish(r *output.Renderer, bucket, prefix string, report *publish.Report) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(PublishOutput{
			Bucket:    bucket,
			Prefix:    prefix,
			DryRun:    report.DryRun,
			Uploaded:  nonNil(report.Uploaded),
			Unchanged: len(report.Unchanged),
			Deleted:   nonNil(report.Deleted),
			Bytes:     report.Bytes,
		})
	}

	for _, k := range report.Uploaded {
		r.StatusLine(k, "success", "uploaded")
	}
	for _, k := range report.Deleted {
		r.StatusLine(k, "warning", "deleted")
	}

	target := "s3://" + bucket
	if prefix != "" {
		target += "/" + prefix
	}
	verb := "Published to"
	if report.DryRun {
		verb = "Dry run for"
	}
	r.Println("")
	r.Success(fmt.Sprintf("%s %s", verb, target))
	r.Println(output.FormatKeyValue("Uploaded", fmt.Sprintf("%d files, %s", len(report.Uploaded), humanize.Bytes(uint64(report.Bytes)))))
	r.Println(output.FormatKeyValue("Unchanged", fmt.Sprintf("%d files", len(report.Unchanged))))
	if len(report.Deleted) > 0 {
		r.Println(output.FormatKeyValue("Deleted", fmt.Sprintf("%d files", len(report.Deleted))))
	}
	return nil
}
