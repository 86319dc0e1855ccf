package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/taxon/internal"
	"github.com/starford/taxon/internal/synonyms"
	"github.com/starford/taxon/internal/tagging"
	pkgconfig "github.com/starford/taxon/pkg/config"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, opts...); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// offlineSynonyms reads the --synonyms file, if any.
func offlineSynonyms(cmd *cli.Command) (map[string]string, error) {
	path := cmd.String("synonyms")
	if path == "" {
		return nil, nil
	}
	table, err := synonyms.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}
	return table, nil
}

func printTags(tags []string) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string][]string{"tags": tags})
}

func infer(_ context.Context, cmd *cli.Command) error {
	table, err := offlineSynonyms(cmd)
	if err != nil {
		return err
	}
	tags := tagging.InferSemanticTags(cmd.Args().Slice()...)
	return printTags(tagging.CanonicalizeTags(tags, table))
}

func extract(_ context.Context, cmd *cli.Command) error {
	table, err := offlineSynonyms(cmd)
	if err != nil {
		return err
	}
	limit := int(cmd.Int("limit"))
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	text := strings.Join(cmd.Args().Slice(), " ")
	return printTags(tagging.CanonicalizeTags(tagging.ExtractFreeTextTags(text, limit), table))
}

func main() {
	synonymsFlag := &cli.StringFlag{
		Name:  "synonyms",
		Usage: "Path to a synonym file applied to the output",
	}

	cmd := &cli.Command{
		Name:   "taxon",
		Usage:  "Semantic tagging engine with per-family tag curation",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: serveMCP,
			},
			{
				Name:      "infer",
				Usage:     "Print the rule-based tags of the given text fragments",
				ArgsUsage: "<fragment>...",
				Flags:     []cli.Flag{synonymsFlag},
				Action:    infer,
			},
			{
				Name:      "extract",
				Usage:     "Print the free-text tags of the given text",
				ArgsUsage: "<text>...",
				Flags: []cli.Flag{
					synonymsFlag,
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tags",
						Value: tagging.DefaultExtractLimit,
					},
				},
				Action: extract,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
