package main

import (
	"fmt"
	"os"

	"github.com/m-mizutani/pmcoa/internal/service"
	"github.com/m-mizutani/pmcoa/pkg/builder"
	"github.com/m-mizutani/pmcoa/pkg/handler"
	cli "github.com/urfave/cli/v2"
)

func buildCommand(args *handler.Arguments) *cli.Command {
	var subsets cli.StringSlice

	return &cli.Command{
		Name:  "build",
		Usage: "Scan all subsets and write indexed records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "data-dir",
				Aliases:     []string{"d"},
				Usage:       "Base directory that has PMC-ids.csv.gz and oa_bulk/",
				EnvVars:     []string{"PMCOA_DATA_DIR"},
				Destination: &args.DataDir,
			},
			&cli.StringFlag{
				Name:        "output-dir",
				Aliases:     []string{"o"},
				Usage:       "Directory to write output files",
				Value:       ".",
				EnvVars:     []string{"PMCOA_OUTPUT_DIR"},
				Destination: &args.OutputDir,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "Output format [parquet|msgpack|jsonl]",
				Value:       handler.DefaultFormat,
				Destination: &args.Format,
			},
			&cli.StringFlag{
				Name:        "prefix",
				Usage:       "File name prefix of output files",
				Value:       handler.DefaultPrefix,
				Destination: &args.Prefix,
			},
			&cli.Int64Flag{
				Name:        "size-limit",
				Usage:       "Approximate max data size (byte) of an output file",
				Value:       service.DefaultDumpSizeLimit,
				Destination: &args.SizeLimit,
			},
			&cli.StringFlag{
				Name:        "pairing",
				Usage:       "How to match archive entries with manifest rows [positional|keyed]",
				Value:       string(service.PairingPositional),
				Destination: &args.Pairing,
			},
			&cli.StringSliceFlag{
				Name:        "subset",
				Aliases:     []string{"s"},
				Usage:       "Subset to scan [commercial|non_commercial|other], all if not given",
				Destination: &subsets,
			},
			&cli.StringFlag{
				Name:        "filter",
				Usage:       "jq expression, write only records for which the expression yields neither false nor null",
				Destination: &args.Filter,
			},
			&cli.StringFlag{
				Name:        "s3-dst",
				Usage:       "Upload output files to S3, format: bucket@region:prefix",
				EnvVars:     []string{"PMCOA_S3_DST"},
				Destination: &args.S3Dst,
			},
		},
		Action: func(c *cli.Context) error {
			args.Subsets = subsets.Value()
			return handler.Run(buildAction, *args)
		},
	}
}

func buildAction(args handler.Arguments) error {
	result, err := builder.Build(args)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, renderStats(result.Stats))

	fmt.Fprintln(os.Stdout, renderFiles(result.Files))
	fmt.Fprintln(os.Stdout, renderProfile(result.Profile))

	logger.WithField("runID", result.RunID).Infof("Read %d records, wrote %d records", result.Records, result.Written)
	return nil
}
