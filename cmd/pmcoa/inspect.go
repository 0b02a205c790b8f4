package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/k0kubun/pp"
	"github.com/m-mizutani/pmcoa/internal/adaptor"
	"github.com/m-mizutani/pmcoa/pkg/handler"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"
)

type inspectArguments struct {
	files  cli.StringSlice
	pretty bool
	limit  int
}

func inspectCommand(args *handler.Arguments) *cli.Command {
	var inspectArgs inspectArguments

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print records in output files",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "parquet-file",
				Aliases:     []string{"p", "file"},
				Usage:       "Output file path (.parquet, .msg.gz or .jsonl.gz)",
				Required:    true,
				Destination: &inspectArgs.files,
			},
			&cli.BoolFlag{
				Name:        "pretty",
				Usage:       "Pretty print records",
				Destination: &inspectArgs.pretty,
			},
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "Max number of records per file, 0 is unlimited",
				Destination: &inspectArgs.limit,
			},
		},
		Action: func(c *cli.Context) error {
			return handler.Run(func(handler.Arguments) error {
				return inspectAction(inspectArgs)
			}, *args)
		},
	}
}

func inspectAction(inspectArgs inspectArguments) error {
	for _, filePath := range inspectArgs.files.Value() {
		if err := inspectFile(filePath, inspectArgs); err != nil {
			return err
		}
	}
	return nil
}

func inspectFile(filePath string, inspectArgs inspectArguments) error {
	format, err := adaptor.LookupFormatByPath(filePath)
	if err != nil {
		return err
	}

	dec, err := format.NewDecoder(filePath)
	if err != nil {
		return errors.Wrapf(err, "Failed to open %s", filePath)
	}
	defer dec.Close()

	for n := 0; inspectArgs.limit == 0 || n < inspectArgs.limit; n++ {
		row, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if inspectArgs.pretty {
			pp.Println(row)
			continue
		}

		raw, err := json.Marshal(row)
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
	}

	return nil
}
