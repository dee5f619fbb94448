package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pirtoo/extunes/internal/formatter"
)

// List prints the library's playlist listing as plain text or CSV.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	snap, err := r.loadSnapshot(cmd.String("library"))
	if err != nil {
		return err
	}

	var data []byte
	if cmd.Bool("csv") {
		data, err = formatter.ListingToCSV(snap)
		if err != nil {
			return err
		}
	} else {
		data = formatter.ListingToText(snap)
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write listing to %q: %w", path, err)
		}
		r.logger.Info("listing written", "path", path)
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
