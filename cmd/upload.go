/*
 * Copyright 2026 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/humaidq/intake/api"
	"github.com/humaidq/intake/upload"
)

var CmdUpload = &cli.Command{
	Name:      "upload",
	Usage:     "Upload a CSV dataset to the backend",
	ArgsUsage: "<file.csv>",
	Flags:     apiFlags(),
	Action:    uploadDataset,
}

func uploadDataset(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return errFileArgRequired
	}

	path := cmd.Args().First()

	// Reject the name before touching the file.
	if err := api.ValidateCSVName(filepath.Base(path)); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil {
			appLogger.Warn("Failed to close dataset", "path", path, "error", cerr)
		}
	}()

	f, err := upload.ReadFile(filepath.Base(path), file)
	if err != nil {
		return err
	}

	client, closeCache, err := newAPIClient(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := upload.NewService(client, 0)

	result, err := svc.Upload(ctx, "cli", f)
	if err != nil {
		return fmt.Errorf("upload failed: %s: %w", api.Message(err), err)
	}

	fmt.Println(upload.SuccessMessage(result))

	return nil
}
