// Command sdformat formats a disk image or SD card as a DS-flashcart
// compatible FAT32 volume.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/herbderby/NdsSDFormat/fat32"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "sdformat",
		Usage: "Write a flashcart-bootable FAT32 layout to an image or device",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Format the target; existing contents are destroyed",
				Action:    formatTarget,
				ArgsUsage: "PATH",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "label",
						Usage: "volume label, up to 11 characters",
						Value: "NDS CARD",
					},
					&cli.Uint64Flag{
						Name:  "sectors",
						Usage: "total sector count; 0 probes the target size",
					},
					&cli.Uint64Flag{
						Name:  "volume-id",
						Usage: "32-bit volume serial; defaults to a clock-derived value",
					},
					&cli.BoolFlag{
						Name:  "create",
						Usage: "create PATH as a sparse image file of --sectors sectors",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "log every sector-level operation",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func openTarget(path string, create bool, sectors uint64) (*os.File, error) {
	if !create {
		return os.OpenFile(path, os.O_RDWR, 0)
	}

	if sectors == 0 {
		return nil, fmt.Errorf("--create requires an explicit --sectors count")
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := file.Truncate(int64(sectors) * 512); err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}

func formatTarget(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: sdformat format [options] PATH", 1)
	}
	if c.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	path := c.Args().First()
	file, err := openTarget(path, c.Bool("create"), c.Uint64("sectors"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to open %q: %s", path, err), 1)
	}
	defer file.Close()

	sectors := c.Uint64("sectors")
	if sectors == 0 {
		size, err := targetSizeBytes(file)
		if err != nil {
			return cli.Exit(
				fmt.Sprintf("Error: cannot determine size of %q: %s", path, err), 1)
		}
		sectors = uint64(size) / 512
		log.Infof("probed %s: %d bytes, %d sectors", path, size, sectors)
	}

	// Fall back to the clock only when the flag is absent; an explicit
	// --volume-id 0 is a valid serial and must be honored.
	volumeID := uint32(c.Uint64("volume-id"))
	if !c.IsSet("volume-id") {
		volumeID = fat32.VolumeIDFromTime(time.Now())
	}

	formatter, err := fat32.New(
		file,
		fat32.SectorCount(sectors),
		c.String("label"),
		fat32.WithVolumeID(volumeID))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}

	steps := []struct {
		name  string
		write func() error
	}{
		{"MBR", formatter.WriteMBR},
		{"VBR", formatter.WriteBootRecords},
		{"FSInfo", formatter.WriteFSInfo},
		{"FAT tables", formatter.WriteFATs},
		{"root directory", formatter.WriteRootDirectory},
	}
	for _, step := range steps {
		log.Infof("writing %s...", step.name)
		if err := step.write(); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %s failed: %s", step.name, err), 1)
		}
	}

	log.Infof("done: %d sectors, label %q", sectors, c.String("label"))
	return nil
}
