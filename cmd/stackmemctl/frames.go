package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/maskerad/stackmem/alloc"
)

var (
	framesCount  int
	framesAllocs int
	framesBlock  string
)

func init() {
	cmd := newFramesCmd()
	cmd.Flags().IntVarP(&framesCount, "count", "n", 4, "Number of frames to simulate")
	cmd.Flags().IntVar(&framesAllocs, "allocs", 8, "Allocations per frame")
	cmd.Flags().StringVar(&framesBlock, "block", "1KiB", "Size of each allocation")
	rootCmd.AddCommand(cmd)
}

func newFramesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Simulate per-frame allocation on a double-buffered region",
		Long: `The frames command runs a number of frames against a double-buffered
region sized by memory.frame. Every frame writes a header and a series of
blocks into the active buffer, reads back the previous frame's header from the
inactive buffer, then swaps.

Allocations that do not fit are counted as dropped.

Example:
  stackmemctl frames -n 10 --allocs 64 --block 4KiB`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrames()
		},
	}
	return cmd
}

// frameHeader is placed at the start of every frame.
type frameHeader struct {
	Index  uint64
	Allocs uint32
	Bytes  uint32
}

// FrameReport summarizes one simulated frame.
type FrameReport struct {
	Frame    int `json:"frame"`
	Used     int `json:"used"`
	Allocs   int `json:"allocs"`
	Dropped  int `json:"dropped"`
	Previous int `json:"previous"` // index read back from the last frame, -1 for the first
}

func runFrames() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	block, err := humanize.ParseBytes(framesBlock)
	if err != nil {
		return fmt.Errorf("invalid --block: %w", err)
	}
	capacity := int(cfg.Memory.Frame.Bytes())

	db, err := alloc.NewDoubleBuffered(capacity)
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := simulateFrames(db, framesCount, framesAllocs, int(block))
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"capacity": capacity,
			"frames":   reports,
		})
	}
	printInfo("frame buffers: 2 x %s\n", bytesOf(capacity))
	printInfo("%s\n", heading(fmt.Sprintf("%6s %10s %8s %8s %9s", "FRAME", "USED", "ALLOCS", "DROPPED", "PREVIOUS")))
	for _, r := range reports {
		printInfo("%6d %10s %8d %8d %9d\n", r.Frame, bytesOf(r.Used), r.Allocs, r.Dropped, r.Previous)
	}
	return nil
}

func simulateFrames(db *alloc.DoubleBuffered, frames, allocs, block int) ([]FrameReport, error) {
	reports := make([]FrameReport, 0, frames)
	var last alloc.Ref[frameHeader]
	for i := range frames {
		db.Reset()

		ref, err := alloc.Allocate(db.Active(), func() frameHeader {
			return frameHeader{Index: uint64(i)}
		})
		if err != nil {
			return nil, fmt.Errorf("frame %d header: %w", i, err)
		}

		r := FrameReport{Frame: i, Previous: -1}
		for range allocs {
			_, err := db.Alloc(block, 16, func(b []byte) error {
				for k := range b {
					b[k] = byte(i)
				}
				return nil
			})
			switch {
			case errors.Is(err, alloc.ErrOutOfMemory):
				r.Dropped++
			case err != nil:
				return nil, err
			default:
				r.Allocs++
			}
		}

		hdr, err := ref.Get(db.Active())
		if err != nil {
			return nil, err
		}
		hdr.Allocs = uint32(r.Allocs)
		hdr.Bytes = uint32(r.Allocs * block)

		if i > 0 {
			prev, err := last.Get(db.Inactive())
			if err != nil {
				return nil, fmt.Errorf("frame %d: previous frame: %w", i, err)
			}
			r.Previous = int(prev.Index)
			printVerbose("frame %d: previous frame %d had %d allocations\n", i, prev.Index, prev.Allocs)
		}

		r.Used = db.Used()
		reports = append(reports, r)
		last = ref
		db.SwapBuffers()
	}
	return reports, nil
}
