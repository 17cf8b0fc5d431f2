// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command duskinfo lists the adapters of a dusk backend and runs a short
// smoke test on the default one: a buffer copy round trip and, with -dump,
// a cleared render target written as a BMP file.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/bmp"

	"github.com/gogpu/dusk"
	"github.com/gogpu/dusk/backend"
	_ "github.com/gogpu/dusk/backend/wgpu"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

func main() {
	var (
		configPath = flag.String("config", "duskinfo.toml", "configuration file")
		backendArg = flag.String("backend", "", "backend name, overrides the config ("+strings.Join(backend.Available(), ", ")+")")
		dumpPath   = flag.String("dump", "", "write a cleared render target to this BMP file")
		timeout    = flag.Duration("timeout", 10*time.Second, "limit for GPU work")
	)
	flag.Parse()

	if err := run(*configPath, *backendArg, *dumpPath, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("duskinfo: "+err.Error()))
		os.Exit(1)
	}
}

func run(configPath, backendName, dumpPath string, timeout time.Duration) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if backendName != "" {
		cfg.Backend = backendName
	}
	level, _ := cfg.level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	dusk.SetLogger(logger)

	if cfg.Backend != "" {
		tbl, err := backend.Get(cfg.Backend)
		if err != nil {
			return fmt.Errorf("backend %q: %w", cfg.Backend, err)
		}
		dusk.InstallProcTable(tbl)
	}

	inst := dusk.NewInstance()
	defer inst.Release()

	adapters := inst.Adapters()
	fmt.Println(titleStyle.Render(fmt.Sprintf("%d adapter(s)", len(adapters))))
	for i, a := range adapters {
		printAdapter(i, a.Properties())
		a.Release()
	}
	if len(adapters) == 0 {
		return dusk.ErrAdapterNotFound
	}

	adapter := inst.DefaultAdapter()
	defer adapter.Release()
	var deviceErrs []string
	dev, err := adapter.CreateDevice(&dusk.DeviceDescriptor{ForceEnabledToggles: cfg.Toggles},
		dusk.WithUncapturedErrorCallback(func(typ dusk.ErrorType, msg string) {
			deviceErrs = append(deviceErrs, typ.String()+": "+msg)
		}))
	if err != nil {
		return err
	}
	defer dev.Release()
	logger.Info("duskinfo: device ready", "adapter", adapter.Properties().Name, "backend", dev.BackendType().String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// The noop HAL executes no commands, so copied contents stay undefined.
	if err := copyRoundTrip(ctx, dev, cfg.Backend != backend.WGPUNoop); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("buffer copy round trip: ok"))

	if dumpPath != "" {
		if !dusk.ProcAvailable("CommandEncoderBeginRenderPass") {
			return fmt.Errorf("dump: backend %s has no render passes: %w", dev.BackendType(), dusk.ErrProcMissing)
		}
		if err := dumpClear(ctx, dev, cfg.Dump, dumpPath); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("render target written to " + dumpPath))
	}

	if len(deviceErrs) > 0 {
		return fmt.Errorf("device reported errors: %s", strings.Join(deviceErrs, "; "))
	}
	return nil
}

func printAdapter(i int, p dusk.AdapterProperties) {
	fmt.Printf("%s %s\n", fieldStyle.Render(fmt.Sprintf("[%d]", i)), nameStyle.Render(p.Name))
	fmt.Printf("    %s %s\n", fieldStyle.Render("type:   "), p.AdapterType)
	fmt.Printf("    %s %s\n", fieldStyle.Render("backend:"), p.BackendType)
	fmt.Printf("    %s %#04x / %#04x\n", fieldStyle.Render("ids:    "), p.VendorID, p.DeviceID)
	if p.Extensions.TextureCompressionBC {
		fmt.Printf("    %s texture_compression_bc\n", fieldStyle.Render("exts:   "))
	}
}

// copyRoundTrip uploads a pattern, copies it on the GPU and reads it back.
// With verify the read back bytes must match the upload.
func copyRoundTrip(ctx context.Context, dev *dusk.Device, verify bool) error {
	want := make([]byte, 256)
	for i := range want {
		want[i] = byte(i * 7)
	}
	src := dev.CreateBufferWithData(want, gputypes.BufferUsageCopySrc)
	defer src.Release()
	dst := dev.CreateBufferWithSize(uint64(len(want)), gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)
	defer dst.Release()

	enc := dev.CreateCommandEncoder("round trip")
	enc.CopyBufferToBuffer(src, 0, dst, 0, uint64(len(want)))
	if err := submit(dev, enc); err != nil {
		return err
	}

	got, err := dst.MapRead(ctx)
	if err != nil {
		return fmt.Errorf("round trip: %w", err)
	}
	if verify && !bytes.Equal(got, want) {
		return errors.New("round trip: read back data differs from upload")
	}
	return nil
}

func submit(dev *dusk.Device, enc *dusk.CommandEncoder) error {
	cb := enc.Finish("")
	defer cb.Release()
	q := dev.Queue()
	defer q.Release()
	return q.Submit(cb)
}

// rowPitch is the buffer row alignment of texture copies.
const rowPitch = 256

// dumpClear clears a render target to the configured colour and writes it to
// path.
func dumpClear(ctx context.Context, dev *dusk.Device, d dump, path string) error {
	size := gputypes.Extent3D{Width: d.Width, Height: d.Height, DepthOrArrayLayers: 1}
	tex := dev.CreateTexture(&dusk.TextureDescriptor{
		Label:         "dump target",
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		Dimension:     gputypes.TextureDimension2D,
		Size:          size,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	defer tex.Release()
	view := tex.CreateView(nil)
	defer view.Release()

	pitch := (d.Width*4 + rowPitch - 1) / rowPitch * rowPitch
	out := dev.CreateBufferWithSize(uint64(pitch)*uint64(d.Height), gputypes.BufferUsageCopyDst|gputypes.BufferUsageMapRead)
	defer out.Release()

	enc := dev.CreateCommandEncoder("dump")
	pass, err := enc.BeginRenderPass(&dusk.RenderPassDescriptor{
		ColorAttachments: []dusk.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearColor: d.color(),
		}},
	})
	if err != nil {
		enc.Release()
		return fmt.Errorf("dump: %w", err)
	}
	pass.End()
	pass.Release()
	enc.CopyTextureToBuffer(&dusk.TextureCopyView{Texture: tex}, &dusk.BufferCopyView{Buffer: out, RowPitch: pitch}, size)
	if err := submit(dev, enc); err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	data, err := out.MapRead(ctx)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(d.Width), int(d.Height)))
	for y := range int(d.Height) {
		row := data[y*int(pitch):]
		copy(img.Pix[y*img.Stride:(y+1)*img.Stride], row[:d.Width*4])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("dump: encode %s: %w", path, err)
	}
	return f.Close()
}
