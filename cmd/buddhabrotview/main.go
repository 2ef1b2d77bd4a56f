// Command buddhabrotview is a live viewer for the buddhabrot engine: it
// opens a window, samples continuously in the background, and redraws the
// tone-mapped frame to the screen at a fixed interval. Space toggles
// pause/resume, S saves a screenshot, Escape quits.
package main

import (
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/kestrelrender/buddhabrot"
)

// blitShader renders the engine's frame texture as a full-screen
// triangle, the usual trick of deriving three clip-space vertices from the
// builtin vertex index instead of binding a vertex buffer at all.
const blitShader = `
struct VertexOut {
	@builtin(position) position: vec4<f32>,
	@location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOut {
	var positions = array<vec2<f32>, 3>(
		vec2<f32>(-1.0, -1.0),
		vec2<f32>(3.0, -1.0),
		vec2<f32>(-1.0, 3.0),
	);
	var out: VertexOut;
	let p = positions[idx];
	out.position = vec4<f32>(p, 0.0, 1.0);
	out.uv = vec2<f32>((p.x + 1.0) / 2.0, 1.0 - (p.y + 1.0) / 2.0);
	return out;
}

@group(0) @binding(0) var frameTexture: texture_2d<f32>;
@group(0) @binding(1) var frameSampler: sampler;

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
	return textureSample(frameTexture, frameSampler, in.uv);
}
`

type viewerWindow struct {
	win           *glfw.Window
	instance      *wgpu.Instance
	surface       *wgpu.Surface
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig wgpu.SurfaceConfiguration
	pipeline      *wgpu.RenderPipeline
	sampler       *wgpu.Sampler

	texture     *wgpu.Texture
	textureView *wgpu.TextureView
	bindGroup   *wgpu.BindGroup
	texW, texH  int
}

// newViewerWindow opens a window and brings up the GPU device, following
// the same instance/surface/adapter/device/queue sequence the engine's
// teacher uses for its own render pipeline setup.
func newViewerWindow(width, height int, title string) *viewerWindow {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		log.Fatalf("glfw init: %v", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		log.Fatalf("create window: %v", err)
	}

	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		log.Fatalf("request adapter: %v", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "buddhabrotview device"})
	if err != nil {
		log.Fatalf("request device: %v", err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "blit",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: blitShader},
	})
	if err != nil {
		log.Fatalf("create shader: %v", err)
	}
	defer shader.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Vertex: wgpu.VertexState{Module: shader, EntryPoint: "vs_main"},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: surfaceConfig.Format, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		log.Fatalf("create pipeline: %v", err)
	}

	sampler, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		MagFilter: wgpu.FilterModeLinear,
		MinFilter: wgpu.FilterModeLinear,
	})
	if err != nil {
		log.Fatalf("create sampler: %v", err)
	}

	return &viewerWindow{
		win:           win,
		instance:      instance,
		surface:       surface,
		device:        device,
		queue:         queue,
		surfaceConfig: surfaceConfig,
		pipeline:      pipeline,
		sampler:       sampler,
	}
}

// upload writes frame (row-major 0x00RRGGBB, w*h entries) into the GPU
// texture backing the blit pipeline, recreating the texture if its
// dimensions changed.
func (v *viewerWindow) upload(w, h int, frame []uint32) {
	if w != v.texW || h != v.texH {
		if v.texture != nil {
			v.texture.Release()
		}
		tex, err := v.device.CreateTexture(&wgpu.TextureDescriptor{
			Size:        wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
			Format:      wgpu.TextureFormatRGBA8Unorm,
			Usage:       wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension:   wgpu.TextureDimension2D,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			log.Fatalf("create frame texture: %v", err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			log.Fatalf("create frame texture view: %v", err)
		}
		bindGroup, err := v.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Layout: v.pipeline.GetBindGroupLayout(0),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: view},
				{Binding: 1, Sampler: v.sampler},
			},
		})
		if err != nil {
			log.Fatalf("create frame bind group: %v", err)
		}
		v.texture, v.textureView, v.bindGroup = tex, view, bindGroup
		v.texW, v.texH = w, h
	}

	rgba := make([]byte, w*h*4)
	for i, px := range frame {
		rgba[i*4+0] = byte(px >> 16)
		rgba[i*4+1] = byte(px >> 8)
		rgba[i*4+2] = byte(px)
		rgba[i*4+3] = 255
	}

	v.queue.WriteTexture(
		v.texture.AsImageCopy(),
		rgba,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: uint32(w) * 4, RowsPerImage: uint32(h)},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
}

// draw submits one full-screen blit of the current frame texture.
func (v *viewerWindow) draw() {
	if v.bindGroup == nil {
		return
	}
	target, err := v.surface.GetCurrentTexture()
	if err != nil {
		return
	}
	view, err := target.Texture.CreateView(nil)
	if err != nil {
		return
	}
	defer view.Release()

	encoder, err := v.device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	pass.SetPipeline(v.pipeline)
	pass.SetBindGroup(0, v.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return
	}
	v.queue.Submit(cmd)
	v.surface.Present()
}

func main() {
	re := flag.Float64("re", -0.5, "real part of the view center")
	im := flag.Float64("im", 0.0, "imaginary part of the view center")
	scale := flag.Float64("scale", 200, "pixels per unit")
	width := flag.Int("width", 768, "window/image width in pixels")
	height := flag.Int("height", 768, "window/image height in pixels")
	workers := flag.Int("workers", 4, "number of sampling workers")
	refresh := flag.Duration("refresh", 500*time.Millisecond, "how often to refresh the displayed frame")
	lowR := flag.Int("low-r", 0, "red channel low iteration bound")
	highR := flag.Int("high-r", 200, "red channel high iteration bound")
	lowG := flag.Int("low-g", 0, "green channel low iteration bound")
	highG := flag.Int("high-g", 1000, "green channel high iteration bound")
	lowB := flag.Int("low-b", 0, "blue channel low iteration bound")
	highB := flag.Int("high-b", 5000, "blue channel high iteration bound")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := buddhabrot.NewDefaultLogger("buddhabrotview", *debug)
	coord := buddhabrot.NewCoordinator(logger)
	go coord.Run()

	windows, err := buddhabrot.NewWindows(*lowR, *highR, *lowG, *highG, *lowB, *highB)
	if err != nil {
		log.Fatalf("invalid iteration windows: %v", err)
	}

	setCmd := buddhabrot.NewSetCommand(complex(*re, *im), *scale, windows, *width, *height, false)
	coord.Commands() <- setCmd
	if err := setCmd.Wait(); err != nil {
		log.Fatalf("set view: %v", err)
	}
	workerCmd := buddhabrot.NewSetWorkerCountCommand(*workers)
	coord.Commands() <- workerCmd
	if err := workerCmd.Wait(); err != nil {
		log.Fatalf("set worker count: %v", err)
	}
	startCmd := buddhabrot.NewStartCommand()
	coord.Commands() <- startCmd
	if err := startCmd.Wait(); err != nil {
		log.Fatalf("start: %v", err)
	}

	vw := newViewerWindow(*width, *height, "buddhabrot")

	paused := false
	for !vw.win.ShouldClose() {
		glfw.PollEvents()

		if vw.win.GetKey(glfw.KeyEscape) == glfw.Press {
			break
		}
		if vw.win.GetKey(glfw.KeySpace) == glfw.Press {
			if paused {
				r := buddhabrot.NewResumeCommand()
				coord.Commands() <- r
				r.Wait()
			} else {
				p := buddhabrot.NewPauseCommand()
				coord.Commands() <- p
				p.Wait()
			}
			paused = !paused
		}
		if vw.win.GetKey(glfw.KeyS) == glfw.Press {
			s := buddhabrot.NewSaveScreenshotCommand("buddhabrotview-screenshot.png")
			coord.Commands() <- s
			if err := s.Wait(); err != nil {
				logger.Warnf("screenshot failed: %v", err)
			}
		}

		updateCmd := buddhabrot.NewUpdateImageCommand()
		coord.Commands() <- updateCmd
		updateCmd.Wait()

		if frame := lastFrame(coord); frame != nil {
			vw.upload(*width, *height, frame)
		}
		vw.draw()

		time.Sleep(*refresh)
	}

	stopCmd := buddhabrot.NewStopCommand()
	coord.Commands() <- stopCmd
	stopCmd.Wait()
	close(coord.Commands())
}

// lastFrame drains the most recently emitted FrameReadyEvent without
// blocking; it returns nil if none is currently queued (the previous
// texture stays on screen in that case).
func lastFrame(coord *buddhabrot.Coordinator) []uint32 {
	var frame []uint32
	for {
		select {
		case ev := <-coord.Events():
			if fr, ok := ev.(buddhabrot.FrameReadyEvent); ok {
				frame = fr.Frame
			}
		default:
			return frame
		}
	}
}
