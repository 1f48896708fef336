package quads

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

// FramebufferSize is the drawable size in pixels, which differs from the
// window size on HiDPI displays.
func (s *WindowState) FramebufferSize() (int, int) {
	return s.windowGlfw.GetFramebufferSize()
}

func (s *WindowState) Release() {
	s.windowGlfw.Destroy()
	glfw.Terminate()
}

func createGpuState(s *WindowState) *GpuState {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Quads Device",
		RequiredFeatures: nil,
		RequiredLimits:   nil,
	})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	width, height := s.FramebufferSize()
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

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
	}
}

func (g *GpuState) Device() *wgpu.Device { return g.device }

func (g *GpuState) Format() wgpu.TextureFormat { return g.surfaceConfig.Format }

func (g *GpuState) Size() (uint32, uint32) {
	return g.surfaceConfig.Width, g.surfaceConfig.Height
}

// Resize reconfigures the surface. It reports whether the size changed.
func (g *GpuState) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if uint32(width) == g.surfaceConfig.Width && uint32(height) == g.surfaceConfig.Height {
		return false
	}
	g.surfaceConfig.Width = uint32(width)
	g.surfaceConfig.Height = uint32(height)
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
	return true
}

func (g *GpuState) Release() {
	g.queue.Release()
	g.device.Release()
	g.adapter.Release()
	g.surface.Release()
}

// renderTarget holds the attachments the quads pass draws into besides the
// swapchain image: the depth buffer and, when multisampling, the colour target.
type renderTarget struct {
	width, height uint32
	sampleCount   uint32

	depth     *wgpu.Texture
	depthView *wgpu.TextureView
	msaa      *wgpu.Texture
	msaaView  *wgpu.TextureView
}

func createAttachment(device *wgpu.Device, label string, width, height, sampleCount uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s texture: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("%s view: %w", label, err)
	}
	return tex, view, nil
}

func createRenderTarget(device *wgpu.Device, colorFormat, depthFormat wgpu.TextureFormat, width, height, sampleCount uint32) (*renderTarget, error) {
	rt := &renderTarget{width: width, height: height, sampleCount: sampleCount}
	var err error
	rt.depth, rt.depthView, err = createAttachment(device, "QuadsDepth", width, height, sampleCount, depthFormat)
	if err != nil {
		return nil, err
	}
	if sampleCount > 1 {
		rt.msaa, rt.msaaView, err = createAttachment(device, "QuadsColorMSAA", width, height, sampleCount, colorFormat)
		if err != nil {
			rt.Release()
			return nil, err
		}
	}
	return rt, nil
}

func (rt *renderTarget) matches(width, height uint32) bool {
	return rt != nil && rt.width == width && rt.height == height
}

func (rt *renderTarget) Release() {
	if rt.msaaView != nil {
		rt.msaaView.Release()
		rt.msaa.Release()
		rt.msaaView, rt.msaa = nil, nil
	}
	if rt.depthView != nil {
		rt.depthView.Release()
		rt.depth.Release()
		rt.depthView, rt.depth = nil, nil
	}
}
