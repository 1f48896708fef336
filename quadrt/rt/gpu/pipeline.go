package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/quads/quadrt/rt/shaders"
)

const QuadsDepthFormat = wgpu.TextureFormatDepth32Float

// QuadsPipeline is the render pipeline for vertex-pulled quads and the two
// bind group layouts it was created with.
type QuadsPipeline struct {
	Pipeline    *wgpu.RenderPipeline
	ViewLayout  *wgpu.BindGroupLayout
	QuadsLayout *wgpu.BindGroupLayout
}

func NewQuadsPipeline(device *wgpu.Device, format wgpu.TextureFormat, sampleCount uint32) (*QuadsPipeline, error) {
	if sampleCount == 0 {
		sampleCount = 1
	}

	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "QuadsShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.QuadsWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer shaderModule.Release()

	// Group 0: per-view uniform at a dynamic offset
	viewLayout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "QuadsViewBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   ViewUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	// Group 1: runtime-sized array of GpuQuad
	quadsLayout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "QuadsInstanceBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeReadOnlyStorage,
					HasDynamicOffset: false,
					MinBindingSize:   0,
				},
			},
		},
	})
	if err != nil {
		viewLayout.Release()
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "QuadsPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{viewLayout, quadsLayout},
	})
	if err != nil {
		viewLayout.Release()
		quadsLayout.Release()
		return nil, err
	}
	defer pipelineLayout.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "QuadsPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vertex",
			Buffers:    nil, // vertex pulling
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fragment",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					Blend:     nil,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            QuadsDepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionGreater,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
		Multisample: wgpu.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		viewLayout.Release()
		quadsLayout.Release()
		return nil, err
	}

	return &QuadsPipeline{
		Pipeline:    pipeline,
		ViewLayout:  viewLayout,
		QuadsLayout: quadsLayout,
	}, nil
}

func (p *QuadsPipeline) Release() {
	p.Pipeline.Release()
	p.ViewLayout.Release()
	p.QuadsLayout.Release()
}
