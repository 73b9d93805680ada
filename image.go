package vkpool

import (
	vk "github.com/vulkan-go/vulkan"
)

// ImageViewDescriptor describes the view created over an image. The
// view format may differ from the image's storage format to reinterpret
// the same memory.
type ImageViewDescriptor struct {
	Type   vk.ImageViewType
	Format vk.Format
}

// ImageDescriptor describes an image request: shape and storage format,
// native usage flags and memory placement, the view over it, and the
// sampler state it will be read with.
type ImageDescriptor struct {
	Type   vk.ImageType
	Format vk.Format
	Extent vk.Extent3D

	Usage  vk.ImageUsageFlags
	Memory MemoryUsage

	View    ImageViewDescriptor
	Sampler SamplerDescriptor
}

// ImageObject is the native image handle with its view, sampler, and
// last known layout. Layout is bookkeeping only: the command-recording
// layer that transitions the image is responsible for writing the new
// layout here, and nothing in this package synchronizes the field with
// device-side state.
type ImageObject struct {
	Handle  vk.Image
	Layout  vk.ImageLayout
	View    vk.ImageView
	Sampler vk.Sampler
}

func (o ImageObject) Valid() bool {
	return o.Handle != vk.NullImage
}

// Image pairs an image object with its owning allocation. Like Buffer
// it is a non-owning view; the sampler handle is shared with every
// other Image of the same Pool that uses an equal sampler descriptor.
type Image struct {
	Object ImageObject
	Memory Memory
}

func (i Image) Valid() bool {
	return i.Object.Valid()
}

// Image creates an image per descriptor, binds fresh memory, creates
// the view, and resolves the sampler through the shared cache. A
// failure at any step tears down whatever was created before it.
func (p *Pool) Image(descriptor ImageDescriptor) (Image, error) {
	// A view that reinterprets a different format needs the image
	// created mutable.
	var flags vk.ImageCreateFlags
	if descriptor.View.Format != descriptor.Format {
		flags = vk.ImageCreateFlags(vk.ImageCreateMutableFormatBit)
	}

	var handle vk.Image
	ret := vk.CreateImage(p.device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		Flags:         flags,
		ImageType:     descriptor.Type,
		Format:        descriptor.Format,
		Extent:        descriptor.Extent,
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         descriptor.Usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &handle)
	if isError(ret) {
		return Image{}, newError(ret)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(p.device, handle, &memReqs)
	memReqs.Deref()

	memory, err := p.allocate(memReqs, descriptor.Memory)
	if err != nil {
		vk.DestroyImage(p.device, handle, nil)
		return Image{}, err
	}
	ret = vk.BindImageMemory(p.device, handle, memory.handle, 0)
	if isError(ret) {
		vk.FreeMemory(p.device, memory.handle, nil)
		vk.DestroyImage(p.device, handle, nil)
		return Image{}, newError(ret)
	}

	var view vk.ImageView
	ret = vk.CreateImageView(p.device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: descriptor.View.Type,
		Format:   descriptor.View.Format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}, nil, &view)
	if isError(ret) {
		vk.FreeMemory(p.device, memory.handle, nil)
		vk.DestroyImage(p.device, handle, nil)
		return Image{}, newError(ret)
	}

	sampler, err := p.samplers.Retrieve(descriptor.Sampler)
	if err != nil {
		vk.DestroyImageView(p.device, view, nil)
		vk.FreeMemory(p.device, memory.handle, nil)
		vk.DestroyImage(p.device, handle, nil)
		return Image{}, err
	}

	image := Image{
		Object: ImageObject{
			Handle:  handle,
			Layout:  vk.ImageLayoutUndefined,
			View:    view,
			Sampler: sampler,
		},
		Memory: memory,
	}
	p.images = append(p.images, image)
	return image, nil
}
