package vkpool

import (
	vk "github.com/vulkan-go/vulkan"
)

// SamplerDescriptor selects the immutable filtering and addressing
// state of a sampler. Field-wise equality is the cache key.
type SamplerDescriptor struct {
	Filter      vk.Filter
	MipmapMode  vk.SamplerMipmapMode
	AddressMode vk.SamplerAddressMode
	Border      vk.BorderColor
}

// SamplerCache deduplicates samplers per distinct descriptor value.
// One cache is shared by all Images of a Pool.
type SamplerCache = Cache[SamplerDescriptor, vk.Sampler]

// SamplerFactory creates native samplers on a fixed device. Stateless
// apart from the captured device handle.
type SamplerFactory struct {
	device vk.Device
}

func NewSamplerCache(device vk.Device) *SamplerCache {
	return NewCache[SamplerDescriptor, vk.Sampler](SamplerFactory{device: device})
}

func (f SamplerFactory) Create(descriptor SamplerDescriptor) (vk.Sampler, error) {
	var sampler vk.Sampler
	ret := vk.CreateSampler(f.device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               descriptor.Filter,
		MinFilter:               descriptor.Filter,
		MipmapMode:              descriptor.MipmapMode,
		AddressModeU:            descriptor.AddressMode,
		AddressModeV:            descriptor.AddressMode,
		AddressModeW:            descriptor.AddressMode,
		MipLodBias:              0.0,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpNever,
		MinLod:                  0.0,
		MaxLod:                  vk.LodClampNone,
		BorderColor:             descriptor.Border,
		UnnormalizedCoordinates: vk.False,
	}, nil, &sampler)
	if isError(ret) {
		return vk.NullSampler, newError(ret)
	}
	return sampler, nil
}

func (f SamplerFactory) Destroy(sampler vk.Sampler) {
	vk.DestroySampler(f.device, sampler, nil)
}
