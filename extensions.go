package vkpool

import (
	vk "github.com/vulkan-go/vulkan"
)

// InstanceExtensions reports the instance extensions the Vulkan runtime
// advertises on this host.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	orPanic(newError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	orPanic(newError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions reports the extensions supported by gpu.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	orPanic(newError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	orPanic(newError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers reports the validation layers installed on this host.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	orPanic(newError(ret))
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	orPanic(newError(ret))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

// findMemoryType selects a memory type index out of typeBits whose
// property flags contain all of required.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties,
	typeBits uint32, required vk.MemoryPropertyFlags) (uint32, bool) {

	for i := uint32(0); i < vk.MaxMemoryTypes; i++ {
		if typeBits&(uint32(1)<<i) != 0 {
			props.MemoryTypes[i].Deref()
			flags := props.MemoryTypes[i].PropertyFlags
			if flags&required == required {
				return i, true
			}
		}
	}
	return 0, false
}

// findMemoryTypeFallback is findMemoryType with preferred flags tried
// first, falling back to required alone.
func findMemoryTypeFallback(props vk.PhysicalDeviceMemoryProperties,
	typeBits uint32, required, preferred vk.MemoryPropertyFlags) (uint32, bool) {

	if index, ok := findMemoryType(props, typeBits, required|preferred); ok {
		return index, true
	}
	return findMemoryType(props, typeBits, required)
}
