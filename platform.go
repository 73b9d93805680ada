package vkpool

import (
	"errors"
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// Application supplies the identity and extension requirements used to
// stand up a Vulkan instance and device for a Pool.
type Application interface {
	VulkanAPIVersion() vk.Version
	VulkanAppVersion() vk.Version
	VulkanAppName() string
	VulkanInstanceExtensions() []string
	VulkanDeviceExtensions() []string

	// DECORATORS:
	// ApplicationVulkanLayers
}

// ApplicationVulkanLayers is an optional decorator for applications
// that request validation layers.
type ApplicationVulkanLayers interface {
	VulkanLayers() []string
}

var (
	DefaultVulkanAppVersion = vk.Version(vk.MakeVersion(1, 0, 0))
	DefaultVulkanAPIVersion = vk.Version(vk.MakeVersion(1, 0, 0))
)

// BaseApplication is a ready-made headless Application with default
// versions and no extension requirements. Embed it and override what
// differs.
type BaseApplication struct {
	Name string
}

func (a BaseApplication) VulkanAPIVersion() vk.Version { return DefaultVulkanAPIVersion }
func (a BaseApplication) VulkanAppVersion() vk.Version { return DefaultVulkanAppVersion }

func (a BaseApplication) VulkanAppName() string {
	if a.Name == "" {
		return "vkpool"
	}
	return a.Name
}

func (a BaseApplication) VulkanInstanceExtensions() []string { return nil }
func (a BaseApplication) VulkanDeviceExtensions() []string   { return nil }

// InitVulkan loads the Vulkan entry points through GLFW's loader
// discovery. Must be called once, before NewPlatform, from the thread
// that owns GLFW.
func InitVulkan() error {
	if err := glfw.Init(); err != nil {
		return err
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	return vk.Init()
}

// Platform is the device/allocator context a Pool is built on.
type Platform interface {
	// MemoryProperties gets the current Vulkan physical device memory properties.
	MemoryProperties() vk.PhysicalDeviceMemoryProperties
	// PhysicalDeviceProperties gets the current Vulkan physical device properties.
	PhysicalDeviceProperties() vk.PhysicalDeviceProperties
	// ComputeQueueFamilyIndex gets the queue family index selected for compute work.
	ComputeQueueFamilyIndex() uint32
	// ComputeQueue gets the device queue selected for compute work.
	ComputeQueue() vk.Queue
	// Instance gets the current Vulkan instance.
	Instance() vk.Instance
	// Device gets the current Vulkan device.
	Device() vk.Device
	// PhysicalDevice gets the current Vulkan physical device.
	PhysicalDevice() vk.PhysicalDevice
	// Destroy is the destructor for the Platform instance.
	Destroy()
}

// NewPlatform creates a headless compute platform: one instance, the
// first suitable GPU, one compute-capable queue. Pools created on top
// of it share its device for all allocation and object creation.
func NewPlatform(app Application) (pFace Platform, err error) {
	defer checkErr(&err)
	p := &platform{}

	// Select instance extensions
	requiredInstanceExtensions := safeStrings(app.VulkanInstanceExtensions())
	actualInstanceExtensions, err := InstanceExtensions()
	orPanic(err)
	instanceExtensions, missing := checkExisting(actualInstanceExtensions, requiredInstanceExtensions)
	if missing > 0 {
		log.Println("vulkan warning: missing", missing, "required instance extensions during init")
	}
	log.Printf("vulkan: enabling %d instance extensions", len(instanceExtensions))

	// Select instance layers
	var validationLayers []string
	if iface, ok := app.(ApplicationVulkanLayers); ok {
		requiredValidationLayers := safeStrings(iface.VulkanLayers())
		actualValidationLayers, err := ValidationLayers()
		orPanic(err)
		validationLayers, missing = checkExisting(actualValidationLayers, requiredValidationLayers)
		if missing > 0 {
			log.Println("vulkan warning: missing", missing, "required validation layers during init")
		}
	}

	// Create instance
	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(app.VulkanAPIVersion()),
			ApplicationVersion: uint32(app.VulkanAppVersion()),
			PApplicationName:   safeString(app.VulkanAppName()),
			PEngineName:        "vkpool\x00",
		},
		EnabledExtensionCount:   uint32(len(instanceExtensions)),
		PpEnabledExtensionNames: instanceExtensions,
		EnabledLayerCount:       uint32(len(validationLayers)),
		PpEnabledLayerNames:     validationLayers,
	}, nil, &instance)
	orPanic(newError(ret))
	p.instance = instance
	vk.InitInstance(instance)

	// Find a suitable GPU
	var gpuCount uint32
	ret = vk.EnumeratePhysicalDevices(p.instance, &gpuCount, nil)
	orPanic(newError(ret))
	if gpuCount == 0 {
		return nil, errors.New("vulkan error: no GPU devices found")
	}
	gpus := make([]vk.PhysicalDevice, gpuCount)
	ret = vk.EnumeratePhysicalDevices(p.instance, &gpuCount, gpus)
	orPanic(newError(ret))
	// get the first one, multiple GPUs not supported yet
	p.gpu = gpus[0]
	vk.GetPhysicalDeviceProperties(p.gpu, &p.gpuProperties)
	p.gpuProperties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(p.gpu, &p.memoryProperties)
	p.memoryProperties.Deref()

	// Select device extensions
	requiredDeviceExtensions := safeStrings(app.VulkanDeviceExtensions())
	actualDeviceExtensions, err := DeviceExtensions(p.gpu)
	orPanic(err)
	deviceExtensions, missing := checkExisting(actualDeviceExtensions, requiredDeviceExtensions)
	if missing > 0 {
		log.Println("vulkan warning: missing", missing, "required device extensions during init")
	}
	log.Printf("vulkan: enabling %d device extensions", len(deviceExtensions))

	// Find a compute-capable queue family
	var queueCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.gpu, &queueCount, nil)
	queueProperties := make([]vk.QueueFamilyProperties, queueCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.gpu, &queueCount, queueProperties)
	if queueCount == 0 { // probably should try another GPU
		return nil, errors.New("vulkan error: no queue families found on GPU 0")
	}

	var computeFound bool
	for i := uint32(0); i < queueCount; i++ {
		queueProperties[i].Deref()
		if queueProperties[i].QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0 {
			p.computeQueueIndex = i
			computeFound = true
			break
		}
	}
	if !computeFound {
		return nil, errors.New("vulkan error: could not find a compute-capable queue family")
	}

	// Create a Vulkan device
	var device vk.Device
	ret = vk.CreateDevice(p.gpu, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: p.computeQueueIndex,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}},
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
		PpEnabledExtensionNames: deviceExtensions,
		EnabledLayerCount:       uint32(len(validationLayers)),
		PpEnabledLayerNames:     validationLayers,
	}, nil, &device)
	orPanic(newError(ret))
	p.device = device

	var queue vk.Queue
	vk.GetDeviceQueue(p.device, p.computeQueueIndex, 0, &queue)
	p.computeQueue = queue
	return p, nil
}

type platform struct {
	instance vk.Instance
	gpu      vk.PhysicalDevice
	device   vk.Device

	computeQueueIndex uint32
	computeQueue      vk.Queue

	gpuProperties    vk.PhysicalDeviceProperties
	memoryProperties vk.PhysicalDeviceMemoryProperties
}

func (p *platform) MemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return p.memoryProperties
}

func (p *platform) PhysicalDeviceProperties() vk.PhysicalDeviceProperties {
	return p.gpuProperties
}

func (p *platform) PhysicalDevice() vk.PhysicalDevice {
	return p.gpu
}

func (p *platform) ComputeQueueFamilyIndex() uint32 {
	return p.computeQueueIndex
}

func (p *platform) ComputeQueue() vk.Queue {
	return p.computeQueue
}

func (p *platform) Instance() vk.Instance {
	return p.instance
}

func (p *platform) Device() vk.Device {
	return p.device
}

func (p *platform) Destroy() {
	if p.device != nil {
		vk.DeviceWaitIdle(p.device)
		vk.DestroyDevice(p.device, nil)
		p.device = nil
	}
	if p.instance != nil {
		vk.DestroyInstance(p.instance, nil)
		p.instance = nil
	}
}
