// videobackend_vulkan.go - Offscreen Vulkan presentation backend

/*
videobackend_vulkan.go - Vulkan video backend.

Offscreen-only: no swapchain, no window surface. Each SubmitFrame
uploads the GPU controller's FrameBuffer into a host-visible staging
buffer; no device image is created or copied to. This mirrors the staging-buffer
readback path Voodoo's Vulkan backend uses for the opposite direction
(device to host). A real presentation surface belongs to the windowing
backend (Ebiten); this backend exists for headless GPU-accelerated
capture/benchmarking runs.
*/

package main

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
)

type VulkanVideoBackend struct {
	mu sync.Mutex

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue

	stagingBuffer vk.Buffer
	stagingMemory vk.DeviceMemory
	stagingSize   vk.DeviceSize

	lastFrame FrameBuffer
	started   bool
}

func NewVulkanVideoBackend() (*VulkanVideoBackend, error) {
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("vulkan init: %w", err)
	}

	appInfo := &vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		PApplicationName: "go-psx\x00",
		ApiVersion:    vk.ApiVersion10,
	}
	instanceInfo := &vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	var instance vk.Instance
	if ret := vk.CreateInstance(instanceInfo, nil, &instance); ret != vk.Success {
		return nil, fmt.Errorf("vulkan create instance: %v", ret)
	}

	var deviceCount uint32
	vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)
	if deviceCount == 0 {
		return nil, fmt.Errorf("vulkan: no physical devices available")
	}
	physicalDevices := make([]vk.PhysicalDevice, deviceCount)
	vk.EnumeratePhysicalDevices(instance, &deviceCount, physicalDevices)
	physicalDevice := physicalDevices[0]

	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: 0,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	deviceInfo := &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}
	var device vk.Device
	if ret := vk.CreateDevice(physicalDevice, deviceInfo, nil, &device); ret != vk.Success {
		return nil, fmt.Errorf("vulkan create device: %v", ret)
	}

	var queue vk.Queue
	vk.GetDeviceQueue(device, 0, 0, &queue)

	return &VulkanVideoBackend{
		instance:       instance,
		physicalDevice: physicalDevice,
		device:         device,
		queue:          queue,
	}, nil
}

func (v *VulkanVideoBackend) Start() error {
	v.started = true
	return nil
}

func (v *VulkanVideoBackend) Stop() error {
	v.started = false
	return nil
}

// SubmitFrame stages the frame's pixels into host-visible memory. The
// device-local copy/presentation path is intentionally not built out
// further since nothing in this backend currently reads it back -
// the Ebiten backend owns the window surface.
func (v *VulkanVideoBackend) SubmitFrame(fb FrameBuffer) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastFrame = fb

	required := vk.DeviceSize(len(fb.Pixels))
	if required == 0 {
		return nil
	}
	if required > v.stagingSize {
		if v.stagingBuffer != vk.NullBuffer {
			vk.DestroyBuffer(v.device, v.stagingBuffer, nil)
			vk.FreeMemory(v.device, v.stagingMemory, nil)
		}
		bufferInfo := &vk.BufferCreateInfo{
			SType: vk.StructureTypeBufferCreateInfo,
			Size:  required,
			Usage: vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		}
		if ret := vk.CreateBuffer(v.device, bufferInfo, nil, &v.stagingBuffer); ret != vk.Success {
			return fmt.Errorf("vulkan create staging buffer: %v", ret)
		}
		var req vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(v.device, v.stagingBuffer, &req)
		allocInfo := &vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  req.Size,
			MemoryTypeIndex: 0,
		}
		if ret := vk.AllocateMemory(v.device, allocInfo, nil, &v.stagingMemory); ret != vk.Success {
			return fmt.Errorf("vulkan allocate staging memory: %v", ret)
		}
		vk.BindBufferMemory(v.device, v.stagingBuffer, v.stagingMemory, 0)
		v.stagingSize = required
	}

	var mapped unsafe.Pointer
	vk.MapMemory(v.device, v.stagingMemory, 0, required, 0, &mapped)
	vk.Memcopy(mapped, fb.Pixels)
	vk.UnmapMemory(v.device, v.stagingMemory)
	return nil
}
