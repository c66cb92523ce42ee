// Package gputest provides in-memory implementations of the gpu driver
// interfaces for tests. The fakes count the calls made on them and record
// the order in which objects are destroyed.
package gputest

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/gpu-bootstrap/internal/gpu"
)

// ErrStale is returned when a physical device from an earlier enumeration is
// used after the instance enumerated its devices again.
var ErrStale = errors.New("stale physical device reference")

// CallLog records named events in order. It is safe for concurrent use.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) Record(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// Index returns the position of the first record of name, or -1.
func (l *CallLog) Index(name string) int {
	for i, call := range l.Calls() {
		if call == name {
			return i
		}
	}
	return -1
}

type Loader struct {
	Extensions    []string
	Layers        []string
	ExtensionsErr error
	LayersErr     error
	CreateErr     error

	// Instance is returned by CreateInstance.
	Instance *Instance
	Created  []gpu.InstanceInfo
}

var _ gpu.Loader = (*Loader)(nil)

func (l *Loader) AvailableExtensions() ([]string, error) {
	if l.ExtensionsErr != nil {
		return nil, l.ExtensionsErr
	}
	return append([]string(nil), l.Extensions...), nil
}

func (l *Loader) AvailableLayers() ([]string, error) {
	if l.LayersErr != nil {
		return nil, l.LayersErr
	}
	return append([]string(nil), l.Layers...), nil
}

func (l *Loader) CreateInstance(info gpu.InstanceInfo) (gpu.Instance, error) {
	l.Created = append(l.Created, info)
	if l.CreateErr != nil {
		return nil, l.CreateErr
	}
	if l.Instance == nil {
		l.Instance = &Instance{}
	}
	return l.Instance, nil
}

type Instance struct {
	GPUs         []*GPU
	EnumerateErr error
	MessengerErr error
	Log          *CallLog

	Enumerations int
	Messengers   []*Messenger
	Destroyed    int
}

var _ gpu.Instance = (*Instance)(nil)

// EnumeratePhysicalDevices returns fresh references to GPUs. References from
// previous calls become stale.
func (i *Instance) EnumeratePhysicalDevices() ([]gpu.PhysicalDevice, error) {
	i.Enumerations++
	if i.EnumerateErr != nil {
		return nil, i.EnumerateErr
	}

	devices := make([]gpu.PhysicalDevice, 0, len(i.GPUs))
	for _, g := range i.GPUs {
		devices = append(devices, &physicalDevice{gpu: g, instance: i, generation: i.Enumerations})
	}
	return devices, nil
}

func (i *Instance) CreateMessenger(options gpu.MessengerOptions) (gpu.Messenger, error) {
	if i.MessengerErr != nil {
		return nil, i.MessengerErr
	}
	messenger := &Messenger{Options: options, log: i.Log}
	i.Messengers = append(i.Messengers, messenger)
	return messenger, nil
}

func (i *Instance) Destroy() {
	i.Destroyed++
	i.Log.Record("instance")
}

// GPU describes one device an Instance enumerates.
type GPU struct {
	Properties    gpu.DeviceProperties
	PropertiesErr error
	QueueFamilies []gpu.QueueFamily
	Extensions    []string
	CreateErr     error

	FamilyReads int
	StaleUses   int
	Devices     []*Device
}

// NewGPU returns a GPU with one single-queue family per flags value.
func NewGPU(name string, families ...core1_0.QueueFlags) *GPU {
	g := &GPU{
		Properties: gpu.DeviceProperties{
			Name:     name,
			Type:     core1_0.PhysicalDeviceTypeDiscreteGPU,
			VendorID: 0x10de,
			DeviceID: uint32(len(name)),
		},
	}
	for _, flags := range families {
		g.QueueFamilies = append(g.QueueFamilies, gpu.QueueFamily{Flags: flags, QueueCount: 1})
	}
	return g
}

type physicalDevice struct {
	gpu        *GPU
	instance   *Instance
	generation int
}

func (d *physicalDevice) stale() bool {
	if d.generation != d.instance.Enumerations {
		d.gpu.StaleUses++
		return true
	}
	return false
}

func (d *physicalDevice) Properties() (gpu.DeviceProperties, error) {
	d.stale()
	if d.gpu.PropertiesErr != nil {
		return gpu.DeviceProperties{}, d.gpu.PropertiesErr
	}
	return d.gpu.Properties, nil
}

func (d *physicalDevice) QueueFamilyCount() int {
	d.stale()
	return len(d.gpu.QueueFamilies)
}

func (d *physicalDevice) QueueFamily(index int) gpu.QueueFamily {
	d.stale()
	d.gpu.FamilyReads++
	return d.gpu.QueueFamilies[index]
}

func (d *physicalDevice) AvailableExtensions() ([]string, error) {
	d.stale()
	return append([]string(nil), d.gpu.Extensions...), nil
}

func (d *physicalDevice) CreateDevice(info gpu.DeviceInfo) (gpu.Device, error) {
	if d.stale() {
		return nil, ErrStale
	}
	if d.gpu.CreateErr != nil {
		return nil, d.gpu.CreateErr
	}
	device := &Device{Info: info, log: d.instance.Log}
	d.gpu.Devices = append(d.gpu.Devices, device)
	return device, nil
}

type Device struct {
	Info      gpu.DeviceInfo
	Queues    []*Queue
	Destroyed int

	log *CallLog
}

var _ gpu.Device = (*Device)(nil)

func (d *Device) GetQueue(familyIndex, queueIndex int) gpu.Queue {
	queue := &Queue{family: familyIndex, index: queueIndex}
	d.Queues = append(d.Queues, queue)
	return queue
}

func (d *Device) Destroy() {
	d.Destroyed++
	d.log.Record("device")
}

type Queue struct {
	family int
	index  int
}

func (q *Queue) FamilyIndex() int { return q.family }
func (q *Queue) Index() int       { return q.index }

type Messenger struct {
	Options   gpu.MessengerOptions
	Destroyed int

	log *CallLog
}

// Emit delivers msg the way the driver would.
func (m *Messenger) Emit(msg gpu.Message) {
	m.Options.Callback(msg)
}

func (m *Messenger) Destroy() {
	m.Destroyed++
	m.log.Record("messenger")
}
