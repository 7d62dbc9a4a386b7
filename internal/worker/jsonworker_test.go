package worker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otcheredev/dicomweb-store/internal/storagepath"
)

type fakeProbe struct {
	cpu    float64
	mem    float64
	cpuErr error
	memErr error
}

func (p fakeProbe) CPUPercent() (float64, error)    { return p.cpu, p.cpuErr }
func (p fakeProbe) MemoryPercent() (float64, error) { return p.mem, p.memErr }

func workerWithProbe(p LoadProbe) *JSONWorker {
	return NewJSONWorkerWithProbe(nil, storagepath.Layout{}, p)
}

func TestGateAllowsIdleHost(t *testing.T) {
	w := workerWithProbe(fakeProbe{cpu: 45, mem: 55})
	assert.True(t, w.ShouldRun())
}

func TestGateBlocksBusyCPU(t *testing.T) {
	w := workerWithProbe(fakeProbe{cpu: 78, mem: 55})
	assert.False(t, w.ShouldRun())
}

func TestGateBlocksBusyMemory(t *testing.T) {
	w := workerWithProbe(fakeProbe{cpu: 45, mem: 70})
	assert.False(t, w.ShouldRun())
}

func TestGateBlocksAtExactCPUThreshold(t *testing.T) {
	w := workerWithProbe(fakeProbe{cpu: 60, mem: 10})
	assert.False(t, w.ShouldRun())
}

func TestGateBlocksOnProbeFailure(t *testing.T) {
	w := workerWithProbe(fakeProbe{cpuErr: errors.New("no procfs")})
	assert.False(t, w.ShouldRun())

	w = workerWithProbe(fakeProbe{cpu: 10, memErr: errors.New("no meminfo")})
	assert.False(t, w.ShouldRun())
}
