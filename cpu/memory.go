package cpu

import "sync"

const (
	pageShift = 12
	pageSize  = 1 << pageShift
)

// Memory is the physical memory shared by all cores. Pages are allocated
// on first write; unwritten memory reads as zero.
type Memory struct {
	mu    sync.RWMutex
	pages map[uint32]*[pageSize]byte
}

// NewMemory returns empty physical memory spanning the 32 bit space.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32]*[pageSize]byte)}
}

// Read8 returns the byte at the physical address
func (m *Memory) Read8(addr uint32) byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readByte(addr)
}

// Write8 stores a byte at the physical address
func (m *Memory) Write8(addr uint32, data byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeByte(addr, data)
}

// Read32 reads a little endian word. Word reads are atomic with respect to
// other cores.
func (m *Memory) Read32(addr uint32) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var w uint32
	for i := uint32(0); i < 4; i++ {
		w |= uint32(m.readByte(addr+i)) << (8 * i)
	}
	return w
}

// Write32 stores a little endian word.
func (m *Memory) Write32(addr, data uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := uint32(0); i < 4; i++ {
		m.writeByte(addr+i, byte(data>>(8*i)))
	}
}

// Pages returns the number of allocated 4k pages
func (m *Memory) Pages() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

func (m *Memory) readByte(addr uint32) byte {
	p, ok := m.pages[addr>>pageShift]
	if !ok {
		return 0
	}
	return p[addr&(pageSize-1)]
}

func (m *Memory) writeByte(addr uint32, data byte) {
	p, ok := m.pages[addr>>pageShift]
	if !ok {
		p = new([pageSize]byte)
		m.pages[addr>>pageShift] = p
	}
	p[addr&(pageSize-1)] = data
}
