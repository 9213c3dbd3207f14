package system

import (
	"fmt"
	"io"

	"armmm/attr"
	"armmm/board"
	"armmm/cpu"
	"armmm/mmu"
)

// Mismatch is a region whose live mapping differs from its attribute
type Mismatch struct {
	Region board.Region
	Access cpu.Access
	Want   bool
	Err    error
}

func (m Mismatch) String() string {
	if m.Want {
		return fmt.Sprintf("%s: %s denied: %v", m.Region.Name, m.Access, m.Err)
	}
	return fmt.Sprintf("%s: %s allowed", m.Region.Name, m.Access)
}

// Verify probes the first section of every region on core 0 and reports
// the regions whose read and write permissions do not match their
// attribute. Regions overridden by a later entry at that section and
// regions with raw descriptors are skipped. The legacy table is uniform
// so only the modern variant is checked.
func (m *Machine) Verify() ([]Mismatch, error) {
	if !m.isBooted() {
		return nil, ErrNotBooted
	}
	if m.mmu.Variant() != mmu.Modern {
		return nil, nil
	}
	m.locks[0].Lock()
	defer m.locks[0].Unlock()

	regions := m.Board.Regions()
	var out []Mismatch
	for i, r := range regions {
		if r.Empty() || r.Raw != nil || overridden(regions, i) {
			continue
		}
		readable := r.Attr != attr.Unmapped
		writable := readable && r.Attr.Has(attr.Write)
		for _, c := range []struct {
			acc  cpu.Access
			want bool
		}{{cpu.Read, readable}, {cpu.Write, writable}} {
			_, err := m.Cores[0].Probe(r.Begin&^3, c.acc)
			if (err == nil) != c.want {
				out = append(out, Mismatch{Region: r, Access: c.acc, Want: c.want, Err: err})
			}
		}
	}
	return out, nil
}

// overridden reports a later region covering the first section of
// regions[i]
func overridden(regions board.Table, i int) bool {
	index := cpu.SectIndex(regions[i].Begin)
	for _, r := range regions[i+1:] {
		if r.Empty() {
			continue
		}
		end := uint32(cpu.SectAlignUp(uint64(r.End)) >> cpu.SectBaseShift)
		if index >= cpu.SectIndex(r.Begin) && index < end {
			return true
		}
	}
	return false
}

// Dump writes the live table as runs of sections with the same policy,
// skipping unmapped runs unless all is set.
func (m *Machine) Dump(w io.Writer, all bool) error {
	var (
		start uint32
		head  mmu.Descriptor
	)
	flush := func(end uint32) {
		if head == 0 && !all {
			return
		}
		fmt.Fprintf(w, "[%08x, %09x) %4d  %v\n",
			start<<cpu.SectBaseShift, uint64(end)<<cpu.SectBaseShift, end-start, head)
	}
	for i := uint32(0); i < cpu.TableEntryCount; i++ {
		d, err := m.Describe(i << cpu.SectBaseShift)
		if err != nil {
			return err
		}
		// runs share the policy bits, not the section base
		if i > 0 && d&^cpu.SectBaseMask != head&^cpu.SectBaseMask {
			flush(i)
			start = i
		}
		if i == start {
			head = d
		}
	}
	flush(cpu.TableEntryCount)
	return nil
}
