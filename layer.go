package support

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/layerforge/support/geom"
)

// LayerKind tags the role of a support layer.
type LayerKind uint8

const (
	KindUnknown LayerKind = iota
	// KindRaftBase is a raft layer below the raft interface.
	KindRaftBase
	// KindRaftInterface is a dense raft layer under the raft contact.
	KindRaftInterface
	// KindBottomContact stands on a top surface of the object.
	KindBottomContact
	// KindBase is sparse support body.
	KindBase
	// KindIntermediate is a body layer before it is filled.
	KindIntermediate
	// KindTopInterface is a dense layer below a top contact.
	KindTopInterface
	// KindBottomInterface is a dense layer above a bottom contact.
	KindBottomInterface
	// KindTopContact touches the object from below.
	KindTopContact

	numKinds
)

var kindNames = [numKinds]string{
	"unknown",
	"raft-base",
	"raft-interface",
	"bottom-contact",
	"base",
	"intermediate",
	"top-interface",
	"bottom-interface",
	"top-contact",
}

func (k LayerKind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("LayerKind(%d)", uint8(k))
}

// Dense reports whether the kind is printed with the interface pattern.
func (k LayerKind) Dense() bool {
	switch k {
	case KindTopContact, KindBottomContact, KindTopInterface, KindBottomInterface, KindRaftInterface:
		return true
	}
	return false
}

// ContactPayload holds the polygons only contact layers carry.
type ContactPayload struct {
	// ContactPolygons is the demand area before grid regularization.
	ContactPolygons geom.Polygons
	// OverhangPolygons is the exact unsupported silhouette.
	OverhangPolygons geom.Polygons
}

// Layer is one intermediate support layer owned by an Arena.
type Layer struct {
	Kind    LayerKind
	PrintZ  float64
	BottomZ float64
	Height  float64

	// Polygons is the extrudable footprint.
	Polygons geom.Polygons
	// Contact is set on top contact layers only.
	Contact *ContactPayload
	// Bridging marks a layer extruded with bridging flow.
	Bridging bool
	// BaseInterface marks a dense base layer printed with the base material
	// between a soluble interface and the sparse body.
	BaseInterface bool

	// IdxObjectLayerAbove and IdxObjectLayerBelow link contact layers to the
	// object layer they support or stand on; -1 when unset.
	IdxObjectLayerAbove int
	IdxObjectLayerBelow int
}

// Empty reports whether the layer has nothing to print.
func (l *Layer) Empty() bool { return len(l.Polygons) == 0 }

// LayerID is a stable handle into an Arena.
type LayerID uint64

// NoLayer is the zero handle; Arena never returns it.
const NoLayer LayerID = 0

func makeID(shard, idx int) LayerID {
	return LayerID(uint64(shard)<<32 | uint64(idx+1))
}

func (id LayerID) split() (shard, idx int) {
	return int(id >> 32), int(uint32(id)) - 1
}

// arenaChunk is the number of layers per arena chunk.
const arenaChunk = 256

// Arena owns every Layer of one generation pass. Allocation is sharded so
// parallel tasks that use distinct shards never contend; handles stay valid
// until the arena is dropped. Layers live in fixed-size chunks that never
// move, so lookups take no lock.
type Arena struct {
	shards []arenaShard
}

type arenaShard struct {
	mu     sync.Mutex // serializes Alloc
	n      atomic.Int64
	chunks atomic.Pointer[[]*[arenaChunk]Layer]
}

// NewArena creates an arena with n shards (at least one).
func NewArena(n int) *Arena {
	return &Arena{shards: make([]arenaShard, max(n, 1))}
}

// Alloc appends a new layer of the given kind to shard (taken modulo the
// shard count) and returns its handle and pointer. The caller owns the
// layer exclusively until the stage barrier.
func (a *Arena) Alloc(shard int, kind LayerKind) (LayerID, *Layer) {
	shard %= len(a.shards)
	if shard < 0 {
		shard += len(a.shards)
	}
	s := &a.shards[shard]
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := int(s.n.Load())
	var dir []*[arenaChunk]Layer
	if p := s.chunks.Load(); p != nil {
		dir = *p
	}
	if idx/arenaChunk == len(dir) {
		grown := append(dir[:len(dir):len(dir)], new([arenaChunk]Layer))
		s.chunks.Store(&grown)
		dir = grown
	}
	l := &dir[idx/arenaChunk][idx%arenaChunk]
	*l = Layer{Kind: kind, IdxObjectLayerAbove: -1, IdxObjectLayerBelow: -1}
	s.n.Store(int64(idx + 1))
	return makeID(shard, idx), l
}

// Layer returns the layer for id, or nil for an unknown handle. It is safe
// to call concurrently with Alloc.
func (a *Arena) Layer(id LayerID) *Layer {
	shard, idx := id.split()
	if id == NoLayer || shard >= len(a.shards) {
		return nil
	}
	s := &a.shards[shard]
	if idx < 0 || idx >= int(s.n.Load()) {
		return nil
	}
	dir := *s.chunks.Load()
	return &dir[idx/arenaChunk][idx%arenaChunk]
}

// Len returns the number of allocated layers.
func (a *Arena) Len() int {
	n := 0
	for i := range a.shards {
		n += int(a.shards[i].n.Load())
	}
	return n
}

// LayerList is an ordered list of arena handles produced by one stage.
type LayerList []LayerID

// SortLayers orders list by print Z ascending, then by height descending.
func SortLayers(a *Arena, list LayerList) {
	sort.SliceStable(list, func(i, j int) bool {
		li, lj := a.Layer(list[i]), a.Layer(list[j])
		if li.PrintZ != lj.PrintZ {
			return li.PrintZ < lj.PrintZ
		}
		return li.Height > lj.Height
	})
}

// compact drops NoLayer handles and empty layers.
func compact(a *Arena, list LayerList) LayerList {
	out := list[:0]
	for _, id := range list {
		if id == NoLayer {
			continue
		}
		if l := a.Layer(id); l != nil && !l.Empty() {
			out = append(out, id)
		}
	}
	return out
}
