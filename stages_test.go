package support

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layerforge/support/geom"
)

func square(size float64) func(int) geom.ExPolygons {
	return func(int) geom.ExPolygons {
		return slice(geom.RectMM(-size/2, -size/2, size/2, size/2))
	}
}

// ===== Z helpers =====

func TestObjectLayerBelow(t *testing.T) {
	r := testRun(t, testConfig(), stackObject(5, 0, 0.2, square(10)))
	tests := []struct {
		z    float64
		want int
	}{
		{0.1, -1},
		{0.2, 0},
		{0.35, 0},
		{0.6, 2},
		{5, 4},
	}
	for _, tt := range tests {
		if got := r.objectLayerBelow(tt.z); got != tt.want {
			t.Errorf("objectLayerBelow(%v) = %d, want %d", tt.z, got, tt.want)
		}
	}
}

func TestRaftLayerZ(t *testing.T) {
	tests := []struct {
		name        string
		first, raft float64
		want        []float64
	}{
		{"first layer taller", 0.3, 0.25, []float64{0.3, 0.55, 0.8}},
		{"raft layers taller", 0.2, 0.3, []float64{0.3, 0.6, 0.9}},
		{"equal", 0.2, 0.2, []float64{0.2, 0.4, 0.6}},
	}
	for _, tt := range tests {
		cfg := testConfig()
		cfg.FirstLayerHeight = tt.first
		cfg.RaftLayerHeight = tt.raft
		for k, want := range tt.want {
			if got := raftLayerZ(cfg, k); !approxEqual(got, want) {
				t.Errorf("%s: raftLayerZ(%d) = %v, want %v", tt.name, k, got, want)
			}
		}
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestIntervalBounds(t *testing.T) {
	floats := cmpopts.EquateApprox(0, 1e-9)
	obj := stackObject(10, 0, 0.2, square(10))

	tests := []struct {
		name   string
		sync   bool
		lo, hi float64
		want   []float64
	}{
		{"stepped single", false, 0.2, 0.4, []float64{0.4}},
		{"stepped even", false, 0.2, 0.8, []float64{0.5, 0.8}},
		{"stepped split", false, 0.2, 1.8, []float64{0.2 + 1.6/6, 0.2 + 3.2/6, 0.2 + 4.8/6, 0.2 + 6.4/6, 0.2 + 8.0/6, 1.8}},
		{"synchronized", true, 0.2, 1.0, []float64{0.4, 0.6, 0.8, 1.0}},
		{"synchronized sliver", true, 0.2, 1.05, []float64{0.4, 0.6, 0.8, 1.05}},
		{"synchronized between layers", true, 0.45, 0.5, []float64{0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.SynchronizeLayers = tt.sync
			r := testRun(t, cfg, obj)
			got := r.intervalBounds(tt.lo, tt.hi)
			if diff := cmp.Diff(tt.want, got, floats); diff != "" {
				t.Errorf("intervalBounds(%v, %v) mismatch (-want +got):\n%s", tt.lo, tt.hi, diff)
			}
			for _, b := range got {
				assert.LessOrEqual(t, b, tt.hi+1e-9)
			}
		})
	}
}

func TestIntervalBounds_NeverBelowMinHeight(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLayerHeight = 0.1
	r := testRun(t, cfg, stackObject(10, 0, 0.2, square(10)))

	if got := r.intervalBounds(1.0, 1.12); len(got) != 1 {
		t.Errorf("intervalBounds(1.0, 1.12) = %v, want one step", got)
	}
	for n := 7; n <= 60; n++ {
		hi := 1.0 + float64(n)*0.01
		prev := 1.0
		for _, b := range r.intervalBounds(1.0, hi) {
			if b-prev < cfg.MinLayerHeight-cfg.ZEpsilon {
				t.Fatalf("intervalBounds(1.0, %v): step %v thinner than %v", hi, b-prev, cfg.MinLayerHeight)
			}
			prev = b
		}
		assert.InDelta(t, hi, prev, 1e-9)
	}
}

// ===== Top contacts =====

func TestMergeTopContacts(t *testing.T) {
	cfg := testConfig()
	r := testRun(t, cfg, stackObject(20, 0, 0.2, square(10)))
	add := func(z float64, x float64) LayerID {
		id, l := r.arena.Alloc(0, KindTopContact)
		l.PrintZ, l.BottomZ = z, z
		l.Contact = &ContactPayload{}
		l.Polygons = geom.Polygons{geom.RectMM(x, 0, x+1, 1)}
		return id
	}
	list := LayerList{add(0.22, 0), add(1.0, 2), add(1.05, 4), add(1.2, 6)}

	got := r.mergeTopContacts(list)
	require.Len(t, got, 3)

	first := r.arena.Layer(got[0])
	assert.InDelta(t, cfg.FirstLayerHeight, first.PrintZ, 1e-9, "snapped to the floor")

	merged := r.arena.Layer(got[1])
	assert.InDelta(t, 1.0, merged.PrintZ, 1e-9)
	assert.InDelta(t, 2, merged.Polygons.Area()/mm2, 1e-6)

	assert.InDelta(t, 1.2, r.arena.Layer(got[2]).PrintZ, 1e-9)
}

// TestMergeTopContacts_GroupZ tests that a merged group keeps the Z of its
// lowest contact and that a group spans MinLayerHeight from that contact.
func TestMergeTopContacts_GroupZ(t *testing.T) {
	cfg := testConfig()
	tests := []struct {
		name string
		zs   []float64
		want []float64
	}{
		{"pair", []float64{1.0, 1.06}, []float64{1.0}},
		{"exactly min height apart", []float64{1.0, 1.07}, []float64{1.0, 1.07}},
		{"group measured from its lowest", []float64{1.0, 1.04, 1.08}, []float64{1.0, 1.08}},
		{"three within min height", []float64{1.0, 1.02, 1.05}, []float64{1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRun(t, cfg, stackObject(20, 0, 0.2, square(10)))
			var list LayerList
			for k, z := range tt.zs {
				id, l := r.arena.Alloc(0, KindTopContact)
				l.PrintZ, l.BottomZ = z, z
				l.Contact = &ContactPayload{}
				l.Polygons = geom.Polygons{geom.RectMM(float64(2*k), 0, float64(2*k+1), 1)}
				list = append(list, id)
			}
			var got []float64
			for _, id := range r.mergeTopContacts(list) {
				got = append(got, r.arena.Layer(id).PrintZ)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("merged Z mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContactArea_ClippedByLower(t *testing.T) {
	r := testRun(t, testConfig(), tabObject())
	lowerGrown := geom.Offset(geom.Polygons{disk(10)}, r.gapXY, geom.JoinMiter)
	overhang := geom.Diff(geom.Polygons{tabRect}, lowerGrown)

	contact := r.contactArea(overhang, lowerGrown)
	require.NotEmpty(t, contact)
	assert.InDelta(t, 0, geom.Intersection(contact, lowerGrown).Area()/mm2, 1e-3)
	assert.Greater(t, contact.Area(), overhang.Area())

	margin := float64(geom.Scaled(marginSteps*marginStep + 0.05))
	grown := geom.Offset(overhang, margin, geom.JoinRound)
	assert.InDelta(t, 0, geom.Diff(contact, grown).Area()/mm2, 1e-3)
}

func TestOverhangAt_Bridges(t *testing.T) {
	obj := tabObject()
	bridge := geom.UnionEx(geom.Diff(geom.Polygons{tabRect}, geom.Polygons{disk(10)}))
	for _, ex := range bridge {
		obj.Layers[10].Regions = append(obj.Layers[10].Regions, Region{
			Surfaces: []Surface{{Type: SurfaceBottomBridge, ExPolygon: ex}},
		})
	}

	cfg := testConfig()
	r := testRun(t, cfg, obj)
	overhang, bridges := r.overhangAt(10, nil)
	assert.Empty(t, overhang)
	assert.Empty(t, bridges)

	cfg.DontSupportBridges = false
	r = testRun(t, cfg, obj)
	overhang, bridges = r.overhangAt(10, nil)
	assert.NotEmpty(t, overhang)
	assert.NotEmpty(t, bridges)
}

// ===== Bottom contacts =====

func TestSnapToTopContact(t *testing.T) {
	r := testRun(t, testConfig(), tabObject())
	var top LayerList
	for _, z := range []float64{1.0, 1.5, 2.0} {
		id, l := r.arena.Alloc(0, KindTopContact)
		l.PrintZ = z
		top = append(top, id)
	}

	tests := []struct {
		z    float64
		want float64
		ok   bool
	}{
		{1.02, 1.0, true},
		{1.48, 1.5, true},
		{1.25, 0, false},
		{2.1, 0, false},
		{0.97, 1.0, true},
		// Beyond the snap tolerance but closer than the minimum layer height.
		{1.06, 1.0, true},
		{1.44, 1.5, true},
		{1.08, 0, false},
	}
	for _, tt := range tests {
		got, ok := r.snapToTopContact(tt.z, top)
		if ok != tt.ok || (ok && !approxEqual(got, tt.want)) {
			t.Errorf("snapToTopContact(%v) = %v, %v, want %v, %v", tt.z, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSpaceBottomContacts(t *testing.T) {
	r := testRun(t, testConfig(), tabObject())
	var list LayerList
	for _, z := range []float64{1.0, 1.05, 1.2, 1.25, 1.3} {
		id, l := r.arena.Alloc(0, KindBottomContact)
		l.PrintZ, l.Height, l.BottomZ = z, 0.2, z-0.2
		list = append(list, id)
	}
	r.spaceBottomContacts(list)

	var got []float64
	for _, id := range list {
		l := r.arena.Layer(id)
		got = append(got, l.PrintZ)
		assert.InDelta(t, l.PrintZ-l.BottomZ, l.Height, 1e-9)
		assert.Greater(t, l.Height, 0.0)
	}
	want := []float64{1.0, 1.0, 1.2, 1.2, 1.3}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("bottom contact Z mismatch (-want +got):\n%s", diff)
	}
}

func TestTopSurfaces(t *testing.T) {
	r := testRun(t, testConfig(), shelfObject())
	block := 30.0 * 30.0
	column := 4.0 * 4.0
	assert.InDelta(t, block-column, r.topSurfaces(4).Area()/mm2, 1e-6)
	assert.InDelta(t, 0, r.topSurfaces(2).Area()/mm2, 1e-6)
}

// ===== Trim =====

func TestTrim_NeverAddsArea(t *testing.T) {
	cfg := testConfig()
	r := testRun(t, cfg, shelfObject())
	var list LayerList
	var before []float64
	for k, z := range []float64{0.4, 1.1, 1.4, 2.0, 2.4, 3.4} {
		id, l := r.arena.Alloc(k, KindBase)
		l.PrintZ, l.BottomZ, l.Height = z, z-0.2, 0.2
		l.Polygons = geom.Polygons{geom.RectMM(-10, -10, 10, 10)}
		list = append(list, id)
		before = append(before, l.Polygons.Area())
	}
	raftID, raft := r.arena.Alloc(0, KindRaftBase)
	raft.PrintZ, raft.Height = 0.2, 0.2
	raft.Polygons = geom.Polygons{geom.RectMM(-10, -10, 10, 10)}

	r.trim(append(list, raftID), cfg.ContactDistanceTop, cfg.ContactDistanceBottom)

	for k, id := range list {
		assert.LessOrEqual(t, r.arena.Layer(id).Polygons.Area(), before[k]+1)
	}
	// Inside the block nothing survives.
	assert.Empty(t, r.arena.Layer(list[0]).Polygons)
	// Above the object the layer is untouched.
	assert.InDelta(t, before[5], r.arena.Layer(list[5]).Polygons.Area(), 1)
	// Next to the column the XY gap is kept.
	col := geom.Offset(geom.Polygons{geom.RectMM(-2, -2, 2, 2)}, r.gapXY-1, geom.JoinMiter)
	assert.InDelta(t, 0, geom.Intersection(r.arena.Layer(list[3]).Polygons, col).Area()/mm2, 1e-3)
	assert.InDelta(t, 400, raft.Polygons.Area()/mm2, 1e-6, "raft layers are not trimmed")
}

func TestBoundaries(t *testing.T) {
	cfg := testConfig()
	r := testRun(t, cfg, tabObject())
	var top, bottom LayerList
	add := func(list *LayerList, kind LayerKind, z, h float64) *Layer {
		id, l := r.arena.Alloc(0, kind)
		l.PrintZ, l.Height, l.BottomZ = z, h, z-h
		*list = append(*list, id)
		return l
	}
	waiting := add(&top, KindTopContact, 1.0, 0)
	add(&top, KindTopContact, 2.0, 0.2)
	snapped := add(&top, KindTopContact, 3.0, 0.25)
	add(&bottom, KindBottomContact, 1.00001, 0.2)
	add(&bottom, KindBottomContact, 2.8, 0.2)

	bs := r.boundaries(top, bottom)
	var zs []float64
	for _, b := range bs {
		zs = append(zs, b.z)
	}
	want := []float64{cfg.FirstLayerHeight, 1.0, 1.8, 2.0, 2.8, 3.0}
	if diff := cmp.Diff(want, zs, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("boundaries mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, bs[1].tcs, 1)
	assert.Same(t, waiting, bs[1].tcs[0])
	for i := range bs {
		if i != 1 {
			assert.Empty(t, bs[i].tcs)
		}
		if i > 0 {
			assert.GreaterOrEqual(t, bs[i].z-bs[i-1].z, cfg.MinLayerHeight-cfg.ZEpsilon)
		}
	}

	// The bottom at 2.75 moved onto the bottom contact at 2.8.
	assert.InDelta(t, 2.8, snapped.BottomZ, 1e-9)
	assert.InDelta(t, 0.2, snapped.Height, 1e-9)
}

func TestTrimTopByBottom(t *testing.T) {
	r := testRun(t, testConfig(), tabObject())
	alloc := func(kind LayerKind, z, h float64, poly geom.Polygon) (LayerID, *Layer) {
		id, l := r.arena.Alloc(0, kind)
		l.PrintZ, l.Height, l.BottomZ = z, h, z-h
		l.Polygons = geom.Polygons{poly}
		return id, l
	}
	sameID, same := alloc(KindTopContact, 1.5, 0.2, geom.RectMM(0, 0, 10, 10))
	sameBCID, sameBC := alloc(KindBottomContact, 1.5, 0.26, geom.RectMM(-5, 0, 5, 10))
	lowID, low := alloc(KindTopContact, 3.0, 0.3, geom.RectMM(0, 0, 10, 10))
	overlapID, _ := alloc(KindBottomContact, 2.9, 0.2, geom.RectMM(0, 0, 5, 10))

	r.trimTopByBottom(LayerList{sameID, lowID}, LayerList{sameBCID, overlapID})

	assert.InDelta(t, 100, same.Polygons.Area()/mm2, 1e-6, "a top contact keeps its area at its own Z")
	assert.InDelta(t, 50, sameBC.Polygons.Area()/mm2, 1e-6)
	assert.InDelta(t, 50, low.Polygons.Area()/mm2, 1e-6)
}

func TestObjectBand_Cached(t *testing.T) {
	r := testRun(t, testConfig(), shelfObject())
	a := r.objectBand(1.5, 2.1)
	b := r.objectBand(1.51, 2.09)
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)

	st := r.bands.Stats()
	assert.Equal(t, 1, st.Len)
	assert.Equal(t, uint64(1), st.Hits)

	// A single layer band is the grown slice.
	assert.Equal(t, r.grownSlice(2), r.objectBand(0.41, 0.59))
}

// ===== Interface =====

func TestInterfaceLayers_Split(t *testing.T) {
	tests := []struct {
		name           string
		soluble        bool
		topLayers      int
		wantTop        []float64
		wantBaseIface  []float64
		wantBottom     []float64
		wantTotalCount int
	}{
		{
			name:           "plain",
			topLayers:      3,
			wantTop:        []float64{1.8, 2.0},
			wantBottom:     []float64{0.4, 0.6},
			wantTotalCount: 4,
		},
		{
			name:           "soluble over base material",
			soluble:        true,
			topLayers:      5,
			wantTop:        []float64{1.8, 2.0},
			wantBaseIface:  []float64{1.4, 1.6},
			wantBottom:     []float64{0.4, 0.6},
			wantTotalCount: 6,
		},
	}
	floats := cmpopts.EquateApprox(0, 1e-9)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.SolubleInterface = tt.soluble
			cfg.TopInterfaceLayers = tt.topLayers
			cfg.BottomInterfaceLayers = 3
			r := testRun(t, cfg, tabObject())

			body := geom.Polygons{geom.RectMM(-10, -10, 10, 10)}
			var base LayerList
			for k := range 9 {
				id, l := r.arena.Alloc(k, KindBase)
				l.PrintZ = 0.4 + 0.2*float64(k)
				l.BottomZ, l.Height = l.PrintZ-0.2, 0.2
				l.Polygons = body
				base = append(base, id)
			}
			tcID, tc := r.arena.Alloc(0, KindTopContact)
			tc.PrintZ, tc.BottomZ, tc.Height = 2.2, 2.0, 0.2
			tc.Polygons = geom.Polygons{geom.RectMM(-5, -5, 5, 5)}
			bcID, bc := r.arena.Alloc(0, KindBottomContact)
			bc.PrintZ, bc.BottomZ, bc.Height = 0.2, 0, 0.2
			bc.Polygons = geom.Polygons{geom.RectMM(-8, -8, -2, -2)}

			iface := r.interfaceLayers(base, LayerList{tcID}, LayerList{bcID})
			require.Len(t, iface, tt.wantTotalCount)

			var top, baseIface, bottom []float64
			split := make(map[float64]float64)
			for _, id := range iface {
				l := r.arena.Layer(id)
				area := l.Polygons.Area() / mm2
				split[l.PrintZ] += area
				switch {
				case l.Kind == KindTopInterface:
					top = append(top, l.PrintZ)
					assert.InDelta(t, 100, area, 1e-6)
				case l.Kind == KindBottomInterface:
					bottom = append(bottom, l.PrintZ)
					assert.InDelta(t, 36, area, 1e-6)
				case l.Kind == KindBase && l.BaseInterface:
					baseIface = append(baseIface, l.PrintZ)
					assert.InDelta(t, 100, area, 1e-6)
				default:
					t.Errorf("unexpected %v layer at z=%v", l.Kind, l.PrintZ)
				}
			}
			if diff := cmp.Diff(tt.wantTop, top, floats); diff != "" {
				t.Errorf("top interface Z mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantBaseIface, baseIface, floats, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("base interface Z mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantBottom, bottom, floats); diff != "" {
				t.Errorf("bottom interface Z mismatch (-want +got):\n%s", diff)
			}

			// What was split off plus what is left is the original body.
			for _, id := range base {
				l := r.arena.Layer(id)
				total := l.Polygons.Area()/mm2 + split[l.PrintZ]
				assert.InDelta(t, 400, total, 1e-6, "layer at z=%v", l.PrintZ)
			}
		})
	}
}
