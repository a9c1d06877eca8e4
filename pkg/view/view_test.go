package view

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/events"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/layers"
	"github.com/layerview/layerview/pkg/raster"
)

// recordState keeps the latest pushed state plus per-channel call counts.
type recordState struct {
	data       map[string][]byte
	options    map[string][]byte
	domain     geom.Rect
	transform  [3]float64
	syncGroup  string
	dataCalls  int
	loadingLog []bool
}

func (s *recordState) SetLayersData(data map[string][]byte) {
	s.data = data
	s.dataCalls++
}
func (s *recordState) SetLayersOptions(options map[string][]byte) { s.options = options }
func (s *recordState) SetDomain(domain geom.Rect)                 { s.domain = domain }
func (s *recordState) SetTransform(y, x, scale float64)           { s.transform = [3]float64{y, x, scale} }
func (s *recordState) SetLoading(loading bool)                    { s.loadingLog = append(s.loadingLog, loading) }
func (s *recordState) SetSyncGroup(group string)                  { s.syncGroup = group }

func testImage(t *testing.T, h, w int) *raster.Image {
	t.Helper()
	img, err := raster.NewImage(h, w, 1, make([]float64, h*w))
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	return img
}

func TestView2D_AddPushesState(t *testing.T) {
	sink := &recordState{}
	v := New(sink)

	if _, err := v.AddImage(testImage(t, 10, 20), "bg", nil); err != nil {
		t.Fatalf("AddImage() error = %v", err)
	}

	payload, ok := sink.data["bg"]
	if !ok {
		t.Fatalf("payload map = %v, want bg entry", sink.data)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["type"] != "image" {
		t.Errorf("payload type = %v, want image", decoded["type"])
	}

	raw, ok := sink.options["bg"]
	if !ok {
		t.Fatalf("options map = %v, want bg entry", sink.options)
	}
	var opts map[string]any
	if err := json.Unmarshal(raw, &opts); err != nil {
		t.Fatalf("options are not JSON: %v", err)
	}
	if opts["visible"] != true {
		t.Errorf("visible option = %v, want true", opts["visible"])
	}

	if sink.domain != (geom.Rect{H: 10, W: 20}) {
		t.Errorf("domain = %+v, want main layer shape", sink.domain)
	}
}

func TestView2D_LoadingBracketsTransmission(t *testing.T) {
	sink := &recordState{}
	v := New(sink)

	_, _ = v.AddImage(testImage(t, 4, 4), "bg", nil)

	if len(sink.loadingLog) < 2 {
		t.Fatalf("loading log = %v, want at least one true/false pair", sink.loadingLog)
	}
	if !sink.loadingLog[0] {
		t.Error("first loading push = false, want true")
	}
	if sink.loadingLog[len(sink.loadingLog)-1] {
		t.Error("last loading push = true, want false")
	}
	// Nested transmissions collapse into one bracket each.
	for i := 1; i < len(sink.loadingLog); i++ {
		if sink.loadingLog[i] == sink.loadingLog[i-1] {
			t.Fatalf("loading log = %v, want strictly alternating", sink.loadingLog)
		}
	}
}

func TestView2D_RemoveDropsPayload(t *testing.T) {
	sink := &recordState{}
	v := New(sink)
	_, _ = v.AddImage(testImage(t, 4, 4), "bg", nil)
	_, _ = v.AddImage(testImage(t, 4, 4), "fg", nil)

	if err := v.Remove("fg"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := sink.data["fg"]; ok {
		t.Error("removed layer payload still transmitted")
	}
	if _, ok := sink.data["bg"]; !ok {
		t.Error("remaining layer payload was dropped")
	}
	if _, ok := sink.options["fg"]; ok {
		t.Error("removed layer options still transmitted")
	}
}

func TestView2D_IntensityOptionsTransmitted(t *testing.T) {
	sink := &recordState{}
	v := New(sink)
	_, _ = v.AddImage(testImage(t, 4, 4), "bg", nil)

	p, err := raster.NewPlane(4, 4, make([]float64, 16))
	if err != nil {
		t.Fatalf("NewPlane() error = %v", err)
	}
	if _, err := v.AddIntensity(p, "heat", map[float64]any{0: "#000", 1: "#fff"}, nil); err != nil {
		t.Fatalf("AddIntensity() error = %v", err)
	}

	raw, ok := sink.options["heat"]
	if !ok {
		t.Fatalf("options map = %v, want heat entry", sink.options)
	}
	var opts map[string]any
	if err := json.Unmarshal(raw, &opts); err != nil {
		t.Fatalf("options are not JSON: %v", err)
	}
	cr, ok := opts["color_range"].(map[string]any)
	if !ok {
		t.Fatalf("color_range = %v, want a stop mapping", opts["color_range"])
	}
	if cr["1"] != "#fff" {
		t.Errorf(`color_range["1"] = %v, want #fff`, cr["1"])
	}
}

func TestView2D_DataChangeRetransmits(t *testing.T) {
	sink := &recordState{}
	v := New(sink)
	layer, _ := v.AddImage(testImage(t, 4, 4), "bg", nil)
	before := sink.data["bg"]

	data := make([]float64, 16)
	for i := range data {
		data[i] = float64(i * 16)
	}
	img, _ := raster.NewImage(4, 4, 1, data)
	if err := layer.UpdateData(img); err != nil {
		t.Fatalf("UpdateData() error = %v", err)
	}

	after := sink.data["bg"]
	if string(before) == string(after) {
		t.Error("payload unchanged after a data update")
	}
	if got := v.LayersData()["bg"]; string(got) != string(after) {
		t.Error("LayersData() does not match the transmitted state")
	}
}

func TestView2D_UpdateBatchTransmitsOnce(t *testing.T) {
	sink := &recordState{}
	v := New(sink)
	a, _ := v.AddImage(testImage(t, 4, 4), "a", nil)
	b, _ := v.AddImage(testImage(t, 4, 4), "b", nil)
	sink.dataCalls = 0

	img, _ := raster.NewImage(4, 4, 1, make([]float64, 16))
	err := v.Update(func() error {
		if err := a.UpdateData(img); err != nil {
			return err
		}
		return b.UpdateData(img)
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if sink.dataCalls != 1 {
		t.Errorf("data pushes = %d, want 1 for a batched scope", sink.dataCalls)
	}
}

func TestView2D_DispatchEvent(t *testing.T) {
	v := New(nil)

	var got events.ClickEvent
	calls := 0
	v.OnClick(func(e events.ClickEvent) {
		got = e
		calls++
	})

	err := v.DispatchEvent("onclick", map[string]any{
		"x": 3.5, "y": 7.0, "button": 1, "modifiers": []any{"shift"},
	})
	if err != nil {
		t.Fatalf("DispatchEvent() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("click handler ran %d times, want 1", calls)
	}
	if got.X != 3.5 || got.Y != 7.0 || got.Button != 1 {
		t.Errorf("click = %+v", got)
	}
	if !got.HasModifier(events.ModifierShift) {
		t.Error("shift modifier lost in transit")
	}

	if err := v.DispatchEvent("ondance", nil); !errors.Is(err, errors.ErrCodeInvalidEvent) {
		t.Errorf("DispatchEvent(unknown) error = %v, want INVALID_EVENT", err)
	}
}

func TestView2D_NextClick(t *testing.T) {
	v := New(nil)
	ch := v.NextClick(context.Background())

	if err := v.DispatchEvent("onclick", map[string]any{"x": 1.0, "y": 2.0}); err != nil {
		t.Fatalf("DispatchEvent() error = %v", err)
	}
	select {
	case e := <-ch:
		if e.X != 1 || e.Y != 2 {
			t.Errorf("NextClick() = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("NextClick() did not deliver")
	}
}

func TestView2D_GoTo(t *testing.T) {
	sink := &recordState{}
	v := New(sink)

	v.SetTransform(10, 20, 2)
	if y, x, s := v.Transform(); y != 10 || x != 20 || s != 2 {
		t.Errorf("Transform() = (%v, %v, %v)", y, x, s)
	}

	v.GoTo(geom.Point{Y: 5, X: 6}, 4)
	if sink.transform != [3]float64{5, 6, 4} {
		t.Errorf("pushed transform = %v, want [5 6 4]", sink.transform)
	}

	// Zero scale keeps the current zoom.
	v.GoTo(geom.Point{Y: 1, X: 1}, 0)
	if sink.transform != [3]float64{1, 1, 2} {
		t.Errorf("pushed transform = %v, want [1 1 2]", sink.transform)
	}
}

func TestSyncViews(t *testing.T) {
	s1, s2 := &recordState{}, &recordState{}
	v1, v2 := New(s1), New(s2)

	group := SyncViews(v1, v2)
	if group == "" {
		t.Fatal("SyncViews() returned an empty group id")
	}
	if v1.SyncGroup() != group || v2.SyncGroup() != group {
		t.Error("views do not share the group id")
	}
	if s1.syncGroup != group || s2.syncGroup != group {
		t.Error("group id was not pushed to the sinks")
	}
	if other := SyncViews(New(nil)); other == group {
		t.Error("SyncViews() reused a group id")
	}
}

func TestView2D_AddLabelAndGraph(t *testing.T) {
	sink := &recordState{}
	v := New(sink)
	_, _ = v.AddImage(testImage(t, 8, 8), "bg", nil)

	lm, err := raster.LabelMapFromInts(8, 8, make([]int64, 64))
	if err != nil {
		t.Fatalf("LabelMapFromInts() error = %v", err)
	}
	if _, err := v.AddLabel(lm, "cells", nil, layers.Options{"opacity": 0.7}); err != nil {
		t.Fatalf("AddLabel() error = %v", err)
	}
	cells, _ := v.Layer("cells")
	if got, _ := cells.Option("opacity").(float64); got != 0.7 {
		t.Errorf("opacity = %v, want 0.7 from the add-time options", got)
	}

	g := layers.GraphData{
		Adjacency: [][2]uint32{{0, 1}},
		NodesYX:   [][2]float64{{1, 1}, {5, 5}},
	}
	if _, err := v.AddGraph(g, "vessels", nil); err != nil {
		t.Fatalf("AddGraph() error = %v", err)
	}
	if _, ok := sink.data["vessels"]; !ok {
		t.Error("graph payload was not transmitted")
	}
}
