package tensor

import "testing"

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if !raw.Shape().Equal(Shape{2, 3}) {
		t.Errorf("shape = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != Float32 {
		t.Errorf("dtype = %s, want float32", raw.DType())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements = %d, want 6", raw.NumElements())
	}
	if len(raw.Data()) != 6*4 {
		t.Errorf("buffer size = %d bytes, want 24", len(raw.Data()))
	}

	if _, err := NewRaw(Shape{2, 0}, Float32, CPU); err == nil {
		t.Error("NewRaw accepted invalid shape")
	}
}

func TestRawAsFloat32(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	data := raw.AsFloat32()
	if len(data) != 4 {
		t.Fatalf("len = %d, want 4", len(data))
	}
	data[2] = 3.5
	if raw.AsFloat32()[2] != 3.5 {
		t.Error("writes through AsFloat32 not visible")
	}

	defer func() {
		if recover() == nil {
			t.Error("AsFloat64 on float32 tensor did not panic")
		}
	}()
	raw.AsFloat64()
}

func TestRawRefCounting(t *testing.T) {
	raw, err := NewRaw(Shape{2, 2}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if !raw.IsUnique() {
		t.Error("fresh tensor should be unique")
	}

	view := raw.Clone()
	if raw.IsUnique() || view.IsUnique() {
		t.Error("tensor with two views reported unique")
	}

	// Views share the buffer.
	raw.AsFloat32()[0] = 7
	if view.AsFloat32()[0] != 7 {
		t.Error("clone does not share the buffer")
	}

	view.Release()
	if !raw.IsUnique() {
		t.Error("tensor should be unique after releasing the only other view")
	}
}

func TestRawWithShape(t *testing.T) {
	raw, err := NewRaw(Shape{2, 6}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	view, err := raw.WithShape(Shape{3, 4})
	if err != nil {
		t.Fatalf("WithShape failed: %v", err)
	}
	if !view.Shape().Equal(Shape{3, 4}) {
		t.Errorf("view shape = %v, want [3 4]", view.Shape())
	}
	raw.AsFloat32()[5] = 2.5
	if view.AsFloat32()[5] != 2.5 {
		t.Error("reshaped view does not share the buffer")
	}

	if _, err := raw.WithShape(Shape{5, 5}); err == nil {
		t.Error("WithShape accepted mismatched element count")
	}
}

func TestDataTypeSize(t *testing.T) {
	if Float32.Size() != 4 || Int32.Size() != 4 || Float64.Size() != 8 {
		t.Error("wrong dtype sizes")
	}
}
