package tensor

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"matrix", Shape{3, 4}, 12},
		{"batch channel time", Shape{2, 4, 8}, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.NumElements(); got != tt.want {
				t.Errorf("NumElements() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3, 4}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{2, 0, 4}).Validate(); err == nil {
		t.Error("zero dimension accepted")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("negative dimension accepted")
	}
}

func TestShapeEqual(t *testing.T) {
	a := Shape{2, 3, 4}
	if !a.Equal(Shape{2, 3, 4}) {
		t.Error("equal shapes reported unequal")
	}
	if a.Equal(Shape{2, 3}) {
		t.Error("shapes of different rank reported equal")
	}
	if a.Equal(Shape{2, 3, 5}) {
		t.Error("different shapes reported equal")
	}
}

func TestShapeClone(t *testing.T) {
	a := Shape{2, 3}
	b := a.Clone()
	b[0] = 99
	if a[0] != 2 {
		t.Error("Clone did not copy the underlying slice")
	}
}

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  []int
	}{
		{"vector", Shape{5}, []int{1}},
		{"matrix", Shape{3, 4}, []int{4, 1}},
		{"rank3", Shape{2, 4, 8}, []int{32, 8, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.shape.ComputeStrides()
			if len(got) != len(tt.want) {
				t.Fatalf("ComputeStrides() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("stride[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"same", Shape{2, 4, 8}, Shape{2, 4, 8}, Shape{2, 4, 8}, false, false},
		{"mask over channels", Shape{2, 4, 8}, Shape{2, 1, 8}, Shape{2, 4, 8}, true, false},
		{"per channel param", Shape{2, 4, 8}, Shape{4, 1}, Shape{2, 4, 8}, true, false},
		{"scalar like", Shape{2, 4}, Shape{1}, Shape{2, 4}, true, false},
		{"incompatible", Shape{3, 5}, Shape{3, 4}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("BroadcastShapes() = %v, want %v", got, tt.want)
			}
			if broadcast != tt.broadcast {
				t.Errorf("broadcast flag = %v, want %v", broadcast, tt.broadcast)
			}
		})
	}
}
