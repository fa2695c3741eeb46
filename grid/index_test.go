package grid

import "testing"

func TestLineAddSaturates(t *testing.T) {
	max := Line(^uint32(0))
	if got := max.Add(5); got != max {
		t.Errorf("Add at max = %d, want %d", got, max)
	}
	if got := Line(3).Add(2); got != 5 {
		t.Errorf("Add(3,2) = %d, want 5", got)
	}
}

func TestLineSubSaturates(t *testing.T) {
	if got := Line(0).Sub(1); got != 0 {
		t.Errorf("Sub underflow = %d, want 0", got)
	}
	if got := Line(5).Sub(2); got != 3 {
		t.Errorf("Sub(5,2) = %d, want 3", got)
	}
}

func TestColumnSaturates(t *testing.T) {
	if got := Column(0).Sub(10); got != 0 {
		t.Errorf("Column.Sub underflow = %d, want 0", got)
	}
	max := Column(^uint32(0))
	if got := max.Add(1); got != max {
		t.Errorf("Column.Add at max = %d, want %d", got, max)
	}
}

func TestLineRangeContains(t *testing.T) {
	r := NewLineRange(2, 5)
	cases := []struct {
		l    Line
		want bool
	}{
		{1, false},
		{2, true},
		{4, true},
		{5, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.l); got != c.want {
			t.Errorf("Contains(%d) = %v, want %v", c.l, got, c.want)
		}
	}
}

func TestNewLineRangeClampsInverted(t *testing.T) {
	r := NewLineRange(5, 2)
	if r.Start != 5 || r.End != 5 {
		t.Errorf("inverted range = %+v, want Start==End==5", r)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestLineRangeLen(t *testing.T) {
	if got := NewLineRange(3, 7).Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
}
