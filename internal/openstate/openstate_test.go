package openstate

import (
	"encoding/json"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func yaw(deg float32) mgl32.Quat {
	return mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{0, 1, 0})
}

func TestYawDegrees(t *testing.T) {
	tests := []struct {
		name string
		q    mgl32.Quat
		want float32
	}{
		{"identity", mgl32.QuatIdent(), 0},
		{"yaw 45", yaw(45), 45},
		{"yaw -60", yaw(-60), -60},
		{"pitch only", mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0}), 0},
		{"yaw past 90 folds back", yaw(110), 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YawDegrees(tt.q); math32.Abs(got-tt.want) > 1e-3 {
				t.Errorf("YawDegrees() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		q         mgl32.Quat
		separated bool
		want      State
	}{
		{"upright", mgl32.QuatIdent(), false, Intact},
		{"85 degrees", yaw(85), false, Opened},
		{"minus 85 degrees", yaw(-85), false, Opened},
		{"79.9 degrees", yaw(79.9), false, Intact},
		{"separated regardless of pose", mgl32.QuatIdent(), true, Opened},
		{"85 degrees and separated", yaw(85), true, Opened},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.q, tt.separated); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyAtCustomThreshold(t *testing.T) {
	if got := ClassifyAt(yaw(50), false, 45); got != Opened {
		t.Errorf("ClassifyAt(50°, 45) = %v, want opened", got)
	}
	if got := ClassifyAt(yaw(40), false, 45); got != Intact {
		t.Errorf("ClassifyAt(40°, 45) = %v, want intact", got)
	}
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		State State `json:"state"`
	}{Opened})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"state":"opened"}` {
		t.Errorf("json = %s", data)
	}
	var s State
	if err := s.UnmarshalText([]byte("intact")); err != nil || s != Intact {
		t.Errorf("UnmarshalText(intact) = %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("ajar")); err == nil {
		t.Error("UnmarshalText(ajar) should fail")
	}
}
