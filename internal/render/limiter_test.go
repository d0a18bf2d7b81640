package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitBudgetClamp(t *testing.T) {
	buf := make([]Color, 10)
	for i := range buf {
		buf[i] = Color{1, 1, 1}
	}
	// pre-limit current would be 10 * 60 = 600 mA
	Limit{ChanMA: 20, BudgetMA: 300, WhiteCap: 3, Knee: 0.9}.Apply(buf)
	assert.LessOrEqual(t, EstimateMA(buf, 20), 300.1)
}

func TestLimitSoftKnee(t *testing.T) {
	buf := []Color{{1, 1, 1}}
	// 60 mA against a 64 mA budget sits above the 0.9 knee
	Limit{ChanMA: 20, BudgetMA: 64, Knee: 0.9}.Apply(buf)
	cur := EstimateMA(buf, 20)
	assert.Less(t, cur, 60.0)
	assert.Greater(t, cur, 55.0)
}

func TestWhiteCap(t *testing.T) {
	buf := []Color{{1, 1, 1}}
	Limit{WhiteCap: 1.5}.Apply(buf)
	assert.LessOrEqual(t, buf[0].R+buf[0].G+buf[0].B, float32(1.5001))
}

func TestGamma(t *testing.T) {
	buf := []Color{{0.5, 1, 0}}
	Gamma(buf, 2.0)
	assert.InDelta(t, 0.25, buf[0].R, 1e-6)
	assert.InDelta(t, 1.0, buf[0].G, 1e-6)
	assert.InDelta(t, 0.0, buf[0].B, 1e-6)
}

func TestMixFrames(t *testing.T) {
	a := []Color{{0, 0, 0}, {1, 1, 1}}
	b := []Color{{1, 0, 0}, {0, 0, 1}}
	dst := make([]Color, 2)

	MixFrames(dst, a, b, 0.25)
	assert.InDelta(t, 0.25, dst[0].R, 1e-6)
	assert.InDelta(t, 0.75, dst[1].G, 1e-6)
	assert.InDelta(t, 1.0, dst[1].B, 1e-6)

	MixFrames(a, a, b, 1)
	assert.Equal(t, b, a)
}
